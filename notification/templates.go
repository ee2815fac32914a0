package notification

import (
	"bytes"
	"errors"
	"html/template"
)

var newAccountTemplate = template.Must(template.New("new_account").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Welcome to {{.ProjectName}}!</p>
<p>An account was created for you. Your username is {{.Username}}.</p>
<p><a href="{{.Link}}">Open {{.ProjectName}}</a></p>
</body>
</html>
`))

type newAccountData struct {
	ProjectName string
	Username    string
	Link        string
}

// RenderNewAccountEmail builds the welcome email for a newly registered account.
func RenderNewAccountEmail(settings Settings, emailTo, username string) (Message, error) {
	var body bytes.Buffer

	err := newAccountTemplate.Execute(&body, newAccountData{
		ProjectName: settings.ProjectName,
		Username:    username,
		Link:        settings.FrontendHost,
	})
	if err != nil {
		return Message{}, errors.Join(ErrRenderFailed, err)
	}

	return Message{
		To:          emailTo,
		Subject:     settings.ProjectName + " - New account for user " + username,
		HTMLContent: body.String(),
	}, nil
}
