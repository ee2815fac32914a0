package domain

// NotifyNewAccount is raised when a user account was created and its owner should be told about it.
type NotifyNewAccount struct {
	Email string `json:"email"`
}

// BuildNotifyNewAccount creates a new NotifyNewAccount event.
func BuildNotifyNewAccount(email string) NotifyNewAccount {
	return NotifyNewAccount{Email: email}
}

// EventType returns the event type identifier.
func (e NotifyNewAccount) EventType() EventType {
	return NotifyNewAccountEventType
}

// MessageName returns the event type identifier as a string.
func (e NotifyNewAccount) MessageName() string {
	return string(NotifyNewAccountEventType)
}
