package domain

// User is an account holder. The natural key is Email.
type User struct {
	PendingEvents

	ID             int64
	Email          string
	FullName       string
	HashedPassword string
	IsActive       bool
}

// RegisterUser creates a new active User and raises NotifyNewAccount for it.
func RegisterUser(email, fullName, hashedPassword string) *User {
	user := &User{
		Email:          email,
		FullName:       fullName,
		HashedPassword: hashedPassword,
		IsActive:       true,
	}

	user.Raise(BuildNotifyNewAccount(email))

	return user
}
