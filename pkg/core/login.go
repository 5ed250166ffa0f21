// pkg/core/login.go
package core

// LoginStatus is the classified result of a login attempt.
type LoginStatus string

const (
	LoginSuccess            LoginStatus = "SUCCESS"
	LoginInvalidCredentials LoginStatus = "INVALID_CREDENTIALS"
	LoginServerBusy         LoginStatus = "SERVER_BUSY"
)

// LoginResult is produced once per login attempt and never modified afterwards.
type LoginResult struct {
	Status  LoginStatus `json:"status"`
	Message string      `json:"message"`
}

// Credentials is the username/password pair used to authenticate.
type Credentials struct {
	Username string
	Password string
}

// Valid reports whether both halves of the pair are present.
func (c Credentials) Valid() bool {
	return c.Username != "" && c.Password != ""
}
