package models

// LoginStatus is the outcome of a login attempt.
type LoginStatus string

const (
	LoginSuccess LoginStatus = "Success"
	LoginFailed  LoginStatus = "Failed"
)

// LoginEntry is one row of the login history.
type LoginEntry struct {
	ID        string      `json:"id"`
	LoginTime Timestamp   `json:"loginTime"`
	IPAddress string      `json:"ipAddress"`
	Device    string      `json:"device"`
	Location  string      `json:"location"`
	Status    LoginStatus `json:"status"`
	Username  string      `json:"username"`
}
