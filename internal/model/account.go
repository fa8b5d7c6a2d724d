package model

// Account holds the resolved credentials for one vendor account.
// CustomerName is the customer identifier used as the API host prefix
// (https://{customername}.criticalarc.net). Username and Password are
// optional; when Username is empty no Basic auth is sent.
type Account struct {
	Username     string
	Password     string
	CustomerName string
}
