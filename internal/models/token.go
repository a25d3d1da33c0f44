package models

// TokenPair is returned on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AccessToken is returned on refresh.
type AccessToken struct {
	Access string `json:"access"`
}
