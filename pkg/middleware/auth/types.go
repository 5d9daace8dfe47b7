package auth

import "time"

// Claims is the decoded payload of a verified token. Registered and
// provider-specific claims are typed; everything else lands in Extra.
type Claims struct {
	Subject   string         `json:"sub"`
	Issuer    string         `json:"iss"`
	Audience  []string       `json:"aud,omitempty"`
	ExpiresAt time.Time      `json:"exp"`
	IssuedAt  time.Time      `json:"iat"`
	TokenUse  string         `json:"token_use"`
	Username  string         `json:"username"`
	ClientID  string         `json:"client_id"`
	Extra     map[string]any `json:"-"`
}
