package domain

import "time"

// Token request bounds enforced at the HTTP boundary.
const (
	MinTokenTTLSeconds     = 60
	MaxTokenTTLSeconds     = 86400
	DefaultTokenTTLSeconds = 3600
	DefaultRole            = "publisher"
)

// Credentials identify the RTC application tokens are issued for.
type Credentials struct {
	AppID          string
	AppCertificate string
}

// HasAppID reports whether the application identifier is configured.
func (c Credentials) HasAppID() bool { return c.AppID != "" }

// HasAppCertificate reports whether the application certificate is configured.
func (c Credentials) HasAppCertificate() bool { return c.AppCertificate != "" }

// Complete reports whether both values are present.
func (c Credentials) Complete() bool { return c.HasAppID() && c.HasAppCertificate() }

// TokenRequest is a validated request for a channel token.
type TokenRequest struct {
	Channel    string
	UID        uint32
	Role       string
	TTLSeconds uint32
	RequestID  string
}

// TokenIssuance records that a token was handed out. The token itself is never kept.
type TokenIssuance struct {
	ID         int64
	Channel    string
	UID        uint32
	Role       Role
	TTLSeconds uint32
	RequestID  string
	IssuedAt   time.Time
}
