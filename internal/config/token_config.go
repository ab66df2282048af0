package config

import "time"

// TokenConfig holds the backend's token issuing settings.
type TokenConfig interface {
	GetSigningSecret() string
	GetIssuer() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
	GetRefreshCookieName() string
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

// GetSigningSecret returns the HMAC secret for access tokens. The default is
// only suitable for local development.
func (Tokens) GetSigningSecret() string {
	return GetEnv("TOKEN_SIGNING_SECRET", "journal-dev-secret")
}

func (Tokens) GetIssuer() string {
	return GetEnv("TOKEN_ISSUER", "journal-backend")
}

func (Tokens) GetAccessTokenExpiry() time.Duration {
	return GetDurationEnv("ACCESS_TOKEN_EXPIRY", 15*time.Minute)
}

func (Tokens) GetRefreshTokenExpiry() time.Duration {
	return GetDurationEnv("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour)
}

func (Tokens) GetRefreshTokenLength() int {
	return GetIntEnv("REFRESH_TOKEN_LENGTH", 32) // 32 bytes = 256 bits
}

func (Tokens) GetRefreshCookieName() string {
	return GetEnv("REFRESH_COOKIE_NAME", "refreshToken")
}
