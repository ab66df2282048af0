package config

import "time"

// ClientConfig holds the settings of the session-managed API client.
type ClientConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetTokenStoreBackend() string
	GetTokenStorePath() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetMaxTokenAge() time.Duration
}

const (
	TokenStoreBolt   = "bolt"
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetAPIBaseURL() string {
	return GetEnv("JOURNAL_API_URL", "http://localhost:8080")
}

func (Client) GetRequestTimeout() time.Duration {
	return GetDurationEnv("REQUEST_TIMEOUT", 10*time.Second)
}

func (Client) GetTokenStoreBackend() string {
	return GetEnv("TOKEN_STORE", TokenStoreBolt)
}

func (Client) GetTokenStorePath() string {
	return GetEnv("TOKEN_STORE_PATH", "./data/tokens.db")
}

func (Client) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Client) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

// GetMaxTokenAge is the ceiling on how long a persisted token is trusted,
// regardless of any expiry the token itself carries.
func (Client) GetMaxTokenAge() time.Duration {
	return GetDurationEnv("TOKEN_MAX_AGE", 30*24*time.Hour)
}
