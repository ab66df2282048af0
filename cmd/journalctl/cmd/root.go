// Package cmd implements the journalctl commands.
package cmd

import (
	"github.com/jrsteele09/journal-session/internal/config"
	"github.com/jrsteele09/journal-session/internal/logging"
	"github.com/spf13/cobra"
)

var (
	apiURL    string
	storeKind string
	storePath string
	redisAddr string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "journalctl",
	Short: "Command-line client for the journal backend",
	Long: `journalctl signs in to the journal backend and keeps the session alive between runs.

Tokens are persisted in a local token store, and expired access tokens are refreshed
transparently.

Environment Variables:
  JOURNAL_API_URL   Backend API URL (default: http://localhost:8080)
  TOKEN_STORE       Token store: bolt, memory or redis (default: bolt)
  TOKEN_STORE_PATH  Bolt database file (default: ./data/tokens.db)
  REDIS_ADDR        Redis address for the redis token store
  TOKEN_MAX_AGE     Oldest token the store will hand out (default: 720h)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		level := logLevel
		if level == "" {
			level = config.New().GetLogLevel()
		}
		logging.InitWithWriter(cmd.ErrOrStderr(), level, "DEV")
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides JOURNAL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "Token store: bolt, memory or redis (overrides TOKEN_STORE)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store-path", "", "Bolt token store file (overrides TOKEN_STORE_PATH)")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "Redis address (overrides REDIS_ADDR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
}

// settings resolves each option from flag, then environment, then default.
type settings struct {
	APIURL        string
	StoreKind     string
	StorePath     string
	RedisAddr     string
	RedisPassword string
	cfg           config.ClientConfig
}

func resolveSettings() settings {
	cfg := config.Client{}
	s := settings{
		APIURL:        cfg.GetAPIBaseURL(),
		StoreKind:     cfg.GetTokenStoreBackend(),
		StorePath:     cfg.GetTokenStorePath(),
		RedisAddr:     cfg.GetRedisAddr(),
		RedisPassword: cfg.GetRedisPassword(),
		cfg:           cfg,
	}
	if apiURL != "" {
		s.APIURL = apiURL
	}
	if storeKind != "" {
		s.StoreKind = storeKind
	}
	if storePath != "" {
		s.StorePath = storePath
	}
	if redisAddr != "" {
		s.RedisAddr = redisAddr
	}
	return s
}
