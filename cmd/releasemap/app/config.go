package app

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/releasemap/internal/config"
	"github.com/agentstation/releasemap/pkg/constants"
	"github.com/agentstation/releasemap/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// File locations
	LedgerPath string
	ReadmePath string
	PublishDir string
	SiteDir    string
	RulesFile  string

	// Download API
	DownloadEndpoint string
	UserAgent        string
	HTTPTimeout      time.Duration

	// Ledger and backfill tuning
	MaxEntries      int
	BackfillDelay   time.Duration
	CheckpointEvery int

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (RELEASEMAP_* or bare keys)
// 3. .env.local, then .env
// 4. Config file (./.releasemap.yaml or ~/.releasemap.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	v := viper.GetViper()
	config.SetDefaults(v)
	config.BindEnv(v)

	if configFile := os.Getenv(config.EnvPrefix + "_CONFIG"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, errors.NewConfigError("file", "failed to read config file", err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Verbose:    v.GetBool(config.KeyVerbose),
		Quiet:      v.GetBool(config.KeyQuiet),
		NoColor:    os.Getenv("NO_COLOR") != "",
		Format:     config.GetString(config.KeyOutput),
		ConfigFile: v.ConfigFileUsed(),

		LedgerPath: config.GetString(config.KeyLedgerPath),
		ReadmePath: config.GetString(config.KeyReadmePath),
		PublishDir: config.GetString(config.KeyPublishDir),
		SiteDir:    config.GetString(config.KeySiteDir),
		RulesFile:  config.GetString(config.KeyRulesFile),

		DownloadEndpoint: config.GetString(config.KeyDownloadEndpoint),
		UserAgent:        config.GetString(config.KeyUserAgent),
		HTTPTimeout:      config.GetDuration(config.KeyHTTPTimeout),

		MaxEntries:      config.GetInt(config.KeyMaxEntries),
		BackfillDelay:   config.GetDuration(config.KeyBackfillDelay),
		CheckpointEvery: config.GetInt(config.KeyCheckpointEvery),

		LogLevel:  config.GetString(config.KeyLogLevel),
		LogFormat: config.GetString(config.KeyLogFormat),
		LogOutput: config.GetString(config.KeyLogOutput),
	}
}

// loadEnvFiles loads environment variables from .env files. godotenv never
// overrides a variable that is already set, so .env.local is loaded first.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
