// Package config names the configuration keys and reads them from Viper,
// falling back to the OS environment for bare keys.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/agentstation/releasemap/pkg/constants"
)

// EnvPrefix is prepended to keys when read from the environment.
const EnvPrefix = "RELEASEMAP"

// Configuration keys.
const (
	KeyLedgerPath       = "ledger_path"
	KeyReadmePath       = "readme_path"
	KeyPublishDir       = "publish_dir"
	KeySiteDir          = "site_dir"
	KeyDownloadEndpoint = "download_endpoint"
	KeyUserAgent        = "user_agent"
	KeyHTTPTimeout      = "http_timeout"
	KeyMaxEntries       = "max_entries"
	KeyBackfillDelay    = "backfill_delay"
	KeyCheckpointEvery  = "checkpoint_every"
	KeyRulesFile        = "rules_file"

	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"
	KeyLogOutput = "log_output"
	KeyVerbose   = "verbose"
	KeyQuiet     = "quiet"
	KeyOutput    = "output"
)

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLedgerPath, constants.DefaultLedgerPath)
	v.SetDefault(KeyReadmePath, constants.DefaultReadmePath)
	v.SetDefault(KeyPublishDir, constants.DefaultPublishDir)
	v.SetDefault(KeySiteDir, constants.DefaultSiteDir)
	v.SetDefault(KeyDownloadEndpoint, constants.DefaultDownloadEndpoint)
	v.SetDefault(KeyUserAgent, constants.DefaultUserAgent)
	v.SetDefault(KeyHTTPTimeout, constants.DefaultHTTPTimeout)
	v.SetDefault(KeyMaxEntries, constants.MaxLedgerEntries)
	v.SetDefault(KeyBackfillDelay, constants.BackfillDelay)
	v.SetDefault(KeyCheckpointEvery, constants.CheckpointEvery)
	v.SetDefault(KeyRulesFile, "")
	v.SetDefault(KeyLogFormat, "auto")
	v.SetDefault(KeyLogOutput, "stderr")
}

// BindEnv makes v read RELEASEMAP_<KEY> for every key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	// Check OS env directly first
	osValue := os.Getenv(strings.ToUpper(key))
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// GetDuration reads a duration, accepting a bare OS environment value.
func GetDuration(key string) time.Duration {
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	if raw := os.Getenv(strings.ToUpper(key)); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return viper.GetDuration(key)
}

// GetInt reads an integer, accepting a bare OS environment value.
func GetInt(key string) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if raw := os.Getenv(strings.ToUpper(key)); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return viper.GetInt(key)
}
