package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "GIFTLIST"
	defaultProfilePath  = "giftlist.db"
	defaultLogLevel     = "warn"
	defaultLogFormat    = LogFormatConsole
	defaultIDScheme     = "hash"
	defaultShareBaseURL = "http://localhost:8080/gift-list/"
	defaultOutputFormat = OutputFormatText
)

const (
	// LogFormatConsole renders human-readable log lines on stderr.
	LogFormatConsole = "console"
	// LogFormatJSON renders structured JSON log lines.
	LogFormatJSON = "json"
	// OutputFormatText renders command results for people.
	OutputFormatText = "text"
	// OutputFormatJSON renders command results as JSON documents.
	OutputFormatJSON = "json"
)

// AppConfig captures runtime configuration for the CLI.
type AppConfig struct {
	ProfilePath   string
	MemoryProfile bool
	LogLevel      string
	LogFormat     string
	IDScheme      string
	ShareBaseURL  string
	OutputFormat  string
	CreatorToken  string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("profile.path", defaultProfilePath)
	configViper.SetDefault("profile.memory", false)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.format", defaultLogFormat)
	configViper.SetDefault("ids.scheme", defaultIDScheme)
	configViper.SetDefault("share.base_url", defaultShareBaseURL)
	configViper.SetDefault("output.format", defaultOutputFormat)
	configViper.SetDefault("owner.token", "")
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		ProfilePath:   strings.TrimSpace(configViper.GetString("profile.path")),
		MemoryProfile: configViper.GetBool("profile.memory"),
		LogLevel:      configViper.GetString("log.level"),
		LogFormat:     strings.ToLower(strings.TrimSpace(configViper.GetString("log.format"))),
		IDScheme:      strings.ToLower(strings.TrimSpace(configViper.GetString("ids.scheme"))),
		ShareBaseURL:  strings.TrimSpace(configViper.GetString("share.base_url")),
		OutputFormat:  strings.ToLower(strings.TrimSpace(configViper.GetString("output.format"))),
		CreatorToken:  strings.TrimSpace(configViper.GetString("owner.token")),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if !c.MemoryProfile && c.ProfilePath == "" {
		return fmt.Errorf("profile.path is required")
	}
	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("log.format must be %q or %q", LogFormatConsole, LogFormatJSON)
	}
	switch c.IDScheme {
	case "hash", "uuid":
	default:
		return fmt.Errorf("ids.scheme must be \"hash\" or \"uuid\"")
	}
	switch c.OutputFormat {
	case OutputFormatText, OutputFormatJSON:
	default:
		return fmt.Errorf("output.format must be %q or %q", OutputFormatText, OutputFormatJSON)
	}
	parsed, err := url.Parse(c.ShareBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("share.base_url must be an absolute url")
	}
	return nil
}
