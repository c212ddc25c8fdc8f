package config

import (
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Backend kind tags resolved through the balancer registry.
const (
	KindConfigFile = "configfile"
	KindRemoteAPI  = "remoteapi"
)

// BackendConfig is one entry of the balancers list. Kind selects the
// implementation; the remaining fields are kind-specific and validated
// accordingly. Optional fields left empty are defaulted by the backend
// constructors.
type BackendConfig struct {
	Kind     string `mapstructure:"kind"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	// configfile backends
	Hosts      []string `mapstructure:"hosts"`
	ConfigDir  string   `mapstructure:"config_dir"`
	StagingDir string   `mapstructure:"staging_dir"`
	ReloadCmd  string   `mapstructure:"reload_cmd"`

	// remoteapi backends
	Endpoint    string `mapstructure:"endpoint"`
	PoolPrefix  string `mapstructure:"pool_prefix"`
	GracePeriod string `mapstructure:"grace_period"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Environment string          `mapstructure:"environment"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Balancers   []BackendConfig `mapstructure:"balancers"`
}

func Load() (*Config, error) {
	viper.SetDefault("environment", EnvDev)
	viper.SetDefault("logging.level", LogLevelInfo)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Warn("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Balancers,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateBackendConfig)),
		),
	)
}

func validateBackendConfig(value interface{}) error {
	backend, ok := value.(BackendConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a BackendConfig")
	}

	switch backend.Kind {
	case KindConfigFile:
		return validateConfigFileBackend(backend)
	case KindRemoteAPI:
		return validateRemoteAPIBackend(backend)
	default:
		return validation.NewError("validation_unknown_kind",
			"kind must be one of: "+KindConfigFile+", "+KindRemoteAPI)
	}
}

func validateConfigFileBackend(backend BackendConfig) error {
	if err := validateCredential(backend); err != nil {
		return err
	}

	if len(backend.Hosts) == 0 {
		return validation.NewError("validation_missing_hosts", "hosts cannot be empty")
	}

	for _, host := range backend.Hosts {
		if err := validateHostAddress(host); err != nil {
			return err
		}
	}

	return nil
}

func validateRemoteAPIBackend(backend BackendConfig) error {
	if err := validateCredential(backend); err != nil {
		return err
	}

	if err := validateServerURL(backend.Endpoint); err != nil {
		return err
	}

	if backend.GracePeriod != "" {
		if _, err := time.ParseDuration(backend.GracePeriod); err != nil {
			return validation.NewError("validation_invalid_duration",
				"grace_period must be a valid duration (e.g., 2s, 500ms)")
		}
	}

	return nil
}

func validateCredential(backend BackendConfig) error {
	if backend.User == "" {
		return validation.NewError("validation_missing_user", "user cannot be empty")
	}
	if backend.Password == "" {
		return validation.NewError("validation_missing_password", "password cannot be empty")
	}
	return nil
}

// validateHostAddress accepts a bare host or a host:port pair.
func validateHostAddress(addr string) error {
	if addr == "" {
		return validation.NewError("validation_empty_host", "host cannot be empty")
	}

	host := addr
	if h, port, err := net.SplitHostPort(addr); err == nil {
		if port == "" {
			return validation.NewError("validation_invalid_port", "port cannot be empty")
		}
		host = h
	}

	if err := is.Host.Validate(host); err != nil {
		return validation.NewError("validation_invalid_host", "invalid host")
	}

	return nil
}

func validateServerURL(serverURL string) error {
	if serverURL == "" {
		return validation.NewError("validation_empty_url", "endpoint cannot be empty")
	}

	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
