package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	App             AppConfig            `mapstructure:"app"`
	Auth            AuthConfig           `mapstructure:"auth"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
}

type ServiceConfig struct {
	Port string `mapstructure:"port"`
}

type AppConfig struct {
	// BaseURL is the public origin of the dashboard, used to build callback
	// redirects when the incoming request carries no usable origin.
	BaseURL string `mapstructure:"baseUrl"`
	// DefaultRedirectPath is where the broker callback lands users when no
	// redirect target was requested.
	DefaultRedirectPath string `mapstructure:"defaultRedirectPath"`
}

type AuthConfig struct {
	// JWTSecret verifies the session tokens issued by the hosted auth
	// service. The "sub" claim is the session user id.
	JWTSecret string `mapstructure:"jwtSecret"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Driver           string `mapstructure:"driver"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

type ExternalClientConfig struct {
	SnapTrade   SnapTradeConfig   `mapstructure:"snaptrade"`
	GoldAPI     GoldAPIConfig     `mapstructure:"goldapi"`
	MarketCheck MarketCheckConfig `mapstructure:"marketcheck"`
}

type SnapTradeConfig struct {
	BaseURL  string `mapstructure:"baseUrl"`
	ClientID string `mapstructure:"clientId"`
	// ConsumerKey signs every aggregator request. SecretID, when set, names
	// an AWS Secrets Manager secret holding the key and takes precedence.
	ConsumerKey string `mapstructure:"consumerKey"`
	SecretID    string `mapstructure:"secretId"`
	Region      string `mapstructure:"region"`
	// Mock forces the deterministic in-process aggregator. The mock is also
	// selected when no credentials are configured.
	Mock bool `mapstructure:"mock"`
}

// UseMock reports whether the aggregator client should be built in mock
// mode. The decision is made once at construction, never inside business
// logic.
func (c SnapTradeConfig) UseMock() bool {
	return c.Mock || c.ClientID == "" || (c.ConsumerKey == "" && c.SecretID == "")
}

type GoldAPIConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
	APIKey  string `mapstructure:"apiKey"`
}

type MarketCheckConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
	APIKey  string `mapstructure:"apiKey"`
}

func LoadConfig(path, env string) (*Config, error) {
	var cfg Config

	viper.AddConfigPath(path)
	if env != "" {
		viper.SetConfigName("appsettings." + strings.ToLower(env))
	} else {
		viper.SetConfigName("appsettings")
	}
	viper.SetConfigType("yaml")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	if cfg.App.DefaultRedirectPath == "" {
		cfg.App.DefaultRedirectPath = "/dashboard/assets"
	}
	return &cfg, nil
}
