package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/soft-lfs/pkg/lfs"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SOFT_LFS_"

// Identity providers.
const (
	ProviderCognito  = "cognito"
	ProviderDatabase = "database"
)

// HTTPConfig is the HTTP configuration for the server.
type HTTPConfig struct {
	// ListenAddr is the address on which the HTTP server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`

	// TLSKeyPath is the path to the TLS private key.
	TLSKeyPath string `env:"TLS_KEY_PATH" yaml:"tls_key_path"`

	// TLSCertPath is the path to the TLS certificate.
	TLSCertPath string `env:"TLS_CERT_PATH" yaml:"tls_cert_path"`
}

// StatsConfig is the configuration for the stats server.
type StatsConfig struct {
	// Enabled is whether the stats server is started.
	Enabled bool `env:"ENABLED" yaml:"enabled"`

	// ListenAddr is the address on which the stats server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`
}

// LogConfig is the logger configuration.
type LogConfig struct {
	// Format is the format of the logs.
	// Valid values are "json", "logfmt", and "text".
	Format string `env:"FORMAT" yaml:"format"`

	// Time format for the log `ts` field.
	// Format must be described in Golang's time format.
	TimeFormat string `env:"TIME_FORMAT" yaml:"time_format"`

	// Path to a file to write logs to.
	// If not set, logs will be written to stderr.
	Path string `env:"PATH" yaml:"path"`
}

// LFSConfig is the Git LFS batch API configuration.
type LFSConfig struct {
	// AnonymousOperations lists the operations allowed without credentials.
	// Valid values are "download" and "upload".
	AnonymousOperations []string `env:"ANONYMOUS_OPERATIONS" envSeparator:"," yaml:"anonymous_operations"`

	// Expires is the lifetime of signed URLs in seconds.
	Expires int `env:"EXPIRES" yaml:"expires"`
}

// TTL returns the lifetime of signed URLs.
func (c LFSConfig) TTL() time.Duration {
	return time.Duration(c.Expires) * time.Second
}

// StorageConfig is the object store configuration.
type StorageConfig struct {
	// Bucket is the bucket holding LFS objects.
	Bucket string `env:"BUCKET" yaml:"bucket"`

	// Region is the bucket region. Empty means the AWS default chain.
	Region string `env:"REGION" yaml:"region"`

	// Endpoint is a custom endpoint for S3 compatible stores.
	Endpoint string `env:"ENDPOINT" yaml:"endpoint"`

	// PathStyle enables path-style bucket addressing.
	PathStyle bool `env:"PATH_STYLE" yaml:"path_style"`

	// AccessKeyID and SecretAccessKey are static credentials. When empty the
	// AWS default credential chain is used.
	AccessKeyID     string `env:"ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY" yaml:"secret_access_key"`
}

// IdentityConfig is the identity provider configuration.
type IdentityConfig struct {
	// Provider is either "cognito" or "database".
	Provider string `env:"PROVIDER" yaml:"provider"`

	// Region is the Cognito user pool region.
	Region string `env:"REGION" yaml:"region"`

	// UserPoolID, ClientID and ClientSecret identify the Cognito app client.
	UserPoolID   string `env:"USER_POOL_ID" yaml:"user_pool_id"`
	ClientID     string `env:"CLIENT_ID" yaml:"client_id"`
	ClientSecret string `env:"CLIENT_SECRET" yaml:"client_secret"`
}

// DBConfig is the database connection configuration.
type DBConfig struct {
	// Driver is the driver for the database.
	Driver string `env:"DRIVER" yaml:"driver"`

	// DataSource is the database data source name.
	DataSource string `env:"DATA_SOURCE" yaml:"data_source"`
}

// Config is the configuration for Soft LFS.
type Config struct {
	// Name is the name of the server.
	Name string `env:"NAME" yaml:"name"`

	// HTTP is the configuration for the HTTP server.
	HTTP HTTPConfig `envPrefix:"HTTP_" yaml:"http"`

	// Stats is the configuration for the stats server.
	Stats StatsConfig `envPrefix:"STATS_" yaml:"stats"`

	// Log is the logger configuration.
	Log LogConfig `envPrefix:"LOG_" yaml:"log"`

	// LFS is the batch API configuration.
	LFS LFSConfig `envPrefix:"LFS_" yaml:"lfs"`

	// Storage is the object store configuration.
	Storage StorageConfig `envPrefix:"STORAGE_" yaml:"storage"`

	// Identity is the identity provider configuration.
	Identity IdentityConfig `envPrefix:"IDENTITY_" yaml:"identity"`

	// DB is the database configuration.
	DB DBConfig `envPrefix:"DB_" yaml:"db"`

	// DataPath is the path to the directory where Soft LFS will store its data.
	DataPath string `env:"DATA_PATH" yaml:"-"`
}

// Environ returns the config as a list of environment variables.
// Secrets are not included.
func (c *Config) Environ() []string {
	if c == nil {
		return nil
	}

	return []string{
		fmt.Sprintf("%sDATA_PATH=%s", envPrefix, c.DataPath),
		fmt.Sprintf("%sNAME=%s", envPrefix, c.Name),
		fmt.Sprintf("%sHTTP_LISTEN_ADDR=%s", envPrefix, c.HTTP.ListenAddr),
		fmt.Sprintf("%sHTTP_TLS_KEY_PATH=%s", envPrefix, c.HTTP.TLSKeyPath),
		fmt.Sprintf("%sHTTP_TLS_CERT_PATH=%s", envPrefix, c.HTTP.TLSCertPath),
		fmt.Sprintf("%sSTATS_ENABLED=%t", envPrefix, c.Stats.Enabled),
		fmt.Sprintf("%sSTATS_LISTEN_ADDR=%s", envPrefix, c.Stats.ListenAddr),
		fmt.Sprintf("%sLOG_FORMAT=%s", envPrefix, c.Log.Format),
		fmt.Sprintf("%sLOG_TIME_FORMAT=%s", envPrefix, c.Log.TimeFormat),
		fmt.Sprintf("%sLOG_PATH=%s", envPrefix, c.Log.Path),
		fmt.Sprintf("%sLFS_ANONYMOUS_OPERATIONS=%s", envPrefix, strings.Join(c.LFS.AnonymousOperations, ",")),
		fmt.Sprintf("%sLFS_EXPIRES=%d", envPrefix, c.LFS.Expires),
		fmt.Sprintf("%sSTORAGE_BUCKET=%s", envPrefix, c.Storage.Bucket),
		fmt.Sprintf("%sSTORAGE_REGION=%s", envPrefix, c.Storage.Region),
		fmt.Sprintf("%sSTORAGE_ENDPOINT=%s", envPrefix, c.Storage.Endpoint),
		fmt.Sprintf("%sSTORAGE_PATH_STYLE=%t", envPrefix, c.Storage.PathStyle),
		fmt.Sprintf("%sIDENTITY_PROVIDER=%s", envPrefix, c.Identity.Provider),
		fmt.Sprintf("%sIDENTITY_REGION=%s", envPrefix, c.Identity.Region),
		fmt.Sprintf("%sIDENTITY_USER_POOL_ID=%s", envPrefix, c.Identity.UserPoolID),
		fmt.Sprintf("%sIDENTITY_CLIENT_ID=%s", envPrefix, c.Identity.ClientID),
		fmt.Sprintf("%sDB_DRIVER=%s", envPrefix, c.DB.Driver),
		fmt.Sprintf("%sDB_DATA_SOURCE=%s", envPrefix, c.DB.DataSource),
	}
}

// IsDebug returns true if the server is running in debug mode.
func IsDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv(envPrefix + "DEBUG"))
	return debug
}

// IsVerbose returns true if the server is running in verbose mode.
// Verbose mode is only enabled if debug mode is enabled.
func IsVerbose() bool {
	verbose, _ := strconv.ParseBool(os.Getenv(envPrefix + "VERBOSE"))
	return IsDebug() && verbose
}

// parseFile parses the given file as a configuration file.
// The file must be in YAML format.
func parseFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close() // nolint: errcheck
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return nil
}

// ParseFile parses the config from the default file path.
// It does not validate the config.
func (c *Config) ParseFile() error {
	return parseFile(c, c.ConfigPath())
}

// legacyConfig holds the unprefixed environment keys of earlier
// deployments. They apply before the prefixed keys.
type legacyConfig struct {
	BucketName         string `env:"BUCKET_NAME"`
	AnonymousAuthority string `env:"ANONYMOUS_AUTHORITY"`
	Expires            string `env:"EXPIRES"`
	UserPoolID         string `env:"USERPOOL_ID"`
	ClientID           string `env:"CLIENT_ID"`
	ClientSecret       string `env:"CLIENT_SECRET"`
}

func (l legacyConfig) apply(cfg *Config) error {
	if l.BucketName != "" {
		cfg.Storage.Bucket = l.BucketName
	}
	if l.AnonymousAuthority != "" {
		cfg.LFS.AnonymousOperations = strings.Split(l.AnonymousAuthority, ",")
	}
	if l.Expires != "" {
		expires, err := strconv.Atoi(l.Expires)
		if err != nil {
			return fmt.Errorf("parse EXPIRES: %w", err)
		}
		cfg.LFS.Expires = expires
	}
	if l.UserPoolID != "" {
		cfg.Identity.UserPoolID = l.UserPoolID
	}
	if l.ClientID != "" {
		cfg.Identity.ClientID = l.ClientID
	}
	if l.ClientSecret != "" {
		cfg.Identity.ClientSecret = l.ClientSecret
	}
	return nil
}

// parseEnv parses the environment variables as a configuration file.
func parseEnv(cfg *Config) error {
	var legacy legacyConfig
	if err := env.Parse(&legacy); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}
	if err := legacy.apply(cfg); err != nil {
		return err
	}

	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix: envPrefix,
	}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}

	return nil
}

// ParseEnv parses the config from the environment variables.
// It does not validate the config.
func (c *Config) ParseEnv() error {
	return parseEnv(c)
}

// Parse parses the config from the default file path, when it exists, and
// the environment variables, then validates it.
func (c *Config) Parse() error {
	if c.Exist() {
		if err := c.ParseFile(); err != nil {
			return err
		}
	}

	if err := c.ParseEnv(); err != nil {
		return err
	}

	return c.Validate()
}

// writeConfig writes the configuration to the given file.
func writeConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(newConfigFile(cfg)), 0o600) // nolint: errcheck, gosec
}

// WriteConfig writes the configuration to the default file.
func (c *Config) WriteConfig() error {
	return writeConfig(c, c.ConfigPath())
}

// DefaultDataPath returns the path to the data directory.
// It uses the SOFT_LFS_DATA_PATH environment variable if set, otherwise it
// uses "data".
func DefaultDataPath() string {
	dp := os.Getenv(envPrefix + "DATA_PATH")
	if dp == "" {
		dp = "data"
	}

	return dp
}

// ConfigPath returns the path to the config file.
func (c *Config) ConfigPath() string { // nolint:revive
	return filepath.Join(c.DataPath, "config.yaml")
}

func exist(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Exist returns true if the config file exists.
func (c *Config) Exist() bool {
	return exist(c.ConfigPath())
}

// DefaultConfig returns the default Config. All the path values are relative
// to the data directory.
// Use Validate() to validate the config and ensure absolute paths.
func DefaultConfig() *Config {
	return &Config{
		Name:     "Soft LFS",
		DataPath: DefaultDataPath(),
		HTTP: HTTPConfig{
			ListenAddr: ":8080",
		},
		Stats: StatsConfig{
			Enabled:    true,
			ListenAddr: "localhost:8081",
		},
		Log: LogConfig{
			Format:     "text",
			TimeFormat: time.DateTime,
		},
		LFS: LFSConfig{
			AnonymousOperations: []string{},
			Expires:             3600,
		},
		Identity: IdentityConfig{
			Provider: ProviderCognito,
		},
		DB: DBConfig{
			Driver: "sqlite",
			DataSource: "soft-lfs.db" +
				"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		},
	}
}

// Validation errors.
var (
	ErrNilConfig           = errors.New("nil config")
	ErrMissingBucket       = errors.New("storage bucket is required")
	ErrInvalidExpires      = errors.New("lfs expires must be a positive number of seconds")
	ErrInvalidOperation    = errors.New("invalid anonymous operation")
	ErrMissingCognito      = errors.New("cognito identity provider requires user pool id, client id and client secret")
	ErrMissingDatabase     = errors.New("database identity provider requires a db driver and data source")
	ErrUnknownProvider     = errors.New("unknown identity provider")
	ErrIncompleteStaticKey = errors.New("storage access key id and secret access key must be set together")
)

// Validate validates the configuration.
// It updates the configuration with absolute paths and a normalized list of
// anonymous operations.
func (c *Config) Validate() error {
	if err := c.ResolvePaths(); err != nil {
		return err
	}

	ops := make([]string, 0, len(c.LFS.AnonymousOperations))
	for _, op := range c.LFS.AnonymousOperations {
		op = strings.TrimSpace(op)
		if op == "" {
			continue
		}
		if !lfs.IsOperation(op) {
			return fmt.Errorf("%w: %q", ErrInvalidOperation, op)
		}
		ops = append(ops, op)
	}
	c.LFS.AnonymousOperations = ops

	if c.LFS.Expires <= 0 {
		return ErrInvalidExpires
	}

	if c.Storage.Bucket == "" {
		return ErrMissingBucket
	}

	if (c.Storage.AccessKeyID == "") != (c.Storage.SecretAccessKey == "") {
		return ErrIncompleteStaticKey
	}

	switch c.Identity.Provider {
	case ProviderCognito:
		if c.Identity.UserPoolID == "" || c.Identity.ClientID == "" || c.Identity.ClientSecret == "" {
			return ErrMissingCognito
		}
	case ProviderDatabase:
		if c.DB.Driver == "" || c.DB.DataSource == "" {
			return ErrMissingDatabase
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Identity.Provider)
	}

	return nil
}

// ResolvePaths makes the data path absolute and resolves the TLS paths and a
// sqlite data source relative to it.
func (c *Config) ResolvePaths() error {
	if !filepath.IsAbs(c.DataPath) {
		dp, err := filepath.Abs(c.DataPath)
		if err != nil {
			return err
		}
		c.DataPath = dp
	}

	if c.HTTP.TLSKeyPath != "" && !filepath.IsAbs(c.HTTP.TLSKeyPath) {
		c.HTTP.TLSKeyPath = filepath.Join(c.DataPath, c.HTTP.TLSKeyPath)
	}

	if c.HTTP.TLSCertPath != "" && !filepath.IsAbs(c.HTTP.TLSCertPath) {
		c.HTTP.TLSCertPath = filepath.Join(c.DataPath, c.HTTP.TLSCertPath)
	}

	if strings.HasPrefix(c.DB.Driver, "sqlite") && c.DB.DataSource != "" && !filepath.IsAbs(c.DB.DataSource) {
		c.DB.DataSource = filepath.Join(c.DataPath, c.DB.DataSource)
	}
	return nil
}
