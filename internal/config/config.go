package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/wiredhikari/eix/internal/cache"
	"github.com/wiredhikari/eix/internal/storage"
)

// EnvPrefix is prepended to every environment override (EIX_TREE_PORTDIR, ...)
const EnvPrefix = "EIX"

// ConfigFileEnv names a YAML config file when --config is not given
const ConfigFileEnv = "EIX_CONFIG_FILE"

// Config holds all configuration for indexing, querying and serving
type Config struct {
	Tree      TreeConfig        `mapstructure:"tree"`
	Cache     CacheConfig       `mapstructure:"cache"`
	Profile   ProfileConfig     `mapstructure:"profile"`
	Scan      ScanConfig        `mapstructure:"scan"`
	Storage   StorageConfig     `mapstructure:"storage"`
	Server    ServerConfig      `mapstructure:"server"`
	Auth      AuthConfig        `mapstructure:"auth"`
	Logging   LoggingConfig     `mapstructure:"logging"`
	Redundant map[string]string `mapstructure:"redundant"`
}

// TreeConfig names the trees to scan. Overlays get ids 1..n in order.
type TreeConfig struct {
	Portdir        string   `mapstructure:"portdir"`
	Overlays       []string `mapstructure:"overlays"`
	Arch           string   `mapstructure:"arch"`
	AcceptKeywords []string `mapstructure:"accept_keywords"`
}

// CacheConfig selects the metadata cache layout
type CacheConfig struct {
	Method string `mapstructure:"method"` // flat | md5-dict
	Dir    string `mapstructure:"dir"`    // relative to each tree
}

// ProfileConfig lists the mask and system files applied to every version
type ProfileConfig struct {
	MaskFiles     []string `mapstructure:"mask_files"`
	PackagesFiles []string `mapstructure:"packages_files"`
}

// ScanConfig tunes the tree scan
type ScanConfig struct {
	Workers int `mapstructure:"workers"`
}

// StorageConfig holds storage configuration (URI-based)
type StorageConfig struct {
	URI   string `mapstructure:"uri"`   // Storage URI (e.g., file:///var/cache/eix/index.json)
	Token string `mapstructure:"token"` // Opaque token for storage authentication
}

// ServerConfig holds query API configuration
type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	Host      string `mapstructure:"host"`
	RateLimit int    `mapstructure:"rate_limit"` // requests per minute per client, 0 disables
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Type      string `mapstructure:"type"`       // none | basic
	UsersFile string `mapstructure:"users_file"` // for basic auth
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // json | text
}

// Option types as printed by "eix config --defaults"
const (
	TypeString  = "STRING"
	TypeInteger = "INTEGER"
	TypeBoolean = "BOOLEAN"
	TypeList    = "LIST"
)

// Option is one documented configuration key
type Option struct {
	Key         string
	Type        string
	Default     any
	Description string
}

func options() []Option {
	opts := []Option{
		{"tree.portdir", TypeString, "/var/db/repos/gentoo", "Primary tree, overlay id 0"},
		{"tree.overlays", TypeList, []string{}, "Overlay trees, ids 1..n in this order"},
		{"tree.arch", TypeString, "amd64", "Architecture keyword used for stability"},
		{"tree.accept_keywords", TypeList, []string{}, "Extra keywords accepted as stable (~amd64, *, ~*, **)"},
		{"cache.method", TypeString, cache.MethodMD5Dict, "Metadata cache layout: flat or md5-dict"},
		{"cache.dir", TypeString, "metadata/md5-cache", "Cache directory relative to each tree"},
		{"profile.mask_files", TypeList, []string{"/var/db/repos/gentoo/profiles/package.mask", "/etc/portage/package.mask"}, "package.mask files; missing files are skipped"},
		{"profile.packages_files", TypeList, []string{"/var/db/repos/gentoo/profiles/base/packages"}, "packages files whose * entries form the system set"},
		{"scan.workers", TypeInteger, runtime.NumCPU(), "Packages scanned in parallel"},
		{"storage.uri", TypeString, "file:///var/cache/eix/index.json", "Index location: file://, s3://, s3+http:// or oci://"},
		{"storage.token", TypeString, "", "Credentials for s3 (ACCESS:SECRET) or oci (user:password or bearer token)"},
		{"server.host", TypeString, "0.0.0.0", "Query API listen address"},
		{"server.port", TypeInteger, 8080, "Query API listen port"},
		{"server.rate_limit", TypeInteger, 100, "Requests per minute per client IP; 0 disables"},
		{"auth.type", TypeString, "none", "Query API authentication: none or basic"},
		{"auth.users_file", TypeString, "./users.yaml", "bcrypt users file for basic auth"},
		{"logging.level", TypeString, "info", "debug, info, warn or error"},
		{"logging.format", TypeString, "json", "json or text"},
	}
	for _, r := range RedundancyTypes {
		opts = append(opts, Option{"redundant." + r.Key, TypeString, r.Default, r.Description})
	}
	return opts
}

// Defaults returns every documented option with its default value
func Defaults() []Option {
	return options()
}

// NewViper creates a new viper instance with defaults and environment binding
func NewViper() *viper.Viper {
	v := viper.New()

	for _, o := range options() {
		v.SetDefault(o.Key, o.Default)
	}

	// Bind environment variables with EIX_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// ReadConfigFile merges a YAML config file into v. An empty path falls back to
// $EIX_CONFIG_FILE; no file at all is not an error.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from an optional file, environment variables and defaults
func Load(configFile string) (*Config, error) {
	v := NewViper()
	if err := ReadConfigFile(v, configFile); err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// LoadWithViper loads configuration using a pre-configured viper instance
// This allows CLI flags to be bound before loading
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Tree.Portdir == "" {
		return fmt.Errorf("tree.portdir is required")
	}
	if c.Tree.Arch == "" {
		return fmt.Errorf("tree.arch is required")
	}

	if _, err := cache.NewReader(c.Cache.Method); err != nil {
		return fmt.Errorf("cache.method: %w", err)
	}

	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be at least 1")
	}

	// Validate server config
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}

	// Validate storage URI
	_, err := storage.ParseStorageURI(c.Storage.URI)
	if err != nil {
		return fmt.Errorf("invalid storage URI: %w", err)
	}

	// Validate auth type
	if c.Auth.Type != "none" && c.Auth.Type != "basic" {
		return fmt.Errorf("auth.type must be 'none' or 'basic'")
	}

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn, or error")
	}

	// Validate logging format
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be json or text")
	}

	return nil
}

// GetParsedStorageURI returns the parsed storage URI
func (c *Config) GetParsedStorageURI() (*storage.StorageURI, error) {
	return storage.ParseStorageURI(c.Storage.URI)
}

// MaskToken returns a masked version of the storage token for logging
func (c *Config) MaskToken() string {
	if c.Storage.Token == "" {
		return ""
	}
	return "***"
}
