package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load("")
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	cfg := validConfig(t)

	assert.Equal(t, "/var/db/repos/gentoo", cfg.Tree.Portdir)
	assert.Equal(t, "amd64", cfg.Tree.Arch)
	assert.Empty(t, cfg.Tree.Overlays)
	assert.Equal(t, "md5-dict", cfg.Cache.Method)
	assert.Equal(t, "metadata/md5-cache", cfg.Cache.Dir)
	assert.GreaterOrEqual(t, cfg.Scan.Workers, 1)
	assert.Equal(t, "file:///var/cache/eix/index.json", cfg.Storage.URI)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Server.RateLimit)
	assert.Equal(t, "none", cfg.Auth.Type)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "some", cfg.Redundant["double"])
	assert.Equal(t, "all-installed", cfg.Redundant["weaker"])
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("EIX_TREE_ARCH", "arm64")
	t.Setenv("EIX_TREE_OVERLAYS", "/var/db/repos/guru,/var/db/repos/local")
	t.Setenv("EIX_CACHE_METHOD", "flat")
	t.Setenv("EIX_SCAN_WORKERS", "3")
	t.Setenv("EIX_STORAGE_URI", "oci://ghcr.io/gentoo/eix-index")
	t.Setenv("EIX_REDUNDANT_MIXED", "no")

	cfg := validConfig(t)
	assert.Equal(t, "arm64", cfg.Tree.Arch)
	assert.Equal(t, []string{"/var/db/repos/guru", "/var/db/repos/local"}, cfg.Tree.Overlays)
	assert.Equal(t, "flat", cfg.Cache.Method)
	assert.Equal(t, 3, cfg.Scan.Workers)
	assert.Equal(t, "oci://ghcr.io/gentoo/eix-index", cfg.Storage.URI)
	assert.Equal(t, "no", cfg.Redundant["mixed"])
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eix.yaml")
	content := `tree:
  portdir: /srv/gentoo
  overlays:
    - /srv/guru
  accept_keywords: ["~amd64"]
cache:
  method: flat
  dir: metadata/cache
logging:
  level: debug
redundant:
  weaker: some-uninstalled
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Run("explicit path", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/srv/gentoo", cfg.Tree.Portdir)
		assert.Equal(t, []string{"/srv/guru"}, cfg.Tree.Overlays)
		assert.Equal(t, []string{"~amd64"}, cfg.Tree.AcceptKeywords)
		assert.Equal(t, "metadata/cache", cfg.Cache.Dir)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "some-uninstalled", cfg.Redundant["weaker"])
		assert.Equal(t, "some", cfg.Redundant["double"], "unset keys keep defaults")
	})

	t.Run("environment path", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, path)
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "/srv/gentoo", cfg.Tree.Portdir)
	})

	t.Run("environment beats file", func(t *testing.T) {
		t.Setenv("EIX_TREE_PORTDIR", "/other")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/other", cfg.Tree.Portdir)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"no portdir", func(c *Config) { c.Tree.Portdir = "" }, "tree.portdir is required"},
		{"no arch", func(c *Config) { c.Tree.Arch = "" }, "tree.arch is required"},
		{"bad cache method", func(c *Config) { c.Cache.Method = "sqlite" }, "cache.method"},
		{"zero workers", func(c *Config) { c.Scan.Workers = 0 }, "scan.workers"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -1 }, "server.rate_limit"},
		{"empty storage", func(c *Config) { c.Storage.URI = "" }, "cannot be empty"},
		{"bad storage scheme", func(c *Config) { c.Storage.URI = "ftp://host/x" }, "unsupported storage scheme"},
		{"bad auth", func(c *Config) { c.Auth.Type = "jwt" }, "auth.type"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_StorageSchemes(t *testing.T) {
	for _, uri := range []string{
		"./index.json",
		"file:///var/cache/eix/index.json",
		"s3://s3.amazonaws.com/eix/index.json",
		"s3+http://localhost:9000/eix/index.json",
		"oci://ghcr.io/gentoo/eix-index:amd64",
	} {
		t.Run(uri, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.Storage.URI = uri
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", (&Config{}).MaskToken())
	assert.Equal(t, "***", (&Config{Storage: StorageConfig{Token: "AKIA:secret"}}).MaskToken())
}

func TestDefaults_DocumentsEveryKey(t *testing.T) {
	keys := make(map[string]Option)
	for _, o := range Defaults() {
		keys[o.Key] = o
		assert.NotEmpty(t, o.Description, o.Key)
		assert.Contains(t, []string{TypeString, TypeInteger, TypeBoolean, TypeList}, o.Type, o.Key)
	}
	for _, key := range []string{"tree.portdir", "cache.method", "storage.uri", "redundant.double_unmasked"} {
		assert.Contains(t, keys, key)
	}
	assert.Len(t, Defaults(), len(options()))
}

func TestRedundantFlags_Apply(t *testing.T) {
	tests := []struct {
		value  string
		policy string
		known  bool
	}{
		{"no", "no", true},
		{"false", "no", true},
		{"some", "some", true},
		{"SOME-Installed", "some-installed", true},
		{"some-uninstalled", "some-uninstalled", true},
		{"all", "all", true},
		{"all-installed", "all-installed", true},
		{"all-uninstalled", "all-uninstalled", true},
		{"bogus", "all-installed", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			var f RedundantFlags
			assert.Equal(t, tt.known, f.Apply(tt.value, RedMixed))
			assert.Equal(t, tt.policy, f.Policy(RedMixed))
			assert.Equal(t, "no", f.Policy(RedDouble), "other bits untouched")
		})
	}
}

func TestRedundantFlags_ApplyOverrides(t *testing.T) {
	var f RedundantFlags
	f.Apply("all-installed", RedWeaker)
	f.Apply("some-uninstalled", RedWeaker)
	assert.Equal(t, "some-uninstalled", f.Policy(RedWeaker))
	f.Apply("no", RedWeaker)
	assert.Equal(t, "no", f.Policy(RedWeaker))
}

func TestConfig_RedundantFlags(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &Config{Redundant: map[string]string{"mixed": "no", "strange": "whatever"}}
	f := cfg.RedundantFlags(logger)

	assert.Equal(t, "no", f.Policy(RedMixed))
	assert.Equal(t, "all-installed", f.Policy(RedStrange))
	assert.Equal(t, "some", f.Policy(RedDouble))
	assert.Equal(t, "all-installed", f.Policy(RedNoChange))
	assert.Contains(t, buf.String(), "redundant.strange")
	assert.NotContains(t, buf.String(), "redundant.mixed")
}
