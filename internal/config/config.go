package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Default per-category product-code prefixes for the shop's categories.
var defaultPrefixes = map[string]string{
	"النگو":   "L",
	"گوشواره": "G",
	"دستبند":  "D",
	"گردنبند": "N",
	"انگشتر":  "R",
	"پلاک":    "P",
	"پارسیان": "PS",
	"زنجیر":   "Z",
	"شمش":     "SH",
	"سکه":     "S",
	"متفرقه":  "M",
	"ابشده":   "A",
}

type Operator struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

type Config struct {
	DataDir     string            `mapstructure:"data_dir"`
	ListenAddr  string            `mapstructure:"listen_addr"`
	JWTSecret   string            `mapstructure:"jwt_secret"`
	JWTTTLHours int               `mapstructure:"jwt_ttl_hours"`
	Operator    Operator          `mapstructure:"operator"`
	PurgeMonths int               `mapstructure:"purge_months"`
	SearchLimit int               `mapstructure:"search_limit"`
	Prefixes    map[string]string `mapstructure:"prefixes"`
	LogPretty   bool              `mapstructure:"log_pretty"`
}

// Load reads goldshop.yaml from path (or the working directory when path
// is empty), applying defaults and GOLDSHOP_* environment overrides. A
// missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("data_dir", "gold_app_data")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_ttl_hours", 24)
	v.SetDefault("operator.username", "admin")
	v.SetDefault("operator.password_hash", "")
	v.SetDefault("purge_months", 3)
	v.SetDefault("search_limit", 100)
	v.SetDefault("log_pretty", true)

	v.SetConfigName("goldshop")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.SetEnvPrefix("GOLDSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if len(cfg.Prefixes) == 0 {
		cfg.Prefixes = defaultPrefixes
	}
	return cfg, nil
}

// CodePrefix returns the product-code prefix for a category, falling back
// to "X" for unknown categories.
func (c *Config) CodePrefix(category string) string {
	if p, ok := c.Prefixes[category]; ok {
		return p
	}
	return "X"
}

func (c *Config) DBPath() string      { return filepath.Join(c.DataDir, "goldshop.db") }
func (c *Config) ImagesDir() string   { return filepath.Join(c.DataDir, "images") }
func (c *Config) ThumbsDir() string   { return filepath.Join(c.DataDir, "thumbs") }
func (c *Config) SoldDir() string     { return filepath.Join(c.DataDir, "sold") }
func (c *Config) ExportsDir() string  { return filepath.Join(c.DataDir, "exports") }
func (c *Config) BackupsDir() string  { return filepath.Join(c.DataDir, "backups") }

// EnsureDirs creates the data directory tree.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{
		c.DataDir, c.ImagesDir(), c.ThumbsDir(),
		c.SoldDir(), c.ExportsDir(), c.BackupsDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
