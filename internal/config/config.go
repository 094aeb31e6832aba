package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentx-labs/extkit/internal/branding"
	"github.com/agentx-labs/extkit/internal/manifest"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

const (
	// DefaultLanguage is used when install.language is not set.
	DefaultLanguage = "en_US"

	redactedValue = "***"
)

// HostSource locates the host application to fetch.
type HostSource struct {
	Repository string `json:"repository" yaml:"repository"`
	Branch     string `json:"branch" yaml:"branch"`
}

// Database holds the connection parameters handed to the host installer.
type Database struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Name     string `json:"dbname" yaml:"dbname"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Charset  string `json:"charset,omitempty" yaml:"charset,omitempty"`
}

// Install holds the parameters of the host's own installer.
type Install struct {
	SiteURL       string `json:"siteUrl" yaml:"siteUrl"`
	AdminUsername string `json:"adminUsername" yaml:"adminUsername"`
	AdminPassword string `json:"adminPassword" yaml:"adminPassword"`
	DefaultOwner  string `json:"defaultOwner" yaml:"defaultOwner"`
	DefaultGroup  string `json:"defaultGroup" yaml:"defaultGroup"`
	Language      string `json:"language" yaml:"language"`
}

// Config is the complete pipeline configuration. It is passed by value and
// never mutated after Load returns.
type Config struct {
	Host      HostSource      `json:"espocrm" yaml:"espocrm"`
	Database  Database        `json:"database" yaml:"database"`
	Install   Install         `json:"install" yaml:"install"`
	Extension manifest.Source `json:"extension" yaml:"extension"`
}

// LoadOptions selects the files Load reads.
type LoadOptions struct {
	ConfigFile    string
	ExtensionFile string
	PackageFile   string
	// Branch, when set, overrides espocrm.branch.
	Branch string
}

// keys lists every settings key so that environment overrides work even
// when the key is absent from the settings file.
var keys = []string{
	"espocrm.repository",
	"espocrm.branch",
	"database.host",
	"database.port",
	"database.dbname",
	"database.user",
	"database.password",
	"database.charset",
	"install.siteUrl",
	"install.adminUsername",
	"install.adminPassword",
	"install.defaultOwner",
	"install.defaultGroup",
	"install.language",
}

// Load reads and validates the configuration.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	v.SetConfigFile(opts.ConfigFile)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		v.SetDefault(key, "")
	}
	v.SetDefault("install.language", DefaultLanguage)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", opts.ConfigFile, err)
	}

	cfg := Config{
		Host: HostSource{
			Repository: v.GetString("espocrm.repository"),
			Branch:     v.GetString("espocrm.branch"),
		},
		Database: Database{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			Name:     v.GetString("database.dbname"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			Charset:  v.GetString("database.charset"),
		},
		Install: Install{
			SiteURL:       v.GetString("install.siteUrl"),
			AdminUsername: v.GetString("install.adminUsername"),
			AdminPassword: v.GetString("install.adminPassword"),
			DefaultOwner:  v.GetString("install.defaultOwner"),
			DefaultGroup:  v.GetString("install.defaultGroup"),
			Language:      v.GetString("install.language"),
		},
	}
	if opts.Branch != "" {
		cfg.Host.Branch = opts.Branch
	}

	src, err := manifest.LoadSource(opts.ExtensionFile)
	if err != nil {
		return Config{}, err
	}
	version, err := manifest.LoadVersion(opts.PackageFile)
	if err != nil {
		return Config{}, err
	}
	src.Version = version
	cfg.Extension = src

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings every stage relies on.
func (c Config) Validate() error {
	var errs []error
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}

	require("espocrm.repository", c.Host.Repository)
	require("espocrm.branch", c.Host.Branch)
	require("database.host", c.Database.Host)
	require("database.dbname", c.Database.Name)
	require("database.user", c.Database.User)

	if c.Database.Port < 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Errorf("database.port %d out of range", c.Database.Port))
	}
	if _, err := ParseLanguage(c.Install.Language); err != nil {
		errs = append(errs, err)
	}
	if c.Install.DefaultGroup != "" && c.Install.DefaultOwner == "" {
		errs = append(errs, errors.New("install.defaultGroup requires install.defaultOwner"))
	}
	return errors.Join(errs...)
}

// ParseLanguage parses an installer language such as "en_US" or "pt-BR".
func ParseLanguage(lang string) (language.Tag, error) {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("install.language %q: %w", lang, err)
	}
	return tag, nil
}

// Redacted returns a copy of c with passwords masked, for display.
func (c Config) Redacted() Config {
	if c.Database.Password != "" {
		c.Database.Password = redactedValue
	}
	if c.Install.AdminPassword != "" {
		c.Install.AdminPassword = redactedValue
	}
	return c
}

// Secrets returns the values that must never appear in logs.
func (c Config) Secrets() []string {
	var out []string
	for _, s := range []string{c.Database.Password, c.Install.AdminPassword} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
