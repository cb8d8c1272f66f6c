package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var (
	ErrConfigMissing    = errors.New("config file is missing")
	ErrConfigUnreadable = errors.New("config file is unreadable")
	ErrConfigInvalid    = errors.New("config is invalid")
)

// DefaultName is the base name searched for in the working directory when no
// explicit config path is given.
const DefaultName = "config"

// SetDefaults registers every known key on v. Registering all leaves is what
// lets environment variables override nested keys when no file provides them.
func SetDefaults(v *viper.Viper) {
	for _, hop := range []string{"jumper", "target"} {
		v.SetDefault(hop+".host", "")
		v.SetDefault(hop+".port", 22)
		v.SetDefault(hop+".user", "")
		v.SetDefault(hop+".key", "")
		v.SetDefault(hop+".passphrase", "")
	}
	v.SetDefault("target.workdir", "")
	v.SetDefault("target.collect_command", "")
	v.SetDefault("target.hash_list_file", "hashList.txt")
	v.SetDefault("target.collect_timeout", 10*time.Minute)
	v.SetDefault("target.cleanup", true)

	v.SetDefault("local_download_dir", "/tmp/samples")
	v.SetDefault("rule_hash_mapping_file", "")
	v.SetDefault("known_hosts", filepath.Join("~", ".ssh", "known_hosts"))
	v.SetDefault("strict_host_key", true)
	v.SetDefault("use_agent", false)
	v.SetDefault("conn_timeout", 30*time.Second)
}

// Load reads the configuration into v and decodes it. When path is empty,
// config.{json,yaml,toml} is searched for in the working directory and its
// absence is not an error as long as the environment supplies every required
// key. An explicit path that does not exist is ErrConfigMissing.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// env-only configuration
		case errors.Is(err, os.ErrNotExist):
			return nil, errors.Wrap(ErrConfigMissing, path)
		default:
			return nil, errors.Wrapf(ErrConfigUnreadable, "%s: %v", v.ConfigFileUsed(), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(ErrConfigInvalid, "decode: %v", err)
	}
	cfg.Source = v.ConfigFileUsed()
	cfg.resolvePaths()

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePaths expands a leading ~ and anchors a relative mapping file to the
// directory of the config file, so the server behaves the same regardless of
// the directory an agent client launches it from.
func (c *Config) resolvePaths() {
	c.Jumper.Key = ExpandHome(c.Jumper.Key)
	c.Target.Key = ExpandHome(c.Target.Key)
	c.KnownHosts = ExpandHome(c.KnownHosts)
	c.LocalDownloadDir = ExpandHome(c.LocalDownloadDir)
	c.RuleHashMappingFile = ExpandHome(c.RuleHashMappingFile)

	if c.RuleHashMappingFile != "" && !filepath.IsAbs(c.RuleHashMappingFile) && c.Source != "" {
		c.RuleHashMappingFile = filepath.Join(filepath.Dir(c.Source), c.RuleHashMappingFile)
	}
}

// ExpandHome replaces a leading ~ with the current user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
