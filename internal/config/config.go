// Package config loads the connection and path settings shared by the tool
// server and the CLI. A Config is read once per process and never mutated.
package config

import (
	"net"
	"strconv"
	"time"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// APT_ANALYSIS_JUMPER_HOST or APT_ANALYSIS_TARGET_WORKDIR.
const EnvPrefix = "APT_ANALYSIS"

// Endpoint describes one SSH hop.
type Endpoint struct {
	Host       string `mapstructure:"host" validate:"required"`
	Port       int    `mapstructure:"port" validate:"min=1,max=65535"`
	User       string `mapstructure:"user" validate:"required"`
	Key        string `mapstructure:"key" validate:"required"`
	Passphrase string `mapstructure:"passphrase"`
}

// Addr returns host:port suitable for dialing.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Target is the storage host that holds the sample files. It is only ever
// reached through the jumper.
type Target struct {
	Endpoint `mapstructure:",squash"`

	// Workdir is the remote directory where samples are stored, one file per
	// SHA256 named by the hash itself.
	Workdir string `mapstructure:"workdir" validate:"required"`

	// CollectCommand, when set, runs inside Workdir before retrieval with the
	// requested hashes uploaded to HashListFile.
	CollectCommand string        `mapstructure:"collect_command"`
	HashListFile   string        `mapstructure:"hash_list_file" validate:"required_with=CollectCommand,excludesall=/"`
	CollectTimeout time.Duration `mapstructure:"collect_timeout" validate:"min=0"`
	Cleanup        bool          `mapstructure:"cleanup"`
}

// Config is the process-wide configuration.
type Config struct {
	Jumper Endpoint `mapstructure:"jumper"`
	Target Target   `mapstructure:"target"`

	LocalDownloadDir    string `mapstructure:"local_download_dir" validate:"required"`
	RuleHashMappingFile string `mapstructure:"rule_hash_mapping_file"`

	KnownHosts    string        `mapstructure:"known_hosts" validate:"required_if=StrictHostKey true"`
	StrictHostKey bool          `mapstructure:"strict_host_key"`
	UseAgent      bool          `mapstructure:"use_agent"`
	ConnTimeout   time.Duration `mapstructure:"conn_timeout" validate:"min=0"`

	// Source is the file the configuration was read from, empty when it was
	// assembled from defaults and environment only.
	Source string `mapstructure:"-"`
}
