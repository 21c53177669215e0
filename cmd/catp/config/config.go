// Package config loads catp settings from a YAML file and validates them
// once command line flags are applied.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/criyle/go-catp/pkg/log"
	"github.com/criyle/go-catp/pkg/remote"
)

// Config is the file form of the command line options
type Config struct {
	// FDs are the mirrored target descriptors
	FDs []int `yaml:"fds"`
	// Sinks bind a descriptor to a local file instead of stdout / stderr
	Sinks map[int]string `yaml:"sinks"`
	// Verbose enables debug diagnostics
	Verbose bool `yaml:"verbose"`
	// LogFormat is auto, text or json
	LogFormat string `yaml:"log_format"`
	// Reader is vm (process_vm_readv) or peek (PTRACE_PEEKDATA)
	Reader string `yaml:"reader"`
	// Resync realigns desynchronized syscall stops instead of failing
	Resync bool `yaml:"resync"`
}

// Default returns the settings used without a config file
func Default() *Config {
	return &Config{
		FDs:       []int{1},
		LogFormat: log.FormatAuto,
		Reader:    remote.NameVM,
	}
}

// Load reads the YAML file at path over the defaults. Keys absent from the
// file keep their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return cfg, nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if len(c.FDs) == 0 {
		return fmt.Errorf("no descriptor selected")
	}
	selected := make(map[int]bool, len(c.FDs))
	for _, fd := range c.FDs {
		if fd < 0 {
			return fmt.Errorf("invalid descriptor %d", fd)
		}
		selected[fd] = true
	}
	for _, fd := range c.SinkDescriptors() {
		if !selected[fd] {
			return fmt.Errorf("sink for descriptor %d which is not mirrored", fd)
		}
		if c.Sinks[fd] == "" {
			return fmt.Errorf("empty sink path for descriptor %d", fd)
		}
	}
	if !log.ValidFormat(c.LogFormat) {
		return fmt.Errorf("invalid log format %q: must be auto, text or json", c.LogFormat)
	}
	switch c.Reader {
	case "", remote.NameVM, remote.NamePeek:
	default:
		return fmt.Errorf("invalid reader %q: must be %s or %s", c.Reader, remote.NameVM, remote.NamePeek)
	}
	return nil
}

// SinkDescriptors returns the descriptors with a file sink in ascending order
func (c *Config) SinkDescriptors() []int {
	rt := make([]int, 0, len(c.Sinks))
	for fd := range c.Sinks {
		rt = append(rt, fd)
	}
	sort.Ints(rt)
	return rt
}

// ParseSink parses the FD=PATH form of --sink
func ParseSink(s string) (int, string, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || v == "" {
		return 0, "", fmt.Errorf("invalid sink %q: expected FD=PATH", s)
	}
	fd, err := strconv.Atoi(strings.TrimSpace(k))
	if err != nil || fd < 0 {
		return 0, "", fmt.Errorf("invalid sink %q: bad descriptor %q", s, k)
	}
	return fd, v, nil
}

// AddSink binds descriptor fd to the file at path
func (c *Config) AddSink(fd int, path string) {
	if c.Sinks == nil {
		c.Sinks = make(map[int]string)
	}
	c.Sinks[fd] = path
}
