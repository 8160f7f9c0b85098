package main

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// ToolConfigFile configures where the tool looks for product profiles.
// All fields are optional; flags take precedence over the file.
type ToolConfigFile struct {
	ProfileDirs    []string `toml:"profile_dirs"`
	DefaultProduct string   `toml:"default_product"`
	LocalOverride  string   `toml:"local_override"`
}

func defaultToolConfig() *ToolConfigFile {
	return &ToolConfigFile{
		ProfileDirs: []string{"/etc/installer/profiles.d", "/usr/share/installer/profiles.d"},
	}
}

// LoadToolConfig reads the TOML settings file at name. A missing file
// yields the defaults.
func LoadToolConfig(name string) (*ToolConfigFile, error) {
	c := defaultToolConfig()
	_, err := toml.DecodeFile(name, c)
	if os.IsNotExist(err) {
		return defaultToolConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func DumpToolConfig(c *ToolConfigFile, w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
