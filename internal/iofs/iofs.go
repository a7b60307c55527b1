// Package iofs prepares directories and files used by fim: the user config,
// cache and log directories, and the layout of HUC and branch outputs.
package iofs

import (
	_ "embed"
	"os"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
	"gopkg.in/yaml.v3"
)

// RunConfigFile keeps the effective configuration of the last run in the
// output root.
const RunConfigFile = "fim_config.yaml"

//go:embed config.yaml
var ConfigYAML string

func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.CacheDir(homeDir),
		config.NetworkCacheDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

func EnsureConfigFile(homeDir string) error {
	configPath := config.ConfigFilePath(homeDir)

	// Check if config file already exists
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	if err := os.WriteFile(configPath, []byte(ConfigYAML), 0644); err != nil {
		return CopyFileError(configPath, err)
	}

	return nil
}

// WriteRunConfig saves cfg as YAML without the database password.
func WriteRunConfig(path string, cfg *config.Config) error {
	c := *cfg
	c.Database.Password = ""
	data, err := yaml.Marshal(&c)
	if err != nil {
		return WriteFileError(path, err)
	}
	if err = os.WriteFile(path, data, 0644); err != nil {
		return WriteFileError(path, err)
	}
	return nil
}
