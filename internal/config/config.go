// Package config loads jcbuild settings and build description files.
//
// Settings (SDK home, work directory, verbosity) come from, in increasing
// priority: defaults, the settings file, the environment and command flags.
// Build descriptions are TOML or YAML files listing the packages to build.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/goplus/jcbuild/internal/env"
)

// Setting keys.
const (
	KeyJCHome  = "jc_home"
	KeyTmp     = "tmp"
	KeyVerbose = "verbose"
)

// SettingsFileName is the settings file looked up in the work directory.
const SettingsFileName = "config.toml"

// Settings are the tool-wide options of jcbuild.
type Settings struct {
	// JCHome is the SDK used when neither a package nor a build file names
	// one.
	JCHome string `mapstructure:"jc_home"`
	// Tmp is a fixed work directory. When set it is reused across builds
	// and never cleaned up.
	Tmp     string `mapstructure:"tmp"`
	Verbose bool   `mapstructure:"verbose"`
}

// New returns a viper instance with jcbuild defaults and environment
// bindings. Callers may bind command flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyJCHome, "")
	v.SetDefault(KeyTmp, "")
	v.SetDefault(KeyVerbose, false)

	_ = v.BindEnv(KeyJCHome, env.JCHomeVar)
	_ = v.BindEnv(KeyTmp, env.TmpVar, env.LegacyTmpVar)
	_ = v.BindEnv(KeyVerbose, "JCBUILD_VERBOSE")
	return v
}

// Load reads the settings file into v and returns the merged settings. An
// empty path looks for SettingsFileName in the work directory; a missing
// default file is not an error.
func Load(v *viper.Viper, path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		dir, err := env.WorkDir()
		if err == nil {
			path = filepath.Join(dir, SettingsFileName)
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat settings %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &s, nil
}
