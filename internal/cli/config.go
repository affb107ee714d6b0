package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/idelchi/rglob/internal/dirstat"
)

// Configuration keys. Flag names match their keys.
const (
	keyDepth            = "depth"
	keyFilter           = "filter"
	keyOutput           = "output"
	keyKeys             = "keys"
	keyOnError          = "on-error"
	keyDebug            = "debug"
	keyLogLevel         = "log-level"
	keyProgressInterval = "progress-interval"
)

// envPrefix prefixes environment overrides, e.g. RGLOB_DEPTH or RGLOB_ON_ERROR.
const envPrefix = "RGLOB"

// configGetter is the read side of the merged configuration.
type configGetter interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetDuration(key string) time.Duration
}

// loadConfig merges, in decreasing precedence, changed flags, RGLOB_*
// environment variables, the config file and defaults.
func loadConfig(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(keyDepth, dirstat.DefaultDepth)
	v.SetDefault(keyOutput, "json")
	v.SetDefault(keyKeys, string(dirstat.KeyByName))
	v.SetDefault(keyOnError, string(dirstat.Abort))
	v.SetDefault(keyDebug, false)
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyProgressInterval, dirstat.DefaultProgressInterval)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	path := configFile(cfgFile)
	if path == "" {
		return v, nil
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return v, nil
	}

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	return v, nil
}

// configFile returns the config file to use: fromFlag if set, else the first
// "*.yaml" file in an "rglob" directory under the XDG config paths or
// $HOME/.config, else $HOME/.rglob.yaml. It returns "" when no home directory
// can be determined.
func configFile(fromFlag string) string {
	if fromFlag != "" {
		return fromFlag
	}

	dirs := []string{os.Getenv("XDG_CONFIG_HOME")}
	dirs = append(dirs, filepath.SplitList(os.Getenv("XDG_CONFIG_DIRS"))...)

	home, err := homedir.Dir()
	if err == nil {
		dirs = append(dirs, filepath.Join(home, ".config"))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}

		if file := findInPath(dir); file != "" {
			return file
		}
	}

	if home == "" {
		return ""
	}

	return filepath.Join(home, ".rglob.yaml")
}

// findInPath returns the first "*.yaml" file in dir's "rglob" subdirectory,
// or "" if there is none.
func findInPath(dir string) string {
	directory := filepath.Join(dir, "rglob")

	files, err := os.ReadDir(directory)
	if err != nil {
		return ""
	}

	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".yaml" {
			return filepath.Join(directory, file.Name())
		}
	}

	return ""
}
