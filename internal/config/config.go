// Package config resolves the compiler's fixed-capacity defaults (max
// tokens, max name-table entries, max total name bytes) from layered
// sources: CLI flags, then MONEYLANG_* environment variables, then a
// .moneylang.yaml file, then built-in defaults. Uses a fresh viper instance
// per invocation rather than the package-level default instance, so
// frontend and backend runs never share state.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Defaults match §6's documented fallback values.
const (
	DefaultMaxTokens           = 1024
	DefaultMaxNameTableEntries = 256
	DefaultMaxNamesTotalLength = 2048
)

// Capacities holds the resolved fixed-capacity values the lexer, AST arena,
// and name table are constructed with.
type Capacities struct {
	MaxTokens           int
	MaxNameTableEntries int
	MaxNamesTotalLength int
}

// Overrides carries flag-supplied values and whether each flag was actually
// set on the command line (so an unset flag at its zero value never shadows
// an env var or config file entry).
type Overrides struct {
	MaxTokens           int
	MaxTokensSet        bool
	MaxNameTableEntries int
	MaxEntriesSet       bool
	MaxNamesTotalLength int
	MaxNameBytesSet     bool
}

// Result is what Load resolves: the final capacities plus, for the startup
// log line, the config file actually read (empty if none was found).
type Result struct {
	Capacities
	ConfigFileUsed string
}

// Load builds a viper instance layered flags > env > file > defaults and
// resolves it into a Result. cfgFile overrides config discovery when
// non-empty; otherwise .moneylang.yaml is searched in the current directory
// and the user's home directory.
func Load(cfgFile string, o Overrides) (Result, error) {
	v := viper.New()
	v.SetEnvPrefix("MONEYLANG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("max-tokens", DefaultMaxTokens)
	v.SetDefault("max-name-entries", DefaultMaxNameTableEntries)
	v.SetDefault("max-name-bytes", DefaultMaxNamesTotalLength)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".moneylang")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Result{}, err
		}
	}

	res := Result{
		Capacities: Capacities{
			MaxTokens:           v.GetInt("max-tokens"),
			MaxNameTableEntries: v.GetInt("max-name-entries"),
			MaxNamesTotalLength: v.GetInt("max-name-bytes"),
		},
	}
	if used := v.ConfigFileUsed(); used != "" {
		if abs, err := filepath.Abs(used); err == nil {
			res.ConfigFileUsed = abs
		} else {
			res.ConfigFileUsed = used
		}
	}

	if o.MaxTokensSet {
		res.MaxTokens = o.MaxTokens
	}
	if o.MaxEntriesSet {
		res.MaxNameTableEntries = o.MaxNameTableEntries
	}
	if o.MaxNameBytesSet {
		res.MaxNamesTotalLength = o.MaxNamesTotalLength
	}
	return res, nil
}
