//go:build !tinygo

package commands

import (
	"errors"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"wiohid/app"
)

// loadConfig resolves app.Config from defaults, a .wiohid.yaml file in the
// home or working directory, WIOHID_* environment variables and flags,
// later sources winning. An explicit path skips the search.
func loadConfig(path string, flags *pflag.FlagSet) (app.Config, error) {
	v := viper.New()
	def := app.DefaultConfig()
	v.SetDefault("cpu_hz", def.CPUHz)
	v.SetDefault("settle_window", def.SettleWindow)
	v.SetDefault("dispatch_capacity", def.DispatchCapacity)
	v.SetDefault("print_capacity", def.PrintCapacity)
	v.SetDefault("banner", def.Banner)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix("WIOHID")
	v.AutomaticEnv()

	if path != "" {
		p, err := homedir.Expand(path)
		if err != nil {
			return app.Config{}, err
		}
		v.SetConfigFile(p)
	} else {
		v.SetConfigName(".wiohid") // .yaml is implicit
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return app.Config{}, err
		}
	}

	if flags != nil {
		for key, name := range map[string]string{
			"settle_window": "settle",
			"log_level":     "log-level",
		} {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return app.Config{}, err
				}
			}
		}
		if f := flags.Lookup("no-banner"); f != nil && f.Changed {
			v.Set("banner", f.Value.String() != "true")
		}
	}

	var cfg app.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

// configPath is the file loadConfig reads by default.
func configPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".wiohid.yaml"
	}
	return filepath.Join(home, ".wiohid.yaml")
}
