package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kiosk404/brightchat/pkg/logger"
)

const (
	configFlagName = "config"
	envPrefix      = "BRIGHTCHAT"
)

var cfgFile string

func addConfigFlag(fs *pflag.FlagSet) {
	fs.AddFlag(pflag.Lookup(configFlagName))
}

func init() {
	pflag.StringVarP(&cfgFile, configFlagName, "c", cfgFile, "Read configuration from specified `FILE`, "+
		"support JSON, TOML, YAML, HCL, or Java properties formats.")
}

// LoadConfig reads cfg, or <basename>.yaml from the working directory,
// $HOME/.brightchat and /etc/brightchat when cfg is empty. Environment
// variables prefixed with BRIGHTCHAT_ override file values: the key
// client.server-addr is read from BRIGHTCHAT_CLIENT_SERVER_ADDR.
//
// A missing default config file is not an error.
func LoadConfig(cfg string, basename string) error {
	if cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".brightchat"))
		}
		viper.AddConfigPath("/etc/brightchat")
		viper.SetConfigName(basename)
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfg == "" {
			logger.Debug("[Config] no %s config file found, using flags and environment", basename)
			return nil
		}
		return fmt.Errorf("failed to read configuration file(%s): %w", cfg, err)
	}
	logger.Debug("[Config] using config file %s", viper.ConfigFileUsed())
	return nil
}

func loadConfig(basename string) error {
	return LoadConfig(cfgFile, basename)
}
