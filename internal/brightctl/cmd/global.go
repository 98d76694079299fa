package cmd

import (
	"github.com/spf13/pflag"
)

var globalConfigFile string

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&globalConfigFile,
		"config", "c",
		"",
		"Config file. Defaults to brightctl.yaml in ., ~/.brightchat or /etc/brightchat.")
}
