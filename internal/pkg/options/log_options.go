package options

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/kiosk404/brightchat/pkg/logger"
)

// LogOptions configures pkg/logger.
type LogOptions struct {
	Level string `json:"level" mapstructure:"level"`
	// File additionally receives every log line when not empty.
	File string `json:"file" mapstructure:"file"`
}

// NewLogOptions returns LogOptions with default values.
func NewLogOptions() *LogOptions {
	return &LogOptions{Level: "warn"}
}

func (o *LogOptions) Validate() []error {
	if _, err := logrus.ParseLevel(o.Level); err != nil {
		return []error{err}
	}
	return nil
}

func (o *LogOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Minimum log level: debug, info, warn or error.")
	fs.StringVar(&o.File, "log.file", o.File, "Also write logs to this file.")
}

// Apply configures the global logger.
func (o *LogOptions) Apply() error {
	if o.File != "" {
		if err := logger.InitLog(o.File); err != nil {
			return err
		}
	}
	return logger.SetLevel(o.Level)
}
