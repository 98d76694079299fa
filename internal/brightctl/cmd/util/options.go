package util

import (
	"errors"

	"github.com/spf13/pflag"

	genericoptions "github.com/kiosk404/brightchat/internal/pkg/options"
	"github.com/kiosk404/brightchat/pkg/utils/json"
)

// Options is the configuration shared by every brightctl command. It is
// filled from, in increasing precedence, defaults, the config file,
// BRIGHTCHAT_* env vars and persistent flags.
type Options struct {
	ClientOptions *genericoptions.ClientOptions `json:"client" mapstructure:"client"`
	StoreOptions  *genericoptions.StoreOptions  `json:"store"  mapstructure:"store"`
	LogOptions    *genericoptions.LogOptions    `json:"log"    mapstructure:"log"`
}

// NewOptions returns Options with default values.
func NewOptions() *Options {
	return &Options{
		ClientOptions: genericoptions.NewClientOptions(),
		StoreOptions:  genericoptions.NewStoreOptions(),
		LogOptions:    genericoptions.NewLogOptions(),
	}
}

// AddFlags registers every option on fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.ClientOptions.AddFlags(fs)
	o.StoreOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
}

// Complete normalizes derived values.
func (o *Options) Complete() error {
	o.ClientOptions.Complete()
	return nil
}

// Validate checks all options and joins the problems into one error.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.ClientOptions.Validate()...)
	errs = append(errs, o.StoreOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	return errors.Join(errs...)
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)
	return string(data)
}
