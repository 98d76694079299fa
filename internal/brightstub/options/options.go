// Package options holds the command line options of brightstub.
package options

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	genericoptions "github.com/kiosk404/brightchat/internal/pkg/options"
	"github.com/kiosk404/brightchat/pkg/utils/cliflag"
	"github.com/kiosk404/brightchat/pkg/utils/json"
)

// ScenarioOptions points brightstub at its scripted agents.
type ScenarioOptions struct {
	Dir string `json:"dir" mapstructure:"dir"`
	// Watch reloads scenarios when files in Dir change.
	Watch bool `json:"watch" mapstructure:"watch"`
	// Delay overrides the per scenario delay between frames when positive.
	Delay time.Duration `json:"delay" mapstructure:"delay"`
}

func (o *ScenarioOptions) Validate() []error {
	var errs []error
	if o.Dir == "" {
		errs = append(errs, fmt.Errorf("--scenario.dir is required"))
	} else if info, err := os.Stat(o.Dir); err != nil {
		errs = append(errs, fmt.Errorf("--scenario.dir: %w", err))
	} else if !info.IsDir() {
		errs = append(errs, fmt.Errorf("--scenario.dir %q is not a directory", o.Dir))
	}
	if o.Delay < 0 {
		errs = append(errs, fmt.Errorf("--scenario.delay must not be negative"))
	}
	return errs
}

func (o *ScenarioOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Dir, "scenario.dir", o.Dir, "Directory of scenario *.json files.")
	fs.BoolVar(&o.Watch, "scenario.watch", o.Watch, "Reload scenarios when the directory changes.")
	fs.DurationVar(&o.Delay, "scenario.delay", o.Delay, "Delay between frames, overriding each scenario's delay_ms.")
}

// AuthOptions configures bearer authentication.
type AuthOptions struct {
	Token      string `json:"-"           mapstructure:"token"`
	AllowLocal bool   `json:"allow-local" mapstructure:"allow-local"`
}

func (o *AuthOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Token, "auth.token", o.Token, "Bearer token required from clients. Empty disables authentication.")
	fs.BoolVar(&o.AllowLocal, "auth.allow-local", o.AllowLocal, "Let loopback clients through without a token.")
}

// Options is the full brightstub configuration.
type Options struct {
	ServerRunOptions *genericoptions.ServerRunOptions `json:"server"   mapstructure:"server"`
	ScenarioOptions  *ScenarioOptions                `json:"scenario" mapstructure:"scenario"`
	AuthOptions      *AuthOptions                    `json:"auth"     mapstructure:"auth"`
	LogOptions       *genericoptions.LogOptions      `json:"log"      mapstructure:"log"`
}

// NewOptions returns Options with default values.
func NewOptions() *Options {
	log := genericoptions.NewLogOptions()
	log.Level = "info"
	return &Options{
		ServerRunOptions: genericoptions.NewServerRunOptions(),
		ScenarioOptions:  &ScenarioOptions{Dir: "configs/scenarios", Watch: true},
		AuthOptions:      &AuthOptions{AllowLocal: true},
		LogOptions:       log,
	}
}

func (o *Options) Flags() (fss cliflag.NamedFlagSets) {
	o.ServerRunOptions.AddFlags(fss.FlagSet("server"))
	o.ScenarioOptions.AddFlags(fss.FlagSet("scenario"))
	o.AuthOptions.AddFlags(fss.FlagSet("auth"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *Options) Validate() []error {
	var errs []error
	errs = append(errs, o.ServerRunOptions.Validate()...)
	errs = append(errs, o.ScenarioOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	return errs
}

// Complete fills the token from BRIGHTSTUB_TOKEN when no flag set it.
func (o *Options) Complete() error {
	if o.AuthOptions.Token == "" {
		o.AuthOptions.Token = os.Getenv("BRIGHTSTUB_TOKEN")
	}
	return nil
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)
	return string(data)
}
