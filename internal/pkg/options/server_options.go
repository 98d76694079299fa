package options

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// ServerRunOptions configures an HTTP server.
type ServerRunOptions struct {
	BindAddress     string        `json:"bind-address"     mapstructure:"bind-address"`
	BindPort        int           `json:"bind-port"        mapstructure:"bind-port"`
	Mode            string        `json:"mode"             mapstructure:"mode"`
	EnableProfiling bool          `json:"profiling"        mapstructure:"profiling"`
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerRunOptions returns ServerRunOptions with default values.
func NewServerRunOptions() *ServerRunOptions {
	return &ServerRunOptions{
		BindAddress:     "127.0.0.1",
		BindPort:        8000,
		Mode:            "release",
		ShutdownTimeout: 5 * time.Second,
	}
}

// Address returns host:port.
func (o *ServerRunOptions) Address() string {
	return net.JoinHostPort(o.BindAddress, strconv.Itoa(o.BindPort))
}

func (o *ServerRunOptions) Validate() []error {
	var errs []error
	if o.BindPort < 1 || o.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("--server.bind-port %d must be between 1 and 65535", o.BindPort))
	}
	switch o.Mode {
	case "debug", "test", "release":
	default:
		errs = append(errs, fmt.Errorf("--server.mode must be 'debug', 'test' or 'release', got %q", o.Mode))
	}
	if o.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("--server.shutdown-timeout must not be negative"))
	}
	return errs
}

func (o *ServerRunOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "server.bind-address", o.BindAddress, "The IP address on which to serve.")
	fs.IntVar(&o.BindPort, "server.bind-port", o.BindPort, "The port on which to serve.")
	fs.StringVar(&o.Mode, "server.mode", o.Mode, "Gin mode: debug, test or release.")
	fs.BoolVar(&o.EnableProfiling, "server.profiling", o.EnableProfiling, "Expose pprof handlers under /debug/pprof.")
	fs.DurationVar(&o.ShutdownTimeout, "server.shutdown-timeout", o.ShutdownTimeout, "Time allowed for in-flight streams on shutdown.")
}
