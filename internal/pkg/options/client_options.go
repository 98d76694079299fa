package options

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// ClientOptions holds options for talking to the agent API.
type ClientOptions struct {
	// ServerAddr is the API base URL. A missing scheme defaults to http.
	ServerAddr string `json:"server-addr" mapstructure:"server-addr"`
	// Token is sent as a bearer token when not empty.
	Token string `json:"-" mapstructure:"token"`
	// Timeout bounds non-streaming requests. 0 disables it.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	// IdleTimeout ends a stream that has been silent this long. 0 disables it.
	IdleTimeout time.Duration `json:"idle-timeout" mapstructure:"idle-timeout"`
	// ChunkSize is the stream read buffer size in bytes.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`
}

// NewClientOptions returns ClientOptions with default values.
func NewClientOptions() *ClientOptions {
	return &ClientOptions{
		ServerAddr:  "http://127.0.0.1:8000/api/v1",
		Timeout:     30 * time.Second,
		IdleTimeout: 0,
		ChunkSize:   4096,
	}
}

// Complete normalizes the server address.
func (o *ClientOptions) Complete() {
	if o.ServerAddr != "" && !strings.HasPrefix(o.ServerAddr, "http://") && !strings.HasPrefix(o.ServerAddr, "https://") {
		o.ServerAddr = "http://" + o.ServerAddr
	}
	o.ServerAddr = strings.TrimRight(o.ServerAddr, "/")
}

func (o *ClientOptions) Validate() []error {
	var errs []error
	if o.ServerAddr == "" {
		errs = append(errs, fmt.Errorf("client.server-addr is required"))
	} else if _, err := url.Parse(o.ServerAddr); err != nil {
		errs = append(errs, fmt.Errorf("client.server-addr %q: %w", o.ServerAddr, err))
	}
	if o.Timeout < 0 {
		errs = append(errs, fmt.Errorf("client.timeout must not be negative"))
	}
	if o.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("client.idle-timeout must not be negative"))
	}
	if o.ChunkSize < 0 {
		errs = append(errs, fmt.Errorf("client.chunk-size must not be negative"))
	}
	return errs
}

func (o *ClientOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ServerAddr, "client.server-addr", o.ServerAddr, "Base URL of the Bright-Chat agent API.")
	fs.StringVar(&o.Token, "client.token", o.Token, "Bearer token sent with every request.")
	fs.DurationVar(&o.Timeout, "client.timeout", o.Timeout, "Timeout for non-streaming requests, 0 for none.")
	fs.DurationVar(&o.IdleTimeout, "client.idle-timeout", o.IdleTimeout, "Abort a stream that sends nothing for this long, 0 for never.")
	fs.IntVar(&o.ChunkSize, "client.chunk-size", o.ChunkSize, "Read buffer size for execution streams.")
}
