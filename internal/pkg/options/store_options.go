package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// StoreOptions selects where chat messages are kept.
type StoreOptions struct {
	// Type is one of "inmemory", "boltdb" or "sqlite".
	Type string `json:"type" mapstructure:"type"`
	// Path is the database file for boltdb and sqlite.
	Path string `json:"path" mapstructure:"path"`
}

// NewStoreOptions returns StoreOptions with default values.
func NewStoreOptions() *StoreOptions {
	return &StoreOptions{
		Type: "boltdb",
		Path: "data/brightchat.db",
	}
}

func (o *StoreOptions) Validate() []error {
	var errs []error
	switch o.Type {
	case "inmemory":
	case "boltdb", "sqlite":
		if o.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required for store type %q", o.Type))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid store type %q, must be 'inmemory', 'boltdb' or 'sqlite'", o.Type))
	}
	return errs
}

func (o *StoreOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Type, "store.type", o.Type, "Message store backend: 'inmemory', 'boltdb' or 'sqlite'.")
	fs.StringVar(&o.Path, "store.path", o.Path, "Database file of the boltdb or sqlite store.")
}
