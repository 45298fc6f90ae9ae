package reconciler

import (
	"github.com/agentstation/releasemap/pkg/constants"
	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/releases"
)

// options configures a reconciler.
type options struct {
	maxEntries int
	validate   bool
	platforms  releases.PlatformTable
}

func defaultOptions() *options {
	return &options{
		maxEntries: constants.MaxLedgerEntries,
		validate:   true,
		platforms:  releases.DefaultPlatforms(),
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithMaxEntries caps the number of ledger entries kept after a merge.
func WithMaxEntries(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return &errors.ValidationError{
				Field:   "max_entries",
				Value:   n,
				Message: "must be greater than zero",
			}
		}
		o.maxEntries = n
		return nil
	}
}

// WithValidation toggles observation validation before a merge.
func WithValidation(enabled bool) Option {
	return func(o *options) error {
		o.validate = enabled
		return nil
	}
}

// WithPlatforms sets the platform table observations are checked against.
func WithPlatforms(table releases.PlatformTable) Option {
	return func(o *options) error {
		o.platforms = table
		return nil
	}
}
