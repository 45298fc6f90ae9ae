package releasemap

import (
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/releasemap/internal/transport"
	"github.com/agentstation/releasemap/pkg/constants"
	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/inference"
	"github.com/agentstation/releasemap/pkg/readme"
)

// Option is a function that configures a Tracker instance.
type Option func(*options) error

// options holds the Tracker configuration.
type options struct {
	ledgerPath string
	readmePath string
	publishDir string
	siteDir    string

	source    Source
	endpoint  string
	userAgent string
	timeout   time.Duration

	rules      *inference.Rules
	rulesFile  string
	maxEntries int

	layout readme.Layout
	clock  func() utc.Time
}

// defaults returns the options used when none are given.
func defaults() *options {
	return &options{
		ledgerPath: constants.DefaultLedgerPath,
		readmePath: constants.DefaultReadmePath,
		publishDir: constants.DefaultPublishDir,
		siteDir:    "",
		endpoint:   constants.DefaultDownloadEndpoint,
		userAgent:  constants.DefaultUserAgent,
		timeout:    constants.DefaultHTTPTimeout,
		maxEntries: constants.MaxLedgerEntries,
		layout:     readme.DefaultLayout(),
		clock:      utc.Now,
	}
}

// apply applies opts in order and stops at the first error.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *options) transport() *transport.Client {
	return transport.New(
		transport.WithTimeout(o.timeout),
		transport.WithUserAgent(o.userAgent),
	)
}

// WithLedgerPath sets the version history file.
func WithLedgerPath(path string) Option {
	return func(o *options) error {
		if path == "" {
			return &errors.ValidationError{Field: "ledger_path", Message: "cannot be empty"}
		}
		o.ledgerPath = path
		return nil
	}
}

// WithReadmePath sets the projected Markdown document.
func WithReadmePath(path string) Option {
	return func(o *options) error {
		if path == "" {
			return &errors.ValidationError{Field: "readme_path", Message: "cannot be empty"}
		}
		o.readmePath = path
		return nil
	}
}

// WithPublishDir sets the directory receiving the ledger snapshot.
// An empty dir disables publishing.
func WithPublishDir(dir string) Option {
	return func(o *options) error {
		o.publishDir = dir
		return nil
	}
}

// WithSiteDir sets the Hugo site root. An empty dir disables the site page.
func WithSiteDir(dir string) Option {
	return func(o *options) error {
		o.siteDir = dir
		return nil
	}
}

// WithSource replaces the download API client.
func WithSource(src Source) Option {
	return func(o *options) error {
		o.source = src
		return nil
	}
}

// WithEndpoint sets the download API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(o *options) error {
		if endpoint != "" {
			o.endpoint = endpoint
		}
		return nil
	}
}

// WithUserAgent sets the User-Agent sent to the download API.
func WithUserAgent(ua string) Option {
	return func(o *options) error {
		if ua != "" {
			o.userAgent = ua
		}
		return nil
	}
}

// WithHTTPTimeout sets the per-request timeout for the download API.
func WithHTTPTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return &errors.ValidationError{Field: "http_timeout", Value: d, Message: "must not be negative"}
		}
		if d > 0 {
			o.timeout = d
		}
		return nil
	}
}

// WithRules sets the URL inference rules.
func WithRules(rules inference.Rules) Option {
	return func(o *options) error {
		o.rules = &rules
		return nil
	}
}

// WithRulesFile loads URL inference rules from a YAML file at New.
func WithRulesFile(path string) Option {
	return func(o *options) error {
		o.rulesFile = path
		return nil
	}
}

// WithMaxEntries caps the number of versions kept in the ledger.
func WithMaxEntries(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return &errors.ValidationError{Field: "max_entries", Value: n, Message: "must be greater than zero"}
		}
		o.maxEntries = n
		return nil
	}
}

// WithLayout sets the document anchors.
func WithLayout(layout readme.Layout) Option {
	return func(o *options) error {
		o.layout = layout
		return nil
	}
}

// WithClock sets the source of the run date.
func WithClock(clock func() utc.Time) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.clock = clock
		return nil
	}
}
