// Package save holds the options shared by every writer of releasemap state:
// the ledger store, the publisher, and the export commands.
package save

import "io"

// Format is an output encoding for an exported ledger.
type Format int

// Format constants.
const (
	FormatJSON Format = iota
	FormatYAML
)

// IsValid checks if the format is valid.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// ParseFormat maps a format name to a Format. Unknown names return false.
func ParseFormat(name string) (Format, bool) {
	switch name {
	case "json", "":
		return FormatJSON, true
	case "yaml", "yml":
		return FormatYAML, true
	}
	return FormatJSON, false
}

// Options is the configuration for save.
type Options struct {
	path     string
	writer   io.Writer
	format   Format
	backup   bool
	validate bool
	atomic   bool
}

// Path returns the path override, empty when the store's own path is used.
func (s *Options) Path() string {
	return s.path
}

// Writer returns the writer for the save options.
func (s *Options) Writer() io.Writer {
	return s.writer
}

// Format returns the format for the save options.
func (s *Options) Format() Format {
	return s.format
}

// Backup reports whether the previous file is copied aside before writing.
func (s *Options) Backup() bool {
	return s.backup
}

// Validate reports whether serialized output is re-parsed before it is written.
func (s *Options) Validate() bool {
	return s.validate
}

// Atomic reports whether the file is replaced via a temp file and rename.
func (s *Options) Atomic() bool {
	return s.atomic
}

// Defaults returns the default save options.
func Defaults() *Options {
	return &Options{
		format:   FormatJSON,
		backup:   true,
		validate: true,
		atomic:   true,
	}
}

// Apply applies the given options to the save options.
func (s *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return *s
}

// Option is a function that configures save options.
type Option func(*Options)

// WithFormat for custom output format.
func WithFormat(f Format) Option {
	return func(s *Options) {
		s.format = f
	}
}

// WithPath for filesystem saves.
func WithPath(path string) Option {
	return func(s *Options) {
		s.path = path
	}
}

// WithWriter for custom outputs.
func WithWriter(w io.Writer) Option {
	return func(s *Options) {
		s.writer = w
	}
}

// WithBackup toggles the pre-write backup copy.
func WithBackup(enabled bool) Option {
	return func(s *Options) {
		s.backup = enabled
	}
}

// WithValidation toggles the post-serialization parse check.
func WithValidation(enabled bool) Option {
	return func(s *Options) {
		s.validate = enabled
	}
}

// WithAtomic toggles temp-file-and-rename writes.
func WithAtomic(enabled bool) Option {
	return func(s *Options) {
		s.atomic = enabled
	}
}
