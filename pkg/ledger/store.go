// Package ledger persists the version ledger as a pretty-printed JSON file.
//
// A save always rewrites the whole file. Before it does, the previous file is
// copied to a ".backup" sibling, the new bytes are parsed back to prove they
// are well formed, and the write goes through a temp file and rename so that a
// reader never observes a half-written ledger.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"

	"github.com/agentstation/releasemap/pkg/constants"
	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/logging"
	"github.com/agentstation/releasemap/pkg/releases"
	"github.com/agentstation/releasemap/pkg/save"
)

// Store reads and writes one ledger file.
type Store struct {
	path string
}

// NewStore returns a store for the ledger at path.
func NewStore(path string) *Store {
	if path == "" {
		path = constants.DefaultLedgerPath
	}
	return &Store{path: path}
}

// Path returns the ledger file path.
func (s *Store) Path() string {
	return s.path
}

// BackupPath returns the path of the pre-save backup copy.
func (s *Store) BackupPath() string {
	return s.path + constants.BackupSuffix
}

// Load reads the ledger. A missing file yields an empty ledger, and so does a
// file that fails to parse: that case is logged at error level because it
// discards the recorded history for this run.
func (s *Store) Load(ctx context.Context) (*releases.Ledger, error) {
	logger := logging.FromContext(ctx)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info().Str("path", s.path).Msg("No version history found, starting empty")
			return releases.NewLedger(), nil
		}
		return nil, errors.WrapIO("read", s.path, err)
	}

	ledger, err := decode(data)
	if err != nil {
		logger.Error().
			Err(err).
			Str("path", s.path).
			Msg("Version history is malformed, treating history as empty")
		return releases.NewLedger(), nil
	}

	logger.Debug().Str("path", s.path).Int("entries", ledger.Len()).Msg("Loaded version history")
	return ledger, nil
}

// Read is Load without the degradation: a missing file is a NotFoundError
// and a malformed file a ParseError.
func (s *Store) Read(ctx context.Context) (*releases.Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFoundError("version history", s.path)
		}
		return nil, errors.WrapIO("read", s.path, err)
	}
	ledger, err := decode(data)
	if err != nil {
		return nil, errors.WrapParse("json", s.path, err)
	}
	logging.FromContext(ctx).Debug().Str("path", s.path).Int("entries", ledger.Len()).Msg("Read version history")
	return ledger, nil
}

// Save writes the whole ledger, honoring the strictness options in opts.
func (s *Store) Save(ctx context.Context, ledger *releases.Ledger, opts ...save.Option) error {
	options := save.Defaults().Apply(opts...)
	logger := logging.FromContext(ctx)

	path := s.path
	if options.Path() != "" {
		path = options.Path()
	}

	if options.Backup() {
		if err := backup(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Could not back up version history, continuing")
		} else {
			logger.Debug().Str("backup", path+constants.BackupSuffix).Msg("Created backup")
		}
	}

	data, err := Encode(ledger)
	if err != nil {
		return errors.WrapParse("json", path, err)
	}

	if options.Validate() {
		if _, err := decode(data); err != nil {
			return &errors.ValidationError{
				Field:   "ledger",
				Message: "serialized ledger does not parse: " + err.Error(),
			}
		}
	}

	if err := write(path, data, options.Atomic()); err != nil {
		return err
	}

	logger.Info().Str("path", path).Int("entries", ledger.Len()).Msg("Saved version history")
	return nil
}

// Publish copies the ledger file byte for byte into dir and returns the
// destination path.
func (s *Store) Publish(ctx context.Context, dir string) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", errors.WrapIO("read", s.path, err)
	}

	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", dir, err)
	}

	dest := filepath.Join(dir, filepath.Base(s.path))
	if err := write(dest, data, true); err != nil {
		return "", err
	}

	logging.FromContext(ctx).Info().Str("destination", dest).Msg("Published version history snapshot")
	return dest, nil
}

// Export writes the ledger to w in the requested format.
func Export(w io.Writer, ledger *releases.Ledger, format save.Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case save.FormatYAML:
		data, err = yaml.Marshal(ledger)
	case save.FormatJSON:
		data, err = Encode(ledger)
		if err == nil {
			data = append(data, '\n')
		}
	default:
		return &errors.ValidationError{Field: "format", Value: format.String(), Message: "unsupported export format"}
	}
	if err != nil {
		return errors.WrapParse(format.String(), "", err)
	}

	_, err = w.Write(data)
	return err
}

// Encode serializes the ledger as JSON indented with two spaces. URLs are
// written as-is, query separators are not escaped.
func Encode(ledger *releases.Ledger) ([]byte, error) {
	if ledger == nil {
		ledger = releases.NewLedger()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", constants.JSONIndent)
	if err := enc.Encode(ledger); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func decode(data []byte) (*releases.Ledger, error) {
	var ledger releases.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, err
	}
	if ledger.Versions == nil {
		ledger.Versions = []releases.VersionEntry{}
	}
	return &ledger, nil
}

// backup copies path to path.backup. A missing source is not an error.
func backup(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.WrapIO("read", path, err)
	}
	return write(path+constants.BackupSuffix, data, false)
}

func write(path string, data []byte, useAtomic bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}

	if !useAtomic {
		if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
			return errors.WrapIO("write", path, err)
		}
		return nil
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return errors.WrapIO("write", path, err)
	}
	// atomic.WriteFile keeps the temp file's mode for new files
	if err := os.Chmod(path, constants.FilePermissions); err != nil {
		return errors.WrapIO("chmod", path, err)
	}
	return nil
}
