package readme

import (
	"io/fs"
	"os"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/agentstation/releasemap/pkg/constants"
	"github.com/agentstation/releasemap/pkg/errors"
)

// Load reads and parses the document at path. A missing document is an error.
func Load(path string, layout Layout) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFoundError("document", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(string(data), layout), nil
}

// Save writes the rendered document to path.
func (d *Document) Save(path string) error {
	if err := atomic.WriteFile(path, strings.NewReader(d.String())); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err := os.Chmod(path, constants.FilePermissions); err != nil {
		return errors.WrapIO("chmod", path, err)
	}
	return nil
}
