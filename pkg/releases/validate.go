package releases

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/agentstation/releasemap/pkg/errors"
)

// entryValidate is the validator instance for release entries.
var entryValidate *validator.Validate

var dottedVersion = regexp.MustCompile(`^[0-9]+(\.[0-9]+[0-9A-Za-z-]*)*$`)

func init() {
	entryValidate = validator.New()

	_ = entryValidate.RegisterValidation("version", func(fl validator.FieldLevel) bool {
		return dottedVersion.MatchString(fl.Field().String())
	})
	_ = entryValidate.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return DefaultPlatforms().Has(Platform(fl.Field().String()))
	})
}

// Validate checks a single entry: dotted version, calendar date, known
// platform keys and absolute URL values.
func (e VersionEntry) Validate() error {
	err := entryValidate.Struct(e)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &errors.ValidationError{
			Field:   fieldName(fe),
			Value:   fe.Value(),
			Message: describe(fe),
		}
	}
	return errors.WrapValidation("entry", err)
}

// Validate checks every entry and rejects duplicate versions.
func (l *Ledger) Validate() error {
	seen := make(map[string]struct{}, len(l.Versions))
	for i, e := range l.Versions {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("versions[%d]: %w", i, err)
		}
		if _, dup := seen[e.Version]; dup {
			return &errors.ValidationError{
				Field:   "version",
				Value:   e.Version,
				Message: "duplicate version in ledger",
			}
		}
		seen[e.Version] = struct{}{}
	}
	return nil
}

// Problems returns every validation failure in the ledger instead of the first.
func (l *Ledger) Problems() []error {
	var out []error
	seen := make(map[string]struct{}, len(l.Versions))
	for i, e := range l.Versions {
		if err := e.Validate(); err != nil {
			out = append(out, fmt.Errorf("versions[%d] (%s): %w", i, e.Version, err))
		}
		if _, dup := seen[e.Version]; dup {
			out = append(out, fmt.Errorf("versions[%d]: duplicate version %s", i, e.Version))
		}
		seen[e.Version] = struct{}{}
	}
	for i := 1; i < len(l.Versions); i++ {
		if CompareVersions(l.Versions[i-1].Version, l.Versions[i].Version) < 0 {
			out = append(out, fmt.Errorf("versions[%d]: %s is out of order after %s",
				i, l.Versions[i].Version, l.Versions[i-1].Version))
		}
	}
	return out
}

func fieldName(fe validator.FieldError) string {
	name := strings.ToLower(fe.StructField())
	if strings.HasPrefix(name, "platforms") {
		return "platforms"
	}
	return name
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "version":
		return "must be a dotted numeric version"
	case "datetime":
		return "must be a YYYY-MM-DD date"
	case "platform":
		return "unknown platform"
	case "url":
		return "must be an absolute URL"
	}
	return "failed " + fe.Tag() + " check"
}
