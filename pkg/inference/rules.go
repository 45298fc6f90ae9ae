package inference

import (
	"os"
	"regexp"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/releases"
)

// DefaultTemplate is the vendor's Linux AppImage URL layout.
const DefaultTemplate = "https://anysphere-binaries.s3.us-east-1.amazonaws.com/production/client/linux/{arch_dir}/appimage/Cursor-{version}-{build}.deb.glibc{glibc}-{arch}.AppImage"

// Glibc is the glibc token pinned by each Linux architecture build.
type Glibc struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Arch maps architecture directories to the arch token used in file names.
type Arch struct {
	X64   string `yaml:"x64"`
	Arm64 string `yaml:"arm64"`
}

// BuildIDSource names a platform whose URL carries the release build id and
// the pattern whose first group captures it.
type BuildIDSource struct {
	Platform releases.Platform `yaml:"platform"`
	Pattern  string            `yaml:"pattern"`

	re *regexp.Regexp
}

// Rules is the inference configuration. The values describe one vendor's
// build pipeline and are data, not code.
type Rules struct {
	Glibc          Glibc           `yaml:"glibc"`
	Arch           Arch            `yaml:"arch"`
	Template       string          `yaml:"template"`
	BuildIDSources []BuildIDSource `yaml:"build_id_sources"`
}

// DefaultRules returns the rules matching the vendor's known URL layouts.
func DefaultRules() Rules {
	return Rules{
		Glibc:    Glibc{From: "2.25", To: "2.28"},
		Arch:     Arch{X64: "x86_64", Arm64: "aarch64"},
		Template: DefaultTemplate,
		BuildIDSources: []BuildIDSource{
			{Platform: releases.PlatformDarwinUniversal, Pattern: `/production/([^/]+)/darwin`},
			{Platform: releases.PlatformWin32X64, Pattern: `/production/([^/]+)/win32`},
		},
	}
}

// LoadRules reads rules from a YAML file. Fields left out of the file keep
// their default values.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, errors.WrapIO("read", path, err)
	}
	return ParseRules(data, path)
}

// ParseRules decodes YAML rules on top of DefaultRules.
func ParseRules(data []byte, name string) (Rules, error) {
	rules := DefaultRules()
	var override Rules
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Rules{}, errors.WrapParse("yaml", name, err)
	}

	if override.Glibc.From != "" {
		rules.Glibc.From = override.Glibc.From
	}
	if override.Glibc.To != "" {
		rules.Glibc.To = override.Glibc.To
	}
	if override.Arch.X64 != "" {
		rules.Arch.X64 = override.Arch.X64
	}
	if override.Arch.Arm64 != "" {
		rules.Arch.Arm64 = override.Arch.Arm64
	}
	if override.Template != "" {
		rules.Template = override.Template
	}
	if len(override.BuildIDSources) > 0 {
		rules.BuildIDSources = override.BuildIDSources
	}

	if err := rules.compile(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// compile prepares the build id patterns.
func (r *Rules) compile() error {
	for i := range r.BuildIDSources {
		src := &r.BuildIDSources[i]
		re, err := regexp.Compile(src.Pattern)
		if err != nil {
			return &errors.ValidationError{
				Field:   "build_id_sources.pattern",
				Value:   src.Pattern,
				Message: err.Error(),
			}
		}
		if re.NumSubexp() < 1 {
			return &errors.ValidationError{
				Field:   "build_id_sources.pattern",
				Value:   src.Pattern,
				Message: "pattern must capture the build id in a group",
			}
		}
		src.re = re
	}
	return nil
}
