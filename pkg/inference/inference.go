// Package inference derives a platform's download URL from a sibling
// platform's URL for the same release, without a network call.
//
// Two Linux x64 layouts map onto arm64 directly: glibc-tagged AppImages on the
// vendor bucket, and hashed build directories on the legacy downloader host.
// A third path pulls the opaque build id from a Mac or Windows URL and fills
// it into the Linux AppImage template.
//
// A URL that matches no rule is an expected outcome, reported as a Result
// with StatusNotApplicable rather than an error.
package inference

import (
	"context"
	"regexp"
	"strings"

	"github.com/agentstation/releasemap/pkg/logging"
	"github.com/agentstation/releasemap/pkg/releases"
)

// Status is the outcome of an inference attempt.
type Status int

// Inference statuses.
const (
	StatusNotApplicable Status = iota
	StatusFound
)

// String returns the status name.
func (s Status) String() string {
	if s == StatusFound {
		return "found"
	}
	return "not_applicable"
}

// Rule names reported in Result.
const (
	RuleGlibc   = "glibc-appimage"
	RuleHashed  = "hashed-build-id"
	RuleBuildID = "build-id-template"
)

// Result carries an inferred URL or the reason none was produced.
type Result struct {
	URL    string
	Status Status
	Rule   string
	Reason string
}

// Found reports whether the result carries a URL.
func (r Result) Found() bool {
	return r.Status == StatusFound && r.URL != ""
}

func found(rule, url string) Result {
	return Result{URL: url, Status: StatusFound, Rule: rule}
}

func notApplicable(reason string) Result {
	return Result{Status: StatusNotApplicable, Reason: reason}
}

var (
	glibcAppImage = regexp.MustCompile(`/linux/x64/appimage/Cursor-([^-]+)-([^.]+)\.deb\.glibc([^-]+)-x86_64\.AppImage`)
	hashedBuild   = regexp.MustCompile(`^(https?://[^?#]+)/linux/appImage/x64/?$`)
)

// Inferencer applies a fixed rule set.
type Inferencer struct {
	rules Rules
	ctx   context.Context
}

// Option configures an Inferencer.
type Option func(*Inferencer)

// WithContext sets the context whose logger receives flagged URLs.
func WithContext(ctx context.Context) Option {
	return func(i *Inferencer) {
		i.ctx = ctx
	}
}

// New returns an inferencer for rules. Invalid build id patterns are dropped
// from the rule set with a warning.
func New(rules Rules, opts ...Option) *Inferencer {
	inf := &Inferencer{rules: rules, ctx: context.Background()}
	for _, opt := range opts {
		opt(inf)
	}

	if err := inf.rules.compile(); err != nil {
		logging.FromContext(inf.ctx).Warn().Err(err).Msg("Ignoring build id sources")
		inf.rules.BuildIDSources = nil
	}
	return inf
}

// Default returns an inferencer using DefaultRules.
func Default() *Inferencer {
	return New(DefaultRules())
}

// Rules returns the rules in use.
func (inf *Inferencer) Rules() Rules {
	return inf.rules
}

// Arm64FromX64 maps a linux-x64 download URL onto linux-arm64.
func (inf *Inferencer) Arm64FromX64(x64URL string) Result {
	if x64URL == "" {
		return notApplicable("no linux-x64 url")
	}

	if m := glibcAppImage.FindStringSubmatch(x64URL); m != nil {
		glibc := m[3]
		if glibc != inf.rules.Glibc.From {
			logging.FromContext(inf.ctx).Warn().
				Str("url", x64URL).
				Str("glibc", glibc).
				Str("expected", inf.rules.Glibc.From).
				Msg("Unrecognized glibc token in linux-x64 url, not inferring arm64")
			return notApplicable("glibc" + glibc + " has no known arm64 counterpart")
		}

		url := strings.Replace(x64URL, "/linux/x64/", "/linux/arm64/", 1)
		url = strings.Replace(url, inf.rules.Arch.X64, inf.rules.Arch.Arm64, 1)
		url = strings.Replace(url, "glibc"+inf.rules.Glibc.From, "glibc"+inf.rules.Glibc.To, 1)
		return found(RuleGlibc, url)
	}

	if m := hashedBuild.FindStringSubmatch(x64URL); m != nil {
		return found(RuleHashed, m[1]+"/linux/appImage/arm64")
	}

	return notApplicable("url matches no known linux-x64 layout")
}

// BuildID extracts the release build id from the first configured source
// platform present in entry.
func (inf *Inferencer) BuildID(entry releases.VersionEntry) (string, bool) {
	for _, src := range inf.rules.BuildIDSources {
		url := entry.URL(src.Platform)
		if url == "" || src.re == nil {
			continue
		}
		if m := src.re.FindStringSubmatch(url); m != nil && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// FromBuildID fills the Linux template for target using the build id found in
// a sibling platform URL.
func (inf *Inferencer) FromBuildID(entry releases.VersionEntry, target releases.Platform) Result {
	var archDir, arch, glibc string
	switch target {
	case releases.PlatformLinuxX64:
		archDir, arch, glibc = "x64", inf.rules.Arch.X64, inf.rules.Glibc.From
	case releases.PlatformLinuxArm64:
		archDir, arch, glibc = "arm64", inf.rules.Arch.Arm64, inf.rules.Glibc.To
	default:
		return notApplicable("no template for " + target.String())
	}

	build, ok := inf.BuildID(entry)
	if !ok {
		return notApplicable("no build id in sibling urls")
	}

	url := strings.NewReplacer(
		"{version}", entry.Version,
		"{build}", build,
		"{arch_dir}", archDir,
		"{arch}", arch,
		"{glibc}", glibc,
	).Replace(inf.rules.Template)
	return found(RuleBuildID, url)
}

// Infer tries every rule that can produce target for entry.
func (inf *Inferencer) Infer(entry releases.VersionEntry, target releases.Platform) Result {
	switch target {
	case releases.PlatformLinuxArm64:
		if res := inf.Arm64FromX64(entry.URL(releases.PlatformLinuxX64)); res.Found() {
			return res
		}
		return inf.FromBuildID(entry, target)
	case releases.PlatformLinuxX64:
		return inf.FromBuildID(entry, target)
	}
	return notApplicable("no inference rules for " + target.String())
}

// GenerateArm64URLFromX64 maps a linux-x64 URL to linux-arm64 using the
// default rules.
func GenerateArm64URLFromX64(x64URL string) (string, bool) {
	res := Default().Arm64FromX64(x64URL)
	return res.URL, res.Found()
}
