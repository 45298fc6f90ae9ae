package releases

import (
	"regexp"
	"strconv"
	"strings"
)

// CompareVersions orders dotted version strings segment by segment.
// Each segment compares its leading digits numerically and any remaining
// suffix as a string. When every shared segment is equal the version with
// more segments is greater. It returns -1, 0 or 1.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}

	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

func compareSegment(a, b string) int {
	an, asuf := splitSegment(a)
	bn, bsuf := splitSegment(b)

	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	}
	return strings.Compare(asuf, bsuf)
}

// splitSegment returns the numeric value of the leading digits and the rest.
func splitSegment(s string) (uint64, string) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, s
	}
	n, err := strconv.ParseUint(s[:end], 10, 64)
	if err != nil {
		return 0, s
	}
	return n, s[end:]
}

var (
	windowsInstallerPattern = regexp.MustCompile(`CursorUserSetup-[^-]+-([0-9.]+)\.exe`)
	semverPattern           = regexp.MustCompile(`[0-9]+\.[0-9]+\.[0-9]+`)
)

// ExtractVersion pulls the release version out of a download URL.
// Windows installer names win over any other version-shaped token.
func ExtractVersion(url string) (string, bool) {
	if m := windowsInstallerPattern.FindStringSubmatch(url); m != nil {
		return m[1], true
	}
	if v := semverPattern.FindString(url); v != "" {
		return v, true
	}
	return "", false
}

// LatestVersion returns the greatest version among urls, using ExtractVersion
// on each one.
func LatestVersion(urls []string) (string, bool) {
	var latest string
	for _, u := range urls {
		v, ok := ExtractVersion(u)
		if !ok {
			continue
		}
		if latest == "" || CompareVersions(v, latest) > 0 {
			latest = v
		}
	}
	return latest, latest != ""
}
