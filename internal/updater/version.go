package updater

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidVersion is returned for version strings that cannot be parsed.
var ErrInvalidVersion = errors.New("invalid version format")

// pep440 matches a normalized-or-not PEP 440 public version: release
// segments, then optional pre, post and dev parts. Local labels are
// stripped before matching.
var pep440 = regexp.MustCompile(`^(\d+(?:\.\d+)*)` +
	`(?:[-_.]?(a|b|c|rc|alpha|beta|pre|preview)[-_.]?(\d*))?` +
	`(?:-(\d+)|[-_.]?(post|rev|r)[-_.]?(\d*))?` +
	`(?:[-_.]?(dev)[-_.]?(\d*))?$`)

// version is a parsed release. Semver input and PEP 440 input share this
// shape so npm and PyPI versions order the same way.
type version struct {
	major, minor, patch uint64
	// extra holds release segments past the third ("4.0.8.1").
	extra []uint64
	// pre is a semver pre-release string; PEP 440 pre-releases become
	// "a.N", "b.N" or "rc.N".
	pre  string
	post int64 // -1 when absent
	dev  int64 // -1 when absent
}

// CompareVersions compares two version strings.
// Returns -1 if current < latest, 0 if equal, 1 if current > latest.
// Handles "v" prefix tolerance, semver pre-releases and PEP 440 pre, post
// and dev releases.
func CompareVersions(current, latest string) (int, error) {
	cv, err := parseVersion(current)
	if err != nil {
		return 0, fmt.Errorf("parsing current version %q: %w", current, err)
	}
	lv, err := parseVersion(latest)
	if err != nil {
		return 0, fmt.Errorf("parsing latest version %q: %w", latest, err)
	}
	return cv.compare(lv), nil
}

// IsUpdateAvailable returns true if latest is newer than current.
func IsUpdateAvailable(current, latest string) (bool, error) {
	c, err := CompareVersions(current, latest)
	if err != nil {
		return false, err
	}
	return c == -1, nil
}

// ValidVersion reports whether v parses as a version.
func ValidVersion(v string) bool {
	_, err := parseVersion(v)
	return err == nil
}

func parseVersion(s string) (*version, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "v"))
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidVersion)
	}

	public, _, _ := strings.Cut(s, "+")
	if m := pep440.FindStringSubmatch(public); m != nil {
		return fromPEP440(m)
	}

	sv, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVersion, err)
	}
	return &version{
		major: sv.Major(),
		minor: sv.Minor(),
		patch: sv.Patch(),
		pre:   sv.Prerelease(),
		post:  -1,
		dev:   -1,
	}, nil
}

func fromPEP440(m []string) (*version, error) {
	var segs []uint64
	for _, part := range strings.Split(m[1], ".") {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: release segment %q", ErrInvalidVersion, part)
		}
		segs = append(segs, n)
	}
	for len(segs) < 3 {
		segs = append(segs, 0)
	}

	v := &version{major: segs[0], minor: segs[1], patch: segs[2], extra: segs[3:], post: -1, dev: -1}

	if m[2] != "" {
		kind := m[2]
		switch kind {
		case "alpha":
			kind = "a"
		case "beta":
			kind = "b"
		case "c", "pre", "preview":
			kind = "rc"
		}
		v.pre = kind + "." + numberOrZero(m[3])
	}

	switch {
	case m[4] != "":
		v.post = parseCount(m[4])
	case m[5] != "":
		v.post = parseCount(m[6])
	}
	if m[7] != "" {
		v.dev = parseCount(m[8])
	}
	return v, nil
}

func numberOrZero(s string) string {
	return strconv.FormatInt(parseCount(s), 10)
}

// parseCount reads an optional PEP 440 counter; an empty counter is 0.
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// core returns the first three release segments with pre as the semver
// pre-release.
func (v *version) core(pre string) *semver.Version {
	return semver.New(v.major, v.minor, v.patch, pre, "")
}

// phase orders the release kinds sharing one release number:
// dev-only releases, then pre-releases, then finals and post-releases.
func (v *version) phase() int {
	switch {
	case v.pre != "":
		return 0
	case v.post < 0 && v.dev >= 0:
		return -1
	default:
		return 1
	}
}

func (v *version) devKey() int64 {
	if v.dev < 0 {
		return math.MaxInt64
	}
	return v.dev
}

func (v *version) compare(o *version) int {
	if c := v.core("").Compare(o.core("")); c != 0 {
		return c
	}
	for i := 0; i < max(len(v.extra), len(o.extra)); i++ {
		if c := cmp.Compare(segment(v.extra, i), segment(o.extra, i)); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(v.phase(), o.phase()); c != 0 {
		return c
	}
	if v.pre != "" {
		if c := v.core(v.pre).Compare(o.core(o.pre)); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(v.post, o.post); c != 0 {
		return c
	}
	return cmp.Compare(v.devKey(), o.devKey())
}

func segment(segs []uint64, i int) uint64 {
	if i < len(segs) {
		return segs[i]
	}
	return 0
}
