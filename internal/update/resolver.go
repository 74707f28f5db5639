package update

import (
	"errors"
	"fmt"

	"holoupdate/internal/domain"
	appErrors "holoupdate/internal/errors"
	"holoupdate/internal/version"
)

// ErrNoCandidateVersions is matched when neither tag listing yields a usable
// version for the requested channel.
var ErrNoCandidateVersions = errors.New("no candidate versions")

// Selection names which candidate listing becomes the working set.
type Selection int

const (
	// UseA selects the first listing (remote tags in practice).
	UseA Selection = iota
	// UseB selects the second listing (local tags in practice).
	UseB
)

// String returns the string representation of a Selection.
func (s Selection) String() string {
	switch s {
	case UseA:
		return "A"
	case UseB:
		return "B"
	default:
		return "unknown"
	}
}

// SelectCandidates prefers the listing that produced more usable versions
// after filtering. Ties go to A.
func SelectCandidates(countA, countB int) Selection {
	if countB > countA {
		return UseB
	}
	return UseA
}

// Resolution carries the intermediate state of a resolve so callers can
// log or display how the result was reached.
type Resolution struct {
	Channel    domain.Channel
	Latest     version.Version
	Selected   Selection
	CountA     int
	CountB     int
	WorkingSet []version.Version
}

// FilterForChannel parses every tag and keeps the ones the channel accepts.
// Tags that do not parse are dropped silently. Input order is preserved.
func FilterForChannel(ch domain.Channel, tags []string) []version.Version {
	out := make([]version.Version, 0, len(tags))
	for _, tag := range tags {
		v, err := version.ParseTag(tag)
		if err != nil {
			continue
		}
		if ch.Accepts(v) {
			out = append(out, v)
		}
	}
	return out
}

// Reconcile filters both listings for ch, picks one with SelectCandidates and
// returns the greatest version in it. The returned Latest.Raw is the tag text
// exactly as it appeared in the chosen listing.
func Reconcile(ch domain.Channel, candidatesA, candidatesB []string) (Resolution, error) {
	a := FilterForChannel(ch, candidatesA)
	b := FilterForChannel(ch, candidatesB)

	res := Resolution{
		Channel:  ch,
		CountA:   len(a),
		CountB:   len(b),
		Selected: SelectCandidates(len(a), len(b)),
	}
	res.WorkingSet = a
	if res.Selected == UseB {
		res.WorkingSet = b
	}

	latest, ok := version.Max(res.WorkingSet)
	if !ok {
		return res, noCandidatesError(ch)
	}
	res.Latest = latest
	return res, nil
}

// Resolve is Reconcile without the bookkeeping.
func Resolve(ch domain.Channel, candidatesA, candidatesB []string) (version.Version, error) {
	res, err := Reconcile(ch, candidatesA, candidatesB)
	if err != nil {
		return version.Version{}, err
	}
	return res.Latest, nil
}

func noCandidatesError(ch domain.Channel) error {
	return appErrors.New(appErrors.CodeNoCandidateVersions,
		fmt.Sprintf("no valid versions found for channel %s", ch), ErrNoCandidateVersions)
}
