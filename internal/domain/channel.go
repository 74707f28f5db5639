// Package domain holds the release channel model shared by the resolver and
// the installer.
package domain

import (
	"strings"

	"holoupdate/internal/version"
)

// Channel names a release stream a user can follow.
//
// The naming is inverted relative to common convention: plain release tags
// (1.2.3) belong to the master stream, while date-stamped and other
// prerelease tags belong to the release stream.
type Channel string

const (
	ChannelMaster  Channel = "master"
	ChannelRelease Channel = "release"
)

var knownChannels = []Channel{ChannelMaster, ChannelRelease}

func channelLabels() []string {
	labels := make([]string, len(knownChannels))
	for i, c := range knownChannels {
		labels[i] = string(c)
	}
	return labels
}

// ParseChannel normalises a channel label. Labels are case-insensitive and
// surrounding whitespace is ignored.
func ParseChannel(raw string) (Channel, error) {
	label := strings.ToLower(strings.TrimSpace(raw))
	for _, c := range knownChannels {
		if string(c) == label {
			return c, nil
		}
	}
	return "", invalidChannelError(raw)
}

// Valid reports whether c is one of the known channels.
func (c Channel) Valid() bool {
	for _, k := range knownChannels {
		if c == k {
			return true
		}
	}
	return false
}

func (c Channel) String() string {
	return string(c)
}

// Classify maps a version to the channel it was published on.
func Classify(v version.Version) Channel {
	switch {
	case v.IsDateVersion():
		return ChannelRelease
	case v.IsRelease():
		return ChannelMaster
	default:
		return ChannelRelease
	}
}

// InferChannel guesses the channel of an installation from its git describe
// output. Anything that does not parse is treated as a release build.
func InferChannel(describe string) Channel {
	v, err := version.ParseTag(strings.TrimSpace(describe))
	if err != nil {
		return ChannelRelease
	}
	return Classify(v)
}

// Accepts reports whether v belongs in the candidate set for c. The release
// stream keeps plain releases alongside date builds; master keeps everything.
// An unknown channel accepts nothing.
func (c Channel) Accepts(v version.Version) bool {
	if !c.Valid() {
		return false
	}
	if c == ChannelRelease {
		return v.IsRelease() || v.IsDateVersion()
	}
	return true
}
