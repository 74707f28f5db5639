package version

import "strconv"

const dateStampLen = 8

type grammar struct {
	name  string
	parse func(s string) (Version, bool)
}

// grammars is tried in order and the first full match wins. The date form is
// a strict subset of the semantic form's prerelease slot, so it goes first.
var grammars = []grammar{
	{name: "date", parse: parseDateTagged},
	{name: "semantic", parse: parseSemantic},
}

// Parse parses s against the supported grammars. The whole input must match;
// there is no trimming and no 'v' prefix handling here (see Normalize).
func Parse(s string) (Version, error) {
	for _, g := range grammars {
		if v, ok := g.parse(s); ok {
			v.Raw = s
			return v, nil
		}
	}
	return Version{}, &ParseError{Input: s}
}

// ParseTag normalizes a tag or describe string and parses the result. The
// returned Version keeps the tag text verbatim in Raw.
func ParseTag(tag string) (Version, error) {
	v, err := Parse(Normalize(tag))
	if err != nil {
		return Version{}, err
	}
	v.Raw = tag
	return v, nil
}

// parseDateTagged matches MAJOR.MINOR.PATCH-DDDDDDDD.
func parseDateTagged(s string) (Version, bool) {
	sc := scanner{src: s}
	v, ok := sc.core()
	if !ok || !sc.accept('-') {
		return Version{}, false
	}
	stamp, ok := sc.run(isDigit)
	if !ok || len(stamp) != dateStampLen || !sc.done() {
		return Version{}, false
	}
	v.Prerelease = stamp
	return v, true
}

// parseSemantic matches MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD].
func parseSemantic(s string) (Version, bool) {
	sc := scanner{src: s}
	v, ok := sc.core()
	if !ok {
		return Version{}, false
	}
	if sc.accept('-') {
		if v.Prerelease, ok = sc.run(isIdentChar); !ok {
			return Version{}, false
		}
	}
	if sc.accept('+') {
		if v.Build, ok = sc.run(isIdentChar); !ok {
			return Version{}, false
		}
	}
	if !sc.done() {
		return Version{}, false
	}
	return v, true
}

type scanner struct {
	src string
	pos int
}

func (sc *scanner) done() bool {
	return sc.pos == len(sc.src)
}

func (sc *scanner) accept(c byte) bool {
	if sc.pos < len(sc.src) && sc.src[sc.pos] == c {
		sc.pos++
		return true
	}
	return false
}

// run consumes one or more bytes satisfying pred.
func (sc *scanner) run(pred func(byte) bool) (string, bool) {
	start := sc.pos
	for sc.pos < len(sc.src) && pred(sc.src[sc.pos]) {
		sc.pos++
	}
	if sc.pos == start {
		return "", false
	}
	return sc.src[start:sc.pos], true
}

// number consumes an unsigned decimal that fits in 32 bits.
func (sc *scanner) number() (int, bool) {
	digits, ok := sc.run(isDigit)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// core consumes MAJOR.MINOR.PATCH.
func (sc *scanner) core() (Version, bool) {
	var v Version
	var ok bool
	if v.Major, ok = sc.number(); !ok || !sc.accept('.') {
		return Version{}, false
	}
	if v.Minor, ok = sc.number(); !ok || !sc.accept('.') {
		return Version{}, false
	}
	if v.Patch, ok = sc.number(); !ok {
		return Version{}, false
	}
	return v, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentChar(c byte) bool {
	switch {
	case isDigit(c), c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c == '-', c == '.':
		return true
	}
	return false
}
