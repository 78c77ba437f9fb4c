// Package pathx models folder paths as ordered lists of name segments.
//
// Records only ever store a parent path string and a name, so every full
// path in the system is derived here. The root is the empty path "".
package pathx

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

// Separator joins path segments.
const Separator = "/"

// Path is an ordered list of non-empty segments. The zero value is the root.
type Path struct {
	segments []string
}

// Root returns the empty path.
func Root() Path { return Path{} }

// Parse splits s on Separator. The empty string parses to the root; any empty
// or dot segment is rejected.
func Parse(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	parts := strings.Split(s, Separator)
	for _, p := range parts {
		if err := ValidateName(p); err != nil {
			return Path{}, fmt.Errorf("parse %q: %w", s, err)
		}
	}
	return Path{segments: parts}, nil
}

// MustParse is Parse that panics on error. Intended for tests and constants.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ValidateName checks a single folder or file name.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", common.ErrInvalidPath)
	case strings.Contains(name, Separator):
		return fmt.Errorf("%w: name %q contains %q", common.ErrInvalidPath, name, Separator)
	case name == "." || name == "..":
		return fmt.Errorf("%w: reserved name %q", common.ErrInvalidPath, name)
	}
	return nil
}

// Join appends name to parent.
func Join(parent Path, name string) (Path, error) {
	if err := ValidateName(name); err != nil {
		return Path{}, err
	}
	segs := make([]string, 0, len(parent.segments)+1)
	segs = append(segs, parent.segments...)
	segs = append(segs, name)
	return Path{segments: segs}, nil
}

func (p Path) String() string { return strings.Join(p.segments, Separator) }

// IsRoot reports whether p has no segments.
func (p Path) IsRoot() bool { return len(p.segments) == 0 }

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segments) }

// Segments returns a copy of the segments.
func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Name returns the last segment, or "" for the root.
func (p Path) Name() string {
	if p.IsRoot() {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Parent returns p without its last segment. The parent of the root is the root.
func (p Path) Parent() Path {
	if p.IsRoot() {
		return p
	}
	return Path{segments: p.segments[:len(p.segments)-1]}
}

// Equal compares segment by segment.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a full-segment prefix of p, or equal to it.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.segments) > len(p.segments) {
		return false
	}
	for i := range prefix.segments {
		if p.segments[i] != prefix.segments[i] {
			return false
		}
	}
	return true
}

// IsDescendantOf reports whether ancestor is a strict segment prefix of p.
// Every non-root path descends from the root.
func (p Path) IsDescendantOf(ancestor Path) bool {
	return len(p.segments) > len(ancestor.segments) && p.HasPrefix(ancestor)
}

// Rebase replaces oldPrefix in p with newPrefix. oldPrefix must be a
// full-segment prefix of p or equal to it.
func Rebase(p, oldPrefix, newPrefix Path) (Path, error) {
	if !p.HasPrefix(oldPrefix) {
		return Path{}, fmt.Errorf("%w: %q is not under %q", common.ErrInvalidPath, p, oldPrefix)
	}
	rest := p.segments[len(oldPrefix.segments):]
	segs := make([]string, 0, len(newPrefix.segments)+len(rest))
	segs = append(segs, newPrefix.segments...)
	segs = append(segs, rest...)
	return Path{segments: segs}, nil
}

// FullPath computes the full path string of a folder record.
func FullPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + Separator + name
}

// IsUnder reports whether s equals prefix or lies beneath it, comparing whole
// segments only: "docs" is under "docs" and "docs/a" is under "docs", while
// "docs2" is not.
func IsUnder(s, prefix string) bool {
	if prefix == "" {
		return true
	}
	return s == prefix || strings.HasPrefix(s, prefix+Separator)
}

// RebaseString is Rebase on raw record strings.
func RebaseString(s, oldPrefix, newPrefix string) (string, error) {
	p, err := Parse(s)
	if err != nil {
		return "", err
	}
	oldP, err := Parse(oldPrefix)
	if err != nil {
		return "", err
	}
	newP, err := Parse(newPrefix)
	if err != nil {
		return "", err
	}
	r, err := Rebase(p, oldP, newP)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}
