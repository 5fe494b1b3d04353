// Package nameutil provides record and entity-kind name validation for recall.
package nameutil

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/recall-project/recall/pkg/errclass"
)

var kindRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// MaxNameLength bounds record display names.
const MaxNameLength = 200

// ValidateKind validates an entity-kind label (lower-case machine label,
// e.g. "customer").
func ValidateKind(kind string) error {
	if kind == "" {
		return errclass.ErrNameInvalid.WithMessage("kind must not be empty")
	}
	if !kindRegex.MatchString(kind) {
		return errclass.ErrNameInvalid.WithMessagef("kind must match [a-z][a-z0-9_-]*: %s", kind)
	}
	return nil
}

// ValidateName checks a record display name. Names are free-form human
// text; only emptiness, length and control characters are rejected.
func ValidateName(name string) error {
	name = Normalize(name)
	if name == "" {
		return errclass.ErrNameInvalid.WithMessage("name must not be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return errclass.ErrNameInvalid.WithMessagef("name exceeds %d characters", MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return errclass.ErrNameInvalid.WithMessagef("name must not contain control characters: %q", name)
		}
	}
	return nil
}

// Normalize NFC-normalizes a name so that composed and decomposed
// Unicode forms store and compare identically.
func Normalize(name string) string {
	return norm.NFC.String(name)
}
