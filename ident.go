package replay

import (
	"fmt"
	"strings"
)

// Mode selects the representation a replay is served in.
type Mode string

const (
	ModeHTML Mode = ""
	ModeJSON Mode = "json"
	ModeLog  Mode = "log"
)

// Identifier is a parsed replay path segment:
//
//	<formatid>-<number>[-<password>][.<mode>]
type Identifier struct {
	// ID is the canonical replay id, "<formatid>-<number>".
	ID string
	// Password is the supplied credential, nil when the segment has none.
	Password *string
	// Mode is the lower-cased suffix after the first '.'.
	Mode Mode
}

// ParseIdentifier splits a path segment into id, credential and mode.
// The mode is not validated here; unsupported modes are rejected when
// rendering, after the credential check. Anything after a second '.' or
// a third '-' is ignored.
func ParseIdentifier(segment string) (Identifier, error) {
	rest, mode, _ := strings.Cut(segment, ".")
	mode, _, _ = strings.Cut(mode, ".")

	format, rest, ok := strings.Cut(rest, "-")
	if !ok {
		return Identifier{}, fmt.Errorf("%w: %q", ErrMalformed, segment)
	}
	number, rest, hasPassword := strings.Cut(rest, "-")

	if format == "" || number == "" || strings.ContainsAny(format+number, `/\`) {
		return Identifier{}, fmt.Errorf("%w: %q", ErrMalformed, segment)
	}

	id := Identifier{
		ID:   format + "-" + number,
		Mode: Mode(strings.ToLower(mode)),
	}
	if hasPassword {
		password, _, _ := strings.Cut(rest, "-")
		id.Password = &password
	}
	return id, nil
}

// ElementID names the embedded page elements for a replay viewed with password.
func ElementID(id string, password *string) string {
	if password == nil {
		return id
	}
	return id + "-" + *password + "pw"
}
