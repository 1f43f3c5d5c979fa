package model

import "fmt"

// MalformedDirectiveError reports a directive line that does not match the
// directive grammar: missing filename, missing separator, or a bad token.
type MalformedDirectiveError struct {
	Line   int
	Reason string
}

func (e *MalformedDirectiveError) Error() string {
	return fmt.Sprintf("line %d: malformed directive: %s", e.Line, e.Reason)
}

// NestedDirectiveError reports a start directive encountered while a managed
// block opened earlier is still awaiting its stop directive.
type NestedDirectiveError struct {
	Line     int
	OpenLine int
}

func (e *NestedDirectiveError) Error() string {
	return fmt.Sprintf("line %d: nested start directive: block opened at line %d is still open", e.Line, e.OpenLine)
}

// UnmatchedStopError reports a stop directive with no open managed block.
type UnmatchedStopError struct {
	Line int
}

func (e *UnmatchedStopError) Error() string {
	return fmt.Sprintf("line %d: stop directive without a matching start directive", e.Line)
}

// UnterminatedBlockError reports end of input while a managed block is still
// open.
type UnterminatedBlockError struct {
	OpenLine int
}

func (e *UnterminatedBlockError) Error() string {
	return fmt.Sprintf("managed block opened at line %d has no stop directive", e.OpenLine)
}

// ProfileParseError reports a fetched profile file that is not valid section
// format, such as a key line outside any section header.
type ProfileParseError struct {
	Locator  string
	Filename string
	Line     int
	Reason   string
}

func (e *ProfileParseError) Error() string {
	return fmt.Sprintf("parsing %s from %s: line %d: %s", e.Filename, e.Locator, e.Line, e.Reason)
}

// MissingOverrideError reports a remote profile entry whose value is empty
// and for which the directive supplies no override. Empty values mark
// caller-specific settings the remote file expects the directive to fill in.
type MissingOverrideError struct {
	Locator  string
	Filename string
	Section  string
	Key      string
}

func (e *MissingOverrideError) Error() string {
	return fmt.Sprintf("%s from %s: section [%s]: no override provided for empty configuration key %q", e.Filename, e.Locator, e.Section, e.Key)
}
