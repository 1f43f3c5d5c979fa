// Package application contains the directive-driven parse/fetch/merge engine.
package application

import (
	"strconv"
	"strings"

	"github.com/ericfisherdev/profilesync/internal/domain/model"
)

const (
	// startMarker opens a managed block. The full start grammar is:
	//   #!profile-sync <locator> [branch=<name>] filename=<path> -- [key=value ...]
	startMarker = "#!profile-sync"

	// stopMarker closes a managed block. It takes no arguments.
	stopMarker = "#!profile-sync-stop"

	// overrideSeparator splits source parameters from config overrides on a
	// start-directive line.
	overrideSeparator = "--"
)

// lineKind classifies a credentials-file line for the rewrite state machine.
type lineKind int

const (
	linePlain lineKind = iota
	lineStart
	lineStop
)

// classifyLine reports whether a line is a start directive, a stop directive,
// or plain content, looking only at the first whitespace-separated token.
// Leading whitespace before the marker is allowed. Full validation of a start
// line is parseStartDirective's job.
func classifyLine(line string) lineKind {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return linePlain
	}
	switch fields[0] {
	case startMarker:
		return lineStart
	case stopMarker:
		return lineStop
	default:
		return linePlain
	}
}

// parseStartDirective parses a start-directive line into a Directive.
// defaultBranch fills in Branch when the line omits branch=. lineNo is the
// 1-based position of the line in the credentials file.
//
// The parser is pure: text in, structured value or error out.
func parseStartDirective(line string, lineNo int, defaultBranch string) (*model.Directive, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, &model.MalformedDirectiveError{Line: lineNo, Reason: "missing locator"}
	}

	d := &model.Directive{
		Locator: fields[1],
		Branch:  defaultBranch,
		Line:    lineNo,
	}

	// Source parameters between the locator and the -- separator.
	i := 2
	sawSeparator := false
	for ; i < len(fields); i++ {
		token := fields[i]
		if token == overrideSeparator {
			sawSeparator = true
			i++
			break
		}
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			return nil, &model.MalformedDirectiveError{
				Line:   lineNo,
				Reason: "unexpected token " + strconv.Quote(token) + " before separator",
			}
		}
		switch key {
		case "branch":
			d.Branch = value
		case "filename":
			d.Filename = value
		default:
			return nil, &model.MalformedDirectiveError{
				Line:   lineNo,
				Reason: "unknown source parameter " + strconv.Quote(key),
			}
		}
	}
	if !sawSeparator {
		return nil, &model.MalformedDirectiveError{Line: lineNo, Reason: "missing -- separator"}
	}
	if d.Filename == "" {
		return nil, &model.MalformedDirectiveError{Line: lineNo, Reason: "missing filename parameter"}
	}
	if d.Branch == "" {
		return nil, &model.MalformedDirectiveError{Line: lineNo, Reason: "empty branch parameter"}
	}

	// Override tokens after the separator. Duplicate keys resolve last-wins.
	for ; i < len(fields); i++ {
		key, value, ok := strings.Cut(fields[i], "=")
		if !ok || key == "" {
			return nil, &model.MalformedDirectiveError{
				Line:   lineNo,
				Reason: "override token " + strconv.Quote(fields[i]) + " is not key=value",
			}
		}
		d.Overrides.Set(key, value)
	}

	return d, nil
}

// checkStopDirective validates that a stop line carries no extra tokens.
func checkStopDirective(line string, lineNo int) error {
	if len(strings.Fields(line)) != 1 {
		return &model.MalformedDirectiveError{Line: lineNo, Reason: "stop directive takes no arguments"}
	}
	return nil
}
