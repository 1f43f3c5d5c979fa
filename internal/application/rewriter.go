package application

import (
	"context"
	"strings"

	"github.com/ericfisherdev/profilesync/internal/domain/model"
)

// rewriteState tracks where the scanner is within the credentials file.
type rewriteState int

const (
	// stateCopy passes lines through unchanged.
	stateCopy rewriteState = iota
	// stateManaged suppresses stale block content until the stop directive.
	stateManaged
)

// blockResolver produces the merged block lines for one directive. The
// rewriter stays free of fetch and merge concerns so the state machine is
// testable with a fake resolver.
type blockResolver func(ctx context.Context, d *model.Directive) ([]string, error)

// rewrite runs a single pass over the raw input lines and returns the new
// file content plus the sources referenced by its directives. Unmanaged
// lines, start lines, and stop lines are emitted verbatim, original line
// terminators included. Generated block lines use LF.
//
// Any error aborts the pass; the caller must not write output for a failed
// pass.
func rewrite(ctx context.Context, content string, defaultBranch string, resolve blockResolver) (string, []model.SyncSource, error) {
	var out strings.Builder
	var sources []model.SyncSource

	state := stateCopy
	openLine := 0

	for i, raw := range splitRawLines(content) {
		lineNo := i + 1
		line := strings.TrimRight(raw, "\r\n")
		kind := classifyLine(line)

		switch state {
		case stateCopy:
			switch kind {
			case linePlain:
				out.WriteString(raw)

			case lineStop:
				return "", nil, &model.UnmatchedStopError{Line: lineNo}

			case lineStart:
				d, err := parseStartDirective(line, lineNo, defaultBranch)
				if err != nil {
					return "", nil, err
				}
				if err := ctx.Err(); err != nil {
					return "", nil, err
				}
				block, err := resolve(ctx, d)
				if err != nil {
					return "", nil, err
				}
				out.WriteString(raw)
				if !strings.HasSuffix(raw, "\n") {
					out.WriteString("\n")
				}
				for _, bl := range block {
					out.WriteString(bl)
					out.WriteString("\n")
				}
				sources = append(sources, model.SyncSource{
					Locator:  d.Locator,
					Branch:   d.Branch,
					Filename: d.Filename,
				})
				state = stateManaged
				openLine = lineNo
			}

		case stateManaged:
			switch kind {
			case lineStop:
				if err := checkStopDirective(line, lineNo); err != nil {
					return "", nil, err
				}
				out.WriteString(raw)
				state = stateCopy

			case lineStart:
				return "", nil, &model.NestedDirectiveError{Line: lineNo, OpenLine: openLine}

			default:
				// Stale managed content from the previous run; dropped.
			}
		}
	}

	if state == stateManaged {
		return "", nil, &model.UnterminatedBlockError{OpenLine: openLine}
	}

	return out.String(), sources, nil
}

// splitRawLines splits content into lines that keep their terminators, so the
// rewriter can reproduce unmanaged lines byte for byte. A final line without
// a trailing newline is returned as-is.
func splitRawLines(content string) []string {
	var lines []string
	for len(content) > 0 {
		i := strings.IndexByte(content, '\n')
		if i < 0 {
			lines = append(lines, content)
			break
		}
		lines = append(lines, content[:i+1])
		content = content[i+1:]
	}
	return lines
}
