package application

import (
	"log/slog"
	"strings"

	"github.com/ericfisherdev/profilesync/internal/domain/model"
)

// parseProfiles parses fetched profile text into ordered sections. The format
// is INI-like: [name] headers followed by key = value lines. Blank lines and
// comment lines (# or ;) are dropped; re-serialization is canonical, not
// content-preserving. A key line outside any section header, or any other
// unrecognized line, is a *model.ProfileParseError.
//
// An empty file yields zero sections, which is not an error: the directive
// becomes a no-op span.
func parseProfiles(text string, d *model.Directive) ([]model.ProfileSection, error) {
	var sections []model.ProfileSection

	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";"):
			continue
		case strings.HasPrefix(line, "["):
			if !strings.HasSuffix(line, "]") {
				return nil, parseErr(d, lineNo+1, "unterminated section header")
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name == "" {
				return nil, parseErr(d, lineNo+1, "empty section name")
			}
			sections = append(sections, model.ProfileSection{Name: name})
		case strings.Contains(line, "="):
			if len(sections) == 0 {
				return nil, parseErr(d, lineNo+1, "key line outside any section")
			}
			key, value, _ := strings.Cut(line, "=")
			sections[len(sections)-1].Entries.Set(strings.TrimSpace(key), strings.TrimSpace(value))
		default:
			return nil, parseErr(d, lineNo+1, "line is neither a section header nor key = value")
		}
	}

	return sections, nil
}

func parseErr(d *model.Directive, line int, reason string) *model.ProfileParseError {
	return &model.ProfileParseError{
		Locator:  d.Locator,
		Filename: d.Filename,
		Line:     line,
		Reason:   reason,
	}
}

// applyOverrides injects the directive's overrides into every section:
// replace in place when the key exists, append when it does not. Overrides
// never delete entries.
func applyOverrides(sections []model.ProfileSection, overrides *model.Entries) {
	if overrides.Len() == 0 {
		return
	}
	for i := range sections {
		for _, o := range overrides.All() {
			sections[i].Entries.Set(o.Key, o.Value)
		}
	}
}

// checkMissingOverrides enforces the empty-value convention: a remote entry
// with an empty value marks a caller-specific setting the directive must
// override. When warnOnly is set, violations log a warning instead of
// failing the run.
func checkMissingOverrides(sections []model.ProfileSection, d *model.Directive, warnOnly bool) error {
	for _, s := range sections {
		for _, e := range s.Entries.All() {
			if e.Value != "" || d.Overrides.Has(e.Key) {
				continue
			}
			if warnOnly {
				slog.Warn("no override provided for empty configuration key",
					"section", s.Name,
					"key", e.Key,
					"locator", d.Locator,
					"filename", d.Filename,
				)
				continue
			}
			return &model.MissingOverrideError{
				Locator:  d.Locator,
				Filename: d.Filename,
				Section:  s.Name,
				Key:      e.Key,
			}
		}
	}
	return nil
}

// renderSections serializes merged sections into the lines of a managed
// block: a [name] header, its key = value lines in order, and exactly one
// blank line between consecutive sections. No leading or trailing blank line.
func renderSections(sections []model.ProfileSection) []string {
	var lines []string
	for i, s := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "["+s.Name+"]")
		for _, e := range s.Entries.All() {
			lines = append(lines, e.Key+" = "+e.Value)
		}
	}
	return lines
}
