package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/profilesync/internal/domain/model"
)

func testDirective(overrides ...[2]string) *model.Directive {
	d := &model.Directive{
		Locator:  "ssh://git.example.com/team/profiles.git",
		Branch:   "master",
		Filename: "roles",
		Line:     1,
	}
	for _, kv := range overrides {
		d.Overrides.Set(kv[0], kv[1])
	}
	return d
}

func TestParseProfiles_OrderPreserved(t *testing.T) {
	text := "[beta]\nrole_arn = arn:b\nregion = eu-west-1\n\n[alpha]\nrole_arn = arn:a\n"

	sections, err := parseProfiles(text, testDirective())

	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "beta", sections[0].Name)
	assert.Equal(t, "alpha", sections[1].Name)
	assert.Equal(t, []model.Entry{
		{Key: "role_arn", Value: "arn:b"},
		{Key: "region", Value: "eu-west-1"},
	}, sections[0].Entries.All())
}

func TestParseProfiles_CommentsAndBlanksDropped(t *testing.T) {
	text := "# shared roles\n\n[a]\n; inline note\nrole_arn = arn:a\n\n"

	sections, err := parseProfiles(text, testDirective())

	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, 1, sections[0].Entries.Len())
}

func TestParseProfiles_CRLF(t *testing.T) {
	text := "[a]\r\nrole_arn = arn:a\r\n"

	sections, err := parseProfiles(text, testDirective())

	require.NoError(t, err)
	v, ok := sections[0].Entries.Get("role_arn")
	require.True(t, ok)
	assert.Equal(t, "arn:a", v)
}

func TestParseProfiles_Empty(t *testing.T) {
	sections, err := parseProfiles("", testDirective())

	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestParseProfiles_KeyOutsideSection(t *testing.T) {
	_, err := parseProfiles("role_arn = arn:a\n[a]\n", testDirective())

	var parseErr *model.ProfileParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, parseErr.Line)
	assert.Equal(t, "roles", parseErr.Filename)
}

func TestParseProfiles_BadLines(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unterminated header", "[a\nrole_arn = arn:a\n"},
		{"empty section name", "[]\n"},
		{"garbage line", "[a]\nthis is not a key line\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseProfiles(tt.text, testDirective())

			var parseErr *model.ProfileParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestApplyOverrides_EverySection(t *testing.T) {
	sections, err := parseProfiles("[a]\nrole_arn = arn:a\n\n[b]\nrole_arn = arn:b\n", testDirective())
	require.NoError(t, err)

	d := testDirective([2]string{"source_profile", "me"})
	applyOverrides(sections, &d.Overrides)

	for _, s := range sections {
		v, ok := s.Entries.Get("source_profile")
		require.True(t, ok, "section %s missing override", s.Name)
		assert.Equal(t, "me", v)
	}
}

func TestApplyOverrides_ReplacesInPlace(t *testing.T) {
	sections, err := parseProfiles("[a]\nregion = us-east-1\nrole_arn = arn:a\n", testDirective())
	require.NoError(t, err)

	d := testDirective([2]string{"region", "eu-central-1"})
	applyOverrides(sections, &d.Overrides)

	assert.Equal(t, []model.Entry{
		{Key: "region", Value: "eu-central-1"},
		{Key: "role_arn", Value: "arn:a"},
	}, sections[0].Entries.All())
}

func TestCheckMissingOverrides_Error(t *testing.T) {
	d := testDirective()
	sections, err := parseProfiles("[a]\nrole_arn = arn:a\nmfa_serial =\n", d)
	require.NoError(t, err)
	applyOverrides(sections, &d.Overrides)

	err = checkMissingOverrides(sections, d, false)

	var missing *model.MissingOverrideError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "a", missing.Section)
	assert.Equal(t, "mfa_serial", missing.Key)
}

func TestCheckMissingOverrides_SatisfiedByOverride(t *testing.T) {
	d := testDirective([2]string{"mfa_serial", "arn:aws:iam::1:mfa/me"})
	sections, err := parseProfiles("[a]\nrole_arn = arn:a\nmfa_serial =\n", d)
	require.NoError(t, err)
	applyOverrides(sections, &d.Overrides)

	assert.NoError(t, checkMissingOverrides(sections, d, false))
}

func TestCheckMissingOverrides_WarnOnly(t *testing.T) {
	d := testDirective()
	sections, err := parseProfiles("[a]\nmfa_serial =\n", d)
	require.NoError(t, err)

	assert.NoError(t, checkMissingOverrides(sections, d, true))
}

func TestRenderSections(t *testing.T) {
	d := testDirective()
	sections, err := parseProfiles("[a]\nk1 = v1\nk2 = v2\n\n[b]\nk1 = v1\n", d)
	require.NoError(t, err)

	lines := renderSections(sections)

	assert.Equal(t, []string{
		"[a]",
		"k1 = v1",
		"k2 = v2",
		"",
		"[b]",
		"k1 = v1",
	}, lines)
}

func TestRenderSections_Empty(t *testing.T) {
	assert.Empty(t, renderSections(nil))
}
