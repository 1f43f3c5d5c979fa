package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/profilesync/internal/domain/model"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want lineKind
	}{
		{"plain text", "aws_access_key_id = AKIA123", linePlain},
		{"empty", "", linePlain},
		{"section header", "[cool-user]", linePlain},
		{"start", "#!profile-sync ssh://h/r.git filename=roles --", lineStart},
		{"start with leading whitespace", "   #!profile-sync ssh://h/r.git filename=roles --", lineStart},
		{"stop", "#!profile-sync-stop", lineStop},
		{"stop with leading whitespace", "\t#!profile-sync-stop", lineStop},
		{"marker glued to text is plain", "#!profile-syncing along", linePlain},
		{"comment mentioning marker mid-line", "# see #!profile-sync docs", linePlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyLine(tt.line))
		})
	}
}

func TestParseStartDirective_Full(t *testing.T) {
	line := "#!profile-sync ssh://git.example.com/team/profiles.git branch=prod filename=roles -- source_profile=me mfa_serial=arn:aws:iam::1:mfa/me"

	d, err := parseStartDirective(line, 7, "master")

	require.NoError(t, err)
	assert.Equal(t, "ssh://git.example.com/team/profiles.git", d.Locator)
	assert.Equal(t, "prod", d.Branch)
	assert.Equal(t, "roles", d.Filename)
	assert.Equal(t, 7, d.Line)
	assert.Equal(t, []model.Entry{
		{Key: "source_profile", Value: "me"},
		{Key: "mfa_serial", Value: "arn:aws:iam::1:mfa/me"},
	}, d.Overrides.All())
}

func TestParseStartDirective_DefaultBranch(t *testing.T) {
	d, err := parseStartDirective("#!profile-sync ssh://h/r.git filename=roles --", 1, "master")

	require.NoError(t, err)
	assert.Equal(t, "master", d.Branch)
}

func TestParseStartDirective_NoOverrides(t *testing.T) {
	d, err := parseStartDirective("#!profile-sync ssh://h/r.git filename=roles --", 1, "master")

	require.NoError(t, err)
	assert.Zero(t, d.Overrides.Len())
}

func TestParseStartDirective_DuplicateOverrideLastWins(t *testing.T) {
	d, err := parseStartDirective("#!profile-sync ssh://h/r.git filename=roles -- k=v1 k=v2", 1, "master")

	require.NoError(t, err)
	v, ok := d.Overrides.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
	assert.Equal(t, 1, d.Overrides.Len())
}

func TestParseStartDirective_EmptyOverrideValue(t *testing.T) {
	d, err := parseStartDirective("#!profile-sync ssh://h/r.git filename=roles -- region=", 1, "master")

	require.NoError(t, err)
	v, ok := d.Overrides.Get("region")
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestParseStartDirective_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"missing locator", "#!profile-sync"},
		{"missing filename", "#!profile-sync ssh://h/r.git --"},
		{"missing separator", "#!profile-sync ssh://h/r.git filename=roles"},
		{"missing separator with overrides", "#!profile-sync ssh://h/r.git filename=roles k=v"},
		{"bare token before separator", "#!profile-sync ssh://h/r.git roles --"},
		{"unknown source parameter", "#!profile-sync ssh://h/r.git depth=1 filename=roles --"},
		{"override without equals", "#!profile-sync ssh://h/r.git filename=roles -- bogus"},
		{"override with empty key", "#!profile-sync ssh://h/r.git filename=roles -- =v"},
		{"empty branch", "#!profile-sync ssh://h/r.git branch= filename=roles --"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseStartDirective(tt.line, 3, "master")

			var malformed *model.MalformedDirectiveError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, 3, malformed.Line)
		})
	}
}

func TestCheckStopDirective(t *testing.T) {
	assert.NoError(t, checkStopDirective("#!profile-sync-stop", 9))

	err := checkStopDirective("#!profile-sync-stop now", 9)
	var malformed *model.MalformedDirectiveError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 9, malformed.Line)
}
