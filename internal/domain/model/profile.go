package model

// ProfileSection is one named group of key/value pairs parsed from a fetched
// profile file: a [name] header plus the key lines that follow it. Entry order
// matches the remote file; overrides mutate or append entries but never
// remove them.
type ProfileSection struct {
	Name    string
	Entries Entries
}
