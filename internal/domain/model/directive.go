// Package model holds the domain types for credentials-file synchronization.
package model

// Directive is the parsed form of a start-directive line. It declares one
// managed block: which remote source supplies the profile definitions, which
// file within that source to read, and which key/value overrides to inject
// into every profile section pulled from it.
type Directive struct {
	// Locator is the remote repository address. It is opaque to the core;
	// fetcher adapters decide whether they recognize it.
	Locator string

	// Branch of the remote source. The parser fills in the configured
	// default when the directive omits branch=.
	Branch string

	// Filename is the path of the profile file within the fetched working
	// tree. Mandatory.
	Filename string

	// Overrides are applied to every section parsed from the fetched file.
	// Insertion order is preserved; duplicate keys on the directive line
	// resolve last-wins before the Directive is constructed.
	Overrides Entries

	// Line is the 1-based line number of the directive in the credentials
	// file, carried for error reporting.
	Line int
}
