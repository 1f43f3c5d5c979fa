package model

// Entry is a single key/value pair within an Entries collection.
type Entry struct {
	Key   string
	Value string
}

// Entries is an ordered key/value collection used for directive overrides and
// profile section contents. Keys are unique: setting an existing key replaces
// its value in place, preserving the key's original position. Iteration order
// is insertion order.
type Entries struct {
	list  []Entry
	index map[string]int
}

// Set stores the value for key. An existing key keeps its position; a new key
// is appended at the end.
func (e *Entries) Set(key, value string) {
	if e.index == nil {
		e.index = make(map[string]int)
	}
	if i, ok := e.index[key]; ok {
		e.list[i].Value = value
		return
	}
	e.index[key] = len(e.list)
	e.list = append(e.list, Entry{Key: key, Value: value})
}

// Get returns the value for key and whether the key is present.
func (e *Entries) Get(key string) (string, bool) {
	i, ok := e.index[key]
	if !ok {
		return "", false
	}
	return e.list[i].Value, true
}

// Has reports whether key is present.
func (e *Entries) Has(key string) bool {
	_, ok := e.index[key]
	return ok
}

// Len returns the number of entries.
func (e *Entries) Len() int {
	return len(e.list)
}

// All returns the entries in insertion order. The returned slice is a copy;
// mutating it does not affect the collection.
func (e *Entries) All() []Entry {
	out := make([]Entry, len(e.list))
	copy(out, e.list)
	return out
}
