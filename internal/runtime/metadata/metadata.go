// Package metadata holds the string header map that travels next to a broker
// record body.
package metadata

import "strings"

// Metadata represents the headers carried alongside a record.
type Metadata map[string]string

func (m Metadata) cloneWithExtra(extra int) Metadata {
	size := len(m) + extra
	if size <= 0 {
		return Metadata{}
	}

	cloned := make(Metadata, size)
	for k, v := range m {
		cloned[k] = v
	}
	return cloned
}

// Clone returns a shallow copy of the metadata map.
func (m Metadata) Clone() Metadata {
	return m.cloneWithExtra(0)
}

// With returns a cloned metadata map containing the provided key/value pair.
func (m Metadata) With(key, value string) Metadata {
	cloned := m.cloneWithExtra(1)
	cloned[key] = normalizeValue(value)
	return cloned
}

// Get returns the value stored under key, or "" when the header is absent.
func (m Metadata) Get(key string) string {
	return m[key]
}

// New constructs a Metadata map from alternating key/value pairs. A trailing
// key without a value is ignored.
func New(pairs ...string) Metadata {
	md := make(Metadata, len(pairs)/2)
	for i := 0; i < len(pairs)-1; i += 2 {
		md[pairs[i]] = normalizeValue(pairs[i+1])
	}
	return md
}

// normalizeValue maps whitespace-only values to the empty string so consumers
// never have to distinguish "missing" from "blank".
func normalizeValue(v string) string {
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return v
}
