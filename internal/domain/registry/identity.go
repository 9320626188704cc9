package registry

import "strings"

// IdentityKey is a national ID in canonical form: no separators, no
// surrounding whitespace, upper case. It is the unique key of a Beneficiary.
type IdentityKey string

var separatorStripper = strings.NewReplacer(".", "", "-", "")

// NormalizeIdentity canonicalizes a raw national ID such as "12.345.678-k"
// into "12345678K". It never fails; blank input yields the empty key.
func NormalizeIdentity(raw string) IdentityKey {
	return IdentityKey(strings.ToUpper(strings.TrimSpace(separatorStripper.Replace(raw))))
}

// IsEmpty reports whether no identity was supplied
func (k IdentityKey) IsEmpty() bool {
	return k == ""
}

// String implements fmt.Stringer
func (k IdentityKey) String() string {
	return string(k)
}

// Keys converts a slice of identity keys to plain strings for queries
func Keys(keys []IdentityKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
