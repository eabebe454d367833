// Package address computes the short identifiers used as table keys for
// documents and fields.
package address

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Scheme prefixes every address. It is a namespacing convention, not a URL.
const Scheme = "https://"

// Width is the number of hex digits kept from the digest.
const Width = 7

// Address identifies a document path or a field path.
type Address string

// Of hashes s and returns its address. Collisions are possible (28 bits) and
// are not detected.
func Of(s string) Address {
	sum := md5.Sum([]byte(s))
	return Address(Scheme + hex.EncodeToString(sum[:])[:Width])
}

// File returns the address of a document path relative to its processing
// root. Backslashes are normalised so Windows and POSIX runs agree.
func File(rel string) Address {
	return Of(strings.ReplaceAll(rel, "\\", "/"))
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return string(a)
}
