package tokenize

import "github.com/cespare/xxhash/v2"

// termHash is the lookup hash shared with the rest of the server's hashing
// (see internal/digest), so the inverted index keys and digest/fingerprint
// hashes both come from the same non-cryptographic hash family.
func termHash(lowercased string) uint64 {
	return xxhash.Sum64String(lowercased)
}
