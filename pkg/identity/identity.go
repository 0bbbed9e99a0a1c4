// Package identity computes the stable document identity for a location.
//
// The ID is an MD5 digest of the location type concatenated with the
// source-specific primary key. It is content-derived and independent of
// attribute values, which is what makes index synchronization idempotent:
// re-running the engine over the same logical places produces the same IDs,
// so the sync step sees updates instead of create+delete churn.
package identity

import (
	"crypto/md5"
	"encoding/hex"
)

// Resolve returns the canonical ID for a (type, primaryKey) pair as a
// lowercase hex string. Pure function: same input, same output, no I/O.
//
// MD5 is used as a 128-bit content hash, not for security. The digest must
// stay MD5 so IDs already stored in the search index remain stable.
func Resolve(locType, primaryKey string) string {
	sum := md5.Sum([]byte(locType + primaryKey))
	return hex.EncodeToString(sum[:])
}
