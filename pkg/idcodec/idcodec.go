// Package idcodec encodes domain UUIDs as base58 strings for use in CLI
// output, export files, and platform-facing identifiers where a compact,
// URL-safe, visually unambiguous token is preferable to a raw UUID.
package idcodec

import (
	"github.com/akamensky/base58"
	"github.com/google/uuid"

	classroomerrors "github.com/edu-tools/classroom-repos/pkg/errors"
)

// Encode renders a UUID as a base58 string.
func Encode(id uuid.UUID) string {
	return base58.Encode(id[:])
}

// Decode parses a base58 string back into a UUID. It returns a Validation
// error if the string is not valid base58 or does not decode to exactly
// 16 bytes.
func Decode(s string) (uuid.UUID, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return uuid.UUID{}, classroomerrors.NewValidation("invalid base58 id: "+s, err)
	}
	if len(raw) != 16 {
		return uuid.UUID{}, classroomerrors.NewValidation("decoded id has wrong length")
	}
	var id uuid.UUID
	copy(id[:], raw)
	return id, nil
}

// MustEncode is a convenience wrapper for call sites that already know id
// is non-zero, such as formatting a freshly generated identifier.
func MustEncode(id uuid.UUID) string {
	return Encode(id)
}
