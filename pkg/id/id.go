// Package id generates random identifiers for audit events and tokens.
package id

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// New returns a random (version 4) UUID.
func New() uuid.UUID { return uuid.New() }

// TokenID returns a random UUID as 32 lowercase hex characters, the form
// carried in the jti claim.
func TokenID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
