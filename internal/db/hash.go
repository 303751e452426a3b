package db

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the hex encoded SHA-256 of data. Search history stores
// it so repeated uploads of the same image can be grouped.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
