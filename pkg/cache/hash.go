package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// fileKey maps a media key to a filesystem-safe name.
func fileKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:12])
}

// checksum is the hex SHA-256 of data, stored to detect truncated files.
func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
