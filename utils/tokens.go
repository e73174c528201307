package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TemporaryTokenExpiry bounds single-use verification/reset tokens.
const TemporaryTokenExpiry = 20 * time.Minute

// GenerateTemporaryToken creates a single-use token. The unhashed value is
// only ever sent in the one-time email link; the database stores the digest.
func GenerateTemporaryToken() (unhashed, hashed string, expiry time.Time, err error) {
	raw := make([]byte, 20)
	if _, err = rand.Read(raw); err != nil {
		return "", "", time.Time{}, err
	}

	unhashed = hex.EncodeToString(raw)
	hashed = HashToken(unhashed)
	expiry = time.Now().Add(TemporaryTokenExpiry)
	return unhashed, hashed, expiry, nil
}

// HashToken returns the hex SHA-256 digest of a presented token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
