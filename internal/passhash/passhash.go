// Package passhash wraps bcrypt for the per-request ownership checks.
// Every mutation re-proves ownership by verifying the supplied plaintext
// against the hash stored on the target row; there are no sessions.
package passhash

import "golang.org/x/crypto/bcrypt"

// Hash returns a salted bcrypt digest of plain. Two calls with the same
// input produce different digests; both verify.
func Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. A malformed hash is simply
// a mismatch, never an error.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
