package service

import "golang.org/x/crypto/bcrypt"

// bcrypt ignores everything past 72 bytes. We truncate explicitly before
// hashing AND before verifying so the two sides always agree; changing this
// silently would break verification of every previously stored hash.
const passwordByteLimit = 72

func truncatePassword(plaintext string) []byte {
	b := []byte(plaintext)
	if len(b) > passwordByteLimit {
		b = b[:passwordByteLimit]
	}
	return b
}

// HashPassword derives a salted bcrypt hash from plaintext. The plaintext is
// never logged and never leaves this package unhashed.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncatePassword(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored bcrypt hash.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(plaintext)) == nil
}
