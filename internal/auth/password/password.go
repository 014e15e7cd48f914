package password

import "golang.org/x/crypto/bcrypt"

const minLength = 8

// Hash hashes a plaintext password with bcrypt.
func Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plain matches the stored hash.
func Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// StrongEnough applies the minimum password policy.
func StrongEnough(plain string) bool {
	return len(plain) >= minLength
}
