// Package password holds the hashing discipline for stored secrets.
// Every write path that can change a secret goes through HashIfChanged.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor. Tests lower it to bcrypt.MinCost.
var Cost = bcrypt.DefaultCost

var ErrEmpty = errors.New("password is empty")

// Hash returns a salted one-way hash of plain. Two calls with the same
// plaintext never return the same hash.
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Matches compares plain against a stored hash in constant time.
func Matches(hash, plain string) bool {
	if hash == "" || plain == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashIfChanged decides what to persist for a secret field on update.
// An empty candidate, or one equal to the stored hash, keeps the stored
// hash untouched; anything else is hashed with a fresh salt.
func HashIfChanged(storedHash, candidate string) (string, bool, error) {
	if candidate == "" || candidate == storedHash {
		return storedHash, false, nil
	}
	hashed, err := Hash(candidate)
	if err != nil {
		return storedHash, false, err
	}
	return hashed, true, nil
}
