// Package ident produces the short random suffixes embedded in creator tokens and gift ids.
package ident

import (
	"fmt"

	"github.com/google/uuid"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// maxSuffixLength bounds a suffix to the randomness carried by a single UUIDv4.
const maxSuffixLength = 16

// Base36Suffix returns length lowercase base-36 characters drawn from a random UUID.
func Base36Suffix(length int) (string, error) {
	if length <= 0 || length > maxSuffixLength {
		return "", fmt.Errorf("ident: suffix length %d out of range 1..%d", length, maxSuffixLength)
	}
	value, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	suffix := make([]byte, length)
	for index := range suffix {
		suffix[index] = base36Alphabet[int(value[index])%len(base36Alphabet)]
	}
	return string(suffix), nil
}
