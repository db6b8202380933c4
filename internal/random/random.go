package random

import (
	"crypto/rand"
	"math/big"

	"github.com/myrjola/casebook/internal/errors"
)

var allowedLetters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Letters returns a cryptographically random string of n ASCII letters.
//
// It is used for naming throwaway databases, e.g., the per-test in-memory SQLite databases.
func Letters(n uint) (string, error) {
	letters := make([]rune, n)
	maxIndex := big.NewInt(int64(len(allowedLetters)))
	for i := range letters {
		letterIndex, err := rand.Int(rand.Reader, maxIndex)
		if err != nil {
			return "", errors.Wrap(err, "random int")
		}
		letters[i] = allowedLetters[letterIndex.Int64()]
	}
	return string(letters), nil
}
