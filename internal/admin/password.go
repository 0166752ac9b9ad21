package admin

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var adjectives = []string{
	"Swift", "Bright", "Clear", "Smart", "Quick", "Fresh", "Bold", "Clean",
	"Sharp", "Cool", "Fast", "Calm", "Strong", "Safe", "Blue", "Green",
}

var nouns = []string{
	"River", "Mountain", "Ocean", "Forest", "Cloud", "Star", "Moon", "Sun",
	"Bridge", "Tower", "Garden", "Valley", "Harbor", "Castle", "Island", "Peak",
}

// GenerateTemporaryPassword produces a human-readable temporary password
// in the form Adjective+Noun+3 digits. It is handed to the user out of
// band and replaced on first login.
func GenerateTemporaryPassword() (string, error) {
	adjective, err := pick(adjectives)
	if err != nil {
		return "", err
	}
	noun, err := pick(nouns)
	if err != nil {
		return "", err
	}
	number, err := rand.Int(rand.Reader, big.NewInt(900))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s%d", adjective, noun, number.Int64()+100), nil
}

func pick(words []string) (string, error) {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(len(words))))
	if err != nil {
		return "", err
	}
	return words[i.Int64()], nil
}
