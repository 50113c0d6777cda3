package internal

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
)

// NewNumericCode returns a uniformly random integer in [low, high], rendered
// as its decimal string, using the platform CSPRNG. With low=1000 and
// high=9999 every code is exactly four digits with no leading zero.
func NewNumericCode(low, high int64) (string, error) {
	if low < 0 || high <= low {
		return "", errors.New("invalid code range")
	}

	n, err := rand.Int(rand.Reader, big.NewInt(high-low+1))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(low+n.Int64(), 10), nil
}
