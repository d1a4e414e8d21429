// Package rng supplies the entropy source used for winner selection.
// On chain this role is played by a verifiable randomness beacon; the
// engine only requires that each call returns one fresh, independent,
// uniformly distributed draw.
package rng

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Source draws one uniform integer in [min, max] per call
type Source interface {
	DrawUniform(min, max int64) (int64, error)
}

// CryptoSource draws from crypto/rand. The rejection sampling needed
// for uniformity over an arbitrary range is handled by rand.Int.
type CryptoSource struct{}

// NewCryptoSource creates a crypto/rand backed source
func NewCryptoSource() CryptoSource { return CryptoSource{} }

// DrawUniform returns a uniform integer in [min, max] inclusive
func (CryptoSource) DrawUniform(min, max int64) (int64, error) {
	if max < min {
		return 0, fmt.Errorf("rng: invalid range [%d, %d]", min, max)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(max-min+1))
	if err != nil {
		return 0, fmt.Errorf("rng: read entropy: %w", err)
	}
	return min + n.Int64(), nil
}
