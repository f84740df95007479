package random

import (
	crypto_rand "crypto/rand"
	"math/big"
)

const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func NewSeed() int64 {
	const MaxUint = ^uint(0)
	const MaxInt = int(MaxUint >> 1)
	nBig, err := crypto_rand.Int(crypto_rand.Reader, big.NewInt(int64(MaxInt)))
	if err != nil {
		panic("cannot seed math/rand package with cryptographically secure random number generator")
	}

	return nBig.Int64()
}

// Code returns a short human-readable code (hand codes, session codes).
// Ambiguous characters (0/O, 1/I/L) are excluded from the alphabet.
func Code(length int) string {
	code := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		nBig, err := crypto_rand.Int(crypto_rand.Reader, max)
		if err != nil {
			panic("cannot generate a random code")
		}
		code[i] = codeAlphabet[nBig.Int64()]
	}
	return string(code)
}
