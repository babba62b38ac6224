package vip8

import (
	"crypto/rand"
	"log/slog"
)

// RandomSource provides the bytes used by the RND instruction
type RandomSource interface {
	RandomByte() byte
}

// RandomSourceFunc adapts a function into a RandomSource
type RandomSourceFunc func() byte

func (f RandomSourceFunc) RandomByte() byte {
	return f()
}

type CryptoRandom struct {
	buff [1]byte
}

func NewCryptoRandom() *CryptoRandom {
	return &CryptoRandom{}
}

// RandomByte implements RandomSource.
func (r *CryptoRandom) RandomByte() byte {
	n, err := rand.Read(r.buff[:])
	if n != 1 || err != nil {
		slog.Error("Error reading random byte", slog.Any("error", err))
		return 0
	}

	return r.buff[0]
}
