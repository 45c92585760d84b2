// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package identifier

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/corkboard/corkboard/lib/ref"
)

// Generator produces board tokens. Every token satisfies the format
// contract in lib/ref: exactly ref.TokenLength symbols from
// ref.TokenAlphabet.
type Generator interface {
	// NewToken returns a fresh token. Uniqueness is not guaranteed;
	// callers that need uniqueness within a set must check and retry.
	NewToken() string
}

// Real returns a Generator backed by crypto/rand. Each symbol is drawn
// uniformly from the alphabet, giving a 36^6 token space.
func Real() Generator { return realGenerator{} }

type realGenerator struct{}

var alphabetSize = big.NewInt(int64(len(ref.TokenAlphabet)))

func (realGenerator) NewToken() string {
	token := make([]byte, ref.TokenLength)
	for i := range token {
		index, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			// crypto/rand failure means the platform's entropy source
			// is broken; there is no reasonable fallback.
			panic(fmt.Sprintf("identifier: reading random bytes: %v", err))
		}
		token[i] = ref.TokenAlphabet[index.Int64()]
	}
	return string(token)
}
