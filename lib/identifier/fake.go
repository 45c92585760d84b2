// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

package identifier

import "fmt"

// Fake returns a Generator that yields the given tokens in order. When
// the script is exhausted it continues with a deterministic counter
// sequence ("FAKE01", "FAKE02", ...), so tests that only care about
// the first few tokens don't need to script every allocation.
func Fake(tokens ...string) *FakeGenerator {
	return &FakeGenerator{scripted: tokens}
}

// FakeGenerator is a deterministic Generator for tests. Not safe for
// concurrent use: the relay serializes allocations anyway.
type FakeGenerator struct {
	scripted []string
	position int
	counter  int
}

// NewToken returns the next scripted token, falling back to the
// counter sequence once the script runs out.
func (g *FakeGenerator) NewToken() string {
	if g.position < len(g.scripted) {
		token := g.scripted[g.position]
		g.position++
		return token
	}
	g.counter++
	return fmt.Sprintf("FAKE%02d", g.counter)
}
