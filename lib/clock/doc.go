// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code
// injects Real(); tests inject Fake() and advance time explicitly.
//
// Corkboard uses the clock in two places: post creation timestamps
// and the /sync retry backoff. Both are injected rather than calling
// the time package directly so that tests stay deterministic.
package clock
