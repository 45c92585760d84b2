// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides helpers shared by corkboard tests:
// channel operations with timeout safety valves so a broken test
// fails instead of hanging.
package testutil
