// Copyright 2026 The Corkboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the runtime scaffolding shared by the
// corkboard binary: Matrix session persistence (session.json in the
// state directory), the initial and incremental /sync loop with
// exponential backoff, and invite auto-accept.
package service
