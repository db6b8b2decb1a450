/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package version holds build metadata injected at link time.
package version

var (
	// Version is the semantic version, set via -ldflags.
	Version = "dev"
	// Commit is the git commit hash the binary was built from.
	Commit = "unknown"
	// Date is the build timestamp.
	Date = "unknown"
)
