// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "errors"

var (
	// ErrEmptyArgument reports a blank or whitespace-only argument. Callers
	// map it to a client error.
	ErrEmptyArgument = errors.New("argument must not be empty")

	// ErrNotConfigured reports that no search provider is available. Callers
	// map it to a configuration error, not a client error.
	ErrNotConfigured = errors.New("no search provider configured")
)
