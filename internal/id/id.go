// Package id generates prefixed NanoID identifiers used to correlate log lines.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// RunPrefix prefixes the identifier of one update run.
const RunPrefix = "run"

// runIDLength keeps run IDs short enough to read in logs.
const runIDLength = 12

// Generate creates a prefixed unique ID, e.g. "run-V1StGXR8_Z5j".
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New(runIDLength)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewRunID returns a run identifier, falling back to a fixed placeholder
// when no entropy is available. Run IDs only label logs.
func NewRunID() string {
	id, err := Generate(RunPrefix)
	if err != nil {
		return RunPrefix + "-unknown"
	}
	return id
}
