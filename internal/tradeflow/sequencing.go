package tradeflow

import (
	"strings"

	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Sequencing decides which of several overlapping validations a session
// keeps.
type Sequencing string

const (
	// SequencingGeneration keeps only the result of the most recently issued
	// validation. Results of superseded validations are dropped.
	SequencingGeneration Sequencing = "generation"

	// SequencingLastWriteWins applies every result as it completes, so an
	// earlier-issued validation that completes last overwrites a newer one.
	SequencingLastWriteWins Sequencing = "last_write_wins"
)

// ParseSequencing converts a configuration value to a Sequencing. The empty
// string selects SequencingGeneration.
func ParseSequencing(s string) (Sequencing, error) {
	switch Sequencing(strings.ToLower(strings.TrimSpace(s))) {
	case "", SequencingGeneration:
		return SequencingGeneration, nil
	case SequencingLastWriteWins:
		return SequencingLastWriteWins, nil
	}
	return "", tgerr.WithSuggestion(
		tgerr.WithDetails(tgerr.ErrConfigInvalid, map[string]string{"sequencing": s}),
		"use 'generation' or 'last_write_wins'",
	)
}

// String implements fmt.Stringer.
func (s Sequencing) String() string {
	return string(s)
}
