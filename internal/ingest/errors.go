package ingest

import (
	"errors"
	"fmt"

	"github.com/agentic-research/margoviz/api"
)

var (
	// ErrIO is returned when the input cannot be read.
	ErrIO = errors.New("cannot read input")

	// ErrMalformed is returned when the input is not a well-formed document.
	ErrMalformed = errors.New("malformed input")

	// ErrMissingRoot is returned when the document has no margo entity.
	// It also matches ErrMalformed.
	ErrMissingRoot = fmt.Errorf("%w: no %s entity found", ErrMalformed, api.RootKey)
)
