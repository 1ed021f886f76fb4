package parser

import (
	"errors"
	"time"

	"regwatch/models/entities"
	"regwatch/services/categorizer"
)

const defaultMaxDescription = 300

var (
	ErrEmpty      = errors.New("feed body is empty")
	ErrUnparsable = errors.New("feed body is not well-formed markup")
)

// Result is either a list of updates or an explanation of why the markup
// could not be parsed. A parsed feed without items has no error and no
// updates.
type Result struct {
	Updates []entities.RegulatoryUpdate
	Err     error
}

func (r Result) Parsed() bool {
	return r.Err == nil
}

type Service interface {
	Parse(markup string, source entities.FeedSource) Result
}

// Impl is safe for concurrent use: each Parse call decodes with its own
// gofeed.Parser, which keeps per-document state.
type Impl struct {
	categorizer    categorizer.Service
	maxDescription int
	now            func() time.Time
}
