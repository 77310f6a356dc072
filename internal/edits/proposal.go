package edits

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidResponse marks a model response that does not fit the edit schema.
var ErrInvalidResponse = errors.New("invalid model response")

// Source records where a proposal came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
	SourceError    Source = "error"
	SourceManual   Source = "manual"
)

// ErrorSummary is the summary of a proposal whose model call failed.
const ErrorSummary = "Error occurred"

// Proposal is an Edit Set with the model's commentary. RawResponse and
// ParseError are only populated in debug mode.
type Proposal struct {
	Edits       Set    `json:"modifications"`
	Summary     string `json:"summary"`
	Approach    string `json:"humanization_approach,omitempty"`
	Source      Source `json:"source"`
	Model       string `json:"model,omitempty"`
	RawResponse string `json:"raw_response,omitempty"`
	ParseError  string `json:"parse_error,omitempty"`
}

type wireProposal struct {
	Modifications *Set   `json:"modifications"`
	Summary       string `json:"summary"`
	Approach      string `json:"humanization_approach"`
}

// Parse decodes a model response. The modifications array is mandatory and
// every edit must carry the fields its type requires; anything else is an
// ErrInvalidResponse.
func Parse(raw string) (*Proposal, error) {
	var wire wireProposal
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if wire.Modifications == nil {
		return nil, fmt.Errorf("%w: missing modifications", ErrInvalidResponse)
	}

	return &Proposal{
		Edits:    *wire.Modifications,
		Summary:  wire.Summary,
		Approach: wire.Approach,
		Source:   SourceModel,
	}, nil
}

// ParseSet decodes a bare JSON array of edits, as supplied by tool callers.
func ParseSet(raw string) (Set, error) {
	var set Set
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return set, nil
}
