// Package propose turns a natural-language instruction into an edit set by
// asking a generative model, falling back to a keyword heuristic when the
// model's answer cannot be parsed.
package propose

import (
	"context"
	"fmt"

	"github.com/sammcj/mcp-pdfedit/internal/edits"
	"github.com/sammcj/mcp-pdfedit/internal/llm"
	"github.com/sirupsen/logrus"
)

// Options configures a Proposer.
type Options struct {
	// Model is recorded on proposals the model produced.
	Model string
	// PromptChars is the excerpt length shown to the model. Zero uses DefaultPromptChars.
	PromptChars int
	// Debug keeps the raw response and parse error on fallback proposals.
	Debug bool
	// Speller, when set, normalises replacement text to British spelling.
	Speller *edits.Speller
}

// Proposer produces edit proposals through a Generator.
type Proposer struct {
	generator llm.Generator
	opts      Options
	logger    *logrus.Logger
}

// New creates a Proposer.
func New(generator llm.Generator, opts Options, logger *logrus.Logger) *Proposer {
	if opts.PromptChars <= 0 {
		opts.PromptChars = DefaultPromptChars
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Proposer{generator: generator, opts: opts, logger: logger}
}

// Propose asks the model for edits to text. A generator failure yields an
// empty proposal with the error summary together with the error. An
// unparseable response is not an error: the fallback heuristic runs over the
// full text instead.
func (p *Proposer) Propose(ctx context.Context, text, instruction string) (*edits.Proposal, error) {
	prompt := BuildPrompt(text, instruction, p.opts.PromptChars)

	raw, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		p.logger.WithError(err).Error("Error getting model modifications")
		return &edits.Proposal{
			Edits:   edits.Set{},
			Summary: edits.ErrorSummary,
			Source:  edits.SourceError,
			Model:   p.opts.Model,
		}, fmt.Errorf("error getting model modifications: %w", err)
	}

	if p.opts.Debug {
		p.logger.WithField("response", raw).Debug("Raw model response")
	}

	cleaned := StripCodeFence(raw)
	proposal, parseErr := edits.Parse(cleaned)
	if parseErr != nil {
		p.logger.WithError(parseErr).Warn("Model response was not valid edit JSON, using fallback")
		proposal = edits.Fallback(text, instruction)
		if p.opts.Debug {
			proposal.RawResponse = raw
			proposal.ParseError = parseErr.Error()
		}
	} else {
		proposal.Model = p.opts.Model
	}

	if p.opts.Speller != nil {
		var changed int
		proposal.Edits, changed = p.opts.Speller.Apply(proposal.Edits)
		if changed > 0 {
			p.logger.WithField("edits", changed).Debug("Normalised replacement spelling")
		}
	}

	if proposal.Edits == nil {
		proposal.Edits = edits.Set{}
	}

	return proposal, nil
}
