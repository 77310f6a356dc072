// Package editor ties extraction, proposal, rendering and export together
// around explicit editing sessions.
package editor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sammcj/mcp-pdfedit/internal/config"
	"github.com/sammcj/mcp-pdfedit/internal/document"
	"github.com/sammcj/mcp-pdfedit/internal/edits"
	"github.com/sammcj/mcp-pdfedit/internal/extract"
	"github.com/sammcj/mcp-pdfedit/internal/llm"
	"github.com/sammcj/mcp-pdfedit/internal/propose"
	"github.com/sammcj/mcp-pdfedit/internal/render"
	"github.com/sammcj/mcp-pdfedit/internal/session"
	"github.com/sammcj/mcp-pdfedit/internal/storage"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoProposal is returned when generating before any edits exist.
	ErrNoProposal = errors.New("no modifications proposed yet")
	// ErrNoOutput is returned when exporting an edited document that was never generated.
	ErrNoOutput = errors.New("no edited document generated yet")
	// ErrModelUnavailable is returned when no configured model answers the probe.
	ErrModelUnavailable = errors.New("no generative model is available")
	// ErrEmptyInstruction is returned for blank instructions.
	ErrEmptyInstruction = errors.New("instruction is required")
)

// GeneratorFactory builds a Generator for one credential and model.
type GeneratorFactory func(opts llm.Options) (llm.Generator, error)

// Prober checks which model a credential can use.
type Prober func(ctx context.Context, opts llm.Options, models []string) llm.Status

// Option customises a Service.
type Option func(*Service)

// WithGeneratorFactory replaces how model clients are built.
func WithGeneratorFactory(f GeneratorFactory) Option {
	return func(s *Service) { s.newGenerator = f }
}

// WithProber replaces the capability probe.
func WithProber(p Prober) Option {
	return func(s *Service) { s.probe = p }
}

// WithClock replaces the time source used for export names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service runs the editing pipeline for many concurrent sessions.
type Service struct {
	cfg      *config.Config
	store    *storage.Store
	sessions *session.Manager
	renderer *render.Renderer
	speller  *edits.Speller
	logger   *logrus.Logger

	newGenerator GeneratorFactory
	probe        Prober
	now          func() time.Time

	mu         sync.Mutex
	statuses   map[string]llm.Status
	generators map[string]llm.Generator
}

// NewService creates a Service from configuration.
func NewService(cfg *config.Config, logger *logrus.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logrus.New()
	}

	s := &Service{
		cfg:        cfg,
		store:      storage.New(cfg.MaxFileSize(), logger).WithPolicy(storage.NewPolicy(cfg.DenyPaths, cfg.DenyDomains)),
		sessions:   session.NewManager(),
		renderer:   render.New(logger),
		logger:     logger,
		now:        time.Now,
		statuses:   make(map[string]llm.Status),
		generators: make(map[string]llm.Generator),
	}
	s.newGenerator = func(o llm.Options) (llm.Generator, error) {
		return llm.NewClient(o, logger)
	}
	s.probe = func(ctx context.Context, o llm.Options, models []string) llm.Status {
		return llm.Probe(ctx, o, models, logger)
	}

	if cfg.BritishSpelling {
		speller, err := edits.NewSpeller()
		if err != nil {
			return nil, err
		}
		s.speller = speller
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Sessions lists live sessions.
func (s *Service) Sessions() []session.Summary {
	return s.sessions.List()
}

// LoadOptions qualifies a load.
type LoadOptions struct {
	// SessionID reuses an existing session; empty creates a new one.
	SessionID string
	// APIKey overrides the default credential for the session.
	APIKey string
}

// LoadResult describes a loaded document.
type LoadResult struct {
	SessionID   string         `json:"session_id"`
	Filename    string         `json:"filename"`
	Size        string         `json:"file_size"`
	Stats       document.Stats `json:"stats"`
	Preview     string         `json:"text_preview"`
	Degraded    bool           `json:"degraded,omitempty"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
}

// Load reads a document from a path or URL into a session.
func (s *Service) Load(ctx context.Context, location string, opts LoadOptions) (*LoadResult, error) {
	data, err := s.store.Read(ctx, location)
	if err != nil {
		return nil, err
	}
	return s.LoadBytes(ctx, filepath.Base(location), data, opts)
}

// LoadBytes extracts data into a session. Extraction failures do not fail the
// load: the session keeps whatever could be read and records why.
func (s *Service) LoadBytes(_ context.Context, filename string, data []byte, opts LoadOptions) (*LoadResult, error) {
	if err := s.store.Validate(data); err != nil {
		return nil, err
	}
	if opts.APIKey != "" {
		if err := config.ValidateAPIKey(strings.TrimSpace(opts.APIKey)); err != nil {
			return nil, err
		}
	}

	var diagnostics []string
	pages, err := extract.Spans(data)
	if err != nil {
		s.logger.WithError(err).WithField("filename", filename).Warn("Span extraction failed")
		diagnostics = append(diagnostics, fmt.Sprintf("span extraction failed: %v", err))
		pages = nil
	}
	text, err := extract.PlainText(data)
	if err != nil {
		s.logger.WithError(err).WithField("filename", filename).Warn("Text extraction failed")
		diagnostics = append(diagnostics, fmt.Sprintf("text extraction failed: %v", err))
		text = extract.ErrorText
	}

	fill := func(sess *session.Session) {
		sess.Pages = pages
		sess.Text = text
		sess.Diagnostics = diagnostics
		if opts.APIKey != "" {
			sess.APIKey = strings.TrimSpace(opts.APIKey)
		}
	}

	var sess session.Session
	if opts.SessionID != "" {
		sess, err = s.sessions.Update(opts.SessionID, func(draft *session.Session) error {
			draft.ResetDocument(filename, data)
			fill(draft)
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		created := session.New(filename, data)
		fill(created)
		s.sessions.Put(created)
		sess = *created
	}

	s.logger.WithFields(logrus.Fields{
		"session":  sess.ID,
		"filename": filename,
		"pages":    len(pages),
		"degraded": len(diagnostics) > 0,
	}).Info("Loaded document")

	return &LoadResult{
		SessionID:   sess.ID,
		Filename:    filename,
		Size:        document.FormatFileSize(int64(len(data))),
		Stats:       sess.Stats(),
		Preview:     document.Preview(text, document.DefaultPreviewLength),
		Degraded:    len(diagnostics) > 0,
		Diagnostics: diagnostics,
	}, nil
}

// ProposeResult is a proposal with its advisory checks.
type ProposeResult struct {
	SessionID string          `json:"session_id"`
	Proposal  *edits.Proposal `json:"proposal"`
	Checks    []edits.Check   `json:"checks"`
}

// Propose asks the model for edits and stores them on the session. When the
// model call fails the session holds an empty proposal and the error is
// returned alongside the result.
func (s *Service) Propose(ctx context.Context, id, instruction string) (*ProposeResult, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, ErrEmptyInstruction
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	key, err := s.cfg.ResolveAPIKey(sess.APIKey)
	if err != nil {
		return nil, err
	}

	status := s.capability(ctx, key)
	if !status.Ready {
		return s.storeFailedProposal(id, instruction, fmt.Errorf("%w: %s", ErrModelUnavailable, status))
	}

	generator, err := s.generator(key, status.Model)
	if err != nil {
		return s.storeFailedProposal(id, instruction, err)
	}

	proposer := propose.New(generator, propose.Options{
		Model:       status.Model,
		PromptChars: s.cfg.PromptChars,
		Debug:       s.cfg.Debug,
		Speller:     s.speller,
	}, s.logger)

	proposal, proposeErr := proposer.Propose(ctx, sess.Text, instruction)

	stored, err := s.sessions.Update(id, func(draft *session.Session) error {
		draft.Instruction = instruction
		draft.Proposal = proposal
		draft.ProposedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ProposeResult{
		SessionID: id,
		Proposal:  proposal,
		Checks:    edits.CheckAll(proposal.Edits, stored.Text),
	}, proposeErr
}

// storeFailedProposal records an empty proposal for a model that could not be
// used and returns it with cause.
func (s *Service) storeFailedProposal(id, instruction string, cause error) (*ProposeResult, error) {
	proposal := &edits.Proposal{Edits: edits.Set{}, Summary: edits.ErrorSummary, Source: edits.SourceError}
	if _, err := s.sessions.Update(id, func(draft *session.Session) error {
		draft.Instruction = instruction
		draft.Proposal = proposal
		draft.ProposedAt = s.now()
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.WithError(cause).WithField("session", id).Warn("Model unavailable, stored empty proposal")
	return &ProposeResult{SessionID: id, Proposal: proposal, Checks: []edits.Check{}}, cause
}

// SetEdits stores caller-supplied edits as the session's proposal.
func (s *Service) SetEdits(id string, set edits.Set, summary string) (*ProposeResult, error) {
	proposal := manualProposal(set, summary)

	stored, err := s.sessions.Update(id, func(draft *session.Session) error {
		draft.Proposal = proposal
		draft.ProposedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ProposeResult{
		SessionID: id,
		Proposal:  proposal,
		Checks:    edits.CheckAll(set, stored.Text),
	}, nil
}

func manualProposal(set edits.Set, summary string) *edits.Proposal {
	if summary == "" {
		summary = fmt.Sprintf("%d manual modifications", len(set))
	}
	return &edits.Proposal{Edits: set, Summary: summary, Source: edits.SourceManual}
}

// Check re-runs the advisory validation of the current proposal.
func (s *Service) Check(id string) ([]edits.Check, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.Proposal == nil {
		return nil, ErrNoProposal
	}
	return edits.CheckAll(sess.Proposal.Edits, sess.Text), nil
}

// GenerateResult describes a rendered document.
type GenerateResult struct {
	SessionID string         `json:"session_id"`
	Filename  string         `json:"filename"`
	Size      string         `json:"file_size"`
	Counts    render.Counts  `json:"counts"`
	Warnings  []string       `json:"warnings,omitempty"`
	Report    *render.Report `json:"report,omitempty"`
}

// Generate renders the session's proposal. A failed render leaves the
// session, including any earlier output, unchanged.
func (s *Service) Generate(_ context.Context, id string) (*GenerateResult, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.Proposal == nil {
		return nil, ErrNoProposal
	}
	return s.render(sess, nil)
}

// GenerateWith renders caller-supplied edits and, only when rendering
// succeeds, stores them as the session's proposal together with the output.
func (s *Service) GenerateWith(_ context.Context, id string, set edits.Set, summary string) (*GenerateResult, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return s.render(sess, manualProposal(set, summary))
}

// render draws sess with replacement, or with the stored proposal when
// replacement is nil, and commits the result in a single update.
func (s *Service) render(sess session.Session, replacement *edits.Proposal) (*GenerateResult, error) {
	proposal := sess.Proposal
	if replacement != nil {
		proposal = replacement
	}

	data, report, err := s.renderer.Render(sess.Pages, proposal.Edits)
	if err != nil {
		return nil, fmt.Errorf("error generating edited document: %w", err)
	}

	renderedAt := s.now()
	if _, err := s.sessions.Update(sess.ID, func(draft *session.Session) error {
		if replacement != nil {
			draft.Proposal = replacement
			draft.ProposedAt = renderedAt
		}
		draft.Rendered = data
		draft.Report = report
		draft.RenderedAt = renderedAt
		return nil
	}); err != nil {
		return nil, err
	}

	result := &GenerateResult{
		SessionID: sess.ID,
		Filename:  session.EditedFilename(sess.Filename, renderedAt),
		Size:      document.FormatFileSize(int64(len(data))),
		Counts:    report.Counts(),
		Warnings:  report.Warnings,
	}
	if s.cfg.Debug {
		result.Report = report
	}
	return result, nil
}

// Variant selects which document to export.
type Variant string

const (
	Edited   Variant = "edited"
	Original Variant = "original"
)

// ExportResult describes a written file.
type ExportResult struct {
	SessionID   string `json:"session_id"`
	Filename    string `json:"filename"`
	Location    string `json:"location"`
	ContentType string `json:"content_type"`
	Size        string `json:"file_size"`
}

// Export writes the edited or original document to dir, or to the configured
// output directory when dir is empty.
func (s *Service) Export(ctx context.Context, id string, variant Variant, dir string) (*ExportResult, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	var (
		data []byte
		name string
	)
	switch variant {
	case Original:
		data, name = sess.Original, session.OriginalFilename(sess.Filename)
	case Edited, "":
		if !sess.HasOutput() {
			return nil, ErrNoOutput
		}
		data, name = sess.Rendered, session.EditedFilename(sess.Filename, sess.RenderedAt)
	default:
		return nil, fmt.Errorf("unknown export variant %q", variant)
	}

	if dir == "" {
		dir, err = s.outputDir()
		if err != nil {
			return nil, err
		}
	}

	location, err := s.store.Write(ctx, dir, name, data)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		SessionID:   id,
		Filename:    name,
		Location:    location,
		ContentType: session.ContentType,
		Size:        document.FormatFileSize(int64(len(data))),
	}, nil
}

// Document returns the bytes of the chosen variant without writing them.
func (s *Service) Document(id string, variant Variant) (string, []byte, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return "", nil, err
	}
	if variant == Original {
		return session.OriginalFilename(sess.Filename), sess.Original, nil
	}
	if !sess.HasOutput() {
		return "", nil, ErrNoOutput
	}
	return session.EditedFilename(sess.Filename, sess.RenderedAt), sess.Rendered, nil
}

// Clear drops a session and everything it holds.
func (s *Service) Clear(id string) bool {
	cleared := s.sessions.Delete(id)
	if cleared {
		s.logger.WithField("session", id).Info("Cleared session")
	}
	return cleared
}

// Status is a snapshot of one session.
type Status struct {
	SessionID   string          `json:"session_id"`
	Filename    string          `json:"filename"`
	Size        string          `json:"file_size"`
	Stats       document.Stats  `json:"stats"`
	Preview     string          `json:"text_preview"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
	Instruction string          `json:"instruction,omitempty"`
	Proposal    *edits.Proposal `json:"proposal,omitempty"`
	HasOutput   bool            `json:"has_output"`
	Counts      *render.Counts  `json:"counts,omitempty"`
	UsesOwnKey  bool            `json:"uses_own_key"`
}

// Status reports the state of a session.
func (s *Service) Status(id string) (*Status, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	status := &Status{
		SessionID:   sess.ID,
		Filename:    sess.Filename,
		Size:        document.FormatFileSize(int64(len(sess.Original))),
		Stats:       sess.Stats(),
		Preview:     document.Preview(sess.Text, document.DefaultPreviewLength),
		Diagnostics: sess.Diagnostics,
		Instruction: sess.Instruction,
		Proposal:    sess.Proposal,
		HasOutput:   sess.HasOutput(),
		UsesOwnKey:  sess.APIKey != "",
	}
	if sess.Report != nil {
		counts := sess.Report.Counts()
		status.Counts = &counts
	}
	return status, nil
}

// Probe reports model availability for a credential, using the cached
// result when the credential was probed successfully before.
func (s *Service) Probe(ctx context.Context, apiKey string) (llm.Status, error) {
	key, err := s.cfg.ResolveAPIKey(apiKey)
	if err != nil {
		return llm.Status{}, err
	}
	return s.capability(ctx, key), nil
}

// RunOptions configures a one-shot edit.
type RunOptions struct {
	Location    string
	Instruction string
	APIKey      string
	OutputDir   string
}

// RunResult collects every stage of a one-shot edit.
type RunResult struct {
	Load     *LoadResult     `json:"load"`
	Proposal *ProposeResult  `json:"proposal"`
	Output   *GenerateResult `json:"output"`
	Export   *ExportResult   `json:"export"`
}

// Run loads, proposes, renders and exports in one call. The session is
// cleared afterwards whatever the outcome.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	loaded, err := s.Load(ctx, opts.Location, LoadOptions{APIKey: opts.APIKey})
	if err != nil {
		return nil, err
	}
	defer s.Clear(loaded.SessionID)

	result := &RunResult{Load: loaded}

	result.Proposal, err = s.Propose(ctx, loaded.SessionID, opts.Instruction)
	if err != nil {
		return result, err
	}

	result.Output, err = s.Generate(ctx, loaded.SessionID)
	if err != nil {
		return result, err
	}

	result.Export, err = s.Export(ctx, loaded.SessionID, Edited, opts.OutputDir)
	if err != nil {
		return result, err
	}
	return result, nil
}

func (s *Service) outputDir() (string, error) {
	if s.cfg.OutputDir != "" {
		return s.cfg.OutputDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no output directory configured: %w", err)
	}
	return filepath.Join(home, ".mcp-pdfedit", "exports"), nil
}

// capability probes a credential and caches a ready outcome for the life of
// the service. Failed probes are not cached so the next call tries again.
func (s *Service) capability(ctx context.Context, key string) llm.Status {
	hash := keyHash(key)

	s.mu.Lock()
	status, ok := s.statuses[hash]
	s.mu.Unlock()
	if ok {
		return status
	}

	status = s.probe(ctx, s.llmOptions(key), s.cfg.Models)
	if !status.Ready {
		s.logger.WithField("status", status.String()).Warn("Model capability probe failed")
		return status
	}

	s.mu.Lock()
	s.statuses[hash] = status
	s.mu.Unlock()

	s.logger.WithField("status", status.String()).Info("Model capability probed")
	return status
}

func (s *Service) generator(key, model string) (llm.Generator, error) {
	cacheKey := keyHash(key) + "/" + model

	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.generators[cacheKey]; ok {
		return g, nil
	}

	opts := s.llmOptions(key)
	opts.Model = model
	g, err := s.newGenerator(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	s.generators[cacheKey] = g
	return g, nil
}

func (s *Service) llmOptions(key string) llm.Options {
	return llm.Options{
		APIKey:      key,
		BaseURL:     s.cfg.BaseURL,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Timeout:     s.cfg.LLMTimeout,
		RateLimit:   s.cfg.LLMRateLimit,
	}
}

func keyHash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
