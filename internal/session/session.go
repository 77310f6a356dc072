// Package session keeps the per-caller editing state: the uploaded document,
// its extraction, the current proposal and the last rendered output.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sammcj/mcp-pdfedit/internal/document"
	"github.com/sammcj/mcp-pdfedit/internal/edits"
	"github.com/sammcj/mcp-pdfedit/internal/render"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Session is one document being edited. Byte slices and pages are never
// mutated after they are stored; updates replace them.
type Session struct {
	ID       string
	Filename string
	Original []byte
	Pages    []document.Page
	Text     string
	// Diagnostics explains a degraded extraction.
	Diagnostics []string
	// APIKey overrides the default credential for this session only.
	APIKey string

	Instruction string
	Proposal    *edits.Proposal
	Rendered    []byte
	Report      *render.Report

	LoadedAt   time.Time
	ProposedAt time.Time
	RenderedAt time.Time
}

// New creates a session for a freshly loaded document.
func New(filename string, original []byte) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Filename: filename,
		Original: original,
		LoadedAt: time.Now(),
	}
}

// Stats summarises the extracted pages.
func (s *Session) Stats() document.Stats {
	return document.ComputeStats(s.Pages)
}

// HasProposal reports whether edits have been proposed or supplied.
func (s *Session) HasProposal() bool {
	return s.Proposal != nil
}

// HasOutput reports whether an edited document has been rendered.
func (s *Session) HasOutput() bool {
	return len(s.Rendered) > 0
}

// ResetDocument swaps in a new document, discarding the proposal and output
// that belonged to the previous one. The ID and credential are kept.
func (s *Session) ResetDocument(filename string, original []byte) {
	s.Filename = filename
	s.Original = original
	s.Pages = nil
	s.Text = ""
	s.Diagnostics = nil
	s.Instruction = ""
	s.Proposal = nil
	s.Rendered = nil
	s.Report = nil
	s.LoadedAt = time.Now()
	s.ProposedAt = time.Time{}
	s.RenderedAt = time.Time{}
}

// Summary is a listing entry.
type Summary struct {
	ID          string    `json:"session_id"`
	Filename    string    `json:"filename"`
	Size        int       `json:"size_bytes"`
	Pages       int       `json:"pages"`
	HasProposal bool      `json:"has_proposal"`
	HasOutput   bool      `json:"has_output"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Manager holds sessions by ID. Callers receive copies; changes go through
// Update so concurrent transports never share mutable state.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Put stores s, replacing any session with the same ID.
func (m *Manager) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *s
	m.sessions[s.ID] = &stored
}

// Get returns a copy of the session.
func (m *Manager) Get(id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return *s, nil
}

// Update applies fn to the stored session under the lock. When fn fails the
// stored session is left as it was.
func (m *Manager) Update(id string, fn func(*Session) error) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	draft := *s
	if err := fn(&draft); err != nil {
		return *s, err
	}
	m.sessions[id] = &draft
	return draft, nil
}

// Delete removes a session and reports whether it existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List returns summaries ordered by load time, oldest first.
func (m *Manager) List() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Summary, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, Summary{
			ID:          s.ID,
			Filename:    s.Filename,
			Size:        len(s.Original),
			Pages:       len(s.Pages),
			HasProposal: s.HasProposal(),
			HasOutput:   s.HasOutput(),
			LoadedAt:    s.LoadedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoadedAt.Equal(out[j].LoadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].LoadedAt.Before(out[j].LoadedAt)
	})
	return out
}
