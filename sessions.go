package folio

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eringen/folio/document"
	"github.com/eringen/folio/editor"
)

// EditorSessionTTL is how long an idle editor session is kept.
const EditorSessionTTL = 2 * time.Hour

// Kinds of content an editor session writes back to.
const (
	KindPost = "post"
	KindPage = "page"
)

// EditorSession is one admin's open editor over a post or page body.
type EditorSession struct {
	ID string

	mu       sync.Mutex
	kind     string
	slug     string
	editor   *editor.Editor
	lastUsed time.Time
}

// Target returns the kind and slug the session saves to. The slug is empty
// for a post that has not been saved yet.
func (s *EditorSession) Target() (kind, slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind, s.slug
}

func (s *EditorSession) setSlug(slug string) {
	s.mu.Lock()
	s.slug = slug
	s.mu.Unlock()
}

// Exec runs cmds in order and returns the resulting state. Execution stops
// at the first failing command; the state still reflects the commands
// that succeeded.
func (s *EditorSession) Exec(cmds ...editor.Command) (editor.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range cmds {
		if err := s.editor.Exec(c); err != nil {
			return s.editor.State(), fmt.Errorf("command %d (%s): %w", i, c.Command, err)
		}
	}
	return s.editor.State(), nil
}

// State returns a snapshot of the editor.
func (s *EditorSession) State() editor.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.State()
}

// Document returns a copy of the edited document.
func (s *EditorSession) Document() document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Document()
}

// Slash reports the open slash menu, if any.
func (s *EditorSession) Slash() *editor.SlashState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Slash()
}

// EditorSessions keeps editor sessions in memory, keyed by UUID.
type EditorSessions struct {
	mu       sync.Mutex
	sessions map[string]*EditorSession
	ttl      time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewEditorSessions(ttl time.Duration, log *zap.Logger) *EditorSessions {
	if log == nil {
		log = zap.NewNop()
	}
	return &EditorSessions{
		sessions: make(map[string]*EditorSession),
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Create opens a session editing doc.
func (m *EditorSessions) Create(kind, slug string, doc document.Document) *EditorSession {
	s := &EditorSession{
		ID:       uuid.NewString(),
		kind:     kind,
		slug:     slug,
		editor:   editor.New(doc),
		lastUsed: m.now(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.log.Debug("editor session opened", zap.String("session", s.ID), zap.String("kind", kind), zap.String("slug", slug))
	return s
}

// Get returns a live session and marks it used.
func (m *EditorSessions) Get(id string) (*EditorSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		delete(m.sessions, id)
		return nil, fmt.Errorf("%w: editor session %s", ErrNotFound, id)
	}
	s.lastUsed = m.now()
	return s, nil
}

// Delete closes a session. Unknown IDs are ignored.
func (m *EditorSessions) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *EditorSessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *EditorSessions) expired(s *EditorSession) bool {
	return m.now().Sub(s.lastUsed) > m.ttl
}

// Sweep removes idle sessions and returns how many were dropped.
func (m *EditorSessions) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		m.log.Info("expired editor sessions", zap.Int("count", n))
	}
	return n
}

// StartSweeper runs Sweep every interval. Returns a stop function.
func (m *EditorSessions) StartSweeper(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
