package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/psds-microservice/tracker-service/internal/errs"
	"github.com/psds-microservice/tracker-service/internal/metrics"
	"github.com/psds-microservice/tracker-service/internal/model"
	"github.com/psds-microservice/tracker-service/internal/tracker"
)

// Состояния отправки сессии.
const (
	sessionIdle int32 = iota
	sessionSubmitting
	sessionSubmitted
)

// Session: одна открытая форма трекера с контекстом исходного тикета.
type Session struct {
	ID        string
	CreatedAt time.Time
	Tracker   *tracker.Tracker
	Source    *model.Ticket
	Context   *model.TicketContext

	cancel   context.CancelFunc
	state    atomic.Int32
	lastUsed atomic.Int64

	mu          sync.Mutex
	attachments []model.Attachment
}

func newSession(tr *tracker.Tracker, now time.Time) *Session {
	s := &Session{ID: uuid.NewString(), CreatedAt: now, Tracker: tr}
	s.touch(now)
	return s
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

// LastUsed: время последнего обращения к сессии.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) Template() *tracker.TemplateConfig {
	return s.Tracker.Template
}

// QueueAttachment: файл, который уйдёт заметкой после создания тикета.
func (s *Session) QueueAttachment(a model.Attachment) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments = append(s.attachments, a)
	return len(s.attachments)
}

// Attachments: копия очереди файлов.
func (s *Session) Attachments() []model.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Attachment(nil), s.attachments...)
}

func (s *Session) clearAttachments() {
	s.mu.Lock()
	s.attachments = nil
	s.mu.Unlock()
}

// WaitReady ждёт окончания заполнения из контекста или отмены ctx.
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-s.Tracker.Form.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.Tracker.Close()
}

// SessionStore: сессии в памяти.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (st *SessionStore) Put(s *Session) {
	st.mu.Lock()
	st.sessions[s.ID] = s
	n := len(st.sessions)
	st.mu.Unlock()
	metrics.SessionsActive.Set(float64(n))
}

func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete закрывает и удаляет сессию.
func (st *SessionStore) Delete(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrSessionNotFound, id)
	}
	metrics.SessionsActive.Set(float64(n))
	s.close()
	return nil
}

// Evict закрывает сессии, не использованные с cutoff, кроме тех, что
// сейчас отправляются. Возвращает число закрытых.
func (st *SessionStore) Evict(cutoff time.Time) int {
	st.mu.Lock()
	var stale []*Session
	for id, s := range st.sessions {
		if s.state.Load() == sessionSubmitting || !s.LastUsed().Before(cutoff) {
			continue
		}
		stale = append(stale, s)
		delete(st.sessions, id)
	}
	n := len(st.sessions)
	st.mu.Unlock()
	if len(stale) == 0 {
		return 0
	}
	metrics.SessionsActive.Set(float64(n))
	for _, s := range stale {
		log.Printf("service: session %s expired (%s)", s.ID, s.Template().Name)
		s.close()
	}
	return len(stale)
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// CloseAll закрывает все сессии при остановке.
func (st *SessionStore) CloseAll() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()
	for _, s := range all {
		s.close()
	}
	metrics.SessionsActive.Set(0)
}
