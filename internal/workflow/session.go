package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Session is an in-memory workflow run of one submitter. Callers hold the embedded
// mutex while they transition it.
type Session struct {
	sync.Mutex

	ID          string
	SubmitterID string
	Stage       Stage
	ExpiresAt   time.Time
}

// SessionStore keeps the in-memory sessions and expires each one at the idle
// timeout of its current stage.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
	logger   *logrus.Logger
}

func NewSessionStore() *SessionStore {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	return &SessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
		logger:   logger,
	}
}

// Start opens a session in ChoiceSelection.
func (s *SessionStore) Start(submitterID string) *Session {
	stage := ChoiceSelection{}
	sess := &Session{
		ID:          uuid.NewString(),
		SubmitterID: submitterID,
		Stage:       stage,
		ExpiresAt:   s.now().Add(stage.IdleTimeout()),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"session_id":   sess.ID,
		"submitter_id": submitterID,
	}).Debug("Workflow session started")

	return sess
}

// Get returns the live session or nil when it is unknown or expired.
func (s *SessionStore) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}

	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil
	}

	return sess
}

// Advance stores the next stage of sess. Terminal stages drop the session. The
// caller must hold the session lock.
func (s *SessionStore) Advance(sess *Session, next Stage) {
	sess.Stage = next

	s.mu.Lock()
	defer s.mu.Unlock()

	if IsTerminal(next) {
		delete(s.sessions, sess.ID)
		return
	}

	sess.ExpiresAt = s.now().Add(next.IdleTimeout())
}

// Sweep drops every expired session and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}

	return removed
}

// Run sweeps every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.WithField("removed", removed).Info("Expired workflow sessions swept")
			}
		}
	}
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}
