package session

import (
	"time"

	"github.com/sherpa-api/core/internal/pkg/ident"
	"github.com/sherpa-api/core/internal/pkg/ttlmap"
	"go.uber.org/zap"
)

// CreateInput carries the fields needed to open a page session.
type CreateInput struct {
	URL        string
	Locale     string
	Voice      string
	SectionMap SectionMap
}

// Service owns the expiring session store. All reads apply lazy expiry, so a
// session is never observable at or past its expiration timestamp.
type Service struct {
	store  *ttlmap.Map[*Session]
	ttl    time.Duration
	logger *zap.Logger
}

func NewService(ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  ttlmap.New[*Session](),
		ttl:    ttl,
		logger: logger.Named("SessionService"),
	}
}

// TTLSeconds reports the configured session lifetime, as returned to clients
// in expires_in.
func (s *Service) TTLSeconds() int {
	return int(s.ttl / time.Second)
}

// Create stores a new session and returns its identifier.
func (s *Service) Create(in CreateInput) *Session {
	now := time.Now()
	voice := in.Voice
	if voice == "" {
		voice = "default"
	}
	sess := &Session{
		ID:         ident.NewSessionID(),
		URL:        in.URL,
		Locale:     in.Locale,
		Voice:      voice,
		SectionMap: in.SectionMap,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}
	s.store.Set(sess.ID, sess, s.ttl)
	s.logger.Debug("session created", zap.String("id", sess.ID), zap.String("url", sess.URL))
	return sess
}

// Get returns the session if it exists and has not expired. An expired
// session is removed on this read.
func (s *Service) Get(id string) (*Session, bool) {
	return s.store.Get(id)
}

// Cleanup removes all expired sessions and returns how many were removed.
func (s *Service) Cleanup() int {
	removed := s.store.Sweep()
	if removed > 0 {
		s.logger.Info("expired sessions removed", zap.Int("count", removed))
	}
	return removed
}

// Count reports the number of stored sessions, expired entries included
// until the next sweep or lazy read.
func (s *Service) Count() int {
	return s.store.Len()
}
