package memory

import (
	"context"
	"strings"
	"sync"

	"freebie/internal/app/services/auth"
	domainuser "freebie/internal/domain/user"
)

// UserRepository stores users in memory. Dev mode and tests only.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[domainuser.ID]domainuser.User
	byEmail map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[domainuser.ID]domainuser.User),
		byEmail: make(map[string]domainuser.ID),
	}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if user, ok := r.byID[id]; ok {
		return user, nil
	}
	return domainuser.User{}, domainuser.ErrNotFound
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domainuser.NormalizeEmail(email)]
	if !ok {
		return domainuser.User{}, domainuser.ErrNotFound
	}
	if user, ok := r.byID[id]; ok {
		return user, nil
	}
	return domainuser.User{}, domainuser.ErrNotFound
}

func (r *UserRepository) Save(ctx context.Context, user domainuser.User) error {
	id := domainuser.ID(strings.TrimSpace(string(user.ID)))
	if id == "" {
		return domainuser.ErrIDRequired
	}
	emailKey := domainuser.NormalizeEmail(user.Email)
	if emailKey == "" {
		return domainuser.ErrEmailRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byEmail[emailKey]; ok && existing != id {
		return domainuser.ErrEmailTaken
	}
	r.byID[id] = user
	r.byEmail[emailKey] = id
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id domainuser.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return domainuser.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byEmail, domainuser.NormalizeEmail(user.Email))
	return nil
}

// SessionStore keeps live sessions in memory.
type SessionStore struct {
	mu      sync.RWMutex
	byToken map[string]auth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{byToken: make(map[string]auth.Session)}
}

func (s *SessionStore) Save(ctx context.Context, session auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken[session.Token] = session
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byToken[token]
	if !ok {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byToken, token)
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, id domainuser.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.byToken {
		if session.UserID == id {
			delete(s.byToken, token)
		}
	}
	return nil
}
