package credential

import (
	"context"
	"sync"
)

// MemoryStore keeps the record in process memory. It is the default store
// and the fixture of choice in tests.
type MemoryStore struct {
	mu     sync.Mutex
	record Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SaveToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.Token = token
	return nil
}

func (s *MemoryStore) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Token, nil
}

func (s *MemoryStore) SaveDisplayName(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.DisplayName = name
	return nil
}

func (s *MemoryStore) DisplayName(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.DisplayName, nil
}

func (s *MemoryStore) SaveUserID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.UserID = id
	return nil
}

func (s *MemoryStore) UserID(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.UserID, nil
}

func (s *MemoryStore) SaveRememberedEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.RememberedEmail = email
	return nil
}

func (s *MemoryStore) RememberedEmail(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.RememberedEmail, nil
}

func (s *MemoryStore) SetRememberMe(_ context.Context, remember bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.RememberMe = remember
	return nil
}

func (s *MemoryStore) RememberMe(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.RememberMe, nil
}

func (s *MemoryStore) SaveTheme(_ context.Context, theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.Theme = theme
	return nil
}

func (s *MemoryStore) Theme(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Theme, nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.clearSession()
	return nil
}

func (s *MemoryStore) ClearAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = Record{}
	return nil
}
