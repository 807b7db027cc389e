package credential

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrSealKeySize is returned when the sealing key is not the required
// 32 bytes.
var ErrSealKeySize = errors.New("seal key must be 32 bytes")

// ErrSealCorrupt is returned when the stored blob fails authentication,
// which means the file was tampered with or the key is wrong.
var ErrSealCorrupt = errors.New("sealed credential record corrupt")

// FileStore persists the record as a single sealed blob on disk. The caller
// supplies a 32-byte key, typically sourced from the platform keychain; the
// store never writes plaintext.
type FileStore struct {
	mu   sync.Mutex
	path string
	key  []byte
}

// NewFileStore opens (or prepares to create) a sealed store at path.
func NewFileStore(path string, key []byte) (*FileStore, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrSealKeySize
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &FileStore{path: path, key: k}, nil
}

func (s *FileStore) load() (Record, error) {
	var record Record

	sealed, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return record, nil
	}
	if err != nil {
		return record, err
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return record, err
	}
	if len(sealed) < aead.NonceSize() {
		return record, ErrSealCorrupt
	}
	nonce, box := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, box, nil)
	if err != nil {
		return record, ErrSealCorrupt
	}
	if err := json.Unmarshal(plain, &record); err != nil {
		return record, ErrSealCorrupt
	}
	return record, nil
}

func (s *FileStore) save(record Record) error {
	plain, err := json.Marshal(record)
	if err != nil {
		return err
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := aead.Seal(nonce, nonce, plain, nil)

	// Write-then-rename keeps a crash from leaving a torn record.
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit credential record: %w", err)
	}
	return nil
}

func (s *FileStore) update(mutate func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.load()
	if err != nil {
		return err
	}
	mutate(&record)
	return s.save(record)
}

func (s *FileStore) read(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = ctx
	return s.load()
}

func (s *FileStore) SaveToken(_ context.Context, token string) error {
	return s.update(func(r *Record) { r.Token = token })
}

func (s *FileStore) Token(ctx context.Context) (string, error) {
	record, err := s.read(ctx)
	return record.Token, err
}

func (s *FileStore) SaveDisplayName(_ context.Context, name string) error {
	return s.update(func(r *Record) { r.DisplayName = name })
}

func (s *FileStore) DisplayName(ctx context.Context) (string, error) {
	record, err := s.read(ctx)
	return record.DisplayName, err
}

func (s *FileStore) SaveUserID(_ context.Context, id string) error {
	return s.update(func(r *Record) { r.UserID = id })
}

func (s *FileStore) UserID(ctx context.Context) (string, error) {
	record, err := s.read(ctx)
	return record.UserID, err
}

func (s *FileStore) SaveRememberedEmail(_ context.Context, email string) error {
	return s.update(func(r *Record) { r.RememberedEmail = email })
}

func (s *FileStore) RememberedEmail(ctx context.Context) (string, error) {
	record, err := s.read(ctx)
	return record.RememberedEmail, err
}

func (s *FileStore) SetRememberMe(_ context.Context, remember bool) error {
	return s.update(func(r *Record) { r.RememberMe = remember })
}

func (s *FileStore) RememberMe(ctx context.Context) (bool, error) {
	record, err := s.read(ctx)
	return record.RememberMe, err
}

func (s *FileStore) SaveTheme(_ context.Context, theme string) error {
	return s.update(func(r *Record) { r.Theme = theme })
}

func (s *FileStore) Theme(ctx context.Context) (string, error) {
	record, err := s.read(ctx)
	return record.Theme, err
}

func (s *FileStore) Clear(_ context.Context) error {
	return s.update(func(r *Record) { r.clearSession() })
}

func (s *FileStore) ClearAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
