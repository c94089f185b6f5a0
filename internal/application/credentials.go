package application

import (
	"sync"

	"github.com/bnema/minechat/internal/domain"
)

type CredentialReader interface {
	Credentials() domain.Credentials
}

// CredentialWriter is handed only to the credential watcher.
type CredentialWriter interface {
	SetNickname(nickname string)
	SetToken(token string)
}

// CredentialStore holds the identity used for the handshake for the lifetime
// of the process. It survives session restarts.
type CredentialStore struct {
	mu    sync.RWMutex
	creds domain.Credentials
}

var (
	_ CredentialReader = (*CredentialStore)(nil)
	_ CredentialWriter = (*CredentialStore)(nil)
)

func NewCredentialStore(initial domain.Credentials) *CredentialStore {
	return &CredentialStore{creds: initial}
}

func (s *CredentialStore) Credentials() domain.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.creds
}

func (s *CredentialStore) SetNickname(nickname string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds.Nickname = nickname
}

func (s *CredentialStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds.Token = token
}

// StaticCredentials serves a fixed identity, as used by one-shot commands.
type StaticCredentials domain.Credentials

func (c StaticCredentials) Credentials() domain.Credentials {
	return domain.Credentials(c)
}
