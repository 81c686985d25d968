package security

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-chat/core"
)

// EncryptedCredentialStore seals credentials through a SecretProvider before
// they reach the wrapped store and unseals them on the way out. Rows written
// before encryption was enabled (no envelope prefix) are returned as-is so a
// store can be upgraded in place.
type EncryptedCredentialStore struct {
	base    core.CredentialStore
	secrets core.SecretProvider
}

func NewEncryptedCredentialStore(
	base core.CredentialStore,
	secrets core.SecretProvider,
) (*EncryptedCredentialStore, error) {
	if base == nil {
		return nil, fmt.Errorf("security: base credential store is required")
	}
	if secrets == nil {
		return nil, fmt.Errorf("security: secret provider is required")
	}
	return &EncryptedCredentialStore{base: base, secrets: secrets}, nil
}

func (s *EncryptedCredentialStore) Get(ctx context.Context, providerID string) (string, bool, error) {
	if s == nil || s.base == nil || s.secrets == nil {
		return "", false, fmt.Errorf("security: encrypted credential store is not configured")
	}
	stored, found, err := s.base.Get(ctx, providerID)
	if err != nil || !found {
		return "", found, err
	}
	if !strings.HasPrefix(stored, envelopePrefix) {
		return stored, true, nil
	}
	plaintext, err := s.secrets.Decrypt(ctx, []byte(stored))
	if err != nil {
		return "", false, err
	}
	return string(plaintext), true, nil
}

func (s *EncryptedCredentialStore) Put(ctx context.Context, providerID string, credential string) error {
	if s == nil || s.base == nil || s.secrets == nil {
		return fmt.Errorf("security: encrypted credential store is not configured")
	}
	if strings.TrimSpace(credential) == "" {
		return fmt.Errorf("security: credential is required")
	}
	sealed, err := s.secrets.Encrypt(ctx, []byte(credential))
	if err != nil {
		return err
	}
	return s.base.Put(ctx, providerID, string(sealed))
}

func (s *EncryptedCredentialStore) Clear(ctx context.Context, providerID string) error {
	if s == nil || s.base == nil {
		return fmt.Errorf("security: encrypted credential store is not configured")
	}
	return s.base.Clear(ctx, providerID)
}

var _ core.CredentialStore = (*EncryptedCredentialStore)(nil)
