package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CredentialStore keeps at most one credential row per provider. Put replaces
// any existing row for the provider in one transaction.
type CredentialStore struct {
	db   *bun.DB
	repo repository.Repository[*credentialRecord]
}

func (s *CredentialStore) Get(ctx context.Context, providerID string) (string, bool, error) {
	if s == nil || s.repo == nil {
		return "", false, fmt.Errorf("sqlstore: credential store is not configured")
	}
	trimmedProviderID := strings.TrimSpace(providerID)
	if trimmedProviderID == "" {
		return "", false, fmt.Errorf("sqlstore: provider id is required")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("provider_id", "=", trimmedProviderID),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return "", false, err
	}
	if len(records) == 0 {
		return "", false, nil
	}
	return records[0].Credential, true, nil
}

func (s *CredentialStore) Put(ctx context.Context, providerID string, credential string) error {
	if s == nil || s.repo == nil || s.db == nil {
		return fmt.Errorf("sqlstore: credential store is not configured")
	}
	trimmedProviderID := strings.TrimSpace(providerID)
	if trimmedProviderID == "" {
		return fmt.Errorf("sqlstore: provider id is required")
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return fmt.Errorf("sqlstore: credential is required")
	}
	now := time.Now().UTC()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model((*credentialRecord)(nil)).
			Set("credential = ?", credential).
			Set("updated_at = ?", now).
			Where("provider_id = ?", trimmedProviderID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if affected, err := result.RowsAffected(); err == nil && affected > 0 {
			return nil
		}
		_, err = s.repo.CreateTx(ctx, tx, &credentialRecord{
			ID:         uuid.NewString(),
			ProviderID: trimmedProviderID,
			Credential: credential,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		return err
	})
}

func (s *CredentialStore) Clear(ctx context.Context, providerID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: credential store is not configured")
	}
	trimmedProviderID := strings.TrimSpace(providerID)
	if trimmedProviderID == "" {
		return fmt.Errorf("sqlstore: provider id is required")
	}
	_, err := s.db.NewDelete().
		Model((*credentialRecord)(nil)).
		Where("provider_id = ?", trimmedProviderID).
		Exec(ctx)
	return err
}
