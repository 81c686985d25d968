package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-chat/core"
)

// MessageStore persists conversation history.
type MessageStore struct {
	db   *bun.DB
	repo repository.Repository[*messageRecord]
}

func (s *MessageStore) Append(ctx context.Context, msg core.Message) (core.Message, error) {
	if s == nil || s.repo == nil || s.db == nil {
		return core.Message{}, fmt.Errorf("sqlstore: message store is not configured")
	}
	if strings.TrimSpace(msg.Body) == "" {
		return core.Message{}, fmt.Errorf("sqlstore: message body is required")
	}
	if strings.TrimSpace(msg.ID) == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	record := newMessageRecord(msg)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		inserted, createErr := s.repo.CreateTx(ctx, tx, record)
		if createErr != nil {
			return createErr
		}
		record = inserted
		return nil
	})
	if err != nil {
		return core.Message{}, err
	}
	return record.toDomain(), nil
}

// ListRecent returns up to limit messages in chronological order. A
// non-positive limit returns the full history.
func (s *MessageStore) ListRecent(ctx context.Context, limit int) ([]core.Message, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: message store is not configured")
	}
	criteria := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
	}
	if limit > 0 {
		criteria = append(criteria, repository.SelectPaginate(limit, 0))
	}
	records, _, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}

	messages := make([]core.Message, len(records))
	for i, record := range records {
		messages[len(records)-1-i] = record.toDomain()
	}
	return messages, nil
}

func (s *MessageStore) Clear(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: message store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*messageRecord)(nil)).
		Where("1 = 1").
		Exec(ctx)
	return err
}

func newMessageRecord(msg core.Message) *messageRecord {
	return &messageRecord{
		ID:         strings.TrimSpace(msg.ID),
		ProviderID: strings.TrimSpace(msg.ProviderID),
		Role:       string(msg.Role),
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt.UTC(),
	}
}

func (r *messageRecord) toDomain() core.Message {
	if r == nil {
		return core.Message{}
	}
	return core.Message{
		ID:         r.ID,
		Role:       core.MessageRole(r.Role),
		ProviderID: r.ProviderID,
		Body:       r.Body,
		CreatedAt:  r.CreatedAt,
	}
}
