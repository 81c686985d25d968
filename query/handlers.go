package query

import (
	"context"

	"github.com/goliatone/go-chat/core"
)

// ProviderReader is the read-only provider surface queries run against.
type ProviderReader interface {
	ActiveProvider() string
	Registry() core.Registry
}

type HistoryReader interface {
	History(ctx context.Context, limit int) ([]core.Message, error)
}

// ProviderInfo is the wire-friendly projection of a registered provider.
type ProviderInfo struct {
	ID                 string
	RequiresCredential bool
	Active             bool
}

type GetActiveProviderQuery struct {
	reader ProviderReader
}

func NewGetActiveProviderQuery(reader ProviderReader) *GetActiveProviderQuery {
	return &GetActiveProviderQuery{reader: reader}
}

func (q *GetActiveProviderQuery) Query(ctx context.Context, _ GetActiveProviderMessage) (ProviderInfo, error) {
	if q == nil || q.reader == nil {
		return ProviderInfo{}, queryDependencyError("query: provider reader is required")
	}
	activeID := q.reader.ActiveProvider()
	if activeID == "" {
		return ProviderInfo{}, queryInvalidInputError("query: no provider is active")
	}
	info := ProviderInfo{ID: activeID, Active: true}
	if registry := q.reader.Registry(); registry != nil {
		if provider, ok := registry.Get(activeID); ok {
			info.RequiresCredential = provider.RequiresCredential()
		}
	}
	return info, nil
}

type ListProvidersQuery struct {
	reader ProviderReader
}

func NewListProvidersQuery(reader ProviderReader) *ListProvidersQuery {
	return &ListProvidersQuery{reader: reader}
}

func (q *ListProvidersQuery) Query(ctx context.Context, _ ListProvidersMessage) ([]ProviderInfo, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: provider reader is required")
	}
	registry := q.reader.Registry()
	if registry == nil {
		return nil, queryDependencyError("query: provider registry is required")
	}
	activeID := q.reader.ActiveProvider()
	providers := registry.List()
	infos := make([]ProviderInfo, len(providers))
	for i, provider := range providers {
		infos[i] = ProviderInfo{
			ID:                 provider.ID(),
			RequiresCredential: provider.RequiresCredential(),
			Active:             provider.ID() == activeID,
		}
	}
	return infos, nil
}

type ListMessagesQuery struct {
	reader HistoryReader
}

func NewListMessagesQuery(reader HistoryReader) *ListMessagesQuery {
	return &ListMessagesQuery{reader: reader}
}

func (q *ListMessagesQuery) Query(ctx context.Context, msg ListMessagesMessage) ([]core.Message, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: history reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, queryWrapValidation(err, "query: list messages")
	}
	return q.reader.History(ctx, msg.Limit)
}
