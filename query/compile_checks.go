package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-chat/core"
)

var (
	_ gocmd.Querier[GetActiveProviderMessage, ProviderInfo] = (*GetActiveProviderQuery)(nil)
	_ gocmd.Querier[ListProvidersMessage, []ProviderInfo]   = (*ListProvidersQuery)(nil)
	_ gocmd.Querier[ListMessagesMessage, []core.Message]    = (*ListMessagesQuery)(nil)
)
