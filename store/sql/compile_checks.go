package sqlstore

import "github.com/goliatone/go-chat/core"

var (
	_ core.CredentialStore        = (*CredentialStore)(nil)
	_ core.MessageStore           = (*MessageStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
