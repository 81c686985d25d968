package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type credentialRecord struct {
	bun.BaseModel `bun:"table:chat_credentials,alias:cc"`

	ID         string    `bun:"id,pk"`
	ProviderID string    `bun:"provider_id,notnull,unique"`
	Credential string    `bun:"credential,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type messageRecord struct {
	bun.BaseModel `bun:"table:chat_messages,alias:cm"`

	ID         string    `bun:"id,pk"`
	ProviderID string    `bun:"provider_id,notnull"`
	Role       string    `bun:"role,notnull"`
	Body       string    `bun:"body,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
