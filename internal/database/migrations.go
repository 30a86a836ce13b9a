package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema выполняется при старте; все выражения идемпотентны.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    name TEXT,
    notification_permission TEXT NOT NULL DEFAULT 'default',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    token_hash TEXT NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    revoked_at TIMESTAMPTZ,
    replaced_by UUID
);

-- Коллекция счетов хранится одним упорядоченным JSON-документом на пользователя,
-- новые счета добавляются в начало.
CREATE TABLE IF NOT EXISTS bill_collections (
    user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    bills JSONB NOT NULL DEFAULT '[]',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Сработавшие оповещения: не более одной записи на пару (счёт, порог).
CREATE TABLE IF NOT EXISTS bill_alerts (
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    bill_id UUID NOT NULL,
    threshold TEXT NOT NULL,
    fired_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, bill_id, threshold)
);

CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id);
CREATE INDEX IF NOT EXISTS idx_bill_alerts_fired_at ON bill_alerts(fired_at);
`

// Migrate применяет схему базы данных.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
