package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"github.com/google/uuid"
)

// TokenRepo persists user-added custom tokens so they survive restarts.
//
// Schema:
//
//	CREATE TABLE account_tokens (
//	    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    network_id  TEXT NOT NULL,
//	    account_id  TEXT NOT NULL,
//	    token_id    TEXT NOT NULL,
//	    symbol      TEXT NOT NULL,
//	    name        TEXT NOT NULL DEFAULT '',
//	    decimals    INT  NOT NULL,
//	    logo_uri    TEXT NOT NULL DEFAULT '',
//	    auto_detected BOOLEAN NOT NULL DEFAULT false,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    UNIQUE (network_id, account_id, token_id)
//	);
type TokenRepo struct {
	db *DB
}

func NewTokenRepo(db *DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Upsert inserts a custom token for an account, returning the row id
// (existing or new). Existing rows keep their metadata; a re-add never
// overwrites what the user already sees.
func (r *TokenRepo) Upsert(ctx context.Context, accountID string, t *model.Token) (uuid.UUID, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO account_tokens (network_id, account_id, token_id, symbol, name, decimals, logo_uri, auto_detected)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (network_id, account_id, token_id) DO UPDATE SET
			network_id = account_tokens.network_id
		RETURNING id
	`, t.NetworkID, accountID, t.TokenIDOnNetwork, t.Symbol, t.Name, t.Decimals, t.LogoURI, t.AutoDetected,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert account token: %w", err)
	}
	return id, nil
}

// ListByAccount returns the custom tokens one account holds on a network.
func (r *TokenRepo) ListByAccount(ctx context.Context, networkID, accountID string) ([]model.Token, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, network_id, token_id, symbol, name, decimals, logo_uri, auto_detected
		FROM account_tokens
		WHERE network_id = $1 AND account_id = $2
		ORDER BY created_at
	`, networkID, accountID)
	if err != nil {
		return nil, fmt.Errorf("list account tokens: %w", err)
	}
	defer rows.Close()
	return scanTokens(rows)
}

// ListByNetwork returns every custom token known on a network.
func (r *TokenRepo) ListByNetwork(ctx context.Context, networkID string) ([]model.Token, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT ON (token_id) id, network_id, token_id, symbol, name, decimals, logo_uri, auto_detected
		FROM account_tokens
		WHERE network_id = $1
		ORDER BY token_id, created_at
	`, networkID)
	if err != nil {
		return nil, fmt.Errorf("list network tokens: %w", err)
	}
	defer rows.Close()
	return scanTokens(rows)
}

func scanTokens(rows *sql.Rows) ([]model.Token, error) {
	var tokens []model.Token
	for rows.Next() {
		var t model.Token
		if err := rows.Scan(&t.ID, &t.NetworkID, &t.TokenIDOnNetwork, &t.Symbol, &t.Name, &t.Decimals, &t.LogoURI, &t.AutoDetected); err != nil {
			return nil, fmt.Errorf("scan account token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account tokens: %w", err)
	}
	return tokens, nil
}
