package db

import (
	"context"
	"database/sql"
)

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (
    reference,
    provider,
    amount,
    currency,
    status
) VALUES (
    $1, $2, $3, $4, $5
) RETURNING id, reference, provider, provider_order_id, amount, currency, status, created_at, updated_at
`

type CreateTransactionParams struct {
	Reference string
	Provider  string
	Amount    string
	Currency  string
	Status    string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.Reference,
		arg.Provider,
		arg.Amount,
		arg.Currency,
		arg.Status,
	)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.Reference,
		&i.Provider,
		&i.ProviderOrderID,
		&i.Amount,
		&i.Currency,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getTransactionByReference = `-- name: GetTransactionByReference :one
SELECT id, reference, provider, provider_order_id, amount, currency, status, created_at, updated_at
FROM transactions
WHERE reference = $1
LIMIT 1
`

func (q *Queries) GetTransactionByReference(ctx context.Context, reference string) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransactionByReference, reference)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.Reference,
		&i.Provider,
		&i.ProviderOrderID,
		&i.Amount,
		&i.Currency,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const setTransactionProviderOrderID = `-- name: SetTransactionProviderOrderID :exec
UPDATE transactions
SET provider_order_id = $2,
    updated_at = now()
WHERE reference = $1
`

type SetTransactionProviderOrderIDParams struct {
	Reference       string
	ProviderOrderID sql.NullString
}

func (q *Queries) SetTransactionProviderOrderID(ctx context.Context, arg SetTransactionProviderOrderIDParams) error {
	_, err := q.db.ExecContext(ctx, setTransactionProviderOrderID, arg.Reference, arg.ProviderOrderID)
	return err
}

const updateTransactionStatus = `-- name: UpdateTransactionStatus :exec
UPDATE transactions
SET status = $2,
    updated_at = now()
WHERE reference = $1
`

type UpdateTransactionStatusParams struct {
	Reference string
	Status    string
}

func (q *Queries) UpdateTransactionStatus(ctx context.Context, arg UpdateTransactionStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateTransactionStatus, arg.Reference, arg.Status)
	return err
}
