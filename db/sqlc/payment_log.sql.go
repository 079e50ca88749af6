package db

import (
	"context"
	"database/sql"

	"github.com/sqlc-dev/pqtype"
)

const createPaymentLog = `-- name: CreatePaymentLog :one
INSERT INTO payment_logs (
    provider,
    reference,
    status_code,
    response_body,
    error,
    client_ip
) VALUES (
    $1, $2, $3, $4, $5, $6
) RETURNING id, provider, reference, status_code, response_body, error, client_ip, created_at
`

type CreatePaymentLogParams struct {
	Provider     string
	Reference    sql.NullString
	StatusCode   sql.NullInt32
	ResponseBody sql.NullString
	Error        sql.NullString
	ClientIp     pqtype.Inet
}

func (q *Queries) CreatePaymentLog(ctx context.Context, arg CreatePaymentLogParams) (PaymentLog, error) {
	row := q.db.QueryRowContext(ctx, createPaymentLog,
		arg.Provider,
		arg.Reference,
		arg.StatusCode,
		arg.ResponseBody,
		arg.Error,
		arg.ClientIp,
	)
	var i PaymentLog
	err := row.Scan(
		&i.ID,
		&i.Provider,
		&i.Reference,
		&i.StatusCode,
		&i.ResponseBody,
		&i.Error,
		&i.ClientIp,
		&i.CreatedAt,
	)
	return i, err
}

const getRecentPaymentLogs = `-- name: GetRecentPaymentLogs :many
SELECT id, provider, reference, status_code, response_body, error, client_ip, created_at
FROM payment_logs
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

type GetRecentPaymentLogsParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) GetRecentPaymentLogs(ctx context.Context, arg GetRecentPaymentLogsParams) ([]PaymentLog, error) {
	rows, err := q.db.QueryContext(ctx, getRecentPaymentLogs, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []PaymentLog{}
	for rows.Next() {
		var i PaymentLog
		if err := rows.Scan(
			&i.ID,
			&i.Provider,
			&i.Reference,
			&i.StatusCode,
			&i.ResponseBody,
			&i.Error,
			&i.ClientIp,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
