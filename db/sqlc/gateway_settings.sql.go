package db

import (
	"context"
)

const getGatewaySettings = `-- name: GetGatewaySettings :many
SELECT id, provider, key, value
FROM gateway_settings
WHERE provider = $1
`

func (q *Queries) GetGatewaySettings(ctx context.Context, provider string) ([]GatewaySetting, error) {
	rows, err := q.db.QueryContext(ctx, getGatewaySettings, provider)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GatewaySetting{}
	for rows.Next() {
		var i GatewaySetting
		if err := rows.Scan(
			&i.ID,
			&i.Provider,
			&i.Key,
			&i.Value,
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

const upsertGatewaySetting = `-- name: UpsertGatewaySetting :exec
INSERT INTO gateway_settings (provider, key, value)
VALUES ($1, $2, $3)
ON CONFLICT (provider, key) DO UPDATE SET value = EXCLUDED.value
`

type UpsertGatewaySettingParams struct {
	Provider string
	Key      string
	Value    string
}

func (q *Queries) UpsertGatewaySetting(ctx context.Context, arg UpsertGatewaySettingParams) error {
	_, err := q.db.ExecContext(ctx, upsertGatewaySetting, arg.Provider, arg.Key, arg.Value)
	return err
}
