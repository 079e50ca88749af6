package db

import (
	"database/sql"
	"time"

	"github.com/sqlc-dev/pqtype"
)

type Transaction struct {
	ID              int64
	Reference       string
	Provider        string
	ProviderOrderID sql.NullString
	Amount          string
	Currency        string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type PaymentLog struct {
	ID           int64
	Provider     string
	Reference    sql.NullString
	StatusCode   sql.NullInt32
	ResponseBody sql.NullString
	Error        sql.NullString
	ClientIp     pqtype.Inet
	CreatedAt    time.Time
}

type GatewaySetting struct {
	ID       int64
	Provider string
	Key      string
	Value    string
}
