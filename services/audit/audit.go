package audit

import (
	"context"
	"database/sql"
	"net"

	db "github.com/CrestPay/CrestPay-Backend/db/sqlc"
	"github.com/CrestPay/CrestPay-Backend/services/monitoring/logging"
	"github.com/sqlc-dev/pqtype"
)

// PaymentLog appends incoming-payment audit entries. Writes are
// fire-and-forget from the caller's perspective: a failed insert is
// logged but never fails the payment flow.
type PaymentLog struct {
	store  *db.Store
	logger *logging.Logger
}

func NewPaymentLog(store *db.Store, logger *logging.Logger) *PaymentLog {
	return &PaymentLog{
		store:  store,
		logger: logger,
	}
}

type Entry struct {
	Provider     string
	Reference    string
	StatusCode   int
	ResponseBody string
	Error        string
	ClientIP     string
}

func (a *PaymentLog) Record(ctx context.Context, entry Entry) {
	_, err := a.store.CreatePaymentLog(ctx, db.CreatePaymentLogParams{
		Provider:     entry.Provider,
		Reference:    toNullString(entry.Reference),
		StatusCode:   toNullInt32(entry.StatusCode),
		ResponseBody: toNullString(entry.ResponseBody),
		Error:        toNullString(entry.Error),
		ClientIp:     toInet(entry.ClientIP),
	})
	if err != nil {
		a.logger.Error("failed to write payment log", "provider", entry.Provider, "reference", entry.Reference, "error", err)
	}
}

// Helper functions
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullInt32(i int) sql.NullInt32 {
	if i == 0 {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(i), Valid: true}
}

func toInet(ip string) pqtype.Inet {
	if ip == "" {
		return pqtype.Inet{Valid: false}
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return pqtype.Inet{Valid: false}
	}

	// Convert to a CIDR with full mask (/32 for IPv4, /128 for IPv6)
	var mask net.IPMask
	if parsedIP.To4() != nil {
		mask = net.CIDRMask(32, 32) // IPv4
	} else {
		mask = net.CIDRMask(128, 128) // IPv6
	}
	return pqtype.Inet{
		IPNet: net.IPNet{
			IP:   parsedIP,
			Mask: mask,
		},
		Valid: true,
	}
}
