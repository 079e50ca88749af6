package payment

import (
	"context"
	"database/sql"

	db "github.com/CrestPay/CrestPay-Backend/db/sqlc"
	"github.com/CrestPay/CrestPay-Backend/providers/payments"
	"github.com/CrestPay/CrestPay-Backend/services/audit"
	"github.com/CrestPay/CrestPay-Backend/services/monitoring/logging"
)

// OrderCreator is the narrow slice of the gateway provider this service
// needs for the outbound path.
type OrderCreator interface {
	CreateOrder(settings payments.Settings, checkout payments.Checkout) (*payments.OrderResponse, error)
	GetName() string
}

type PaymentService struct {
	store    *db.Store
	logger   *logging.Logger
	provider OrderCreator
	settings SettingsProvider
	audit    *audit.PaymentLog
}

func NewPaymentService(store *db.Store, logger *logging.Logger, provider OrderCreator, settings SettingsProvider, auditLog *audit.PaymentLog) *PaymentService {
	return &PaymentService{
		store:    store,
		logger:   logger,
		provider: provider,
		settings: settings,
		audit:    auditLog,
	}
}

// ProviderName exposes the configured gateway name for log and audit
// callers.
func (s *PaymentService) ProviderName() string {
	return s.provider.GetName()
}

// HandlePaymentRequest builds and sends the order-creation request for a
// checkout. Every failure comes back as a structured result carrying the
// fail-URL redirect; nothing is raised across the API boundary.
func (s *PaymentService) HandlePaymentRequest(ctx context.Context, checkout payments.Checkout) PaymentRequestResult {
	settings, err := s.settings.GatewaySettings(ctx)
	if err != nil {
		s.logger.Error("could not resolve gateway settings", "error", err)
		return PaymentRequestResult{
			Successful:   false,
			ErrorMessage: "could not resolve gateway settings",
		}
	}

	failURL := settings.FailURL

	if err := settings.Validate(); err != nil {
		s.logger.Error("gateway settings validation failed", "error", err)
		return PaymentRequestResult{
			Successful:   false,
			RedirectURL:  failURL,
			ErrorMessage: err.Error(),
		}
	}

	if checkout.Currency == "" {
		checkout.Currency = settings.Currency
	}

	if _, err := s.store.CreateTransaction(ctx, db.CreateTransactionParams{
		Reference: checkout.Reference,
		Provider:  s.provider.GetName(),
		Amount:    checkout.Total.StringFixed(2),
		Currency:  checkout.Currency,
		Status:    StatusPending,
	}); err != nil {
		s.logger.Error("could not persist transaction", "reference", checkout.Reference, "error", err)
		return PaymentRequestResult{
			Successful:   false,
			RedirectURL:  failURL,
			ErrorMessage: "could not persist transaction",
		}
	}

	response, err := s.provider.CreateOrder(settings, checkout)
	if err != nil {
		s.logger.Error("order creation failed", "reference", checkout.Reference, "error", err)
		return PaymentRequestResult{
			Successful:   false,
			RedirectURL:  failURL,
			ErrorMessage: err.Error(),
		}
	}

	if err := s.store.SetTransactionProviderOrderID(ctx, db.SetTransactionProviderOrderIDParams{
		Reference:       checkout.Reference,
		ProviderOrderID: sql.NullString{String: response.Data.ID, Valid: true},
	}); err != nil {
		// The order exists at the gateway; losing the id link is a bug
		// worth an operator's attention but not a reason to fail checkout.
		s.logger.Error("could not store provider order id", "reference", checkout.Reference, "error", err)
	}

	return PaymentRequestResult{
		Successful:  true,
		RedirectURL: response.Data.Attributes.RedirectURL,
		OrderID:     response.Data.ID,
	}
}

// ReconcileStatusUpdate decides whether one webhook delivery is a
// trustworthy payment notification. Pure: no persistence, no logging, so
// a redelivered webhook is re-verified from scratch with the same result.
//
// The state vocabulary is checked before any cryptography; the canonical
// string is rebuilt from the entire received object minus the signature
// field and compared against the claimed HMAC.
func ReconcileStatusUpdate(rawBody []byte, deliveryStatusCode int, webhookSecret string) StatusUpdateResult {
	if rawBody == nil {
		return StatusUpdateResult{
			Successful: false,
			Status:     ReasonNoHTTPContext,
		}
	}

	notification, err := payments.ParseWebhook(rawBody, deliveryStatusCode)
	if err != nil {
		return StatusUpdateResult{
			Successful: false,
			Status:     ReasonNoWebhookData,
		}
	}

	result := StatusUpdateResult{
		StatusCode: notification.StatusCode,
		Reference:  notification.Resource.Reference,
	}

	if !acceptedStates[notification.State] {
		result.Status = ReasonUnexpectedState
		return result
	}

	canonical, err := payments.CanonicalString(rawBody)
	if err != nil {
		result.Status = ReasonNoWebhookData
		return result
	}

	match, err := payments.VerifySignature(webhookSecret, canonical, notification.Signature)
	if err != nil {
		// Missing secret: configuration fault, not a sender fault.
		result.Status = err.Error()
		return result
	}
	if !match {
		result.Status = ReasonBadSignature
		return result
	}

	result.Successful = true
	result.Status = ReasonSuccess
	return result
}

// ProcessStatusUpdate runs reconciliation for one inbound delivery and
// applies its side effects: a transaction status update when the payment
// is proven, and exactly one audit log entry either way.
func (s *PaymentService) ProcessStatusUpdate(ctx context.Context, rawBody []byte, deliveryStatusCode int, clientIP string) StatusUpdateResult {
	var result StatusUpdateResult

	defer func() {
		auditError := ""
		if !result.Successful {
			auditError = result.Status
		}
		s.audit.Record(ctx, audit.Entry{
			Provider:     s.provider.GetName(),
			Reference:    result.Reference,
			StatusCode:   result.StatusCode,
			ResponseBody: string(rawBody),
			Error:        auditError,
			ClientIP:     clientIP,
		})
	}()

	settings, err := s.settings.GatewaySettings(ctx)
	if err != nil {
		s.logger.Error("could not resolve gateway settings", "error", err)
		result = StatusUpdateResult{
			Successful: false,
			Status:     "could not resolve gateway settings",
			StatusCode: deliveryStatusCode,
		}
		return result
	}

	result = ReconcileStatusUpdate(rawBody, deliveryStatusCode, settings.WebhookSecret)
	if !result.Successful {
		return result
	}

	if err := s.store.UpdateTransactionStatus(ctx, db.UpdateTransactionStatusParams{
		Reference: result.Reference,
		Status:    StatusPaid,
	}); err != nil {
		s.logger.Error("could not update transaction status", "reference", result.Reference, "error", err)
	}

	return result
}
