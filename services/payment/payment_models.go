package payment

// Transaction statuses persisted against the merchant order.
const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusRejected = "rejected"
)

// Webhook states that count as proof of payment. Anything else is
// rejected before the signature is even checked.
var acceptedStates = map[string]bool{
	"completed": true,
	"received":  true,
	"detected":  true,
}

// Status-update reasons. Callers surface these distinctly so an operator
// can tell a misbehaving sender from a tampered payload.
const (
	ReasonSuccess         = "SUCCESS"
	ReasonNoHTTPContext   = "No HTTP context available; unable to process status update."
	ReasonNoWebhookData   = "No webhook data found."
	ReasonUnexpectedState = "State is not completed, received or detected."
	ReasonBadSignature    = "The signature we have does not align with the signature found in the webhook data."
)

// PaymentRequestResult is the outcome of an outbound order creation. On
// failure RedirectURL points at the merchant's fail URL; the end user is
// always redirected somewhere, never shown a raw error.
type PaymentRequestResult struct {
	Successful   bool
	RedirectURL  string
	OrderID      string
	ErrorMessage string
}

// StatusUpdateResult is the outcome of reconciling one webhook delivery.
// Ephemeral; the caller persists the transaction status, not the result.
type StatusUpdateResult struct {
	Successful bool
	Status     string
	StatusCode int
	Reference  string
}
