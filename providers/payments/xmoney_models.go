package payments

// OrderRequest is the body of the order-creation call, shaped as
// data.attributes.{order,customer} per the xMoney API. Empty optional
// fields are omitted from serialization.
type OrderRequest struct {
	Data OrderRequestData `json:"data"`
}

type OrderRequestData struct {
	Type       string          `json:"type"`
	Attributes OrderAttributes `json:"attributes"`
}

type OrderAttributes struct {
	Order    Order    `json:"order"`
	Customer Customer `json:"customer"`
}

type Order struct {
	Reference string     `json:"reference"`
	Amount    Amount     `json:"amount"`
	ReturnURL ReturnURLs `json:"return_urls"`
	LineItems []LineItem `json:"line_items"`
}

type Amount struct {
	Total    string        `json:"total"`
	Currency string        `json:"currency"`
	Details  AmountDetails `json:"details"`
}

type AmountDetails struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping,omitempty"`
	Tax      string `json:"tax"`
	Discount string `json:"discount"`
}

type ReturnURLs struct {
	ReturnURL   string `json:"return_url"`
	CancelURL   string `json:"cancel_url"`
	CallbackURL string `json:"callback_url"`
}

type LineItem struct {
	Sku      string `json:"sku,omitempty"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Quantity int    `json:"quantity"`
}

type Customer struct {
	Name           string `json:"name"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	BillingAddress string `json:"billing_address"`
	Address1       string `json:"address1"`
	Address2       string `json:"address2,omitempty"`
	City           string `json:"city"`
	State          string `json:"state,omitempty"`
	PostCode       string `json:"postcode"`
	Country        string `json:"country"`
}

// OrderResponse is the gateway's reply to a successful (201) order
// creation. Data.ID is the provider-assigned order id.
type OrderResponse struct {
	Data OrderResponseData `json:"data"`
}

type OrderResponseData struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Attributes OrderResponseAttributes `json:"attributes"`
}

type OrderResponseAttributes struct {
	RedirectURL string `json:"redirect_url"`
}

// WebhookNotification represents the asynchronous payment notification.
// It is built once per inbound request and never mutated afterwards.
type WebhookNotification struct {
	EventType string          `json:"event_type"`
	Resource  WebhookResource `json:"resource"`
	Signature string          `json:"signature"`
	State     string          `json:"state"`

	// StatusCode is the HTTP status assigned by the transport layer,
	// carried along for the audit trail. Not part of the wire payload.
	StatusCode int `json:"-"`
}

type WebhookResource struct {
	Reference string `json:"reference"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}
