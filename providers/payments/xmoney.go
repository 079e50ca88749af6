package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/CrestPay/CrestPay-Backend/providers"
	"github.com/CrestPay/CrestPay-Backend/utils"
	"github.com/shopspring/decimal"
)

const (
	sandboxBaseURL = "https://merchants.api.sandbox.crypto.xmoney.com"
	liveBaseURL    = "https://merchants.api.crypto.xmoney.com"

	createOrderPath = "/api/stores/orders"
)

var (
	// ErrMalformedPayload covers empty bodies, invalid JSON and payloads
	// missing the order reference. Permanent; the sender must fix it.
	ErrMalformedPayload = errors.New("malformed webhook payload")

	// ErrMissingSettings means the gateway settings lack an API key or
	// callback URL. Configuration problem, no request is attempted.
	ErrMissingSettings = errors.New("xMoney misconfigured: no api key or callback url")

	// ErrTransportFailure covers failed order-creation calls: network
	// errors, empty responses and non-created statuses. Retryable at the
	// caller's discretion.
	ErrTransportFailure = errors.New("no usable response received from xMoney")
)

// Settings holds the per-environment gateway credentials and URLs,
// resolved by the settings service. The webhook secret must never be
// logged or echoed.
type Settings struct {
	APIKey        string
	WebhookSecret string
	CallbackURL   string
	SuccessURL    string
	FailURL       string
	Currency      string
}

// Validate checks the fields needed before an outbound call can be made.
func (s Settings) Validate() error {
	if s.APIKey == "" || s.CallbackURL == "" {
		return ErrMissingSettings
	}
	return nil
}

// Checkout is the order aggregate handed to the request builder. Amounts
// are decimals; the invariant total = subtotal + tax - discount is the
// caller's responsibility.
type Checkout struct {
	Reference string
	Total     decimal.Decimal
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Discount  decimal.Decimal
	Currency  string
	Customer  CheckoutCustomer
	Items     []CheckoutItem
}

type CheckoutCustomer struct {
	FirstName                 string
	LastName                  string
	Email                     string
	Street                    string
	HouseNumber               string
	HouseNumberSuffix         string
	ShippingStreet            string
	ShippingHouseNumber       string
	ShippingHouseNumberSuffix string
	City                      string
	State                     string
	PostalCode                string
	ShippingPostalCode        string
	Country                   string
}

type CheckoutItem struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

type XMoneyProvider struct {
	providers.BaseProvider
	config *XMoneyConfig
}

type XMoneyConfig struct {
	ProviderName   string `mapstructure:"XMONEY_PROVIDER_NAME"`
	SandboxBaseURL string `mapstructure:"XMONEY_SANDBOX_BASE_URL"`
	LiveBaseURL    string `mapstructure:"XMONEY_LIVE_BASE_URL"`
}

// NewXMoneyProvider builds the provider for the given environment. The
// API key is per-merchant and resolved at request time from the gateway
// settings, not at construction.
func NewXMoneyProvider(live bool) *XMoneyProvider {

	var c XMoneyConfig

	err := utils.LoadCustomConfig(utils.EnvPath, &c)
	if err != nil {
		panic(fmt.Sprintf("Could not load config: %v", err))
	}

	if c.ProviderName == "" {
		c.ProviderName = providers.XMoney
	}
	if c.SandboxBaseURL == "" {
		c.SandboxBaseURL = sandboxBaseURL
	}
	if c.LiveBaseURL == "" {
		c.LiveBaseURL = liveBaseURL
	}

	base := c.SandboxBaseURL
	if live {
		base = c.LiveBaseURL
	}

	return &XMoneyProvider{
		BaseProvider: providers.BaseProvider{
			Name:    c.ProviderName,
			BaseURL: base,
			Client: &http.Client{
				Timeout: time.Second * 30,
			},
		},
		config: &c,
	}
}

// CreateOrder posts the order-creation request and parses the response.
// Returns ErrMissingSettings without touching the network when settings
// are incomplete, and ErrTransportFailure for anything the gateway side
// got wrong: network error, empty body, undecodable body or a status
// other than 201.
func (p *XMoneyProvider) CreateOrder(settings Settings, checkout Checkout) (*OrderResponse, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	request := BuildOrderRequest(settings, checkout)

	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	base.Path += createOrderPath

	extraHeaders := map[string]string{
		"Authorization": "Bearer " + settings.APIKey,
	}

	resp, err := p.MakeRequest("POST", base.String(), request, extraHeaders)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil || len(bodyBytes) == 0 {
		return nil, ErrTransportFailure
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrTransportFailure, resp.StatusCode)
	}

	var orderResponse OrderResponse
	if err := json.Unmarshal(bodyBytes, &orderResponse); err != nil {
		return nil, fmt.Errorf("%w: error decoding response body: %v", ErrTransportFailure, err)
	}

	if orderResponse.Data.ID == "" {
		return nil, fmt.Errorf("%w: response carries no order id", ErrTransportFailure)
	}

	return &orderResponse, nil
}

// BuildOrderRequest assembles the outbound payload. Monetary fields are
// fixed-point strings with two fractional digits and "." as the decimal
// separator regardless of host locale; decimal.StringFixed rounds half
// away from zero. Country codes are upper-cased, and the billing address
// line prefers the shipping address whenever a shipping postal code is
// present.
func BuildOrderRequest(settings Settings, checkout Checkout) *OrderRequest {
	customer := checkout.Customer
	hasShippingAddress := strings.TrimSpace(customer.ShippingPostalCode) != ""

	billingStreet := customer.Street
	billingHouseNumber := customer.HouseNumber
	if hasShippingAddress {
		billingStreet = customer.ShippingStreet
		billingHouseNumber = customer.ShippingHouseNumber
	}

	lineItems := make([]LineItem, 0, len(checkout.Items))
	for _, item := range checkout.Items {
		lineItems = append(lineItems, LineItem{
			Name:     item.Name,
			Price:    formatAmount(item.Price),
			Currency: checkout.Currency,
			Quantity: item.Quantity,
		})
	}

	return &OrderRequest{
		Data: OrderRequestData{
			Type: "orders",
			Attributes: OrderAttributes{
				Order: Order{
					Reference: checkout.Reference,
					Amount: Amount{
						Total:    formatAmount(checkout.Total),
						Currency: checkout.Currency,
						Details: AmountDetails{
							Subtotal: formatAmount(checkout.Subtotal),
							Tax:      formatAmount(checkout.Tax),
							Discount: formatAmount(checkout.Discount),
						},
					},
					ReturnURL: ReturnURLs{
						ReturnURL:   settings.SuccessURL,
						CancelURL:   settings.FailURL,
						CallbackURL: settings.CallbackURL,
					},
					LineItems: lineItems,
				},
				Customer: Customer{
					Name:           strings.TrimSpace(customer.FirstName + " " + customer.LastName),
					FirstName:      customer.FirstName,
					LastName:       customer.LastName,
					Email:          customer.Email,
					BillingAddress: strings.TrimSpace(billingStreet + " " + billingHouseNumber),
					Address1:       strings.TrimSpace(customer.Street + " " + customer.HouseNumber + customer.HouseNumberSuffix),
					Address2:       strings.TrimSpace(customer.ShippingStreet + " " + customer.ShippingHouseNumber + customer.ShippingHouseNumberSuffix),
					City:           customer.City,
					State:          customer.State,
					PostCode:       customer.PostalCode,
					Country:        strings.ToUpper(customer.Country),
				},
			},
		},
	}
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ParseWebhook turns a raw notification body into a WebhookNotification.
// The delivery status code comes from the transport layer and is carried
// for audit logging only. The order reference must be present; without
// it the notification cannot be correlated and is rejected outright.
func ParseWebhook(rawBody []byte, deliveryStatusCode int) (*WebhookNotification, error) {
	if len(strings.TrimSpace(string(rawBody))) == 0 {
		return nil, fmt.Errorf("%w: no JSON found in webhook body", ErrMalformedPayload)
	}

	var notification WebhookNotification
	if err := json.Unmarshal(rawBody, &notification); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in webhook body: %v", ErrMalformedPayload, err)
	}

	if notification.Resource.Reference == "" {
		return nil, fmt.Errorf("%w: no order reference found in webhook body", ErrMalformedPayload)
	}

	notification.StatusCode = deliveryStatusCode
	return &notification, nil
}
