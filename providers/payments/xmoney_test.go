package payments

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CrestPay/CrestPay-Backend/providers"
	"github.com/CrestPay/CrestPay-Backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestEnv points config loading at a throwaway .env so nothing in
// the request path panics on missing configuration.
func setupTestEnv(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	env := "SERVER_PORT=8080\nDB_USERNAME=test\nDB_PASSWORD=test\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	previous := utils.EnvPath
	utils.EnvPath = dir
	t.Cleanup(func() { utils.EnvPath = previous })
}

func testSettings() Settings {
	return Settings{
		APIKey:        "test-api-key",
		WebhookSecret: "test-secret",
		CallbackURL:   "https://shop.example.com/webhook/xmoney",
		SuccessURL:    "https://shop.example.com/thanks",
		FailURL:       "https://shop.example.com/failed",
		Currency:      "EUR",
	}
}

func testCheckout() Checkout {
	return Checkout{
		Reference: "ORD-1001",
		Total:     decimal.RequireFromString("121.00"),
		Subtotal:  decimal.RequireFromString("100.00"),
		Tax:       decimal.RequireFromString("21.00"),
		Discount:  decimal.Zero,
		Currency:  "EUR",
		Customer: CheckoutCustomer{
			FirstName:   "Jane",
			LastName:    "Doe",
			Email:       "jane@example.com",
			Street:      "Main Street",
			HouseNumber: "12",
			City:        "Amsterdam",
			PostalCode:  "1012AB",
			Country:     "nl",
		},
		Items: []CheckoutItem{
			{Name: "Widget", Price: decimal.RequireFromString("50.00"), Quantity: 2},
			{Name: "Gadget", Price: decimal.RequireFromString("21.00"), Quantity: 1},
		},
	}
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, testSettings().Validate())

	missingKey := testSettings()
	missingKey.APIKey = ""
	assert.ErrorIs(t, missingKey.Validate(), ErrMissingSettings)

	missingCallback := testSettings()
	missingCallback.CallbackURL = ""
	assert.ErrorIs(t, missingCallback.Validate(), ErrMissingSettings)
}

func TestBuildOrderRequestShapesPayload(t *testing.T) {
	request := BuildOrderRequest(testSettings(), testCheckout())

	assert.Equal(t, "orders", request.Data.Type)

	order := request.Data.Attributes.Order
	assert.Equal(t, "ORD-1001", order.Reference)
	assert.Equal(t, "121.00", order.Amount.Total)
	assert.Equal(t, "EUR", order.Amount.Currency)
	assert.Equal(t, "100.00", order.Amount.Details.Subtotal)
	assert.Equal(t, "21.00", order.Amount.Details.Tax)
	assert.Equal(t, "0.00", order.Amount.Details.Discount)
	assert.Equal(t, "https://shop.example.com/thanks", order.ReturnURL.ReturnURL)
	assert.Equal(t, "https://shop.example.com/failed", order.ReturnURL.CancelURL)
	assert.Equal(t, "https://shop.example.com/webhook/xmoney", order.ReturnURL.CallbackURL)

	require.Len(t, order.LineItems, 2)
	assert.Equal(t, LineItem{Name: "Widget", Price: "50.00", Currency: "EUR", Quantity: 2}, order.LineItems[0])
	assert.Equal(t, LineItem{Name: "Gadget", Price: "21.00", Currency: "EUR", Quantity: 1}, order.LineItems[1])

	customer := request.Data.Attributes.Customer
	assert.Equal(t, "Jane Doe", customer.Name)
	assert.Equal(t, "NL", customer.Country)
	assert.Equal(t, "Main Street 12", customer.BillingAddress)
	assert.Equal(t, "Main Street 12", customer.Address1)
}

func TestBuildOrderRequestRoundsHalfAwayFromZero(t *testing.T) {
	checkout := testCheckout()
	checkout.Total = decimal.RequireFromString("10.005")
	checkout.Subtotal = decimal.RequireFromString("2.675")
	checkout.Tax = decimal.RequireFromString("0.004")
	checkout.Discount = decimal.RequireFromString("0.125")

	request := BuildOrderRequest(testSettings(), checkout)

	order := request.Data.Attributes.Order
	assert.Equal(t, "10.01", order.Amount.Total)
	assert.Equal(t, "2.68", order.Amount.Details.Subtotal)
	assert.Equal(t, "0.00", order.Amount.Details.Tax)
	assert.Equal(t, "0.13", order.Amount.Details.Discount)
}

func TestBuildOrderRequestPrefersShippingAddress(t *testing.T) {
	checkout := testCheckout()
	checkout.Customer.ShippingPostalCode = "2000XY"
	checkout.Customer.ShippingStreet = "Harbor Road"
	checkout.Customer.ShippingHouseNumber = "7"
	checkout.Customer.ShippingHouseNumberSuffix = "b"

	request := BuildOrderRequest(testSettings(), checkout)

	customer := request.Data.Attributes.Customer
	assert.Equal(t, "Harbor Road 7", customer.BillingAddress)
	// Address lines keep their own sources.
	assert.Equal(t, "Main Street 12", customer.Address1)
	assert.Equal(t, "Harbor Road 7b", customer.Address2)
}

func TestParseWebhook(t *testing.T) {
	body := []byte(`{"event_type":"ORDER.PAYMENT.RECEIVED","resource":{"reference":"ORD-1001","amount":"10.00","currency":"EUR"},"signature":"abcd","state":"completed"}`)

	notification, err := ParseWebhook(body, 200)
	require.NoError(t, err)

	assert.Equal(t, "ORDER.PAYMENT.RECEIVED", notification.EventType)
	assert.Equal(t, "ORD-1001", notification.Resource.Reference)
	assert.Equal(t, "10.00", notification.Resource.Amount)
	assert.Equal(t, "EUR", notification.Resource.Currency)
	assert.Equal(t, "abcd", notification.Signature)
	assert.Equal(t, "completed", notification.State)
	assert.Equal(t, 200, notification.StatusCode)
}

func TestParseWebhookRejectsEmptyBody(t *testing.T) {
	_, err := ParseWebhook(nil, 200)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParseWebhook([]byte("   \n"), 200)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseWebhookRejectsInvalidJSON(t *testing.T) {
	_, err := ParseWebhook([]byte(`{"event_type":`), 200)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseWebhookRejectsMissingReference(t *testing.T) {
	_, err := ParseWebhook([]byte(`{"event_type":"ORDER.PAYMENT.RECEIVED","resource":{"amount":"10.00"},"state":"completed"}`), 200)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func newTestProvider(baseURL string) *XMoneyProvider {
	return &XMoneyProvider{
		BaseProvider: providers.BaseProvider{
			Name:    providers.XMoney,
			BaseURL: baseURL,
			Client:  &http.Client{Timeout: time.Second * 5},
		},
		config: &XMoneyConfig{ProviderName: providers.XMoney},
	}
}

func TestCreateOrderParsesCreatedResponse(t *testing.T) {
	setupTestEnv(t)

	var gotAuth string
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path

		var request OrderRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&request)) {
			assert.Equal(t, "ORD-1001", request.Data.Attributes.Order.Reference)
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"xm-55","type":"orders","attributes":{"redirect_url":"https://pay.example.com/xm-55"}}}`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	response, err := provider.CreateOrder(testSettings(), testCheckout())
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-api-key", gotAuth)
	assert.Equal(t, "/api/stores/orders", gotPath)
	assert.Equal(t, "xm-55", response.Data.ID)
	assert.Equal(t, "https://pay.example.com/xm-55", response.Data.Attributes.RedirectURL)
}

func TestCreateOrderRejectsNonCreatedStatus(t *testing.T) {
	setupTestEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"id":"xm-55"}}`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	_, err := provider.CreateOrder(testSettings(), testCheckout())
	assert.ErrorIs(t, err, ErrTransportFailure)
}

func TestCreateOrderRejectsEmptyBody(t *testing.T) {
	setupTestEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	_, err := provider.CreateOrder(testSettings(), testCheckout())
	assert.ErrorIs(t, err, ErrTransportFailure)
}

func TestCreateOrderRejectsUndecodableBody(t *testing.T) {
	setupTestEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	_, err := provider.CreateOrder(testSettings(), testCheckout())
	assert.ErrorIs(t, err, ErrTransportFailure)
}

func TestCreateOrderSkipsNetworkWhenSettingsIncomplete(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	settings := testSettings()
	settings.APIKey = ""

	provider := newTestProvider(server.URL)
	_, err := provider.CreateOrder(settings, testCheckout())

	assert.ErrorIs(t, err, ErrMissingSettings)
	assert.False(t, called)
}
