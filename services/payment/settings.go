package payment

import (
	"context"
	"fmt"
	"time"

	db "github.com/CrestPay/CrestPay-Backend/db/sqlc"
	"github.com/CrestPay/CrestPay-Backend/providers"
	"github.com/CrestPay/CrestPay-Backend/providers/payments"
	"github.com/patrickmn/go-cache"
)

// Setting keys in the gateway_settings table. Credentials are stored per
// environment; the live/test pair is chosen by a single global switch
// read from service config.
const (
	settingAPIKeyLive        = "apiKeyLive"
	settingAPIKeyTest        = "apiKeyTest"
	settingNotifyURLLive     = "notifyUrlLive"
	settingNotifyURLTest     = "notifyUrlTest"
	settingWebhookSecretLive = "webhookSecretLive"
	settingWebhookSecretTest = "webhookSecretTest"
	settingSuccessURL        = "successUrl"
	settingFailURL           = "failUrl"
	settingCurrency          = "currency"
)

const settingsCacheTTL = 5 * time.Minute

// SettingsProvider resolves the gateway credentials for the current
// environment. Implementations must be safe for concurrent use.
type SettingsProvider interface {
	GatewaySettings(ctx context.Context) (payments.Settings, error)
}

// StoreSettingsProvider reads gateway settings from the database and
// keeps them in an in-process cache, so webhook bursts do not hit the
// settings table on every delivery.
type StoreSettingsProvider struct {
	store *db.Store
	live  bool
	cache *cache.Cache
}

func NewStoreSettingsProvider(store *db.Store, live bool) *StoreSettingsProvider {
	return &StoreSettingsProvider{
		store: store,
		live:  live,
		cache: cache.New(settingsCacheTTL, 10*time.Minute),
	}
}

func (p *StoreSettingsProvider) GatewaySettings(ctx context.Context) (payments.Settings, error) {
	cacheKey := providers.XMoney
	if cached, found := p.cache.Get(cacheKey); found {
		return cached.(payments.Settings), nil
	}

	rows, err := p.store.GetGatewaySettings(ctx, providers.XMoney)
	if err != nil {
		return payments.Settings{}, fmt.Errorf("error loading gateway settings: %w", err)
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}

	apiKeyKey, notifyKey, secretKey := settingAPIKeyTest, settingNotifyURLTest, settingWebhookSecretTest
	if p.live {
		apiKeyKey, notifyKey, secretKey = settingAPIKeyLive, settingNotifyURLLive, settingWebhookSecretLive
	}

	settings := payments.Settings{
		APIKey:        values[apiKeyKey],
		WebhookSecret: values[secretKey],
		CallbackURL:   values[notifyKey],
		SuccessURL:    values[settingSuccessURL],
		FailURL:       values[settingFailURL],
		Currency:      values[settingCurrency],
	}
	if settings.Currency == "" {
		settings.Currency = "EUR"
	}

	p.cache.Set(cacheKey, settings, cache.DefaultExpiration)
	return settings, nil
}
