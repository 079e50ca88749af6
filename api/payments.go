package api

import (
	"net/http"

	"github.com/CrestPay/CrestPay-Backend/models"
	"github.com/CrestPay/CrestPay-Backend/providers/payments"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentAPI struct {
	server *Server
}

// amount validates fixed-point money strings ("10.00", "0.50") before
// they ever reach decimal parsing.
var amountValidation validator.Func = func(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	return !d.IsNegative()
}

func (p PaymentAPI) router(server *Server) {
	p.server = server

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("amount", amountValidation)
	}

	serverGroupV1 := server.router.Group("/api/v1/payments")
	serverGroupV1.POST("checkout", p.checkout)
	serverGroupV1.POST("webhook/xmoney", p.xmoneyWebhook)
}

type checkoutItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Price    string `json:"price" binding:"required,amount"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type checkoutRequest struct {
	Reference string                `json:"reference"`
	Total     string                `json:"total" binding:"required,amount"`
	Subtotal  string                `json:"subtotal" binding:"required,amount"`
	Tax       string                `json:"tax" binding:"omitempty,amount"`
	Discount  string                `json:"discount" binding:"omitempty,amount"`
	Currency  string                `json:"currency" binding:"omitempty,len=3"`
	Customer  checkoutCustomer      `json:"customer" binding:"required"`
	Items     []checkoutItemRequest `json:"items" binding:"required,min=1,dive"`
}

type checkoutCustomer struct {
	FirstName                 string `json:"first_name" binding:"required"`
	LastName                  string `json:"last_name" binding:"required"`
	Email                     string `json:"email" binding:"required,email"`
	Street                    string `json:"street"`
	HouseNumber               string `json:"house_number"`
	HouseNumberSuffix         string `json:"house_number_suffix"`
	ShippingStreet            string `json:"shipping_street"`
	ShippingHouseNumber       string `json:"shipping_house_number"`
	ShippingHouseNumberSuffix string `json:"shipping_house_number_suffix"`
	City                      string `json:"city"`
	State                     string `json:"state"`
	PostalCode                string `json:"zipcode"`
	ShippingPostalCode        string `json:"shipping_zipcode"`
	Country                   string `json:"country" binding:"required"`
}

func (p *PaymentAPI) checkout(ctx *gin.Context) {
	var request checkoutRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewError("please provide a valid checkout payload"))
		return
	}

	checkout, err := toCheckout(request)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewError("please provide valid order amounts"))
		return
	}

	result := p.server.payments.HandlePaymentRequest(ctx, checkout)
	if !result.Successful {
		ctx.JSON(http.StatusBadGateway, models.NewError(result.ErrorMessage))
		return
	}

	ctx.JSON(http.StatusOK, models.NewSuccess("order created", gin.H{
		"reference":    checkout.Reference,
		"order_id":     result.OrderID,
		"redirect_url": result.RedirectURL,
	}))
}

func (p *PaymentAPI) xmoneyWebhook(ctx *gin.Context) {
	rawBody, err := ctx.GetRawData()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewError("unable to read webhook body"))
		return
	}

	result := p.server.payments.ProcessStatusUpdate(ctx, rawBody, ctx.Writer.Status(), ctx.ClientIP())
	if !result.Successful {
		ctx.JSON(http.StatusBadRequest, models.NewError(result.Status))
		return
	}

	// Best-effort replay marker; a duplicate delivery was still verified
	// from scratch above.
	if p.server.redis != nil && result.Reference != "" {
		provider := p.server.payments.ProviderName()
		if seen, err := p.server.redis.WasWebhookProcessed(ctx, provider, result.Reference); err == nil && seen {
			p.server.logger.Info("duplicate webhook delivery", "reference", result.Reference)
		}
		if err := p.server.redis.MarkWebhookProcessed(ctx, provider, result.Reference); err != nil {
			p.server.logger.Error("failed to mark webhook processed", "reference", result.Reference, "error", err)
		}
	}

	ctx.JSON(http.StatusOK, models.NewSuccess("payment confirmed", gin.H{
		"reference": result.Reference,
	}))
}

func toCheckout(request checkoutRequest) (payments.Checkout, error) {
	total, err := decimal.NewFromString(request.Total)
	if err != nil {
		return payments.Checkout{}, err
	}
	subtotal, err := decimal.NewFromString(request.Subtotal)
	if err != nil {
		return payments.Checkout{}, err
	}
	tax, err := parseOptionalAmount(request.Tax)
	if err != nil {
		return payments.Checkout{}, err
	}
	discount, err := parseOptionalAmount(request.Discount)
	if err != nil {
		return payments.Checkout{}, err
	}

	reference := request.Reference
	if reference == "" {
		reference = uuid.NewString()
	}

	items := make([]payments.CheckoutItem, 0, len(request.Items))
	for _, item := range request.Items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return payments.Checkout{}, err
		}
		items = append(items, payments.CheckoutItem{
			Name:     item.Name,
			Price:    price,
			Quantity: item.Quantity,
		})
	}

	return payments.Checkout{
		Reference: reference,
		Total:     total,
		Subtotal:  subtotal,
		Tax:       tax,
		Discount:  discount,
		Currency:  request.Currency,
		Customer: payments.CheckoutCustomer{
			FirstName:                 request.Customer.FirstName,
			LastName:                  request.Customer.LastName,
			Email:                     request.Customer.Email,
			Street:                    request.Customer.Street,
			HouseNumber:               request.Customer.HouseNumber,
			HouseNumberSuffix:         request.Customer.HouseNumberSuffix,
			ShippingStreet:            request.Customer.ShippingStreet,
			ShippingHouseNumber:       request.Customer.ShippingHouseNumber,
			ShippingHouseNumberSuffix: request.Customer.ShippingHouseNumberSuffix,
			City:                      request.Customer.City,
			State:                     request.Customer.State,
			PostalCode:                request.Customer.PostalCode,
			ShippingPostalCode:        request.Customer.ShippingPostalCode,
			Country:                   request.Customer.Country,
		},
		Items: items,
	}, nil
}

func parseOptionalAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}
