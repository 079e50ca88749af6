package api

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	db "github.com/CrestPay/CrestPay-Backend/db/sqlc"
	"github.com/CrestPay/CrestPay-Backend/models"
	"github.com/CrestPay/CrestPay-Backend/providers"
	"github.com/CrestPay/CrestPay-Backend/providers/payments"
	"github.com/CrestPay/CrestPay-Backend/services/audit"
	"github.com/CrestPay/CrestPay-Backend/services/monitoring/logging"
	"github.com/CrestPay/CrestPay-Backend/services/payment"
	redis_service "github.com/CrestPay/CrestPay-Backend/services/redis"
	"github.com/CrestPay/CrestPay-Backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type Server struct {
	router   *gin.Engine
	store    *db.Store
	config   *utils.Config
	logger   *logging.Logger
	provider *providers.ProviderService
	payments *payment.PaymentService
	redis    *redis_service.RedisService
}

func NewServer(envPath string) *Server {
	c, err := utils.LoadConfig(envPath)
	if err != nil {
		panic(fmt.Sprintf("Could not load config: %v", err))
	}

	conn, err := sql.Open(c.DBDriver, utils.GetDBSource(c, c.DBName))
	if err != nil {
		panic(fmt.Sprintf("Could not load DB: %v", err))
	}

	m, err := migrate.New(
		"file://db/migrations",
		utils.GetDBSource(c, c.DBName),
	)
	if err != nil {
		log.Fatalf("Unable to instantiate the database schema migrator - %v", err)
	}

	if err := m.Up(); err != nil {
		if err != migrate.ErrNoChange {
			log.Fatalf("Unable to migrate up to the latest database schema - %v", err)
		}
	}

	store := db.NewStore(conn)
	g := gin.Default()
	l := logging.NewLogger()
	p := providers.NewProviderService()

	// Set up the xMoney gateway
	xp := payments.NewXMoneyProvider(c.IsLiveEnvironment())
	p.AddProvider(xp)

	settings := payment.NewStoreSettingsProvider(store, c.IsLiveEnvironment())
	auditLog := audit.NewPaymentLog(store, l)
	paymentService := payment.NewPaymentService(store, l, xp, settings, auditLog)

	r, err := redis_service.NewRedisService(&redis_service.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
	})
	if err != nil {
		// Webhook dedupe markers are best-effort; run without them.
		l.Error("Unable to connect to Redis", "error", err)
	}

	g.Use(CORSMiddleware())
	g.Use(l.LoggingMiddleWare())

	return &Server{
		router:   g,
		store:    store,
		config:   c,
		logger:   l,
		provider: p,
		payments: paymentService,
		redis:    r,
	}
}

func (s *Server) Start(port int) {

	dr := models.SuccessResponse{
		Status:  "success",
		Message: "Welcome to CrestPay!",
		Version: utils.REVISION,
	}

	s.router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dr)
	})

	/// Register Object Routers Below
	PaymentAPI{}.router(s)

	s.router.Run(fmt.Sprintf(":%v", port))
}
