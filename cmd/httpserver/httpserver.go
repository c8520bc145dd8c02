// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-wallet/internal/customerdelivery"
	"github.com/go-petr/pet-wallet/internal/customerrepo"
	"github.com/go-petr/pet-wallet/internal/customerservice"
	"github.com/go-petr/pet-wallet/internal/feepolicy"
	"github.com/go-petr/pet-wallet/internal/ledgerdelivery"
	"github.com/go-petr/pet-wallet/internal/ledgerrepo"
	"github.com/go-petr/pet-wallet/internal/ledgerservice"
	"github.com/go-petr/pet-wallet/internal/middleware"
	"github.com/go-petr/pet-wallet/internal/operatordelivery"
	"github.com/go-petr/pet-wallet/internal/operatorrepo"
	"github.com/go-petr/pet-wallet/internal/operatorservice"
	"github.com/go-petr/pet-wallet/internal/sessiondelivery"
	"github.com/go-petr/pet-wallet/internal/sessionrepo"
	"github.com/go-petr/pet-wallet/internal/sessionservice"
	"github.com/go-petr/pet-wallet/internal/transferdelivery"
	"github.com/go-petr/pet-wallet/internal/transferrepo"
	"github.com/go-petr/pet-wallet/internal/transferservice"
	"github.com/go-petr/pet-wallet/pkg/configpkg"
	"github.com/go-petr/pet-wallet/pkg/currencypkg"
	"github.com/go-petr/pet-wallet/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	policy, err := feepolicy.Parse(config.TransferFeePercent)
	if err != nil {
		return nil, fmt.Errorf("cannot create fee policy: %w", err)
	}

	tokenMaker, err := tokenpkg.New(config.TokenType, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	operatorRepo := operatorrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)
	customerRepo := customerrepo.NewRepoPGS(conn)
	ledgerRepo := ledgerrepo.NewRepoPGS(conn)
	transferRepo := transferrepo.NewRepoPGS(conn, config.DBLockTimeout)

	operatorService := operatorservice.New(operatorRepo)
	customerService := customerservice.New(customerRepo)
	ledgerService := ledgerservice.New(ledgerRepo)
	transferService := transferservice.New(transferRepo, policy)

	sessionService, err := sessionservice.New(sessionRepo, config, tokenMaker)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize session service: %w", err)
	}

	operatorHandler := operatordelivery.NewHandler(operatorService, sessionService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)
	customerHandler := customerdelivery.NewHandler(customerService)
	ledgerHandler := ledgerdelivery.NewHandler(ledgerService)
	transferHandler := transferdelivery.NewHandler(transferService)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("currency", currencypkg.ValidCurrency); err != nil {
			return nil, fmt.Errorf("cannot register currency validator: %w", err)
		}

		if err := v.RegisterValidation("ledgeraction", ledgerdelivery.ValidAction); err != nil {
			return nil, fmt.Errorf("cannot register ledgeraction validator: %w", err)
		}
	}

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))

	engine.POST("/operators", operatorHandler.Create)
	engine.POST("/operators/login", operatorHandler.Login)
	engine.POST("/sessions", sessionHandler.RenewAccessToken)
	engine.POST("/sessions/revoke", sessionHandler.Revoke)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(sessionService.TokenMaker))

	authRoutes.POST("/customers", customerHandler.Create)
	authRoutes.GET("/customers/:id", customerHandler.Get)
	authRoutes.GET("/customers", customerHandler.List)

	authRoutes.POST("/transfers", transferHandler.Create)

	authRoutes.GET("/ledger", ledgerHandler.List)

	logger.Info().
		Str("fee_percent", policy.Percent().String()).
		Str("token_type", config.TokenType).
		Dur("lock_timeout", config.DBLockTimeout).
		Msg("wallet server configured")

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
