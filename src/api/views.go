package api

import (
	"net/http"
	"time"

	"server/src/api/controllers"
	"server/src/api/handlers"
	"server/src/clients/goldapi"
	"server/src/clients/marketcheck"
	"server/src/clients/snaptrade"
	"server/src/config"
	"server/src/database"
	"server/src/repositories"
	"server/src/utils"
	redis_utils "server/src/utils/redis"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
	logger  *logrus.Logger
}

func NewServer(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	pool, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	cache, err := redis_utils.NewRedisHandler(cfg)
	if err != nil {
		return nil, err
	}

	connectionRepo := repositories.NewBrokerConnectionRepository(pool)
	assetRepo := repositories.NewAssetRepository(pool)
	categoryRepo := repositories.NewAssetCategoryRepository(pool)
	syncLogRepo := repositories.NewSyncLogRepository(pool)

	aggregator := snaptrade.NewClient(cfg)
	metals := goldapi.NewClient(cfg.ExternalClients.GoldAPI.BaseURL, cfg.ExternalClients.GoldAPI.APIKey)
	vehicles := marketcheck.NewClient(cfg.ExternalClients.MarketCheck.BaseURL, cfg.ExternalClients.MarketCheck.APIKey)

	registration := controllers.NewRegistrationController(aggregator, connectionRepo)
	connections := controllers.NewConnectionsController(aggregator, connectionRepo,
		registration, cfg.App.DefaultRedirectPath)
	sync := controllers.NewSyncController(aggregator, connectionRepo, assetRepo, categoryRepo, syncLogRepo)
	assets := controllers.NewAssetsController(assetRepo, categoryRepo)
	prices := controllers.NewPricesController(metals, vehicles, cache)

	tokenAuth := jwtauth.New("HS256", []byte(cfg.Auth.JWTSecret), nil)

	handler := handlers.NewHandler(tokenAuth, registration, connections, sync, assets, prices)
	handler.ClientConfigured = cfg.ExternalClients.SnapTrade.ClientID != ""
	handler.KeyConfigured = cfg.ExternalClients.SnapTrade.ConsumerKey != "" ||
		cfg.ExternalClients.SnapTrade.SecretID != ""

	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
		logger:  logger,
	}
	server.InitRoutes()
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(utils.WithLogger(r.Context(), s.logger)))
	})
}

func (s *Server) InitRoutes() {
	s.Router.Use(s.withLogger)

	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api", func(r chi.Router) {
		r.Use(handlers.NoCache)

		r.Get("/metal-prices", s.Handler.GetMetalPrice)
		r.Get("/car-prices", s.Handler.GetVehiclePricing)
		r.Get("/asset-categories", s.Handler.GetAssetCategories)

		r.Route("/snaptrade", func(r chi.Router) {
			// The broker portal redirects the browser to the callback, so it
			// cannot require a bearer token; the handler treats a missing
			// session as a user mismatch.
			r.Get("/callback", s.Handler.Callback)
			r.Get("/status", s.Handler.ConnectionStatus)
			r.Get("/debug", s.Handler.Debug)
			r.Get("/mock-holdings", s.Handler.MockHoldings)

			r.Post("/register", s.Handler.RegisterUser)
			r.Delete("/register", s.Handler.DeleteUser)
			r.Post("/connect", s.Handler.CreateConnection)
			r.Delete("/connect", s.Handler.DeleteConnection)
			r.Post("/sync", s.Handler.SyncData)
			r.Post("/refresh", s.Handler.RefreshAssets)
			r.Post("/refresh-user", s.Handler.RefreshUser)
			r.Get("/accounts", s.Handler.GetAccounts)
			r.Get("/holdings", s.Handler.GetHoldings)
			r.Get("/balance", s.Handler.GetBalance)
			r.Get("/activities", s.Handler.GetActivities)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", s.Handler.GetAssets)
			r.Post("/", s.Handler.CreateAsset)
			r.Delete("/{id}", s.Handler.DeleteAsset)
		})
	})
}

func NewHTTPServer(cfg *config.Config, server *Server) *http.Server {
	port := cfg.Service.Port
	if port == "" {
		port = "8000"
	}
	return &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		Handler:      server,
	}
}
