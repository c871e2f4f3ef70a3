package rest

import (
	"context"
	"net"
	"net/http"
	"time"

	core_port "github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

// NewRouter собирает маршруты /api/v1
func NewRouter(
	catalogHandlers *CatalogHandler,
	contractHandlers *ContractHandler,
	allowedOrigins []string,
	baseLogger core_port.LoggerPort,
) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300,
	}))
	r.Use(LoggerMiddleware(baseLogger), middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", Health)

		r.Get("/catalog", catalogHandlers.GetCatalog)
		r.Post("/catalog/refresh", catalogHandlers.RefreshCatalog)
		r.Get("/catalog/subscribe", catalogHandlers.SubscribeToCatalog)

		r.Get("/assets/resolve", contractHandlers.ResolveAsset)

		r.Get("/contracts", contractHandlers.ListContracts)
		r.Post("/contracts", contractHandlers.CreateContract)
		r.Post("/contracts/reconcile", contractHandlers.ReconcileContracts)
	})

	return r
}

func NewServer(port string, handler http.Handler, baseLogger core_port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// Start блокируется до Stop. Контексты запросов наследуют ctx, поэтому
// его отмена закрывает долгие SSE-подключения.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer.BaseContext = func(net.Listener) context.Context { return ctx }
	s.logger.Info("Starting REST server", core_port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
