// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/binwatch/internal/config"
	"github.com/tomtom215/binwatch/internal/middleware"
	ws "github.com/tomtom215/binwatch/internal/websocket"
)

// Server is the local view server.
type Server struct {
	cfg     config.ServerConfig
	handler *Handler
	router  chi.Router
}

// NewServer builds the view server around a controller, the backend catalog
// and the viewer hub.
func NewServer(cfg config.ServerConfig, ctrl StateController, catalog Catalog, hub *ws.Hub) *Server {
	mw := NewChiMiddleware(cfg)
	h := NewHandler(ctrl, catalog, hub, mw)
	return &Server{cfg: cfg, handler: h, router: setupChi(h, mw)}
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// NewHTTPServer returns an *http.Server ready for the supervisor's
// HTTP service. WriteTimeout is left at zero so viewer sockets are not cut.
func (s *Server) NewHTTPServer() *http.Server {
	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		IdleTimeout:       2 * timeout,
	}
}

// setupChi wires the middleware stack and routes.
//
//	GET  /api/v1/health
//	GET  /api/v1/state
//	GET  /api/v1/bins
//	GET  /api/v1/bins/{id}
//	GET  /api/v1/bins/{id}/history
//	GET  /api/v1/bins/{id}/consumption
//	PUT  /api/v1/bins/{id}/config
//	GET  /api/v1/summary
//	GET  /api/v1/alerts
//	GET  /api/v1/alerts/history
//	GET  /api/v1/alerts/configurations
//	POST /api/v1/alerts/{id}/acknowledge
//	POST /api/v1/alerts/acknowledge-all
//	PUT  /api/v1/alerts/configurations/{bin}/{type}
//	GET  /api/v1/analytics/{trends,consumption,comparison,status-distribution}
//	GET  /api/v1/export/{kind}
//	POST /api/v1/errors/dismiss
//	POST /api/v1/reconnect
//	GET  /metrics
//	GET  /ws
func setupChi(h *Handler, mw *ChiMiddleware) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Get("/health", h.Health)
		r.Get("/state", h.State)
		r.Get("/summary", h.Summary)

		r.Route("/bins", func(r chi.Router) {
			r.Get("/", h.ListBins)
			r.Get("/{id}", h.GetBin)
			r.Get("/{id}/history", h.GetBinHistory)
			r.Get("/{id}/consumption", h.GetBinConsumption)
			r.Put("/{id}/config", h.UpdateBinConfig)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", h.ListAlerts)
			r.Get("/history", h.ListAlertHistory)
			r.Get("/configurations", h.ListAlertConfigurations)
			r.Post("/acknowledge-all", h.AcknowledgeAll)
			r.Post("/{id}/acknowledge", h.AcknowledgeAlert)
			r.Put("/configurations/{bin}/{type}", h.UpdateAlertConfig)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/trends", h.GetTrends)
			r.Get("/consumption", h.GetConsumptionRates)
			r.Get("/comparison", h.GetComparison)
			r.Get("/status-distribution", h.GetStatusDistribution)
		})

		r.Get("/export/{kind}", h.ExportURL)

		r.Post("/errors/dismiss", h.DismissErrors)
		r.Post("/reconnect", h.Reconnect)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", h.WebSocket)

	return r
}
