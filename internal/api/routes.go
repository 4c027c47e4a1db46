// Package api exposes trade journal statistics over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"trade-journal/internal/api/middleware"
	"trade-journal/internal/metrics"
	"trade-journal/internal/observability"
	"trade-journal/internal/realtime"
	"trade-journal/internal/storage"
)

// Dependencies are the collaborators of the HTTP API. Hub is optional.
type Dependencies struct {
	Aggregator     *metrics.Aggregator
	TradeStore     storage.TradeStore
	StrategyStore  storage.StrategyStore
	Hub            *realtime.Hub
	Logger         *zap.Logger
	InitialBalance float64
}

// SetupRoutes builds the router.
func SetupRoutes(deps Dependencies) *mux.Router {
	h := newHandler(deps)

	r := mux.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.Logging(h.logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", observability.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/ws/users/{userID}", h.ServeWS).Methods(http.MethodGet)

	u := r.PathPrefix("/api/v1/users/{userID}").Subrouter()

	u.HandleFunc("/trades", h.ListTrades).Methods(http.MethodGet)
	u.HandleFunc("/trades", h.CreateTrade).Methods(http.MethodPost)
	u.HandleFunc("/trades/import", h.ImportTrades).Methods(http.MethodPost)
	u.HandleFunc("/trades/{tradeID}", h.GetTrade).Methods(http.MethodGet)

	u.HandleFunc("/strategies", h.ListStrategies).Methods(http.MethodGet)
	u.HandleFunc("/strategies", h.CreateStrategy).Methods(http.MethodPost)

	u.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
	u.HandleFunc("/equity-curve", h.GetEquityCurve).Methods(http.MethodGet)
	u.HandleFunc("/strategies/performance", h.GetStrategyPerformance).Methods(http.MethodGet)
	u.HandleFunc("/streaks", h.GetStreaks).Methods(http.MethodGet)
	u.HandleFunc("/holding-time", h.GetHoldingTime).Methods(http.MethodGet)

	u.HandleFunc("/snapshots", h.ListSnapshots).Methods(http.MethodGet)
	u.HandleFunc("/snapshots", h.CreateSnapshot).Methods(http.MethodPost)
	u.HandleFunc("/snapshots/latest", h.GetLatestSnapshot).Methods(http.MethodGet)

	u.HandleFunc("/export/trades.csv", h.ExportTrades).Methods(http.MethodGet)
	u.HandleFunc("/export/report.md", h.ExportReport).Methods(http.MethodGet)
	u.HandleFunc("/export/equity-curve.csv", h.ExportEquityCurve).Methods(http.MethodGet)

	// Preflight for any path
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}
