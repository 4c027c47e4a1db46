package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"trade-journal/internal/domain"
	"trade-journal/internal/journal"
	"trade-journal/internal/metrics"
	"trade-journal/internal/observability"
	"trade-journal/internal/realtime"
	"trade-journal/internal/reporting"
	"trade-journal/internal/storage"
)

const maxImportBytes = 10 << 20

// Handler serves the statistics API.
type Handler struct {
	aggregator     *metrics.Aggregator
	reports        *reporting.Generator
	trades         storage.TradeStore
	strategies     storage.StrategyStore
	hub            *realtime.Hub
	logger         *zap.Logger
	initialBalance float64

	writeTrades func(io.Writer, []*domain.TradeRecord) error
}

func newHandler(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		aggregator:     deps.Aggregator,
		reports:        reporting.NewGenerator(deps.Aggregator),
		trades:         deps.TradeStore,
		strategies:     deps.StrategyStore,
		hub:            deps.Hub,
		logger:         logger,
		initialBalance: deps.InitialBalance,
		writeTrades:    journal.WriteTrades,
	}
}

func userID(r *http.Request) string {
	return mux.Vars(r)["userID"]
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListTrades returns the filtered trades of a user in chronological order.
func (h *Handler) ListTrades(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid filter", err)
		return
	}
	trades, err := h.aggregator.Trades(r.Context(), userID(r), filter)
	if err != nil {
		h.writeStoreError(w, "failed to load trades", err)
		return
	}
	resp := make([]TradeDTO, len(trades))
	for i, t := range trades {
		resp[i] = newTradeDTO(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateTrade records a single trade.
func (h *Handler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	var req TradeDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body", err)
		return
	}
	uid := userID(r)
	t, err := req.toDomain(uid)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid trade", err)
		return
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid trade", err)
		return
	}
	if err := h.trades.Insert(r.Context(), t); err != nil {
		h.writeStoreError(w, "failed to store trade", err)
		return
	}
	h.publishStats(r, uid)
	writeJSON(w, http.StatusCreated, newTradeDTO(t))
}

// GetTrade returns a single trade of the user.
func (h *Handler) GetTrade(w http.ResponseWriter, r *http.Request) {
	t, err := h.trades.GetByID(r.Context(), mux.Vars(r)["tradeID"])
	if err != nil {
		h.writeStoreError(w, "trade not found", err)
		return
	}
	if t.UserID != userID(r) {
		writeError(w, http.StatusNotFound, codeNotFound, "trade not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, newTradeDTO(t))
}

// ImportTrades reads a journal CSV from the body or a multipart "file" field.
// Valid rows are stored in one batch; rejected rows are reported.
func (h *Handler) ImportTrades(w http.ResponseWriter, r *http.Request) {
	dryRun, err := parseBool(r, "dry_run")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid query", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	body, err := importBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid upload", err)
		return
	}
	defer body.Close()

	uid := userID(r)
	res, err := journal.NewImporter(uid, journal.WithImportLogger(h.logger)).Read(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "unreadable CSV", err)
		return
	}

	accepted := make([]*domain.TradeRecord, 0, len(res.Trades))
	rejected := res.Errors
	for _, t := range res.Trades {
		if t.UserID != uid {
			rejected = append(rejected, &journal.RowError{
				Field: "user_id",
				Err:   fmt.Errorf("trade %s: user %q does not match path user %q", t.ID, t.UserID, uid),
			})
			continue
		}
		accepted = append(accepted, t)
	}

	if !dryRun && len(accepted) > 0 {
		if err := h.trades.InsertBulk(r.Context(), accepted); err != nil {
			h.writeStoreError(w, "failed to store trades", err)
			return
		}
		h.publishStats(r, uid)
	}
	observability.RecordImport(len(accepted), len(rejected))

	imported := len(accepted)
	if dryRun {
		imported = 0
	}
	h.logger.Info("trades imported",
		zap.String("user_id", uid),
		zap.Int("accepted", len(accepted)),
		zap.Int("rejected", len(rejected)),
		zap.Bool("dry_run", dryRun),
	)
	writeJSON(w, http.StatusOK, ImportResponse{
		Imported: imported,
		DryRun:   dryRun,
		Rejected: newRowErrors(rejected),
	})
}

func importBody(r *http.Request) (io.ReadCloser, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("multipart field file: %w", err)
		}
		return file, nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty body")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// GetStats returns headline statistics for the filtered trades.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	filter, balance, ok := h.viewParams(w, r)
	if !ok {
		return
	}
	stats, err := h.aggregator.Stats(r.Context(), userID(r), filter, balance)
	if err != nil {
		h.writeStoreError(w, "failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, newStatsResponse(stats))
}

// GetEquityCurve returns the cumulative P&L series.
func (h *Handler) GetEquityCurve(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid filter", err)
		return
	}
	curve, err := h.aggregator.EquityCurve(r.Context(), userID(r), filter)
	if err != nil {
		h.writeStoreError(w, "failed to compute equity curve", err)
		return
	}
	writeJSON(w, http.StatusOK, newEquityCurveResponse(curve))
}

// GetStrategyPerformance returns the per-strategy breakdown.
func (h *Handler) GetStrategyPerformance(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid filter", err)
		return
	}
	perf, err := h.aggregator.StrategyPerformance(r.Context(), userID(r), filter)
	if err != nil {
		h.writeStoreError(w, "failed to compute strategy performance", err)
		return
	}
	writeJSON(w, http.StatusOK, newStrategyPerformanceResponse(perf))
}

// GetStreaks returns the streak analysis.
func (h *Handler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid filter", err)
		return
	}
	a, err := h.aggregator.Streaks(r.Context(), userID(r), filter)
	if err != nil {
		h.writeStoreError(w, "failed to analyze streaks", err)
		return
	}
	writeJSON(w, http.StatusOK, newStreakAnalysisResponse(a))
}

// GetHoldingTime returns holding-time statistics.
func (h *Handler) GetHoldingTime(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid filter", err)
		return
	}
	hold, err := h.aggregator.HoldingTime(r.Context(), userID(r), filter)
	if err != nil {
		h.writeStoreError(w, "failed to compute holding time", err)
		return
	}
	writeJSON(w, http.StatusOK, newHoldingTimeResponse(hold))
}

// CreateSnapshot computes and persists stats over all of the user's trades.
func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	balance, err := parseInitialBalance(r, h.initialBalance)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid query", err)
		return
	}
	snap, err := h.aggregator.ComputeAndStore(r.Context(), userID(r), balance)
	if err != nil {
		h.writeStoreError(w, "failed to store snapshot", err)
		return
	}
	writeJSON(w, http.StatusCreated, newSnapshotResponse(snap))
}

// GetLatestSnapshot returns the most recent snapshot.
func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.aggregator.LatestSnapshot(r.Context(), userID(r))
	if err != nil {
		h.writeStoreError(w, "no snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, newSnapshotResponse(snap))
}

// ListSnapshots returns the user's snapshot history, oldest first.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	history, err := h.aggregator.Snapshots(r.Context(), userID(r))
	if err != nil {
		h.writeStoreError(w, "failed to load snapshots", err)
		return
	}
	resp := make([]SnapshotResponse, len(history))
	for i, snap := range history {
		resp[i] = newSnapshotResponse(snap)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListStrategies returns the user's defined strategies.
func (h *Handler) ListStrategies(w http.ResponseWriter, r *http.Request) {
	list, err := h.strategies.GetByUser(r.Context(), userID(r))
	if err != nil {
		h.writeStoreError(w, "failed to load strategies", err)
		return
	}
	resp := make([]StrategyDTO, len(list))
	for i, s := range list {
		resp[i] = newStrategyDTO(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateStrategy defines a new strategy.
func (h *Handler) CreateStrategy(w http.ResponseWriter, r *http.Request) {
	var req StrategyDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body", err)
		return
	}
	uid := userID(r)
	if req.UserID != "" && req.UserID != uid {
		writeError(w, http.StatusBadRequest, codeBadRequest, "user_id does not match path", nil)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "name is required", nil)
		return
	}
	s := &domain.Strategy{ID: req.ID, UserID: uid, Name: req.Name, Description: req.Description}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if err := h.strategies.Insert(r.Context(), s); err != nil {
		h.writeStoreError(w, "failed to store strategy", err)
		return
	}
	writeJSON(w, http.StatusCreated, newStrategyDTO(s))
}

// ExportTrades writes the filtered trades in the import CSV layout.
func (h *Handler) ExportTrades(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid filter", err)
		return
	}
	trades, err := h.aggregator.Trades(r.Context(), userID(r), filter)
	if err != nil {
		h.writeStoreError(w, "failed to load trades", err)
		return
	}
	var buf bytes.Buffer
	if err := h.writeTrades(&buf, trades); err != nil {
		h.logger.Error("trade export failed", zap.String("user_id", userID(r)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to export trades", nil)
		return
	}
	observability.RecordReport("trades_csv")
	writeAttachment(w, "text/csv", "trades.csv", buf.Bytes())
}

// ExportReport writes the Markdown statistics report.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	filter, balance, ok := h.viewParams(w, r)
	if !ok {
		return
	}
	report, err := h.reports.Generate(r.Context(), userID(r), filter, balance)
	if err != nil {
		h.writeStoreError(w, "failed to generate report", err)
		return
	}
	observability.RecordReport("markdown")
	writeAttachment(w, "text/markdown; charset=utf-8", "STATS.md", []byte(reporting.RenderMarkdown(report)))
}

// ExportEquityCurve writes the equity curve as CSV.
func (h *Handler) ExportEquityCurve(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid filter", err)
		return
	}
	curve, err := h.aggregator.EquityCurve(r.Context(), userID(r), filter)
	if err != nil {
		h.writeStoreError(w, "failed to compute equity curve", err)
		return
	}
	observability.RecordReport("equity_csv")
	writeAttachment(w, "text/csv", "EQUITY_CURVE.csv", []byte(reporting.RenderEquityCurveCSV(curve)))
}

// ServeWS upgrades to a websocket that receives stats updates.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeError(w, http.StatusServiceUnavailable, codeInternal, "realtime updates disabled", nil)
		return
	}
	h.hub.ServeWS(w, r, userID(r))
}

func (h *Handler) viewParams(w http.ResponseWriter, r *http.Request) (storage.TradeFilter, float64, bool) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid filter", err)
		return filter, 0, false
	}
	balance, err := parseInitialBalance(r, h.initialBalance)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid query", err)
		return filter, 0, false
	}
	return filter, balance, true
}

// publishStats pushes fresh headline stats to the user's websocket clients.
func (h *Handler) publishStats(r *http.Request, uid string) {
	if h.hub == nil || h.hub.Clients(uid) == 0 {
		return
	}
	stats, err := h.aggregator.Stats(r.Context(), uid, storage.TradeFilter{}, h.initialBalance)
	if err != nil {
		h.logger.Warn("stats update skipped", zap.String("user_id", uid), zap.Error(err))
		return
	}
	msg := realtime.Message{Type: "stats", UserID: uid, Data: newStatsResponse(stats)}
	if err := h.hub.Publish(msg); err != nil {
		h.logger.Warn("stats update dropped", zap.String("user_id", uid), zap.Error(err))
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
