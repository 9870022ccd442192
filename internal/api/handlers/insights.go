package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/insight-service/internal/api/middleware"
	"github.com/dvloznov/insight-service/internal/domain"
	"github.com/dvloznov/insight-service/internal/insight"
)

// defaultHistoryLimit bounds how many transactions the per-user endpoint
// pulls from the store.
const defaultHistoryLimit = 500

// InsightProcessor runs the insight pipeline for a transaction set.
type InsightProcessor interface {
	Process(ctx context.Context, txs []domain.Transaction, opts insight.Options) (*insight.Envelope, error)
}

// TransactionSource fetches a user's transaction history for the per-user
// endpoint. Optional: a nil source disables GET /api/insights.
type TransactionSource interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
}

// Archiver records generated envelopes out of band. Optional and best-effort.
type Archiver interface {
	Enqueue(fingerprint string, envelope *insight.Envelope)
}

// InsightsHandler handles the insight generation endpoints.
type InsightsHandler struct {
	svc      InsightProcessor
	source   TransactionSource
	archiver Archiver
	log      zerolog.Logger
}

// NewInsightsHandler creates a new insights handler. source and archiver may
// be nil.
func NewInsightsHandler(svc InsightProcessor, source TransactionSource, archiver Archiver, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{
		svc:      svc,
		source:   source,
		archiver: archiver,
		log:      log,
	}
}

type generateRequest struct {
	Transactions []domain.Transaction `json:"transactions"`
	Reload       bool                 `json:"reload"`
}

// Generate handles POST /api/insights with an inline transaction payload.
func (h *InsightsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.run(w, r, req.Transactions, insight.Options{Reload: req.Reload})
}

// GenerateForUser handles GET /api/insights?user_id=U, fetching the user's
// history from the transaction store first.
func (h *InsightsHandler) GenerateForUser(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "No transaction store configured")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	txs, err := h.source.ListByUser(r.Context(), userID, defaultHistoryLimit)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}
	if len(txs) == 0 {
		middleware.WriteError(w, http.StatusNotFound, "No transactions found for user")
		return
	}

	reload, _ := strconv.ParseBool(r.URL.Query().Get("reload"))
	h.run(w, r, txs, insight.Options{Reload: reload})
}

func (h *InsightsHandler) run(w http.ResponseWriter, r *http.Request, txs []domain.Transaction, opts insight.Options) {
	envelope, err := h.svc.Process(r.Context(), txs, opts)
	if err != nil {
		if errors.Is(err, insight.ErrNoTransactions) {
			middleware.WriteError(w, http.StatusBadRequest, "At least one transaction is required")
			return
		}
		// The pipeline contract only surfaces invalid input; anything else is
		// a programming error worth a 500.
		h.log.Error().Err(err).Msg("Insight pipeline failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}

	if h.archiver != nil {
		h.archiver.Enqueue(insight.Fingerprint(txs), envelope)
	}

	middleware.WriteJSON(w, http.StatusOK, envelope)
}
