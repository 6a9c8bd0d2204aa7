package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/recicla-soft/recicla/internal/platform/httpx"
	"github.com/recicla-soft/recicla/internal/shared"
)

// Handler wires the transaction JSON endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers transaction routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.register)
	r.Get("/", h.recent)
}

type registerRequest struct {
	MaterialName string           `json:"materialName" validate:"required,max=100"`
	Quantity     *decimal.Decimal `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unitPrice"`
	Kind         string           `json:"kind" validate:"required,oneof=acquisition disposal"`
}

type entryResponse struct {
	ID         int64  `json:"id"`
	Material   string `json:"material"`
	Quantity   string `json:"quantity"`
	Amount     string `json:"amount"`
	Kind       string `json:"kind"`
	OccurredAt string `json:"occurredAt"`
}

func toResponse(e Entry) entryResponse {
	return entryResponse{
		ID:         e.ID,
		Material:   e.MaterialName,
		Quantity:   e.Quantity.String(),
		Amount:     e.Amount.StringFixed(2),
		Kind:       string(e.Kind()),
		OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	acc, ok := shared.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.NewError(shared.KindUnauthorized, "login required"))
		return
	}
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewError(shared.KindInvalidInput, "malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.NewError(shared.KindInvalidInput, "materialName and a valid kind are required"))
		return
	}
	if req.Quantity == nil {
		httpx.RespondError(w, shared.NewError(shared.KindInvalidTransaction, "quantity is required"))
		return
	}

	entry, err := h.service.Register(r.Context(), RegisterInput{
		AccountID:    acc.ID,
		MaterialName: req.MaterialName,
		Kind:         Kind(req.Kind),
		Quantity:     *req.Quantity,
		UnitPrice:    req.UnitPrice,
	})
	if err != nil {
		h.logger.Warn("register transaction", slog.Any("error", err), slog.String("material", req.MaterialName), slog.String("kind", req.Kind))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"transactionId": entry.ID})
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	acc, ok := shared.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.NewError(shared.KindUnauthorized, "login required"))
		return
	}
	limit := 3
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 100 {
			httpx.RespondError(w, shared.NewError(shared.KindInvalidInput, "limit must be between 1 and 100"))
			return
		}
		limit = parsed
	}
	entries, err := h.service.Recent(r.Context(), acc.ID, limit)
	if err != nil {
		h.logger.Error("list recent transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toResponse(e))
	}
	httpx.JSON(w, http.StatusOK, out)
}
