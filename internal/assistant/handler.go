package assistant

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/recicla-soft/recicla/internal/platform/httpx"
	"github.com/recicla-soft/recicla/internal/report"
	"github.com/recicla-soft/recicla/internal/shared"
)

// Handler answers free-text questions with data from the reports service.
type Handler struct {
	logger   *slog.Logger
	reports  *report.Service
	validate *validator.Validate
	now      func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, reports *report.Service) *Handler {
	return &Handler{logger: logger, reports: reports, validate: validator.New(), now: time.Now}
}

// MountRoutes registers the assistant route on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.ask)
}

type askRequest struct {
	Message string `json:"message" validate:"required,max=500"`
}

func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	acc, ok := shared.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.NewError(shared.KindUnauthorized, "login required"))
		return
	}
	var req askRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewError(shared.KindInvalidInput, "malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.NewError(shared.KindInvalidInput, "message is required"))
		return
	}

	month := h.now().UTC().Format("2006-01")
	stock, err := h.reports.Stock(r.Context(), acc.ID)
	if err != nil {
		h.logger.Error("assistant stock lookup", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.reports.MonthlySummary(r.Context(), acc.ID, month)
	if err != nil {
		h.logger.Error("assistant summary lookup", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	reply := Reply(req.Message, Snapshot{
		AccountName: acc.Name,
		Stock:       stock,
		Summary:     summary,
		Month:       month,
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"reply": reply})
}
