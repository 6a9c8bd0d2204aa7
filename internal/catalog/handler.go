package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/recicla-soft/recicla/internal/platform/httpx"
	"github.com/recicla-soft/recicla/internal/shared"
)

// Handler wires the catalog JSON endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers catalog routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.updatePrice)
	r.Delete("/{id}", h.remove)
}

type materialResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PricePerUnit string `json:"pricePerUnit"`
	Global       bool   `json:"global"`
}

func toResponse(m Material) materialResponse {
	return materialResponse{
		ID:           m.ID,
		Name:         m.Name,
		PricePerUnit: m.PricePerKg.StringFixed(2),
		Global:       m.IsGlobal(),
	}
}

type createMaterialRequest struct {
	Name  string           `json:"name" validate:"required,max=100"`
	Price *decimal.Decimal `json:"price"`
}

type updatePriceRequest struct {
	Price *decimal.Decimal `json:"price"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	acc, ok := shared.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.NewError(shared.KindUnauthorized, "login required"))
		return
	}
	materials, err := h.service.List(r.Context(), acc.ID)
	if err != nil {
		h.logger.Error("list materials", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]materialResponse, 0, len(materials))
	for _, m := range materials {
		out = append(out, toResponse(m))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	acc, ok := shared.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.NewError(shared.KindUnauthorized, "login required"))
		return
	}
	var req createMaterialRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewError(shared.KindInvalidInput, "malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.NewError(shared.KindInvalidInput, "name is required and at most 100 characters"))
		return
	}
	if req.Price == nil {
		httpx.RespondError(w, shared.NewError(shared.KindInvalidInput, "price is required"))
		return
	}
	material, err := h.service.Add(r.Context(), acc.ID, req.Name, *req.Price)
	if err != nil {
		h.logger.Warn("add material", slog.Any("error", err), slog.String("name", req.Name))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"materialId": material.ID})
}

func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	acc, ok := shared.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.NewError(shared.KindUnauthorized, "login required"))
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.NewError(shared.KindInvalidInput, "invalid material id"))
		return
	}
	var req updatePriceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Price == nil {
		httpx.RespondError(w, shared.NewError(shared.KindInvalidInput, "price is required"))
		return
	}
	if err := h.service.UpdatePrice(r.Context(), acc.ID, id, *req.Price); err != nil {
		h.logger.Warn("update price", slog.Any("error", err), slog.Int64("material_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	acc, ok := shared.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.NewError(shared.KindUnauthorized, "login required"))
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.NewError(shared.KindInvalidInput, "invalid material id"))
		return
	}
	if err := h.service.Remove(r.Context(), acc.ID, id); err != nil {
		h.logger.Warn("remove material", slog.Any("error", err), slog.Int64("material_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}
