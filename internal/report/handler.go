package report

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/recicla-soft/recicla/internal/platform/httpx"
	"github.com/recicla-soft/recicla/internal/shared"
)

// Handler serves the derived stock and summary views.
type Handler struct {
	logger  *slog.Logger
	service *Service
	now     func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

// MountRoutes registers the report routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stock", h.stock)
	r.Get("/summary", h.summary)
}

type stockRowResponse struct {
	MaterialID    int64  `json:"materialId"`
	Material      string `json:"material"`
	TotalQuantity string `json:"totalQuantity"`
	TotalValue    string `json:"totalValue"`
}

type stockResponse struct {
	Rows          []stockRowResponse `json:"rows"`
	TotalQuantity string             `json:"totalQuantity"`
	TotalValue    string             `json:"totalValue"`
}

func (h *Handler) stock(w http.ResponseWriter, r *http.Request) {
	acc, ok := shared.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.NewError(shared.KindUnauthorized, "login required"))
		return
	}
	rows, err := h.service.Stock(r.Context(), acc.ID)
	if err != nil {
		h.logger.Error("compute stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	resp := stockResponse{Rows: make([]stockRowResponse, 0, len(rows))}
	totalQty := decimal.Zero
	totalValue := decimal.Zero
	for _, row := range rows {
		resp.Rows = append(resp.Rows, stockRowResponse{
			MaterialID:    row.MaterialID,
			Material:      row.Material,
			TotalQuantity: row.TotalQuantity.String(),
			TotalValue:    row.TotalValue.StringFixed(2),
		})
		totalQty = totalQty.Add(row.TotalQuantity)
		totalValue = totalValue.Add(row.TotalValue)
	}
	resp.TotalQuantity = totalQty.String()
	resp.TotalValue = totalValue.StringFixed(2)
	httpx.JSON(w, http.StatusOK, resp)
}

type summaryResponse struct {
	Month         string                `json:"month"`
	MostMoved     *materialTotalPayload `json:"mostMoved"`
	LargestSale   *salePayload          `json:"largestSale"`
	SalesCount    int                   `json:"salesCount"`
	TotalExpenses string                `json:"totalExpenses"`
	Revenue       string                `json:"revenue"`
}

type materialTotalPayload struct {
	MaterialID int64  `json:"materialId"`
	Material   string `json:"material"`
	Quantity   string `json:"quantity"`
}

type salePayload struct {
	TransactionID int64  `json:"transactionId"`
	Material      string `json:"material"`
	Quantity      string `json:"quantity"`
	Amount        string `json:"amount"`
	OccurredAt    string `json:"occurredAt"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	acc, ok := shared.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.NewError(shared.KindUnauthorized, "login required"))
		return
	}
	month := r.URL.Query().Get("month")
	if month == "" {
		month = h.now().UTC().Format("2006-01")
	}
	summary, err := h.service.MonthlySummary(r.Context(), acc.ID, month)
	if err != nil {
		h.logger.Error("compute monthly summary", slog.Any("error", err), slog.String("month", month))
		httpx.RespondError(w, err)
		return
	}

	resp := summaryResponse{
		Month:         month,
		SalesCount:    summary.SalesCount,
		TotalExpenses: summary.TotalExpenses.StringFixed(2),
		Revenue:       summary.Revenue.StringFixed(2),
	}
	if summary.MostMoved != nil {
		resp.MostMoved = &materialTotalPayload{
			MaterialID: summary.MostMoved.MaterialID,
			Material:   summary.MostMoved.Material,
			Quantity:   summary.MostMoved.Quantity.String(),
		}
	}
	if summary.LargestSale != nil {
		resp.LargestSale = &salePayload{
			TransactionID: summary.LargestSale.EntryID,
			Material:      summary.LargestSale.Material,
			Quantity:      summary.LargestSale.Quantity.String(),
			Amount:        summary.LargestSale.Amount.StringFixed(2),
			OccurredAt:    summary.LargestSale.OccurredAt.UTC().Format(time.RFC3339),
		}
	}
	httpx.JSON(w, http.StatusOK, resp)
}
