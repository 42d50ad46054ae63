package report

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"clothing-store/internal/apiserver/auth"
	"clothing-store/internal/shared/model"
)

// Handler 报表 HTTP 处理器
type Handler struct {
	agg Aggregator
}

// NewHandler 创建报表处理器
func NewHandler(agg Aggregator) *Handler {
	return &Handler{agg: agg}
}

// RegisterRoutes 注册报表路由（仅管理员）
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	adminOnly := auth.RequireRoles(string(model.UserRoleAdmin))
	mux.HandleFunc("GET /api/users/GetMonthlyPaymentDetails/{month}", adminOnly(h.GetMonthlyPaymentDetails))
}

type summaryResponse struct {
	Status  bool                    `json:"Status"`
	Message string                  `json:"message"`
	Items   []model.MonthlySalesRow `json:"items,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// GetMonthlyPaymentDetails 月度销售汇总
// GET /api/users/GetMonthlyPaymentDetails/{month}
func (h *Handler) GetMonthlyPaymentDetails(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonth(r.PathValue("month"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, summaryResponse{Message: "Invalid month", Error: err.Error()})
		return
	}

	rows, err := h.agg.MonthlySales(r.Context(), month)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidMonth):
		writeJSON(w, http.StatusBadRequest, summaryResponse{Message: "Invalid month", Error: err.Error()})
		return
	case errors.Is(err, ErrNoPayments):
		writeJSON(w, http.StatusNotFound, summaryResponse{Message: "No payments found for this month"})
		return
	default:
		log.Printf("[report] month %d: %v", month, err)
		writeJSON(w, http.StatusInternalServerError, summaryResponse{
			Message: "Error retrieving monthly payment summary",
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Status:  true,
		Message: "Monthly payment summary retrieved successfully",
		Items:   rows,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
