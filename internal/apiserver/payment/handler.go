// Package payment 支付领域 - HTTP 处理
package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"clothing-store/internal/apiserver/auth"
	"clothing-store/internal/shared/cache"
	"clothing-store/internal/shared/model"
	"clothing-store/internal/shared/storage"
)

// Publisher 支付实时推送
type Publisher interface {
	PublishPayment(p *model.Payment)
}

// Observer 支付指标观察者
type Observer interface {
	ObservePayment(size string, amount float64)
}

// Handler 支付 HTTP 处理器
type Handler struct {
	store     storage.PaymentStore
	cache     cache.ReportCache
	publisher Publisher
	observer  Observer
}

// NewHandler 创建支付处理器，c、publisher、observer 均可为 nil
func NewHandler(store storage.PaymentStore, c cache.ReportCache, publisher Publisher, observer Observer) *Handler {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Handler{store: store, cache: c, publisher: publisher, observer: observer}
}

// RegisterRoutes 注册支付路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users/AddPayment", auth.RequireAuth(h.Add))
	mux.HandleFunc("GET /api/users/GetAllPaymentsItems", auth.RequireRoles(string(model.UserRoleAdmin))(h.ListAll))
}

// Quantity 数量字段，前端可能传数字或字符串，统一按文本保存
type Quantity string

// UnmarshalJSON 接受 JSON 字符串或数字
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Quantity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("quantity must be a string or number: %w", err)
	}
	*q = Quantity(n.String())
	return nil
}

// AddRequest 新增支付请求体，userId / userName 省略时使用当前登录用户
type AddRequest struct {
	UserID   string   `json:"userId"`
	UserName string   `json:"userName"`
	ItemID   string   `json:"ItemId"`
	Price    float64  `json:"Price"`
	Material string   `json:"Material"`
	Quantity Quantity `json:"Quantity"`
	Size     string   `json:"Size"`
}

// Add 新增支付记录
// POST /api/users/AddPayment
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	size := model.Size(strings.ToUpper(strings.TrimSpace(req.Size)))
	if !size.Valid() {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid Size %q", req.Size))
		return
	}
	if req.ItemID == "" {
		writeMessage(w, http.StatusBadRequest, "ItemId is required")
		return
	}
	if req.UserID == "" {
		req.UserID = user.ID
	}
	if req.UserName == "" {
		req.UserName = user.UserName
	}

	now := time.Now().UTC()
	p := &model.Payment{
		ID:        model.NewID(),
		UserID:    req.UserID,
		UserName:  req.UserName,
		ItemID:    req.ItemID,
		Price:     req.Price,
		Material:  req.Material,
		Quantity:  string(req.Quantity),
		Size:      size,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreatePayment(r.Context(), p); err != nil {
		log.Printf("[payment.add] CreatePayment error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Error adding payment",
			"error":   err.Error(),
		})
		return
	}

	if err := h.cache.InvalidateMonthlySales(r.Context(), p.CreatedAt); err != nil {
		log.Printf("[payment.add] invalidate %s failed: %v", cache.MonthlySalesKey(p.CreatedAt), err)
	}
	if h.publisher != nil {
		h.publisher.PublishPayment(p)
	}
	if h.observer != nil {
		h.observer.ObservePayment(string(p.Size), p.Price)
	}

	log.Printf("[payment] Payment added: %s item=%s qty=%s by %s", p.ID, p.ItemID, p.Quantity, p.UserName)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Payment added successfully",
		"payment": p,
	})
}

// ListAll 列出全部支付记录（关联用户与商品）
// GET /api/users/GetAllPaymentsItems
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	details, err := h.store.ListPaymentDetails(r.Context())
	if err != nil {
		log.Printf("[payment.list] ListPaymentDetails error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"Status":  false,
			"message": "Error retrieving all payments",
			"error":   err.Error(),
		})
		return
	}
	if details == nil {
		details = []model.PaymentDetail{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"Status":   true,
		"message":  "All payments retrieved successfully",
		"payments": details,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
