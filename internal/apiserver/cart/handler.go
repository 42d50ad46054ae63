// Package cart 购物车领域 - HTTP 处理
package cart

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"clothing-store/internal/apiserver/auth"
	"clothing-store/internal/shared/model"
	"clothing-store/internal/shared/storage"
)

// Handler 购物车 HTTP 处理器
type Handler struct {
	store storage.CartStore
}

// NewHandler 创建购物车处理器
func NewHandler(store storage.CartStore) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册购物车路由（需登录）
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users/AddToCart", auth.RequireAuth(h.Add))
	mux.HandleFunc("GET /api/users/cart/{userId}", auth.RequireAuth(h.List))
	mux.HandleFunc("DELETE /api/users/cart/{ItemId}/{userId}", auth.RequireAuth(h.Delete))
}

// AddRequest 加入购物车请求体，userId 省略时使用当前登录用户
type AddRequest struct {
	UserID    string  `json:"userId"`
	Url1      string  `json:"Url1"`
	Name      string  `json:"Name"`
	ItemID    string  `json:"ItemId"`
	ItemPrice float64 `json:"ItemPrice"`
	ItemName  string  `json:"ItemName"`
}

// canAccess 普通用户只能操作自己的购物车
func canAccess(user *auth.AuthUser, userID string) bool {
	return user.ID == userID || user.Role == string(model.UserRoleAdmin)
}

// Add 加入购物车
// POST /api/users/AddToCart
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		req.UserID = user.ID
	}
	if req.ItemID == "" {
		writeMessage(w, http.StatusBadRequest, "ItemId is required")
		return
	}
	if !canAccess(user, req.UserID) {
		writeMessage(w, http.StatusForbidden, "You are not allowed to access this route")
		return
	}

	now := time.Now().UTC()
	item := &model.CartItem{
		ID:        model.NewID(),
		UserID:    req.UserID,
		Url1:      req.Url1,
		Name:      req.Name,
		ItemID:    req.ItemID,
		ItemPrice: req.ItemPrice,
		ItemName:  req.ItemName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.AddCartItem(r.Context(), item); err != nil {
		log.Printf("[cart.add] AddCartItem error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Error adding item to cart",
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Item added to cart successfully",
		"cartItem": item,
	})
}

// List 列出用户购物车
// GET /api/users/cart/{userId}
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if !canAccess(auth.GetAuthUser(r.Context()), userID) {
		writeMessage(w, http.StatusForbidden, "You are not allowed to access this route")
		return
	}

	items, err := h.store.ListCartItems(r.Context(), userID)
	if err != nil {
		log.Printf("[cart.list] ListCartItems %s error: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Error retrieving cart items",
			"error":   err.Error(),
		})
		return
	}
	if len(items) == 0 {
		writeMessage(w, http.StatusNotFound, "No cart items found for this user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Cart items retrieved successfully",
		"cartItems": items,
	})
}

// Delete 从购物车删除一件商品
// DELETE /api/users/cart/{ItemId}/{userId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("ItemId")
	userID := r.PathValue("userId")
	if !canAccess(auth.GetAuthUser(r.Context()), userID) {
		writeMessage(w, http.StatusForbidden, "You are not allowed to access this route")
		return
	}

	deleted, err := h.store.DeleteCartItem(r.Context(), itemID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"status":  false,
				"message": "Cart item not found",
			})
			return
		}
		log.Printf("[cart.delete] DeleteCartItem %s/%s error: %v", itemID, userID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"status":  false,
			"message": "Error deleting cart item",
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          true,
		"message":         "Cart item deleted successfully",
		"deletedCartItem": deleted,
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
