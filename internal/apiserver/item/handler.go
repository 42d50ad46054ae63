// Package item 商品领域 - HTTP 处理
package item

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clothing-store/internal/apiserver/auth"
	"clothing-store/internal/shared/cache"
	"clothing-store/internal/shared/model"
	"clothing-store/internal/shared/storage"
)

// MaxImageSize 单张商品图片上限
const MaxImageSize = 5 << 20

// ImageStore 商品图片对象存储
type ImageStore interface {
	PutItemImage(ctx context.Context, itemID string, slot int, filename string, r io.Reader, size int64, contentType string) (string, error)
	DeleteItemImages(ctx context.Context, itemID string) error
}

// Handler 商品领域 HTTP 处理器
type Handler struct {
	store  storage.ItemStore
	images ImageStore // 未配置对象存储时为 nil
	cache  cache.ReportCache
}

// NewHandler 创建商品处理器，images、c 可为 nil
//
// 月度报表连接了商品名称、价格和主图，商品变更后清空报表缓存。
func NewHandler(store storage.ItemStore, images ImageStore, c cache.ReportCache) *Handler {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Handler{store: store, images: images, cache: c}
}

// RegisterRoutes 注册商品相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	adminOnly := auth.RequireRoles(string(model.UserRoleAdmin))

	mux.HandleFunc("POST /api/users/AddItems", adminOnly(h.Add))
	mux.HandleFunc("GET /api/users/GetAllItems", auth.RequireAuth(h.List))
	mux.HandleFunc("PUT /api/users/EditItem/{id}", adminOnly(h.Edit))
	mux.HandleFunc("DELETE /api/users/DeleteItem/{id}", adminOnly(h.Delete))
	mux.HandleFunc("POST /api/users/items/{id}/images", adminOnly(h.UploadImage))
}

// ============================================================================
// 请求类型
// ============================================================================

// AddRequest 新增商品请求体
type AddRequest struct {
	ItemName    string  `json:"ItemName"`
	ItemPrice   float64 `json:"ItemPrice"`
	Gender      string  `json:"Gender"`
	Material    string  `json:"Material"`
	Subcategory string  `json:"Subcategory"`
	Url1        string  `json:"Url1"`
	Url2        string  `json:"Url2"`
	Url3        string  `json:"Url3"`
	Url4        string  `json:"Url4"`
	Url5        string  `json:"Url5"`
}

// EditRequest 编辑商品请求体，未提供的字段保持不变
type EditRequest struct {
	ItemName    *string  `json:"ItemName"`
	ItemPrice   *float64 `json:"ItemPrice"`
	Gender      *string  `json:"Gender"`
	Material    *string  `json:"Material"`
	Subcategory *string  `json:"Subcategory"`
}

// apply 合并到当前商品字段
func (req EditRequest) apply(it *model.Item) model.ItemUpdate {
	u := model.ItemUpdate{
		ItemName:    it.ItemName,
		ItemPrice:   it.ItemPrice,
		Gender:      it.Gender,
		Material:    it.Material,
		Subcategory: it.Subcategory,
	}
	if req.ItemName != nil {
		u.ItemName = strings.TrimSpace(*req.ItemName)
	}
	if req.ItemPrice != nil {
		u.ItemPrice = *req.ItemPrice
	}
	if req.Gender != nil {
		u.Gender = model.Gender(*req.Gender)
	}
	if req.Material != nil {
		u.Material = *req.Material
	}
	if req.Subcategory != nil {
		u.Subcategory = *req.Subcategory
	}
	return u
}

func validateItem(name string, price float64, gender model.Gender) error {
	if name == "" {
		return errors.New("ItemName is required")
	}
	if price < 0 {
		return errors.New("ItemPrice must not be negative")
	}
	if !gender.Valid() {
		return fmt.Errorf("invalid Gender %q", gender)
	}
	return nil
}

// ============================================================================
// HTTP 处理函数
// ============================================================================

// Add 新增商品
// POST /api/users/AddItems
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ItemName = strings.TrimSpace(req.ItemName)
	if err := validateItem(req.ItemName, req.ItemPrice, model.Gender(req.Gender)); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	it := &model.Item{
		ID:          model.NewID(),
		ItemName:    req.ItemName,
		ItemPrice:   req.ItemPrice,
		Gender:      model.Gender(req.Gender),
		Material:    req.Material,
		Subcategory: req.Subcategory,
		Url1:        req.Url1,
		Url2:        req.Url2,
		Url3:        req.Url3,
		Url4:        req.Url4,
		Url5:        req.Url5,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.store.CreateItem(r.Context(), it); err != nil {
		log.Printf("[item.add] CreateItem error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Error adding item",
			"error":   err.Error(),
		})
		return
	}

	log.Printf("[item] Item added: %s (%s)", it.ItemName, it.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Item added successfully",
		"item":    it,
	})
}

// List 列出全部商品
// GET /api/users/GetAllItems
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.Context())
	if err != nil {
		log.Printf("[item.list] ListItems error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Error retrieving items",
			"error":   err.Error(),
		})
		return
	}
	if items == nil {
		items = []*model.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Items retrieved successfully",
		"items":   items,
	})
}

// Edit 编辑商品
// PUT /api/users/EditItem/{id}
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	it, err := h.store.GetItem(r.Context(), id)
	if err != nil {
		log.Printf("[item.edit] GetItem %s error: %v", id, err)
		writeStatus(w, http.StatusInternalServerError, "Error updating item")
		return
	}
	if it == nil {
		writeStatus(w, http.StatusNotFound, "Item not found")
		return
	}

	update := req.apply(it)
	if err := validateItem(update.ItemName, update.ItemPrice, update.Gender); err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.UpdateItem(r.Context(), id, update); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeStatus(w, http.StatusNotFound, "Item not found")
			return
		}
		log.Printf("[item.edit] UpdateItem %s error: %v", id, err)
		writeStatus(w, http.StatusInternalServerError, "Error updating item")
		return
	}
	h.invalidateReports(r.Context(), "edit", id)
	writeStatus(w, http.StatusOK, "Item updated successfully")
}

// Delete 删除商品（同时清理对象存储中的图片）
// DELETE /api/users/DeleteItem/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.store.DeleteItem(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeStatus(w, http.StatusNotFound, "Item not found")
			return
		}
		log.Printf("[item.delete] DeleteItem %s error: %v", id, err)
		writeStatus(w, http.StatusInternalServerError, "Error deleting item")
		return
	}

	h.invalidateReports(r.Context(), "delete", id)
	if h.images != nil {
		if err := h.images.DeleteItemImages(r.Context(), id); err != nil {
			log.Printf("WARNING: [item.delete] images of %s not removed: %v", id, err)
		}
	}
	writeStatus(w, http.StatusOK, "Item deleted successfully")
}

// UploadImage 上传商品图片到指定槽位
// POST /api/users/items/{id}/images?slot=1..5 （multipart 字段 image）
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeStatus(w, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}
	id := r.PathValue("id")

	slot := 1
	if raw := r.URL.Query().Get("slot"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeStatus(w, http.StatusBadRequest, "slot must be between 1 and 5")
			return
		}
		slot = n
	}
	if _, ok := model.ImageField(slot); !ok {
		writeStatus(w, http.StatusBadRequest, "slot must be between 1 and 5")
		return
	}

	it, err := h.store.GetItem(r.Context(), id)
	if err != nil {
		log.Printf("[item.image] GetItem %s error: %v", id, err)
		writeStatus(w, http.StatusInternalServerError, "Error uploading image")
		return
	}
	if it == nil {
		writeStatus(w, http.StatusNotFound, "Item not found")
		return
	}

	// 预留 1 MiB 给 multipart 头部
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+1<<20)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeStatus(w, http.StatusRequestEntityTooLarge, "image exceeds 5 MiB")
			return
		}
		writeStatus(w, http.StatusBadRequest, "multipart field image is required")
		return
	}
	defer file.Close()

	if header.Size > MaxImageSize {
		writeStatus(w, http.StatusRequestEntityTooLarge, "image exceeds 5 MiB")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeStatus(w, http.StatusUnsupportedMediaType, "only image uploads are accepted")
		return
	}

	url, err := h.images.PutItemImage(r.Context(), id, slot, header.Filename, file, header.Size, contentType)
	if err != nil {
		log.Printf("[item.image] upload %s slot %d error: %v", id, slot, err)
		writeStatus(w, http.StatusBadGateway, "Error uploading image")
		return
	}
	if err := h.store.SetItemImage(r.Context(), id, slot, url); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeStatus(w, http.StatusNotFound, "Item not found")
			return
		}
		log.Printf("[item.image] SetItemImage %s error: %v", id, err)
		writeStatus(w, http.StatusInternalServerError, "Error uploading image")
		return
	}

	if slot == 1 {
		h.invalidateReports(r.Context(), "image", id)
	}
	log.Printf("[item] Image uploaded: %s slot %d", id, slot)
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": true, "url": url})
}

// invalidateReports 清空月度报表缓存，失败只记录日志
func (h *Handler) invalidateReports(ctx context.Context, action, id string) {
	if err := h.cache.InvalidateAllMonthlySales(ctx); err != nil {
		log.Printf("WARNING: [item.%s] report cache not invalidated for %s: %v", action, id, err)
	}
}
