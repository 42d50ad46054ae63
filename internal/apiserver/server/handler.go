// Package server 路由配置与核心基础设施
//
// 本文件定义 HTTP API 路由，将请求分发到各领域独立包。
// 仍保留在本包的模块：
//   - metrics.go: Prometheus 指标
//   - middleware.go: CORS、请求 ID、访问日志
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"clothing-store/internal/apiserver/auth"
	"clothing-store/internal/apiserver/cart"
	"clothing-store/internal/apiserver/feed"
	"clothing-store/internal/apiserver/item"
	"clothing-store/internal/apiserver/payment"
	"clothing-store/internal/apiserver/report"
	"clothing-store/internal/shared/cache"
	"clothing-store/internal/shared/eventbus"
	"clothing-store/internal/shared/model"
	"clothing-store/internal/shared/storage"
	"clothing-store/pkg/logging"
)

// Deps Handler 依赖
type Deps struct {
	Store  storage.PersistentStore
	Cache  cache.ReportCache        // 可为 nil
	Images item.ImageStore          // 未配置对象存储时为 nil
	Events eventbus.PaymentEventBus // 可为 nil，此时使用进程内总线
	Auth   auth.Config
	Logger *logging.Logger // 可为 nil
}

// Handler API 处理器
//
// Handler 是所有 HTTP API 的入口，负责：
//   - 组装各领域处理器并注册路由
//   - 串联网关、指标、访问日志中间件
//   - 持有支付推送中心、事件总线与报表服务
type Handler struct {
	store   storage.PersistentStore
	cache   cache.ReportCache
	images  item.ImageStore
	events  eventbus.PaymentEventBus
	authCfg auth.Config
	logger  *logging.Logger

	metrics *Metrics
	hub     *feed.Hub
	reports *report.Service
}

// NewHandler 创建 Handler 实例
func NewHandler(deps Deps) *Handler {
	if deps.Cache == nil {
		deps.Cache = cache.NewNoOpCache()
	}
	if deps.Events == nil {
		deps.Events = eventbus.NewLocalBus()
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default("api-server")
	}

	h := &Handler{
		store:   deps.Store,
		cache:   deps.Cache,
		images:  deps.Images,
		events:  deps.Events,
		authCfg: deps.Auth,
		logger:  deps.Logger,
		metrics: NewMetrics("clothing_store"),
	}
	h.hub = feed.NewHub(h.metrics)
	h.reports = report.NewService(deps.Store, deps.Cache, h.metrics)
	return h
}

// Metrics 返回指标实例
func (h *Handler) Metrics() *Metrics {
	return h.metrics
}

// Reports 返回报表服务
func (h *Handler) Reports() *report.Service {
	return h.reports
}

// Close 断开所有 WebSocket 连接
func (h *Handler) Close() {
	h.hub.Close()
}

// StartFeed 订阅支付事件总线并转发到本实例的 WebSocket 连接
//
// 订阅在返回前完成，ctx 取消后转发协程退出。
func (h *Handler) StartFeed(ctx context.Context) error {
	events, err := h.events.SubscribePayments(ctx)
	if err != nil {
		return err
	}
	go func() {
		for ev := range events {
			if ev.Payment != nil {
				h.hub.PublishPayment(ev.Payment)
			}
		}
		log.Println("[PaymentFeed] Event subscription closed")
	}()
	return nil
}

// busPublisher 将新增支付发布到事件总线
type busPublisher struct {
	bus eventbus.PaymentEventBus
}

func (p busPublisher) PublishPayment(payment *model.Payment) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev := &eventbus.PaymentEvent{Payment: payment, Timestamp: time.Now().UTC()}
	if err := p.bus.PublishPayment(ctx, ev); err != nil {
		log.Printf("[PaymentFeed] publish %s failed: %v", payment.ID, err)
	}
}

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查与指标:
//   - GET /health
//   - GET /metrics
//
// 认证 (公开):
//   - POST /api/auth/register
//   - POST /api/auth/login
//
// 商品:
//   - POST   /api/users/AddItems              - 新增商品 (Admin)
//   - GET    /api/users/GetAllItems           - 商品列表 (登录用户)
//   - PUT    /api/users/EditItem/{id}         - 编辑商品 (Admin)
//   - DELETE /api/users/DeleteItem/{id}       - 删除商品 (Admin)
//   - POST   /api/users/items/{id}/images     - 上传图片 (Admin)
//
// 支付与报表:
//   - POST   /api/users/AddPayment                       - 新增支付 (登录用户)
//   - GET    /api/users/GetAllPaymentsItems              - 支付列表 (Admin)
//   - GET    /api/users/GetMonthlyPaymentDetails/{month} - 月度汇总 (Admin)
//
// 购物车 (登录用户):
//   - POST   /api/users/AddToCart
//   - GET    /api/users/cart/{userId}
//   - DELETE /api/users/cart/{ItemId}/{userId}
//
// WebSocket:
//   - GET    /ws/payments - 支付实时推送 (Admin，可用 ?token= 传令牌)
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	auth.NewHandler(h.store, h.authCfg, h.metrics).RegisterRoutes(mux)
	item.NewHandler(h.store, h.images, h.cache).RegisterRoutes(mux)
	cart.NewHandler(h.store).RegisterRoutes(mux)
	payment.NewHandler(h.store, h.cache, busPublisher{bus: h.events}, h.metrics).RegisterRoutes(mux)
	report.NewHandler(h.reports).RegisterRoutes(mux)

	// 网关只解析令牌；各路由自行要求登录或角色
	gate := auth.NewGate(h.authCfg, "/ws/payments")

	// 应用网关、指标、访问日志中间件到 REST API
	apiHandler := h.accessLog(h.metrics.MetricsMiddleware(gate.Middleware(recordUser(mux))))

	// WebSocket 绕过指标与访问日志中间件
	wsMux := http.NewServeMux()
	h.hub.RegisterRoutes(wsMux)

	topMux := http.NewServeMux()
	topMux.Handle("GET /metrics", h.metrics.Handler())
	topMux.Handle("/ws/payments", gate.Middleware(wsMux))
	topMux.Handle("/", apiHandler)

	return requestIDMiddleware(corsMiddleware(topMux))
}

// Health 健康检查接口
//
// 路由: GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
