package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"clothing-store/internal/shared/model"
	"clothing-store/internal/shared/storage"
)

// UserStore 用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUserName(ctx context.Context, userName string) (*model.User, error)
}

// LoginObserver 登录结果观察者（指标）
type LoginObserver interface {
	ObserveLogin(outcome string)
}

// ============================================================================
// 凭据签发
// ============================================================================

// Issuer 校验用户名密码并签发访问令牌
type Issuer struct {
	store UserStore
	cfg   Config
}

// NewIssuer 创建签发器
func NewIssuer(store UserStore, cfg Config) *Issuer {
	return &Issuer{store: store, cfg: cfg}
}

// Login 登录
//
// 用户不存在返回 ErrUserNotFound，密码错误返回 ErrInvalidCredentials，
// 成功时返回包含 {id, role, userName} 的令牌和用户记录。
func (i *Issuer) Login(ctx context.Context, userName, password string) (string, *model.User, error) {
	user, err := i.store.GetUserByUserName(ctx, userName)
	if err != nil {
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return "", nil, ErrUserNotFound
	}
	if !CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateAccessToken(i.cfg, AuthUser{
		ID:       user.ID,
		Role:     string(user.Role),
		UserName: user.UserName,
	})
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

// ============================================================================
// HTTP Handler
// ============================================================================

// Handler 认证 HTTP 处理器
type Handler struct {
	store    UserStore
	issuer   *Issuer
	observer LoginObserver
}

// NewHandler 创建认证处理器，observer 可为 nil
func NewHandler(store UserStore, cfg Config, observer LoginObserver) *Handler {
	return &Handler{store: store, issuer: NewIssuer(store, cfg), observer: observer}
}

// RegisterRoutes 注册认证相关路由（公开）
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
}

type registerRequest struct {
	UserName   string `json:"userName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Phone      string `json:"phone"`
	PostalCode string `json:"postalCode"`
	Address    string `json:"address"`
	Role       string `json:"role"`
}

type loginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message  string      `json:"message"`
	Token    string      `json:"token"`
	UserFind *model.User `json:"userFind"`
}

type registerResponse struct {
	Message string      `json:"message"`
	NewUser *model.User `json:"newUser"`
}

// Register 用户注册
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.UserName = strings.TrimSpace(req.UserName)
	if req.UserName == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "userName and password are required")
		return
	}
	role := model.UserRole(req.Role)
	if role == "" {
		role = model.UserRoleUser
	}
	if !role.Valid() {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid role %q", req.Role))
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		log.Printf("[auth.register] HashPassword error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "User registration failed")
		return
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           model.NewID(),
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Address:      req.Address,
		PostalCode:   req.PostalCode,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeMessage(w, http.StatusConflict, fmt.Sprintf("User %s already exists", user.UserName))
			return
		}
		log.Printf("[auth.register] CreateUser error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "User registration failed")
		return
	}

	log.Printf("[auth] User registered: %s (%s, %s)", user.UserName, user.ID, user.Role)
	writeJSON(w, http.StatusCreated, registerResponse{Message: "User registered successfully", NewUser: user})
}

// Login 用户登录
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.issuer.Login(r.Context(), req.UserName, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, ErrUserNotFound):
		h.observe("user_not_found")
		writeMessage(w, StatusCode(err), fmt.Sprintf("User %s not found", req.UserName))
		return
	case errors.Is(err, ErrInvalidCredentials):
		h.observe("invalid_credentials")
		writeMessage(w, StatusCode(err), "Password is not correct")
		return
	default:
		h.observe("error")
		log.Printf("[auth.login] %v", err)
		writeMessage(w, http.StatusInternalServerError, "User login failed")
		return
	}

	h.observe("success")
	log.Printf("[auth] User logged in: %s", user.UserName)
	writeJSON(w, http.StatusOK, loginResponse{
		Message:  "User logged in successfully",
		Token:    token,
		UserFind: user,
	})
}

func (h *Handler) observe(outcome string) {
	if h.observer != nil {
		h.observer.ObserveLogin(outcome)
	}
}

// ============================================================================
// Admin Bootstrap
// ============================================================================

// EnsureAdminUser 确保管理员用户存在（启动时调用）
// 未配置用户名或密码时跳过；同名用户已存在时不做修改
func EnsureAdminUser(ctx context.Context, store UserStore, userName, password string) error {
	if userName == "" || password == "" {
		return nil
	}

	existing, err := store.GetUserByUserName(ctx, userName)
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if existing != nil {
		if existing.Role != model.UserRoleAdmin {
			log.Printf("WARNING: [auth] bootstrap user %s exists with role %s", userName, existing.Role)
		}
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           model.NewID(),
		UserName:     userName,
		PasswordHash: hash,
		Role:         model.UserRoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Printf("[auth] Created admin user: %s (%s)", userName, user.ID)
	return nil
}

// ============================================================================
// 工具函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
