// Package main API Server 入口
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clothing-store/internal/apiserver/auth"
	"clothing-store/internal/apiserver/server"
	"clothing-store/internal/config"
	"clothing-store/internal/shared/infra"
	"clothing-store/pkg/logging"
)

func main() {
	configDir := flag.String("config", "", "配置文件目录（覆盖 CONFIG_DIR）")
	flag.Parse()
	if *configDir != "" {
		config.SetConfigDir(*configDir)
	}

	// 加载配置（.env.{env} → {env}.yaml → 环境变量）
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	// 初始化存储、报表缓存与对象存储
	inf, err := infra.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize infrastructure: %v", err)
	}
	defer inf.Close()
	log.Printf("Connected to %s", cfg.DatabaseDriver)

	authCfg := auth.Config{
		JWTSecret:      cfg.Auth.JWTSecret,
		AccessTokenTTL: cfg.Auth.AccessTTL(),
	}

	// 引导管理员账号
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := auth.EnsureAdminUser(bootCtx, inf.Storage, cfg.Auth.AdminUserName, cfg.Auth.AdminPassword); err != nil {
		log.Printf("WARNING: admin bootstrap failed: %v", err)
	}
	bootCancel()

	deps := server.Deps{
		Store:  inf.Storage,
		Cache:  inf.Cache,
		Events: inf.Events,
		Auth:   authCfg,
		Logger: logging.New(logging.Config{
			Level:     cfg.Log.Level,
			Format:    cfg.Log.Format,
			Component: "api-server",
		}),
	}
	// 未配置对象存储时保持接口为 nil
	if inf.Images != nil {
		deps.Images = inf.Images
	}

	h := server.NewHandler(deps)
	defer h.Close()

	// 启动支付实时推送
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := h.StartFeed(ctx); err != nil {
		log.Printf("WARNING: payment feed disabled: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		h.Close()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
