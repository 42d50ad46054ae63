package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// configDir 由外部通过 SetConfigDir 指定，优先级最高
var configDir string

// envSearchDirs .env 文件搜索目录（仅 dev/test 使用）
var envSearchDirs = []string{".", ".."}

// devJWTSecret 仅用于 dev/test 环境
const devJWTSecret = "dev-secret-change-me"

// SetConfigDir 设置配置文件目录（用于 --config 命令行参数）
func SetConfigDir(dir string) {
	configDir = dir
}

// Load 加载配置
// 1. 加载 .env.{env}（凭据）
// 2. 加载 {env}.yaml 覆盖默认值
// 3. 环境变量覆盖
func Load() *Config {
	env := parseEnv(getEnv("APP_ENV", "dev"))
	loadEnvFiles(env)

	y, loadedFrom := loadYAMLConfig(env)

	// 凭据只来自环境变量
	y.Database.Password = os.Getenv("DB_PASSWORD")
	y.Redis.Password = os.Getenv("REDIS_PASSWORD")
	y.MinIO.AccessKey = os.Getenv("MINIO_ROOT_USER")
	y.MinIO.SecretKey = os.Getenv("MINIO_ROOT_PASSWORD")
	y.Auth.JWTSecret = os.Getenv("JWT_SECRET_KEY")
	y.Auth.AdminUserName = os.Getenv("ADMIN_USERNAME")
	y.Auth.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	if uri := os.Getenv("MONGO_URI"); uri != "" {
		y.Database.URI = uri
		if y.Database.Driver == "" {
			y.Database.Driver = "mongodb"
		}
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		y.Database.Driver = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		y.Redis.URL = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		y.MinIO.Endpoint = v
	}

	dbURL := os.Getenv("DATABASE_URL")
	driver := detectDatabaseDriver(y.Database.Driver, dbURL)
	y.Database.Driver = driver
	if dbURL == "" {
		dbURL = buildDatabaseURL(y.Database, y.Database.Password)
	}

	cfg := &Config{
		Env:            env,
		APIPort:        getEnv("PORT", y.APIServer.Port),
		DatabaseDriver: driver,
		DatabaseURL:    dbURL,
		DatabaseDBName: y.Database.Name,
		RedisURL:       buildRedisURL(y.Redis),
		MinIO:          y.MinIO,
		Auth:           y.Auth,
		Report:         y.Report,
		Log:            y.Log,
		ConfigFilePath: loadedFrom,
	}
	if cfg.Report.CacheTTL <= 0 {
		cfg.Report.CacheTTL = 60 * time.Second
	}
	// 开发/测试环境缺省密钥时使用固定值，生产环境保持为空，由 Validate 拒绝启动
	if cfg.Auth.JWTSecret == "" && env != EnvProduction {
		log.Printf("WARNING: JWT_SECRET_KEY is not set, tokens are signed with an insecure development secret")
		cfg.Auth.JWTSecret = devJWTSecret
	}

	return cfg
}

// defaultYAMLConfig 代码默认值
func defaultYAMLConfig() *YAMLConfig {
	return &YAMLConfig{
		APIServer: APIServerConfig{Port: "5000"},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    27017,
			Name:    "clothing_store",
			SSLMode: "disable",
		},
		Redis:  RedisConfig{Port: 6379},
		MinIO:  MinIOConfig{Bucket: "clothing-store"},
		Auth:   AuthConfig{AccessTokenTTL: "5h"},
		Report: ReportConfig{CacheTTL: 60 * time.Second},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// loadYAMLConfig 加载 YAML 配置文件，返回配置和实际加载的文件路径
func loadYAMLConfig(env Environment) (*YAMLConfig, string) {
	cfg := defaultYAMLConfig()

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range effectiveConfigPaths(env) {
		path := filepath.Join(base, filename)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Printf("WARNING: failed to parse %s: %v", path, err)
			return cfg, ""
		}
		return cfg, path
	}
	return cfg, ""
}

// effectiveConfigPaths 返回实际搜索路径
func effectiveConfigPaths(env Environment) []string {
	if configDir != "" {
		return []string{configDir}
	}
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return []string{dir}
	}
	if env == EnvProduction {
		return []string{"/etc/clothing-store"}
	}
	return []string{"configs", "../configs"}
}

// loadEnvFiles 加载 .env.{env} 文件
//
// 生产环境不搜索 .env 文件（凭据由 systemd EnvironmentFile 或 shell 环境注入）。
// godotenv.Load 不覆盖已有环境变量。
func loadEnvFiles(env Environment) {
	if env == EnvProduction {
		return
	}
	name := fmt.Sprintf(".env.%s", string(env))
	for _, dir := range envSearchDirs {
		if err := godotenv.Load(filepath.Join(dir, name)); err == nil {
			break
		}
	}
}
