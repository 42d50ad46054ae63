// Package config 统一配置管理
//
// 配置加载优先级（高→低）：
//  1. 环境变量（通过 .env.{env} 文件或 shell/systemd 注入）
//  2. YAML 配置文件（{env}.yaml，如 dev.yaml、test.yaml、prod.yaml）
//  3. 代码硬编码默认值
//
// 密码/密钥只从环境变量读取，YAML 中不存储任何凭据。
//
// 配置路径确定策略：
//  1. SetConfigDir（--config 命令行参数）
//  2. CONFIG_DIR 环境变量
//  3. 按 APP_ENV 选择默认路径：prod → /etc/clothing-store/，dev/test → ./configs/
package config

import "time"

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	APIServer APIServerConfig `yaml:"api_server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	MinIO     MinIOConfig     `yaml:"minio"`
	Auth      AuthConfig      `yaml:"auth"`
	Report    ReportConfig    `yaml:"report"`
	Log       LogConfig       `yaml:"log"`
}

// APIServerConfig API Server 配置
type APIServerConfig struct {
	Port string `yaml:"port"` // 监听端口，PORT 环境变量可覆盖
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "mongodb"（默认）、"postgres" 或 "sqlite"
	Path     string `yaml:"path"`   // SQLite 文件路径
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // 只从 DB_PASSWORD 环境变量读取
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	URI      string `yaml:"uri"` // MongoDB 连接 URI（优先于 host/port），MONGO_URI 可覆盖
}

// RedisConfig Redis 配置，host 与 url 都为空时不启用报表缓存
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"` // 只从 REDIS_PASSWORD 环境变量读取
	URL      string `yaml:"url"`
}

// MinIOConfig MinIO 对象存储配置，endpoint 为空时不启用图片上传
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`   // 例如 localhost:9000
	AccessKey string `yaml:"-"`          // 只从 MINIO_ROOT_USER 环境变量读取
	SecretKey string `yaml:"-"`          // 只从 MINIO_ROOT_PASSWORD 环境变量读取
	UseSSL    bool   `yaml:"use_ssl"`    // 是否使用 HTTPS
	Bucket    string `yaml:"bucket"`     // 默认 clothing-store
	PublicURL string `yaml:"public_url"` // 图片对外访问地址前缀，为空时由 endpoint 推导
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret      string `yaml:"-"`                // 只从 JWT_SECRET_KEY 环境变量读取
	AccessTokenTTL string `yaml:"access_token_ttl"` // 例如 "5h"
	AdminUserName  string `yaml:"-"`                // 只从 ADMIN_USERNAME 环境变量读取
	AdminPassword  string `yaml:"-"`                // 只从 ADMIN_PASSWORD 环境变量读取
}

// ReportConfig 报表配置
type ReportConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`  // debug / info / warn / error
	Format string `yaml:"format"` // text / json
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env            Environment
	APIPort        string
	DatabaseDriver string // "mongodb", "postgres" or "sqlite"
	DatabaseURL    string
	DatabaseDBName string // MongoDB 数据库名称
	RedisURL       string // 为空表示不启用缓存
	MinIO          MinIOConfig
	Auth           AuthConfig
	Report         ReportConfig
	Log            LogConfig
	ConfigFilePath string // 实际加载的配置文件路径
}

// DefaultAccessTokenTTL 访问令牌默认有效期
const DefaultAccessTokenTTL = 5 * time.Hour

// AccessTTL 解析访问令牌有效期，无法解析时使用默认值
func (a AuthConfig) AccessTTL() time.Duration {
	if d, err := time.ParseDuration(a.AccessTokenTTL); err == nil && d > 0 {
		return d
	}
	return DefaultAccessTokenTTL
}

// MinIOEnabled 是否配置了对象存储
func (c *Config) MinIOEnabled() bool {
	return c.MinIO.Endpoint != ""
}
