package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Identity   IdentityConfig   `mapstructure:"identity"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Log        LogConfig        `mapstructure:"log"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Mode    string `mapstructure:"mode"`
	Port    int    `mapstructure:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
}

// DSN 返回PostgreSQL连接字符串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr 返回Redis地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string          `mapstructure:"brokers"`
	Topics  map[string]string `mapstructure:"topics"`
}

// IdentityConfig 身份校验配置（外部身份提供方凭证的验签参数）
type IdentityConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// ModerationConfig 管理配置
// SuperAdminExternalID 为超级管理员的外部身份ID，启动时注入，
// 身份解析时该映射永远优先于任何提供方信号
type ModerationConfig struct {
	SuperAdminExternalID int64 `mapstructure:"super_admin_external_id"`
	ShortMuteHours       int   `mapstructure:"short_mute_hours"`
	LongMuteHours        int   `mapstructure:"long_mute_hours"`
}

// ShortMuteDuration 第3次警告触发的禁言时长
func (m *ModerationConfig) ShortMuteDuration() time.Duration {
	if m.ShortMuteHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(m.ShortMuteHours) * time.Hour
}

// LongMuteDuration 第6次警告触发的禁言时长
func (m *ModerationConfig) LongMuteDuration() time.Duration {
	if m.LongMuteHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(m.LongMuteHours) * time.Hour
}

// RateLimitConfig 限流配置，按动作类型覆盖默认预算
type RateLimitConfig struct {
	Budgets map[string]ActionBudget `mapstructure:"budgets"`
}

// ActionBudget 单个动作的窗口预算
type ActionBudget struct {
	Limit         int `mapstructure:"limit"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// Window 返回窗口时长
func (b *ActionBudget) Window() time.Duration {
	return time.Duration(b.WindowMinutes) * time.Minute
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// 全局配置实例
var globalConfig *Config

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件路径
	v.SetConfigFile(configPath)

	// 设置配置文件类型
	v.SetConfigType("yaml")

	// 读取环境变量
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 解析配置到结构体
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 保存到全局变量
	globalConfig = &cfg

	return &cfg, nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded, please call Load() first")
	}
	return globalConfig
}

// GetApp 获取应用配置
func GetApp() *AppConfig {
	return &Get().App
}

// GetDatabase 获取数据库配置
func GetDatabase() *DatabaseConfig {
	return &Get().Database
}

// GetRedis 获取Redis配置
func GetRedis() *RedisConfig {
	return &Get().Redis
}

// GetKafka 获取Kafka配置
func GetKafka() *KafkaConfig {
	return &Get().Kafka
}

// GetIdentity 获取身份校验配置
func GetIdentity() *IdentityConfig {
	return &Get().Identity
}

// GetModeration 获取管理配置
func GetModeration() *ModerationConfig {
	return &Get().Moderation
}

// GetRateLimit 获取限流配置
func GetRateLimit() *RateLimitConfig {
	return &Get().RateLimit
}

// GetLog 获取日志配置
func GetLog() *LogConfig {
	return &Get().Log
}
