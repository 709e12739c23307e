package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置（apiserver / worker / callback_consumer 共用）
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	Server  ServerConfig   `mapstructure:"server"`
	MySQL   MySQLConfig    `mapstructure:"mysql"`
	Redis   RedisConfig    `mapstructure:"redis"`
	Lmstfy  LmstfyConfig   `mapstructure:"lmstfy"`
	Payment PaymentConfig  `mapstructure:"payment"`
	Sweeper SweeperConfig  `mapstructure:"sweeper"`
	Workers []WorkerConfig `mapstructure:"workers"`
}

type AppConfig struct {
	Name      string `mapstructure:"name"`
	Env       string `mapstructure:"env"`
	LogLevel  string `mapstructure:"log_level"`
	MachineID int64  `mapstructure:"machine_id"` // 订单号生成器机器ID (0-99)
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type MySQLConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Addr          string        `mapstructure:"addr"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	NotifyChannel string        `mapstructure:"notify_channel"` // 商家端通知频道
	CartLockTTL   time.Duration `mapstructure:"cart_lock_ttl"`  // 购物车用户锁过期时间
	OrderLockTTL  time.Duration `mapstructure:"order_lock_ttl"` // 订单迁移锁过期时间，需大于网关超时
}

type LmstfyConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Namespace     string `mapstructure:"namespace"`
	Token         string `mapstructure:"token"`
	CallbackQueue string `mapstructure:"callback_queue"` // 支付回调队列
	TimeoutQueue  string `mapstructure:"timeout_queue"`  // 支付超时延迟队列
}

// PaymentConfig 支付网关配置
// mode: mock 始终返回已支付；live 调用真实网关
type PaymentConfig struct {
	Mode      string        `mapstructure:"mode"`
	Endpoint  string        `mapstructure:"endpoint"`
	MchID     string        `mapstructure:"mch_id"`
	AppID     string        `mapstructure:"app_id"`
	APIKey    string        `mapstructure:"api_key"`
	NotifyURL string        `mapstructure:"notify_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// SweeperConfig 超时订单扫描配置
type SweeperConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	PaymentTimeout  time.Duration `mapstructure:"payment_timeout"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout"`
	DeliveryHour    int           `mapstructure:"delivery_hour"` // 每天几点处理派送超时订单
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name       string           `mapstructure:"name"`
	QueueName  string           `mapstructure:"queue_name"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

const (
	PaymentModeMock = "mock"
	PaymentModeLive = "live"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "takeout")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.machine_id", 1)
	v.SetDefault("server.port", "8080")
	v.SetDefault("mysql.max_open_conns", 20)
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("redis.notify_channel", "takeout:notifications")
	v.SetDefault("redis.cart_lock_ttl", 3*time.Second)
	v.SetDefault("redis.order_lock_ttl", 30*time.Second)
	v.SetDefault("lmstfy.port", 7777)
	v.SetDefault("lmstfy.callback_queue", "pay_callback")
	v.SetDefault("lmstfy.timeout_queue", "payment_timeout")
	v.SetDefault("payment.mode", PaymentModeMock)
	v.SetDefault("payment.timeout", 5*time.Second)
	v.SetDefault("sweeper.interval", time.Minute)
	v.SetDefault("sweeper.payment_timeout", 15*time.Minute)
	v.SetDefault("sweeper.delivery_timeout", 60*time.Minute)
	v.SetDefault("sweeper.delivery_hour", 1)
}

// Load 从配置文件加载配置，环境变量 TAKEOUT_<SECTION>_<KEY> 覆盖文件配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TAKEOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// LoadDefault 加载默认配置文件路径
func LoadDefault() (*Config, error) {
	return Load("config/config.yaml")
}

// Validate 验证配置完整性
func (c *Config) Validate() error {
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if c.Lmstfy.Token == "" {
		return fmt.Errorf("lmstfy.token is required")
	}
	switch c.Payment.Mode {
	case PaymentModeMock:
	case PaymentModeLive:
		if c.Payment.Endpoint == "" {
			return fmt.Errorf("payment.endpoint is required in live mode")
		}
	default:
		return fmt.Errorf("payment.mode must be %q or %q, got %q", PaymentModeMock, PaymentModeLive, c.Payment.Mode)
	}
	if c.Sweeper.Interval <= 0 {
		return fmt.Errorf("sweeper.interval must be positive")
	}
	if c.Sweeper.DeliveryHour < 0 || c.Sweeper.DeliveryHour > 23 {
		return fmt.Errorf("sweeper.delivery_hour must be within 0-23")
	}
	for _, w := range c.Workers {
		if w.Name == "" || w.QueueName == "" {
			return fmt.Errorf("workers: name and queue_name are required")
		}
	}
	return nil
}
