package config

import (
    "strings"
    "time"

    "github.com/spf13/viper"
)

// Config 服务全量配置，支持 config.yaml 与 TQ_ 前缀环境变量覆盖
type Config struct {
    Env    string `mapstructure:"env"`
    Server struct {
        Addr string `mapstructure:"addr"`
    } `mapstructure:"server"`
    Database struct {
        Driver string `mapstructure:"driver"` // postgres / sqlite
        DSN    string `mapstructure:"dsn"`
    } `mapstructure:"database"`
    Redis struct {
        Addr     string `mapstructure:"addr"`
        Password string `mapstructure:"password"`
        DB       int    `mapstructure:"db"`
    } `mapstructure:"redis"`
    Queue struct {
        OfferTTL      time.Duration `mapstructure:"offer_ttl"`
        SweepInterval time.Duration `mapstructure:"sweep_interval"`
        MaxAttempts   int           `mapstructure:"max_attempts"`
        StatusCacheTTL time.Duration `mapstructure:"status_cache_ttl"`
    } `mapstructure:"queue"`
    Auth struct {
        JWTSecret string `mapstructure:"jwt_secret"`
        // WebhookTokenHash 支付回调共享令牌的 bcrypt 哈希
        WebhookTokenHash string `mapstructure:"webhook_token_hash"`
    } `mapstructure:"auth"`
    Observability struct {
        SentryDSN    string `mapstructure:"sentry_dsn"`
        OTLPEndpoint string `mapstructure:"otlp_endpoint"`
    } `mapstructure:"observability"`
}

// Load 读取 ./config.yaml（可缺省）并套用默认值
func Load() (*Config, error) {
    v := viper.New()
    v.SetConfigName("config")
    v.SetConfigType("yaml")
    v.AddConfigPath(".")
    v.AddConfigPath("./config")

    v.SetEnvPrefix("TQ")
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
    v.AutomaticEnv()

    v.SetDefault("env", "development")
    v.SetDefault("server.addr", ":8080")
    v.SetDefault("database.driver", "sqlite")
    v.SetDefault("database.dsn", "ticket_queue.db")
    v.SetDefault("redis.addr", "localhost:6379")
    v.SetDefault("redis.db", 0)
    v.SetDefault("queue.offer_ttl", 30*time.Minute)
    v.SetDefault("queue.sweep_interval", time.Minute)
    v.SetDefault("queue.max_attempts", 5)
    v.SetDefault("queue.status_cache_ttl", 2*time.Second)

    if err := v.ReadInConfig(); err != nil {
        // 无配置文件时走默认值 + 环境变量
        if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
            return nil, err
        }
    }

    var cfg Config
    if err := v.Unmarshal(&cfg); err != nil {
        return nil, err
    }
    return &cfg, nil
}
