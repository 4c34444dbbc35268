package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Cron       CronConfig       `mapstructure:"cron"`
	MenorPreco MenorPrecoConfig `mapstructure:"menor_preco"`
	PriceSync  PriceSyncConfig  `mapstructure:"price_sync"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	PriceSync string `mapstructure:"price_sync"`
}

type MenorPrecoConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Local   string        `mapstructure:"local"`
	Radius  int           `mapstructure:"radius"`
	Period  int           `mapstructure:"period"`
	Order   string        `mapstructure:"order"`
}

type PriceSyncConfig struct {
	Categories     []int         `mapstructure:"categories"`
	ProductDelay   time.Duration `mapstructure:"product_delay"`
	DedupWindow    time.Duration `mapstructure:"dedup_window"`
	LockTTL        time.Duration `mapstructure:"lock_ttl"`
	MinNameTokens  int           `mapstructure:"min_name_tokens"`
	MinTokenLen    int           `mapstructure:"min_token_len"`
	MinAddressHits int           `mapstructure:"min_address_hits"`
	SourceNote     string        `mapstructure:"source_note"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DESPENSA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", false)
	v.SetDefault("cron.price_sync", "@every 6h")
	v.SetDefault("menor_preco.base_url", "https://menorpreco.notaparana.pr.gov.br/api/v1")
	v.SetDefault("menor_preco.timeout", "15s")
	v.SetDefault("menor_preco.local", "")
	v.SetDefault("menor_preco.radius", 20)
	v.SetDefault("menor_preco.period", 3)
	v.SetDefault("menor_preco.order", "preco.asc")
	v.SetDefault("price_sync.categories", []int{52, 53, 55, 56, 58, 62})
	v.SetDefault("price_sync.product_delay", "200ms")
	v.SetDefault("price_sync.dedup_window", "24h")
	v.SetDefault("price_sync.lock_ttl", "30m")
	v.SetDefault("price_sync.min_name_tokens", 2)
	v.SetDefault("price_sync.min_token_len", 2)
	v.SetDefault("price_sync.min_address_hits", 2)
	v.SetDefault("price_sync.source_note", "menor-preco")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
