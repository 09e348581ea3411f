package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Engine struct {
		Symbol           string        `yaml:"symbol" default:"BTCUSDT" validate:"required"`
		Timeframes       []string      `yaml:"timeframes"`
		PrimaryTimeframe string        `yaml:"primary_timeframe" default:"5m"`
		ScanInterval     time.Duration `yaml:"scan_interval" default:"10s"`
		MinCandles       int           `yaml:"min_candles" default:"50" validate:"gt=0"`
		CandleLimit      int           `yaml:"candle_limit" default:"100"`
	} `yaml:"engine"`
	Signal struct {
		EMAFast       int     `yaml:"ema_fast" default:"9"`
		EMAMedium     int     `yaml:"ema_medium" default:"21"`
		EMASlow       int     `yaml:"ema_slow" default:"50"`
		EMATrend      int     `yaml:"ema_trend" default:"200"`
		RSIPeriod     int     `yaml:"rsi_period" default:"14"`
		RSIOverbought float64 `yaml:"rsi_overbought" default:"70"`
		RSIOversold   float64 `yaml:"rsi_oversold" default:"30"`
		MACDFast      int     `yaml:"macd_fast" default:"12"`
		MACDSlow      int     `yaml:"macd_slow" default:"26"`
		MACDSignal    int     `yaml:"macd_signal" default:"9"`
		BBPeriod      int     `yaml:"bb_period" default:"20"`
		BBStdDev      float64 `yaml:"bb_std_dev" default:"2"`
		ATRPeriod     int     `yaml:"atr_period" default:"14"`
		ADXPeriod     int     `yaml:"adx_period" default:"14"`
		ADXTrending   float64 `yaml:"adx_trending" default:"25"`
		ADXRanging    float64 `yaml:"adx_ranging" default:"20"`
		VolumeMA      int     `yaml:"volume_ma_period" default:"20"`
		VolumeSpike   float64 `yaml:"volume_spike_ratio" default:"2"`
		MinConfidence float64 `yaml:"min_confidence" default:"60" validate:"gte=0,lte=100"`
		SessionWeight struct {
			Asian  float64 `yaml:"asian" default:"0.8"`
			London float64 `yaml:"london" default:"1.0"`
			NY     float64 `yaml:"ny" default:"1.2"`
		} `yaml:"session_weight"`
	} `yaml:"signal"`
	Risk struct {
		AccountBalance        float64 `yaml:"account_balance" default:"10000"`
		MaxPositionNotional   float64 `yaml:"max_position_notional" default:"400" validate:"gt=0"`
		MaxConcurrent         int     `yaml:"max_concurrent_positions" default:"3" validate:"gt=0"`
		MaxDailyLossPct       float64 `yaml:"max_daily_loss_pct" default:"0.05"`
		HardStopPct           float64 `yaml:"hard_stop_pct" default:"0.30"`
		TrailingActivationPct float64 `yaml:"trailing_activation_pct" default:"0.15"`
		TrailingDistancePct   float64 `yaml:"trailing_distance_pct" default:"0.10"`
		TP1Pct                float64 `yaml:"tp1_pct" default:"0.05"`
		TP2Pct                float64 `yaml:"tp2_pct" default:"0.10"`
		TP3Pct                float64 `yaml:"tp3_pct" default:"0.20"`
	} `yaml:"risk"`
	Learning struct {
		MinPatternOccurrences int     `yaml:"min_pattern_occurrences" default:"5"`
		WindowTrades          int     `yaml:"window_trades" default:"20" validate:"gt=0"`
		WinRateHigh           float64 `yaml:"win_rate_high" default:"0.6"`
		WinRateLow            float64 `yaml:"win_rate_low" default:"0.4"`
		MaxDrawdownPct        float64 `yaml:"max_drawdown_pct" default:"10"`
	} `yaml:"learning"`
	Storage struct {
		Backend string `yaml:"backend" default:"file" validate:"oneof=file redis"`
		Dir     string `yaml:"dir" default:"data"`
		Redis   struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"storage"`
	Binance struct {
		RESTBase     string        `yaml:"rest_base" default:"https://api.binance.com"`
		FallbackBase string        `yaml:"fallback_base" default:"https://min-api.cryptocompare.com"`
		WebSocketURL string        `yaml:"websocket_url" default:"wss://stream.binance.com:9443/ws"`
		Timeout      time.Duration `yaml:"timeout" default:"10s"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
		CacheTTL       time.Duration `yaml:"cache_ttl" default:"5s"`
	} `yaml:"binance"`
	Events struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"tradepulse.events"`
		Compression  string        `yaml:"compression" default:"gzip"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		BatchTimeout time.Duration `yaml:"batch_timeout" default:"1s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"events"`
	Archive struct {
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"tradepulse"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"archive"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("SYMBOL"); v != "" {
		c.Engine.Symbol = v
	}
	if v := os.Getenv("TIMEFRAMES"); v != "" {
		c.Engine.Timeframes = strings.Split(v, ",")
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Storage.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Storage.Redis.Password = v
	}
	if v := os.Getenv("EVENT_BROKERS"); v != "" {
		c.Events.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("EVENT_TOPIC"); v != "" {
		c.Events.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.Archive.Host = v
	}
	if v := os.Getenv("ACCOUNT_BALANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.Risk.AccountBalance = f
		}
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if len(c.Engine.Timeframes) == 0 {
		c.Engine.Timeframes = []string{"1m", "5m", "15m", "1h"}
	}
	found := false
	for _, tf := range c.Engine.Timeframes {
		if tf == c.Engine.PrimaryTimeframe {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("primary_timeframe %q not in timeframes %v", c.Engine.PrimaryTimeframe, c.Engine.Timeframes)
	}
	if c.Signal.RSIOversold >= c.Signal.RSIOverbought {
		return fmt.Errorf("rsi_oversold must be below rsi_overbought")
	}
	if c.Risk.TP1Pct >= c.Risk.TP2Pct || c.Risk.TP2Pct >= c.Risk.TP3Pct {
		return fmt.Errorf("take profit levels must be strictly increasing")
	}
	if c.Learning.WinRateLow >= c.Learning.WinRateHigh {
		return fmt.Errorf("win_rate_low must be below win_rate_high")
	}
	return nil
}

// SessionWeight returns the configured weight for a session tag.
func (c *Config) SessionWeight(session string) float64 {
	switch session {
	case "ASIAN":
		return c.Signal.SessionWeight.Asian
	case "LONDON":
		return c.Signal.SessionWeight.London
	case "NY":
		return c.Signal.SessionWeight.NY
	default:
		return 1.0
	}
}
