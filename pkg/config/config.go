package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Logging     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Engine struct {
		ScoreScale     float64       `yaml:"score_scale"`
		LiquidityScale float64       `yaml:"liquidity_scale"`
		CycleInterval  time.Duration `yaml:"cycle_interval"`
		Workers        int           `yaml:"workers"`
		SeriesDepth    int           `yaml:"series_depth"`
		Alerts         struct {
			MinStressCount int           `yaml:"min_stress_count"`
			DedupWindow    time.Duration `yaml:"dedup_window"`
		} `yaml:"alerts"`
		Strain struct {
			Primary            string  `yaml:"primary"`
			Secondary          string  `yaml:"secondary"`
			Tertiary           string  `yaml:"tertiary"`
			TrendLength        int     `yaml:"trend_length"`
			SmoothLength       int     `yaml:"smooth_length"`
			DivergenceScale    float64 `yaml:"divergence_scale"`
			OutperformScale    float64 `yaml:"outperformance_scale"`
			DirectionThreshold float64 `yaml:"direction_threshold"`
		} `yaml:"strain"`
		Liquidity struct {
			Code         string  `yaml:"code"`
			MoneyStock   string  `yaml:"money_stock"`
			BalanceSheet string  `yaml:"balance_sheet"`
			ReserveDrain string  `yaml:"reserve_drain"`
			GreenMax     float64 `yaml:"green_max"`
			YellowMax    float64 `yaml:"yellow_max"`
		} `yaml:"liquidity"`
		Bond struct {
			Code         string   `yaml:"code"`
			HighYield    string   `yaml:"high_yield"`
			InvestGrade  string   `yaml:"invest_grade"`
			CurveSpreads []string `yaml:"curve_spreads"`
			ShortYield   string   `yaml:"short_yield"`
			LongYield    string   `yaml:"long_yield"`
			TermPremium  string   `yaml:"term_premium"`
			GreenMax     float64  `yaml:"green_max"`
			YellowMax    float64  `yaml:"yellow_max"`
		} `yaml:"bond"`
	} `yaml:"engine"`
	Definitions struct {
		Indicators string `yaml:"indicators"`
		Composites string `yaml:"composites"`
	} `yaml:"definitions"`
	Kafka struct {
		Brokers           []string `yaml:"brokers"`
		ObservationsTopic string   `yaml:"observations_topic"`
		AlertsTopic       string   `yaml:"alerts_topic"`
		RequiredAcks      int      `yaml:"required_acks"`
		Consumer          struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
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

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Definitions.Indicators == "" {
		return fmt.Errorf("definitions.indicators is required")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty")
	}
	if c.Kafka.ObservationsTopic == "" {
		return fmt.Errorf("kafka.observations_topic is required")
	}
	if c.Engine.CycleInterval <= 0 {
		return fmt.Errorf("engine.cycle_interval must be positive")
	}
	return nil
}
