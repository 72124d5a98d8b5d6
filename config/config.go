package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Data source kinds.
const (
	SourceFile      = "file"
	SourceHTTP      = "http"
	SourceMySQL     = "mysql"
	SourceGenerated = "generated"
)

// Config holds all server settings.
type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	AllowOrigins string `yaml:"allow_origins"`
	LogLevel     string `yaml:"log_level"`

	// 레이아웃 데이터
	DataSource    string `yaml:"data_source"`
	DataPath      string `yaml:"data_path"`
	DataURL       string `yaml:"data_url"`
	GeneratorSeed int64  `yaml:"generator_seed"`

	// 차량 애니메이션
	VehicleSpeed float64 `yaml:"vehicle_speed"` // world units / s
	RotationGain float64 `yaml:"rotation_gain"` // 1/s
	TickRate     int     `yaml:"tick_rate"`     // frames / s

	MySQL MySQLConfig `yaml:"mysql"`
}

// MySQLConfig holds MySQL connection parameters.
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// DSN returns the go-sql-driver connection string.
func (m MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		m.User, m.Password, m.Host, m.Port, m.Database)
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		ListenAddr:    ":3000",
		AllowOrigins:  "http://localhost:5173, http://localhost:3000",
		LogLevel:      "info",
		DataSource:    SourceFile,
		DataPath:      "data/warehouse-data.json",
		GeneratorSeed: 1,
		VehicleSpeed:  1.0,
		RotationGain:  5.0,
		TickRate:      60,
		MySQL: MySQLConfig{
			Port: 3306,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables. A .env file in the
// working directory is loaded into the environment first when present.
func Load() (Config, error) {
	// .env 파일은 선택 사항
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads a YAML config on top of the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.AllowOrigins, "ALLOW_ORIGINS")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.DataSource, "DATA_SOURCE")
	setString(&c.DataPath, "DATA_PATH")
	setString(&c.DataURL, "DATA_URL")

	setString(&c.MySQL.Host, "MYSQL_HOST")
	setString(&c.MySQL.User, "MYSQL_USER")
	setString(&c.MySQL.Password, "MYSQL_PASSWORD")
	setString(&c.MySQL.Database, "MYSQL_DATABASE")

	if v, ok := lookup("MYSQL_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MYSQL_PORT: %w", err)
		}
		c.MySQL.Port = port
	}
	if v, ok := lookup("TICK_RATE"); ok {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TICK_RATE: %w", err)
		}
		c.TickRate = rate
	}
	if v, ok := lookup("GENERATOR_SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("GENERATOR_SEED: %w", err)
		}
		c.GeneratorSeed = seed
	}
	if err := setFloat(&c.VehicleSpeed, "VEHICLE_SPEED"); err != nil {
		return err
	}
	return setFloat(&c.RotationGain, "ROTATION_GAIN")
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", c.TickRate)
	}
	if c.VehicleSpeed < 0 {
		return fmt.Errorf("vehicle speed must not be negative, got %v", c.VehicleSpeed)
	}
	if c.RotationGain < 0 {
		return fmt.Errorf("rotation gain must not be negative, got %v", c.RotationGain)
	}

	switch c.DataSource {
	case SourceFile:
		if c.DataPath == "" {
			return fmt.Errorf("data source %q requires DATA_PATH", c.DataSource)
		}
	case SourceHTTP:
		if c.DataURL == "" {
			return fmt.Errorf("data source %q requires DATA_URL", c.DataSource)
		}
	case SourceMySQL:
		if c.MySQL.Host == "" || c.MySQL.User == "" || c.MySQL.Database == "" {
			return fmt.Errorf("data source %q requires MYSQL_HOST, MYSQL_USER, MYSQL_DATABASE", c.DataSource)
		}
	case SourceGenerated:
	default:
		return fmt.Errorf("unknown data source %q", c.DataSource)
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setFloat(dst *float64, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}
