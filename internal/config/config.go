package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
	"github.com/lesnaya-zaimka/booking-service/pkg/types"
)

// Config конфигурация сервиса
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Redis        RedisConfig        `toml:"redis"`
	Kafka        KafkaConfig        `toml:"kafka"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
	RateLimit    RateLimitConfig    `toml:"rate_limit"`
	Reservations ReservationsConfig `toml:"reservations"`
	Resources    []ResourceConfig   `toml:"resources"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig настройки Redis для счётчиков rate limiter
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// KafkaConfig настройки Kafka для событий уведомлений
type KafkaConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// RateLimitConfig пороги rate limiter
type RateLimitConfig struct {
	MaxPendingPerPhone      int `toml:"max_pending_per_phone"`
	MaxSubmitsPerOriginHour int `toml:"max_submits_per_origin_hour"`
}

// ReservationsConfig параметры жизненного цикла бронирований
type ReservationsConfig struct {
	// PendingTTLMinutes время жизни pending бронирования до автоистечения
	PendingTTLMinutes int `toml:"pending_ttl_minutes"`
	// ExpirySweepIntervalMinutes период фоновой уборки просроченных pending
	ExpirySweepIntervalMinutes int `toml:"expiry_sweep_interval_minutes"`
}

// ResourceConfig описание бронируемого ресурса в TOML
type ResourceConfig struct {
	Type                string          `toml:"type"`
	Model               string          `toml:"model"`
	Name                string          `toml:"name"`
	OpenTime            string          `toml:"open_time"`
	CloseTime           string          `toml:"close_time"`
	SlotStepMinutes     int             `toml:"slot_step_minutes"`
	Capacity            int             `toml:"capacity"`
	BufferMinutes       int             `toml:"buffer_minutes"`
	MinNoticeMinutes    int             `toml:"min_notice_minutes"`
	AdvanceBookingDays  int             `toml:"advance_booking_days"`
	JoinDiscountPercent int             `toml:"join_discount_percent"`
	RequiresIdentity    bool            `toml:"requires_identity"`
	Variants            []VariantConfig `toml:"variants"`
	Units               []UnitConfig    `toml:"units"`
}

// VariantConfig вариант активности ресурса в TOML
type VariantConfig struct {
	Code            string  `toml:"code"`
	Name            string  `toml:"name"`
	DurationMinutes int     `toml:"duration_minutes"`
	UnitPrice       float64 `toml:"unit_price"`
}

// UnitConfig физический юнит fixed-unit ресурса в TOML
type UnitConfig struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Load загружает и валидирует конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("config: server.http_port must be positive")
	}
	if len(c.Resources) == 0 {
		return fmt.Errorf("config: at least one resource must be configured")
	}
	for i := range c.Resources {
		if err := c.Resources[i].validate(); err != nil {
			return err
		}
	}
	if c.RateLimit.MaxPendingPerPhone == 0 {
		c.RateLimit.MaxPendingPerPhone = domain.DefaultMaxPendingPerPhone
	}
	if c.RateLimit.MaxSubmitsPerOriginHour == 0 {
		c.RateLimit.MaxSubmitsPerOriginHour = domain.DefaultMaxSubmitsPerOriginHour
	}
	if c.Reservations.PendingTTLMinutes == 0 {
		c.Reservations.PendingTTLMinutes = domain.DefaultPendingTTLMinutes
	}
	if c.Reservations.ExpirySweepIntervalMinutes == 0 {
		c.Reservations.ExpirySweepIntervalMinutes = domain.DefaultExpirySweepIntervalMinutes
	}
	return nil
}

func (r *ResourceConfig) validate() error {
	model := domain.ResourceModel(r.Model)
	if model != domain.ModelSharedPool && model != domain.ModelFixedUnit {
		return fmt.Errorf("config: resource %q: unknown model %q", r.Type, r.Model)
	}
	if _, err := types.NewTimeStringFromString(r.OpenTime); err != nil {
		return fmt.Errorf("config: resource %q: invalid open_time: %w", r.Type, err)
	}
	if _, err := types.NewTimeStringFromString(r.CloseTime); err != nil {
		return fmt.Errorf("config: resource %q: invalid close_time: %w", r.Type, err)
	}
	if r.SlotStepMinutes < domain.MinSlotStepMinutes || r.SlotStepMinutes > domain.MaxSlotStepMinutes {
		return fmt.Errorf("config: resource %q: slot_step_minutes out of range", r.Type)
	}
	if len(r.Variants) == 0 {
		return fmt.Errorf("config: resource %q: at least one variant required", r.Type)
	}
	if model == domain.ModelSharedPool && r.Capacity <= 0 {
		return fmt.Errorf("config: resource %q: shared pool capacity must be positive", r.Type)
	}
	if model == domain.ModelFixedUnit && len(r.Units) == 0 {
		return fmt.Errorf("config: resource %q: fixed-unit resource requires units", r.Type)
	}
	return nil
}

// Catalog строит доменный каталог ресурсов из конфигурации
func (c *Config) Catalog() domain.Catalog {
	catalog := make(domain.Catalog, len(c.Resources))

	for _, r := range c.Resources {
		openTime, _ := types.NewTimeStringFromString(r.OpenTime)
		closeTime, _ := types.NewTimeStringFromString(r.CloseTime)

		variants := make([]domain.Variant, len(r.Variants))
		for i, v := range r.Variants {
			variants[i] = domain.Variant{
				Code:            v.Code,
				Name:            v.Name,
				DurationMinutes: v.DurationMinutes,
				UnitPrice:       v.UnitPrice,
			}
		}

		units := make([]domain.Unit, len(r.Units))
		for i, u := range r.Units {
			units[i] = domain.Unit{ID: u.ID, Name: u.Name}
		}

		joinDiscount := r.JoinDiscountPercent
		if joinDiscount == 0 && domain.ResourceModel(r.Model) == domain.ModelSharedPool {
			joinDiscount = domain.DefaultJoinDiscountPercent
		}

		catalog[domain.ResourceType(r.Type)] = &domain.ResourceConfig{
			Type:                domain.ResourceType(r.Type),
			Model:               domain.ResourceModel(r.Model),
			Name:                r.Name,
			OpenTime:            openTime,
			CloseTime:           closeTime,
			SlotStepMinutes:     r.SlotStepMinutes,
			Capacity:            r.Capacity,
			BufferMinutes:       r.BufferMinutes,
			MinNoticeMinutes:    r.MinNoticeMinutes,
			AdvanceBookingDays:  r.AdvanceBookingDays,
			JoinDiscountPercent: joinDiscount,
			RequiresIdentity:    r.RequiresIdentity,
			Variants:            variants,
			Units:               units,
		}
	}

	return catalog
}
