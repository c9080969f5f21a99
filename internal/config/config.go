package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Payroll    PayrollConfig
	SMTP       SMTPConfig
	RateLimit  RateLimitConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// AttendanceConfig holds the working-day cutoffs used to classify clock-ins
// and to decide when a day can be closed.
type AttendanceConfig struct {
	LateCutoff   ClockTime
	AbsentCutoff ClockTime
	CloseAt      ClockTime
	Location     *time.Location
}

type PayrollConfig struct {
	StandardWorkingDays int
	ApproverEmails      []string
	CompanyName         string // printed on payslips
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether outgoing email is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{"http://localhost:3000"}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance configuration
	lateCutoff, err := ParseClockTime(getEnv("ATTENDANCE_LATE_CUTOFF", "09:15"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_LATE_CUTOFF: %w", err)
	}
	absentCutoff, err := ParseClockTime(getEnv("ATTENDANCE_ABSENT_CUTOFF", "12:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_ABSENT_CUTOFF: %w", err)
	}
	closeAt, err := ParseClockTime(getEnv("ATTENDANCE_CLOSE_AT", "23:59"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_CLOSE_AT: %w", err)
	}
	loc, err := time.LoadLocation(getEnv("ATTENDANCE_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err)
	}

	config.Attendance = AttendanceConfig{
		LateCutoff:   lateCutoff,
		AbsentCutoff: absentCutoff,
		CloseAt:      closeAt,
		Location:     loc,
	}

	// Payroll configuration
	standardDays, err := strconv.Atoi(getEnv("PAYROLL_STANDARD_WORKING_DAYS", "22"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_STANDARD_WORKING_DAYS: %w", err)
	}

	config.Payroll = PayrollConfig{
		StandardWorkingDays: standardDays,
		ApproverEmails:      getEnvSlice("PAYROLL_APPROVER_EMAILS"),
		CompanyName:         getEnv("PAYROLL_COMPANY_NAME", "CMLabs"),
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "payroll@localhost"),
	}

	// Rate limit configuration
	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	config.RateLimit = RateLimitConfig{
		RequestsPerSecond: rps,
		Burst:             burst,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME is invalid: %w", err)
	}
	if err := c.Attendance.Validate(); err != nil {
		return err
	}
	if c.Payroll.StandardWorkingDays <= 0 {
		return fmt.Errorf("PAYROLL_STANDARD_WORKING_DAYS must be positive")
	}
	for _, addr := range c.Payroll.ApproverEmails {
		if !validator.IsValidEmail(addr) {
			return fmt.Errorf("PAYROLL_APPROVER_EMAILS contains an invalid address: %q", addr)
		}
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// Validate checks the cutoff ordering. Classification depends on it, so a
// bad value has to stop the process at startup.
func (c AttendanceConfig) Validate() error {
	if c.Location == nil {
		return fmt.Errorf("ATTENDANCE_TIMEZONE is required")
	}
	if c.AbsentCutoff.Offset() <= c.LateCutoff.Offset() {
		return fmt.Errorf("ATTENDANCE_ABSENT_CUTOFF (%s) must be after ATTENDANCE_LATE_CUTOFF (%s)", c.AbsentCutoff, c.LateCutoff)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
