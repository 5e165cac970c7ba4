package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Addr                      string
	DatabaseURL               string
	JWTSecret                 string
	Environment               string
	RunMigrations             bool
	MigrationsDir             string
	ReportsDir                string
	MaxBodyBytes              int64
	RateLimitPerMinute        int
	CORSOrigins               []string
	MetricsEnabled            bool
	PayrollWorkers            int
	ContributionRate          decimal.Decimal
	BonusContributionRate     decimal.Decimal
	SeveranceContributionRate decimal.Decimal
	EmployerContributionRate  decimal.Decimal
	IPSEmployeeRate           decimal.Decimal
	FallbackMinimumWage       decimal.Decimal
	CompanyName               string
	CompanyRUC                string
	CompanyEmployerNumber     string
	ShutdownTimeout           time.Duration
}

// Load reads the environment, after merging a .env file when one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:                      getEnv("APP_ADDR", ":8080"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		JWTSecret:                 getEnv("JWT_SECRET", ""),
		Environment:               getEnv("APP_ENV", "development"),
		RunMigrations:             getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:             getEnv("MIGRATIONS_DIR", "migrations"),
		ReportsDir:                getEnv("REPORTS_DIR", "storage/reports"),
		MaxBodyBytes:              int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:        getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		CORSOrigins:               getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		MetricsEnabled:            getEnvBool("METRICS_ENABLED", true),
		PayrollWorkers:            getEnvInt("PAYROLL_WORKERS", 4),
		ContributionRate:          getEnvDecimal("CONTRIBUTION_RATE", "0.09625"),
		BonusContributionRate:     getEnvDecimal("BONUS_CONTRIBUTION_RATE", "0.09"),
		SeveranceContributionRate: getEnvDecimal("SEVERANCE_CONTRIBUTION_RATE", "0.09"),
		EmployerContributionRate:  getEnvDecimal("EMPLOYER_CONTRIBUTION_RATE", "0.165"),
		IPSEmployeeRate:           getEnvDecimal("IPS_EMPLOYEE_RATE", "0.09"),
		FallbackMinimumWage:       getEnvDecimal("FALLBACK_MINIMUM_WAGE", "2798309"),
		CompanyName:               getEnv("COMPANY_NAME", ""),
		CompanyRUC:                getEnv("COMPANY_RUC", ""),
		CompanyEmployerNumber:     getEnv("COMPANY_EMPLOYER_NUMBER", ""),
		ShutdownTimeout:           getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDecimal(key, fallback string) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return decimal.RequireFromString(fallback)
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.RequireFromString(fallback)
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.PayrollWorkers <= 0 {
		return fmt.Errorf("PAYROLL_WORKERS must be positive")
	}
	for name, rate := range map[string]decimal.Decimal{
		"CONTRIBUTION_RATE":           c.ContributionRate,
		"BONUS_CONTRIBUTION_RATE":     c.BonusContributionRate,
		"SEVERANCE_CONTRIBUTION_RATE": c.SeveranceContributionRate,
		"EMPLOYER_CONTRIBUTION_RATE":  c.EmployerContributionRate,
		"IPS_EMPLOYEE_RATE":           c.IPSEmployeeRate,
	} {
		if !rate.IsPositive() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s must be a fraction above 0 and below 1", name)
		}
	}
	if !c.FallbackMinimumWage.IsPositive() {
		return fmt.Errorf("FALLBACK_MINIMUM_WAGE must be positive")
	}
	return nil
}
