package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Group fields a metrics query may be scoped by.
const (
	GroupByArea      = "area"
	GroupByWorkgroup = "workgroup"
)

// Health models understood by the scorer factory.
const (
	ModelPenalty  = "penalty"
	ModelWeighted = "weighted"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath string
	LogDir   string
	CacheDir string

	TasksFile    string
	SprintsFile  string
	HistoryFile  string
	CSVDelimiter rune

	GroupField       string
	HealthModel      string
	HealthPolicyPath string

	HTTPAddr string
	AppEnv   string

	UseCache            bool
	WatchData           bool
	EnableMermaidCharts bool
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	cacheDir := filepath.Join(dataPath, "cache")

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cacheDir).Msg("Failed to create cache directory")
	}

	cfg := &AppConfig{
		DataPath:            dataPath,
		LogDir:              logDir,
		CacheDir:            cacheDir,
		TasksFile:           resolvePath(dataPath, getEnv("TASKS_FILE", "entities.csv")),
		SprintsFile:         resolvePath(dataPath, getEnv("SPRINTS_FILE", "sprints.csv")),
		HistoryFile:         resolvePath(dataPath, getEnv("HISTORY_FILE", "history.csv")),
		GroupField:          strings.ToLower(getEnv("GROUP_FIELD", GroupByArea)),
		HealthModel:         strings.ToLower(getEnv("HEALTH_MODEL", ModelPenalty)),
		HealthPolicyPath:    getEnv("HEALTH_POLICY_PATH", ""),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8000"),
		AppEnv:              getEnv("APP_ENV", "development"),
		UseCache:            getEnvBool("USE_CACHE", true),
		WatchData:           getEnvBool("WATCH_DATA", false),
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}

	delim, err := parseDelimiter(getEnv("CSV_DELIMITER", ";"))
	if err != nil {
		return nil, err
	}
	cfg.CSVDelimiter = delim

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the analytics engine cannot honour.
func (c *AppConfig) Validate() error {
	switch c.GroupField {
	case GroupByArea, GroupByWorkgroup:
	default:
		return fmt.Errorf("invalid GROUP_FIELD %q: must be %q or %q", c.GroupField, GroupByArea, GroupByWorkgroup)
	}
	switch c.HealthModel {
	case ModelPenalty, ModelWeighted:
	default:
		return fmt.Errorf("invalid HEALTH_MODEL %q: must be %q or %q", c.HealthModel, ModelPenalty, ModelWeighted)
	}
	return nil
}

// IsProduction reports whether the server should run gin in release mode.
func (c *AppConfig) IsProduction() bool {
	return c.AppEnv == "production"
}

func resolvePath(base, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(base, name)
}

func parseDelimiter(value string) (rune, error) {
	if value == `\t` || value == "tab" {
		return '\t', nil
	}
	runes := []rune(value)
	if len(runes) != 1 {
		return 0, fmt.Errorf("invalid CSV_DELIMITER %q: must be a single character", value)
	}
	return runes[0], nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
