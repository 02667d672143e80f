package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultDatabaseDriver = "postgres"
	defaultAppPort        = "8080"
	defaultAppEnv         = "local"
	defaultRemoteTimeout  = 5 * time.Second
	defaultStoreDriver    = "file"
	defaultStoreDir       = "storage/mirror"
	defaultRedisAddr      = "localhost:6379"
	defaultRedisPrefix    = "stockmirror:"
	defaultBackupSchedule = "@every 30m"
	defaultLowStockSweep  = "@every 5m"
	defaultReportWindow   = 7
	defaultReportTopN     = 5
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json and .env once. Missing files are not an error.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":             defaultAppEnv,
		"APP_PORT":            defaultAppPort,
		"DB_DRIVER":           defaultDatabaseDriver,
		"DATABASE_DSN":        "",
		"STORE_DRIVER":        defaultStoreDriver,
		"STORE_DIR":           defaultStoreDir,
		"REDIS_ADDR":          defaultRedisAddr,
		"REDIS_PASSWORD":      "",
		"REDIS_PREFIX":        defaultRedisPrefix,
		"BACKUP_DISK":         "local",
		"STORAGE_LOCAL_ROOT":  "storage",
	}
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

// ── Remote row-store ─────────────────────────────────────────────────────────

func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDatabaseDriver))
	switch driver {
	case "sqlite", "postgres", "mysql", "sqlserver":
		return driver
	default:
		return defaultDatabaseDriver
	}
}

// DatabaseDSN returns the remote DSN. An empty DSN means the mirror runs
// local-only.
func DatabaseDSN() string {
	_ = Load()
	return get("DATABASE_DSN", "")
}

func RemoteTimeout() time.Duration {
	_ = Load()
	return getDuration("REMOTE_TIMEOUT", defaultRemoteTimeout)
}

// RemoteSchema names the remote column layout: canonical or legacy.
func RemoteSchema() string {
	_ = Load()
	if strings.ToLower(get("REMOTE_SCHEMA", "canonical")) == "legacy" {
		return "legacy"
	}
	return "canonical"
}

// RemoteActiveField is the soft-delete column the loader filters on.
func RemoteActiveField() string {
	_ = Load()
	if RemoteSchema() == "legacy" {
		return get("REMOTE_ACTIVE_FIELD", "ativo")
	}
	return get("REMOTE_ACTIVE_FIELD", "active")
}

// ── Local store ──────────────────────────────────────────────────────────────

func StoreDriver() string {
	_ = Load()

	driver := strings.ToLower(get("STORE_DRIVER", defaultStoreDriver))
	switch driver {
	case "file", "redis", "memory":
		return driver
	default:
		return defaultStoreDriver
	}
}

func StoreDir() string {
	_ = Load()
	return get("STORE_DIR", defaultStoreDir)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

func RedisDB() int {
	_ = Load()
	return getInt("REDIS_DB", 0)
}

func RedisPrefix() string {
	_ = Load()
	return get("REDIS_PREFIX", defaultRedisPrefix)
}

// ── Backups ──────────────────────────────────────────────────────────────────

func BackupDisk() string {
	_ = Load()
	return get("BACKUP_DISK", "local")
}

func BackupSchedule() string {
	_ = Load()
	return getRaw("BACKUP_SCHEDULE", defaultBackupSchedule)
}

func LowStockSchedule() string {
	_ = Load()
	return getRaw("LOW_STOCK_SCHEDULE", defaultLowStockSweep)
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", "storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }

// ── Reports ──────────────────────────────────────────────────────────────────

func ReportWindowDays() int {
	_ = Load()
	if n := getInt("REPORT_WINDOW_DAYS", defaultReportWindow); n > 0 {
		return n
	}
	return defaultReportWindow
}

func ReportTopN() int {
	_ = Load()
	if n := getInt("REPORT_TOP_N", defaultReportTopN); n > 0 {
		return n
	}
	return defaultReportTopN
}

// ── Logging ──────────────────────────────────────────────────────────────────

func LogMongoURI() string        { _ = Load(); return get("LOG_MONGO_URI", "") }
func LogMongoDB() string         { _ = Load(); return get("LOG_MONGO_DB", "stockmirror") }
func LogMongoCollection() string { _ = Load(); return get("LOG_MONGO_COLLECTION", "logs") }

// IDNode returns the configured snowflake node, or -1 to pick one at random.
func IDNode() int64 {
	_ = Load()
	return int64(getInt("ID_NODE", -1))
}

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	// Process environment wins over files.
	for key := range loaded {
		if v, ok := os.LookupEnv(key); ok {
			loaded[key] = strings.TrimSpace(v)
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		switch v := val.(type) {
		case string:
			out[k] = strings.TrimSpace(v)
		case float64:
			out[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(v)
		}
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		out[key] = strings.Trim(strings.TrimSpace(value), `"'`)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}

	return fallback
}

// getRaw is get for keys where an explicit empty value means "disabled".
func getRaw(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value, ok := values[key]; ok {
		return strings.TrimSpace(value)
	}
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(get(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(get(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a key for the rest of the process. Tests and CLI flags use it.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
