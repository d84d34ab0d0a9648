package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

const defaultConfigTemplate = "PORT=5000\nSQLITE_PATH=data/derma-detect.db\nUPLOAD_PATH=uploads\nENABLE_GZIP=false\nJWT_SECRET=%s\nSESSION_SECRET=%s\n"

// InitConfig loads configuration in ascending precedence: .env file, the ini
// config file under ~/.config/derma-detect (created with generated secrets on
// first run), then process environment variables.
func InitConfig() error {
	_ = godotenv.Load()

	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := applyConfigMap(envConfigMap()); err != nil {
		return fmt.Errorf("apply environment config: %w", err)
	}

	if JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if JWTRefreshSecret == "" {
		JWTRefreshSecret = JWTSecret
	}
	if SessionSecret == "" {
		SessionSecret = JWTSecret
	}
	return nil
}

func loadConfigFile() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".config", "derma-detect", "config.ini")
	if err := ensureConfigFile(configPath); err != nil {
		return err
	}

	configMap, err := parseIniConfig(configPath)
	if err != nil {
		return err
	}

	if err := applyConfigMap(configMap); err != nil {
		return fmt.Errorf("apply config file %s: %w", configPath, err)
	}

	return nil
}

func ensureConfigFile(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory %s: %w", configDir, err)
	}

	configFile, err := os.OpenFile(configPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("create config file %s: %w", configPath, err)
	}
	defer configFile.Close()

	if _, err := configFile.WriteString(fmt.Sprintf(defaultConfigTemplate, uuid.New().String(), uuid.New().String())); err != nil {
		return fmt.Errorf("write default config file %s: %w", configPath, err)
	}

	return nil
}

func parseIniConfig(path string) (map[string]string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parse ini config %s: %w", path, err)
	}

	configMap := make(map[string]string)
	for _, section := range cfg.Sections() {
		for _, key := range section.Keys() {
			configKey := strings.ToUpper(strings.TrimSpace(key.Name()))
			if configKey == "" {
				continue
			}
			configMap[configKey] = strings.TrimSpace(key.Value())
		}
	}

	return configMap, nil
}

var configKeys = []string{
	"PORT", "SQLITE_PATH", "UPLOAD_PATH", "ENABLE_GZIP",
	"JWT_SECRET", "JWT_REFRESH_SECRET", "SESSION_SECRET",
	"REDIS_CONN_STRING", "INFERENCE_BASE_URL", "CORS_ALLOW_ORIGINS",
}

func envConfigMap() map[string]string {
	configMap := make(map[string]string)
	for _, key := range configKeys {
		if value := os.Getenv(key); value != "" {
			configMap[key] = value
		}
	}
	return configMap
}

func applyConfigMap(configMap map[string]string) error {
	if configValue, ok := configMap["SESSION_SECRET"]; ok && configValue != "" {
		SessionSecret = configValue
	}

	if configValue, ok := configMap["SQLITE_PATH"]; ok && configValue != "" {
		SQLitePath = configValue
	}

	if configValue, ok := configMap["UPLOAD_PATH"]; ok && configValue != "" {
		UploadPath = configValue
	}

	if configValue, ok := configMap["JWT_SECRET"]; ok && configValue != "" {
		JWTSecret = configValue
	}

	if configValue, ok := configMap["JWT_REFRESH_SECRET"]; ok && configValue != "" {
		JWTRefreshSecret = configValue
	}

	if configValue, ok := configMap["REDIS_CONN_STRING"]; ok && configValue != "" {
		RedisConnString = configValue
	}

	if configValue, ok := configMap["INFERENCE_BASE_URL"]; ok && configValue != "" {
		InferenceBaseURL = configValue
	}

	if configValue, ok := configMap["CORS_ALLOW_ORIGINS"]; ok && configValue != "" {
		origins := strings.Split(configValue, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		CORSAllowOrigins = origins
	}

	if configValue, ok := configMap["PORT"]; ok && configValue != "" {
		portInt, err := strconv.Atoi(configValue)
		if err != nil {
			return fmt.Errorf("invalid value for PORT: %w", err)
		}
		*Port = portInt
	}

	if configValue, ok := configMap["ENABLE_GZIP"]; ok && configValue != "" {
		enableGzipBool, err := strconv.ParseBool(configValue)
		if err != nil {
			return fmt.Errorf("invalid value for ENABLE_GZIP: %w", err)
		}
		*EnableGzip = enableGzipBool
	}

	return nil
}
