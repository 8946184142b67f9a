package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nakachan-ing/tsk-cli/internal/model"
	"github.com/nakachan-ing/tsk-cli/internal/util"
	"gopkg.in/yaml.v3"
)

const (
	journalFile = ".move-journal.yaml"
	lockFile    = ".tsk.lock"
)

// LoadEnv reads a .env file from the working directory, if there is one.
// Variables already set in the environment win.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func GetConfigPath() (string, error) {
	if customConfig := os.Getenv("TSK_CONFIG"); customConfig != "" {
		return expandHomeDir(customConfig), nil
	}

	var configPath string

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			configPath = filepath.Join(appData, "tsk", "config.yaml")
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to determine home directory: %w", err)
			}
			configPath = filepath.Join(homeDir, "AppData", "Roaming", "tsk", "config.yaml")
		}

	default: // macOS / Linux
		configDir, err := os.UserConfigDir()
		if err != nil {
			homeDir, homeErr := os.UserHomeDir()
			if homeErr != nil {
				return "", fmt.Errorf("failed to determine home directory: %w", homeErr)
			}
			configPath = filepath.Join(homeDir, ".tsk", "config.yaml")
			log.Printf("⚠️ Failed to get user config directory, using fallback: %s", configPath)
		} else {
			configPath = filepath.Join(configDir, "tsk", "config.yaml")
		}
	}

	return configPath, nil
}

// Expand `~` to the home directory (Windows included)
func expandHomeDir(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Printf("⚠️ Failed to get home directory: %v", err)
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// LoadConfig reads the config file, falling back to DefaultConfig when it
// does not exist yet, then applies TSK_DATA_DIR and TSK_BACKEND.
func LoadConfig() (*model.Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	config := model.DefaultConfig()
	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file (%s): %w", configPath, err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if v := os.Getenv("TSK_DATA_DIR"); v != "" {
		config.DataDir = v
	}
	if v := os.Getenv("TSK_BACKEND"); v != "" {
		config.Backend = v
	}

	config.DataDir = expandHomeDir(config.DataDir)
	config.ExportDir = expandHomeDir(config.ExportDir)

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &config, nil
}

func validateConfig(config model.Config) error {
	if strings.TrimSpace(config.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	switch config.Backend {
	case model.BackendCSV:
		if config.PendingFile == "" || config.CompletedFile == "" {
			return errors.New("pending_file and completed_file are required for the csv backend")
		}
		if config.PendingFile == config.CompletedFile {
			return errors.New("pending_file and completed_file must differ")
		}
	case model.BackendSQLite:
		if config.SQLiteFile == "" {
			return errors.New("sqlite_file is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (want csv or sqlite)", config.Backend)
	}
	return nil
}

func SaveConfig(config model.Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to generate config: %w", err)
	}
	if err := writeFileAtomic(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Open builds a Store for the backend named in config. logger may be nil.
func Open(config model.Config, logger *log.Logger) (*Store, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	dataDir := expandHomeDir(config.DataDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	opts := []Option{WithLogger(logger)}
	if config.Lock.Enable {
		timeout := time.Duration(config.Lock.TimeoutSeconds) * time.Second
		stale := time.Duration(config.Lock.StaleSeconds) * time.Second
		opts = append(opts, WithLocker(util.NewLock(filepath.Join(dataDir, lockFile), timeout, stale)))
	}

	var backend Backend
	switch config.Backend {
	case model.BackendSQLite:
		b, err := OpenSQLite(filepath.Join(dataDir, config.SQLiteFile))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		backend = b
	default:
		backend = NewCSVBackend(
			filepath.Join(dataDir, config.PendingFile),
			filepath.Join(dataDir, config.CompletedFile),
		)
		opts = append(opts, WithJournal(filepath.Join(dataDir, journalFile)))
	}

	return New(backend, opts...), nil
}
