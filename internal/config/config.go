package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// StorageLocal stores blobs on the local filesystem
	StorageLocal = "local"
	// StorageS3 stores blobs in an AWS S3 bucket
	StorageS3 = "s3"
)

// Config is the server configuration, loaded from YAML with environment
// variable overrides
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Storage struct {
		Backend string `yaml:"backend"`
		Local   struct {
			BaseDir string `yaml:"base_dir"`
		} `yaml:"local"`
		S3 struct {
			Region string `yaml:"region"`
			Bucket string `yaml:"bucket"`
		} `yaml:"s3"`
	} `yaml:"storage"`
	Auth struct {
		// Tokens maps bearer tokens to user ids for the static verifier.
		// Production deployments plug in an external verifier instead.
		Tokens map[string]string `yaml:"tokens"`
	} `yaml:"auth"`
}

// Load reads configuration from path (optional; pass "" for defaults only),
// then applies environment overrides
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Database.Path = "./imgstash.db"
	cfg.Storage.Backend = StorageLocal
	cfg.Storage.Local.BaseDir = "./uploads"

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IMGSTASH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SQLITE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("IMGSTASH_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("IMGSTASH_UPLOAD_DIR"); v != "" {
		cfg.Storage.Local.BaseDir = v
	}
	if v := os.Getenv("IMGSTASH_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("IMGSTASH_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
}

func validate(cfg *Config) error {
	switch cfg.Storage.Backend {
	case StorageLocal:
		if cfg.Storage.Local.BaseDir == "" {
			return fmt.Errorf("storage.local.base_dir is required for the local backend")
		}
	case StorageS3:
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return nil
}
