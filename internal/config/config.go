package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// Store backend types
const (
	StoreMemory = "memory"
	StoreEtcd   = "etcd"
	StoreSQLite = "sqlite"
)

// Config contains application configuration
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Store      StoreConfig       `yaml:"store"`
	Batch      BatchConfig       `yaml:"batch"`
	Prototypes []PrototypeConfig `yaml:"prototypes" validate:"dive"`
}

// ServerConfig contains gRPC and metrics listener settings
type ServerConfig struct {
	Port        int `yaml:"port" validate:"min=1,max=65535"`
	MetricsPort int `yaml:"metrics_port" validate:"min=0,max=65535"`
}

// StoreConfig selects and configures the persistence backend
type StoreConfig struct {
	Type   string       `yaml:"type" validate:"oneof=memory etcd sqlite"`
	Etcd   EtcdConfig   `yaml:"etcd"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// EtcdConfig contains etcd connection settings
type EtcdConfig struct {
	Endpoints   []string `yaml:"endpoints"`
	DialTimeout int      `yaml:"dial_timeout" validate:"min=0"` // in seconds
}

// DialTimeoutDuration returns the dial timeout as a duration
func (c EtcdConfig) DialTimeoutDuration() time.Duration {
	return time.Duration(c.DialTimeout) * time.Second
}

// SQLiteConfig contains the SQLite database location
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// BatchConfig bounds concurrent batch provisioning
type BatchConfig struct {
	MaxWorkers int `yaml:"max_workers" validate:"min=1,max=256"`
}

// PrototypeConfig is a template seeded into the prototype registry at startup.
// Template is a virtual machine record in its canonical form.
type PrototypeConfig struct {
	Name     string         `yaml:"name" validate:"required"`
	Template map[string]any `yaml:"template" validate:"required"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        50051,
			MetricsPort: 9090,
		},
		Store: StoreConfig{
			Type: StoreMemory,
			Etcd: EtcdConfig{
				Endpoints:   []string{"localhost:2379"},
				DialTimeout: 5,
			},
			SQLite: SQLiteConfig{Path: "vmforge.db"},
		},
		Batch: BatchConfig{MaxWorkers: 4},
	}
}

// Load loads configuration from YAML file
func Load() (*Config, error) {
	config := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "vmforge.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Expand environment variables in string fields
	config.Store.Type = os.ExpandEnv(config.Store.Type)
	config.Store.SQLite.Path = os.ExpandEnv(config.Store.SQLite.Path)
	for i, ep := range config.Store.Etcd.Endpoints {
		config.Store.Etcd.Endpoints[i] = os.ExpandEnv(ep)
	}
	for i := range config.Prototypes {
		config.Prototypes[i].Name = os.ExpandEnv(config.Prototypes[i].Name)
		config.Prototypes[i].Template = normalizeMap(config.Prototypes[i].Template)
	}

	// Override with environment variables if set
	if v := os.Getenv("VMFORGE_STORE"); v != "" {
		config.Store.Type = v
	}
	if v := os.Getenv("ETCD_ENDPOINTS"); v != "" {
		config.Store.Etcd.Endpoints = splitList(v)
	}
	if v := os.Getenv("VMFORGE_SQLITE_PATH"); v != "" {
		config.Store.SQLite.Path = v
	}
	if v := os.Getenv("VMFORGE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid VMFORGE_PORT %q: %w", v, err)
		}
		config.Server.Port = port
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks field constraints and backend-specific requirements
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	switch c.Store.Type {
	case StoreEtcd:
		if len(c.Store.Etcd.Endpoints) == 0 {
			return fmt.Errorf("etcd endpoints are required (set store.etcd.endpoints or ETCD_ENDPOINTS)")
		}
	case StoreSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required (set store.sqlite.path or VMFORGE_SQLITE_PATH)")
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// normalizeMap converts the map[interface{}]interface{} values produced by
// yaml.v2 into map[string]any so templates can be handled like JSON.
func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	switch x := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case map[string]any:
		return normalizeMap(x)
	case []interface{}:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	}
	return v
}
