package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/csheth/leadcalc/internal/controller"
)

const (
	envConfigPath = "LEADCALC_CONFIG"
	envEndpoint   = "LEADCALC_ENDPOINT"
	envMode       = "LEADCALC_MODE"
	envTimeout    = "LEADCALC_TIMEOUT"

	defaultTimeout = 15 * time.Second
)

// File mirrors the YAML configuration file.
type File struct {
	Endpoint string `yaml:"endpoint"`
	Mode     string `yaml:"mode"`
	Timeout  string `yaml:"timeout"`
}

// Settings is the resolved runtime configuration.
type Settings struct {
	Endpoint string
	Mode     controller.Mode
	Timeout  time.Duration
}

// Overrides come from CLI flags; empty values leave lower layers in place.
type Overrides struct {
	Endpoint string
	Mode     string
	Timeout  time.Duration
}

// Load resolves settings from the YAML file at path (or $LEADCALC_CONFIG),
// then environment variables, then overrides.
func Load(path string, overrides Overrides) (Settings, error) {
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	file, err := readFile(path)
	if err != nil {
		return Settings{}, err
	}
	applyEnv(&file)
	if overrides.Endpoint != "" {
		file.Endpoint = overrides.Endpoint
	}
	if overrides.Mode != "" {
		file.Mode = overrides.Mode
	}
	if overrides.Timeout > 0 {
		file.Timeout = overrides.Timeout.String()
	}
	return resolve(file)
}

func readFile(path string) (File, error) {
	var file File
	if path == "" {
		return file, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parse config %s: %w", path, err)
	}
	return file, nil
}

func applyEnv(file *File) {
	if v := os.Getenv(envEndpoint); v != "" {
		file.Endpoint = v
	}
	if v := os.Getenv(envMode); v != "" {
		file.Mode = v
	}
	if v := os.Getenv(envTimeout); v != "" {
		file.Timeout = v
	}
}

func resolve(file File) (Settings, error) {
	var errs []error
	settings := Settings{
		Endpoint: strings.TrimRight(strings.TrimSpace(file.Endpoint), "/"),
		Timeout:  defaultTimeout,
	}
	mode, err := controller.ParseMode(file.Mode)
	if err != nil {
		errs = append(errs, err)
	}
	settings.Mode = mode
	if strings.TrimSpace(file.Timeout) != "" {
		timeout, err := time.ParseDuration(strings.TrimSpace(file.Timeout))
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("invalid timeout %q: %w", file.Timeout, err))
		case timeout <= 0:
			errs = append(errs, fmt.Errorf("timeout must be positive, got %s", timeout))
		default:
			settings.Timeout = timeout
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Settings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// Marshal renders settings back to YAML, used by `leadcalc config`.
func (s Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(File{
		Endpoint: s.Endpoint,
		Mode:     s.Mode.String(),
		Timeout:  s.Timeout.String(),
	})
}
