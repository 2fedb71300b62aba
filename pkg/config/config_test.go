package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")
	p := writeConfig(t, "name: ${SAMPLE_NAME}\n")

	cfg := sample{Port: 8080}
	if err := Load(p, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "from-env" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	p := writeConfig(t, "port: 0\n")
	cfg := sample{Port: 1}
	err := Load(p, &cfg)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("err = %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := writeConfig(t, "port: [\n")
	cfg := sample{Port: 1}
	if err := Load(p, &cfg); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadWithDefaults_MissingFile(t *testing.T) {
	cfg := sample{Name: "default", Port: 9}
	loaded, err := LoadWithDefaults(filepath.Join(t.TempDir(), "absent.yaml"), &cfg)
	if err != nil {
		t.Fatal(err)
	}
	if loaded || cfg.Name != "default" {
		t.Errorf("loaded = %v, cfg = %+v", loaded, cfg)
	}

	bad := sample{}
	if _, err := LoadWithDefaults(filepath.Join(t.TempDir(), "absent.yaml"), &bad); err == nil {
		t.Error("invalid defaults should still fail validation")
	}
}

func TestLoadWithDefaults_PresentFile(t *testing.T) {
	p := writeConfig(t, "port: 3000\n")
	cfg := sample{Port: 1}
	loaded, err := LoadWithDefaults(p, &cfg)
	if err != nil || !loaded || cfg.Port != 3000 {
		t.Errorf("loaded = %v, err = %v, cfg = %+v", loaded, err, cfg)
	}
}
