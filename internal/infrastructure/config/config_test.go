package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
machine:
  name: "bench"
  topology: "/etc/devmodel/machine.yaml"
  globals:
    - driver: nic
      property: vectors
      value: "4"
  netdevs: ["hn0", "hn1"]
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
control:
  enabled: true
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Machine.Name != "bench" {
		t.Errorf("Machine.Name = %q, want %q", cfg.Machine.Name, "bench")
	}

	if len(cfg.Machine.Globals) != 1 || cfg.Machine.Globals[0].Value != "4" {
		t.Errorf("Machine.Globals = %+v, want one nic.vectors=4 entry", cfg.Machine.Globals)
	}

	if len(cfg.Machine.Netdevs) != 2 {
		t.Errorf("Machine.Netdevs = %v, want 2 entries", cfg.Machine.Netdevs)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	// Defaults survive for keys the file leaves out.
	if cfg.Control.QueueSize != 16 {
		t.Errorf("Control.QueueSize = %d, want default 16", cfg.Control.QueueSize)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
machine:
  name: ""
database:
  path: "/tmp/test.db"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "machine.name") {
		t.Errorf("Load() error = %v, want machine.name failure", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "missing machine name", mutate: func(c *Config) { c.Machine.Name = "" }, wantErr: true},
		{name: "global without property", mutate: func(c *Config) {
			c.Machine.Globals = []GlobalConfig{{Driver: "nic", Value: "1"}}
		}, wantErr: true},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: true},
		{name: "invalid broker port", mutate: func(c *Config) {
			c.MQTT.Enabled = true
			c.MQTT.Broker.Port = 70000
		}, wantErr: true},
		{name: "broker port ignored when disabled", mutate: func(c *Config) { c.MQTT.Broker.Port = 0 }},
		{name: "control without mqtt", mutate: func(c *Config) { c.Control.Enabled = true }, wantErr: true},
		{name: "control with mqtt", mutate: func(c *Config) {
			c.Control.Enabled = true
			c.MQTT.Enabled = true
		}},
		{name: "empty queue", mutate: func(c *Config) { c.Control.QueueSize = 0 }, wantErr: true},
		{name: "influxdb without url", mutate: func(c *Config) {
			c.InfluxDB.Enabled = true
			c.InfluxDB.Org = "org"
			c.InfluxDB.Bucket = "bucket"
		}, wantErr: true},
		{name: "influxdb complete", mutate: func(c *Config) {
			c.InfluxDB = InfluxDBConfig{Enabled: true, URL: "http://localhost:8086", Org: "org", Bucket: "bucket"}
		}},
		{name: "api without secret", mutate: func(c *Config) { c.API.Enabled = true }, wantErr: true},
		{name: "api with short secret", mutate: func(c *Config) {
			c.API.Enabled = true
			c.Security.JWT.Secret = "short"
		}, wantErr: true},
		{name: "api complete", mutate: func(c *Config) {
			c.API.Enabled = true
			c.Security.JWT.Secret = strings.Repeat("k", 32)
		}},
		{name: "api tls without files", mutate: func(c *Config) {
			c.API.Enabled = true
			c.API.TLS.Enabled = true
			c.Security.JWT.Secret = strings.Repeat("k", 32)
		}, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "chatty" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetRequestTimeout(t *testing.T) {
	cfg := &Config{Control: ControlConfig{RequestTimeout: 7}}

	if got := cfg.GetRequestTimeout().Seconds(); got != 7 {
		t.Errorf("GetRequestTimeout() = %v, want 7", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("DEVMODEL_MACHINE_TOPOLOGY", "/custom/machine.yaml")
	t.Setenv("DEVMODEL_DATABASE_PATH", "/custom/path.db")
	t.Setenv("DEVMODEL_MQTT_HOST", "mqtt.example.com")
	t.Setenv("DEVMODEL_MQTT_USERNAME", "testuser")
	t.Setenv("DEVMODEL_MQTT_PASSWORD", "testpass")
	t.Setenv("DEVMODEL_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("DEVMODEL_LOG_LEVEL", "debug")
	t.Setenv("DEVMODEL_JWT_SECRET", "jwt-secret")

	applyEnvOverrides(cfg)

	checks := []struct {
		name, got, want string
	}{
		{"Machine.Topology", cfg.Machine.Topology, "/custom/machine.yaml"},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Logging.Level", cfg.Logging.Level, "debug"},
		{"Security.JWT.Secret", cfg.Security.JWT.Secret, "jwt-secret"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("DEVMODEL_DATABASE_PATH", "/env/devmodel.db")

	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if cfg.Database.Path != "/env/devmodel.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.MQTT.Enabled || cfg.InfluxDB.Enabled || cfg.Control.Enabled {
		t.Error("external services should be disabled by default")
	}
}
