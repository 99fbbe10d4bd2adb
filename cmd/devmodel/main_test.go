package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/devmodel/internal/auth"
	"github.com/nerrad567/devmodel/internal/qdev"
)

const testTopology = `
devices:
  - driver: nic
    id: net0
    bus: pci.0
    props:
      netdev: hn0
`

// writeConfig writes a config with MQTT and InfluxDB disabled, the journal
// in a temporary directory and the given machine section.
func writeConfig(t *testing.T, machine string) string {
	t.Helper()
	dir := t.TempDir()
	topo := filepath.Join(dir, "machine.yaml")
	if err := os.WriteFile(topo, []byte(testTopology), 0o600); err != nil {
		t.Fatal(err)
	}

	content := `
machine:
  name: test
  topology: ` + topo + `
  netdevs: [hn0]
` + machine + `
database:
  path: ` + filepath.Join(dir, "data", "devmodel.db") + `
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: false
influxdb:
  enabled: false
logging:
  level: error
  format: text
  output: stderr
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(configEnv, "")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, "/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestRun_InvalidConfigFromEnv(t *testing.T) {
	t.Setenv(configEnv, "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, ""); err == nil {
		t.Fatal("run() should fail when DEVMODEL_CONFIG names a missing file")
	}
}

func TestRun_JournalsBoot(t *testing.T) {
	path := writeConfig(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := run(ctx, path); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out, err := execute(t, "journal", "--config", path, "--type", "machine-ready")
	if err != nil {
		t.Fatalf("journal error = %v", err)
	}
	if !strings.Contains(out, "machine-ready") || !strings.Contains(out, "showing 1 of 1") {
		t.Errorf("journal output missing machine-ready event:\n%s", out)
	}

	out, err = execute(t, "journal", "--config", path, "--device", "net0")
	if err != nil {
		t.Fatalf("journal error = %v", err)
	}
	if !strings.Contains(out, "/pcihost.0/pci.0/nic.0") {
		t.Errorf("journal output missing net0 path:\n%s", out)
	}

	out, err = execute(t, "journal", "prune", "--config", path, "--older-than", "1h")
	if err != nil {
		t.Fatalf("journal prune error = %v", err)
	}
	if !strings.Contains(out, "pruned 0 events") {
		t.Errorf("prune output = %q, want nothing pruned", out)
	}
}

func TestQtree(t *testing.T) {
	path := writeConfig(t, `
  globals:
    - driver: led
      property: color
      value: amber
`)
	out, err := execute(t, "qtree", "--config", path)
	if err != nil {
		t.Fatalf("qtree error = %v", err)
	}
	for _, want := range []string{
		"bus: main-system-bus",
		"bus: pci.0",
		`dev: nic, id "net0"`,
		`dev-prop: color = "amber"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("qtree output missing %q:\n%s", want, out)
		}
	}
}

func TestQtreeBadGlobal(t *testing.T) {
	path := writeConfig(t, `
  globals:
    - driver: led
      property: brightness
      value: "256"
`)
	_, err := execute(t, "qtree", "--config", path)
	if err == nil || !strings.Contains(err.Error(), "building board") {
		t.Fatalf("qtree error = %v, want board failure", err)
	}
}

func TestQdm(t *testing.T) {
	out, err := execute(t, "qdm", "--config", writeConfig(t, ""))
	if err != nil {
		t.Fatalf("qdm error = %v", err)
	}
	if !strings.Contains(out, `name "nic", bus PCI`) {
		t.Errorf("qdm output missing nic:\n%s", out)
	}
}

func TestShow(t *testing.T) {
	path := writeConfig(t, "")

	out, err := execute(t, "show", "spd", "--config", path)
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.HasPrefix(out, `dev: eeprom.0, id "spd"`) {
		t.Errorf("show output = %q", out)
	}

	out, err = execute(t, "show", "/pcihost.0/pci.0/nic.0", "--json", "--config", path)
	if err != nil {
		t.Fatalf("show --json error = %v", err)
	}
	// Field values are interfaces, so only the header is decoded.
	var res struct {
		Device  string            `json:"device"`
		ID      string            `json:"id"`
		Version int               `json:"version"`
		Fields  []json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decoding show output: %v\n%s", err, out)
	}
	if res.Device != "nic.0" || res.ID != "net0" || res.Version != 2 || len(res.Fields) != 4 {
		t.Errorf("show = %s %s version %d with %d fields, want nic.0 net0 version 2 with 4 fields",
			res.Device, res.ID, res.Version, len(res.Fields))
	}

	if _, err := execute(t, "show", "ghost", "--config", path); !errors.Is(err, qdev.ErrDeviceNotFound) {
		t.Errorf("show ghost error = %v, want ErrDeviceNotFound", err)
	}
}

func TestDeviceHelp(t *testing.T) {
	path := writeConfig(t, "")

	out, err := execute(t, "device-help", "nic", "--config", path)
	if err != nil {
		t.Fatalf("device-help error = %v", err)
	}
	want := "nic.mac=macaddr\nnic.vlan=vlan\nnic.netdev=netdev\nnic.vectors=uint32\n"
	if out != want {
		t.Errorf("device-help = %q, want %q", out, want)
	}

	if _, err := execute(t, "device-help", "e1000", "--config", path); !errors.Is(err, qdev.ErrUnknownType) {
		t.Errorf("device-help e1000 error = %v, want ErrUnknownType", err)
	}
}

func TestToken(t *testing.T) {
	const secret = "token-test-secret-at-least-32-characters"
	path := writeConfig(t, "")
	t.Setenv("DEVMODEL_JWT_SECRET", "")

	if _, err := execute(t, "token", "--config", path, "--subject", "ops"); err == nil {
		t.Fatal("token without a secret should fail")
	}

	t.Setenv("DEVMODEL_JWT_SECRET", secret)
	out, err := execute(t, "token", "--config", path, "--subject", "ops", "--role", "operator", "--ttl", "10m")
	if err != nil {
		t.Fatalf("token error = %v", err)
	}
	claims, err := auth.ParseToken(strings.TrimSpace(out), secret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "ops" || claims.Role != auth.RoleOperator {
		t.Errorf("claims = %s/%s, want ops/operator", claims.Subject, claims.Role)
	}
	if d := time.Until(claims.ExpiresAt.Time); d > 10*time.Minute || d < 9*time.Minute {
		t.Errorf("token expires in %s, want about 10m", d)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"no subject", []string{"--role", "viewer"}},
		{"bad role", []string{"--subject", "ops", "--role", "root"}},
		{"short ttl", []string{"--subject", "ops", "--ttl", "30s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"token", "--config", path}, tt.args...)
			if _, err := execute(t, args...); err == nil {
				t.Error("token should fail")
			}
		})
	}
}
