package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/cobra"
)

type testOptions struct {
	Config string `help:"Config file path"`

	Port       string   `toml:"server.port" env:"SERVER_PORT"`
	Debounce   int      `toml:"storage.debounce_ms" env:"STORAGE_DEBOUNCE_MS"`
	RedPin     string   `toml:"led.red_pin" env:"LED_RED_PIN"`
	PWMFreq    uint     `toml:"led.pwm_freq_hz" env:"LED_PWM_FREQ_HZ"`
	Gamma      float64  `toml:"led.gamma" env:"LED_GAMMA"`
	Anode      bool     `toml:"led.common_anode" env:"LED_COMMON_ANODE"`
	Repos      []string `toml:"update.mirrors" env:"UPDATE_MIRRORS"`
	NoTomlFlag string   `env:"NO_TOML"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeConfig(t, `
[server]
port = ":9000"

[storage]
debounce_ms = 2500

[led]
red_pin = "GPIO17"
pwm_freq_hz = 20000
gamma = 2.2
common_anode = true

[update]
mirrors = ["a", "b"]
`)

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.Port != ":9000" {
		t.Errorf("Port = %q, want :9000", opts.Port)
	}
	if opts.Debounce != 2500 {
		t.Errorf("Debounce = %d, want 2500", opts.Debounce)
	}
	if opts.RedPin != "GPIO17" {
		t.Errorf("RedPin = %q, want GPIO17", opts.RedPin)
	}
	if opts.PWMFreq != 20000 {
		t.Errorf("PWMFreq = %d, want 20000", opts.PWMFreq)
	}
	if opts.Gamma != 2.2 {
		t.Errorf("Gamma = %v, want 2.2", opts.Gamma)
	}
	if !opts.Anode {
		t.Error("Anode = false, want true")
	}
	if !reflect.DeepEqual(opts.Repos, []string{"a", "b"}) {
		t.Errorf("Repos = %v, want [a b]", opts.Repos)
	}
}

func TestLoadConfigFromEnvVars(t *testing.T) {
	t.Setenv("RGBNODE_SERVER_PORT", ":7000")
	t.Setenv("RGBNODE_STORAGE_DEBOUNCE_MS", "100")
	t.Setenv("RGBNODE_LED_PWM_FREQ_HZ", "400")
	t.Setenv("RGBNODE_LED_GAMMA", "1.8")
	t.Setenv("RGBNODE_LED_COMMON_ANODE", "true")
	t.Setenv("RGBNODE_UPDATE_MIRRORS", "x, y ,z")
	t.Setenv("RGBNODE_NO_TOML", "env only")

	opts := &testOptions{}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.Port != ":7000" {
		t.Errorf("Port = %q, want :7000", opts.Port)
	}
	if opts.Debounce != 100 {
		t.Errorf("Debounce = %d, want 100", opts.Debounce)
	}
	if opts.PWMFreq != 400 {
		t.Errorf("PWMFreq = %d, want 400", opts.PWMFreq)
	}
	if opts.Gamma != 1.8 {
		t.Errorf("Gamma = %v, want 1.8", opts.Gamma)
	}
	if !opts.Anode {
		t.Error("Anode = false, want true")
	}
	if !reflect.DeepEqual(opts.Repos, []string{"x", "y", "z"}) {
		t.Errorf("Repos = %v, want [x y z]", opts.Repos)
	}
	if opts.NoTomlFlag != "env only" {
		t.Errorf("NoTomlFlag = %q, want 'env only'", opts.NoTomlFlag)
	}
}

func TestLoadConfigIgnoresOtherPrefixes(t *testing.T) {
	t.Setenv("LEDCTL_SERVER_PORT", ":1")
	t.Setenv("SERVER_PORT", ":2")

	opts := &testOptions{Port: ":8090"}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if opts.Port != ":8090" {
		t.Errorf("Port = %q, want default :8090", opts.Port)
	}
}

func TestLoadConfigEnvOverridesToml(t *testing.T) {
	path := writeConfig(t, "[server]\nport = \":9000\"\n[storage]\ndebounce_ms = 2500\n")
	t.Setenv("RGBNODE_SERVER_PORT", ":7000")

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.Port != ":7000" {
		t.Errorf("Port = %q, want env value :7000", opts.Port)
	}
	if opts.Debounce != 2500 {
		t.Errorf("Debounce = %d, want TOML value 2500", opts.Debounce)
	}
}

func TestLoadConfigCLIOverridesAll(t *testing.T) {
	path := writeConfig(t, "[server]\nport = \":9000\"\n")
	t.Setenv("RGBNODE_SERVER_PORT", ":7000")

	opts := &testOptions{Config: path}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&opts.Port, "port", ":8090", "")
	if err := cmd.Flags().Set("port", ":6000"); err != nil {
		t.Fatalf("Set flag: %v", err)
	}

	if err := LoadConfig(opts, cmd); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if opts.Port != ":6000" {
		t.Errorf("Port = %q, want CLI value :6000", opts.Port)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := &testOptions{
		Config: filepath.Join(t.TempDir(), "missing.toml"),
		Port:   ":8090",
	}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("missing file should not be an error, got %v", err)
	}
	if opts.Port != ":8090" {
		t.Errorf("Port = %q, want default", opts.Port)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfig(t, "[server\nport = ")
	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err == nil {
		t.Error("expected parse error for invalid TOML")
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"Port":           "port",
		"LoggingLevel":   "logging-level",
		"LedCommonAnode": "led-common-anode",
		"LedPwmFreqHz":   "led-pwm-freq-hz",
		"LoggingAPI":     "logging-api",
		"HTTPPort":       "http-port",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetNestedValue(t *testing.T) {
	data := map[string]any{
		"led": map[string]any{
			"red_pin": "GPIO17",
			"pwm":     map[string]any{"freq": int64(100)},
		},
		"flat": "x",
	}

	if got := getNestedValue(data, "led.red_pin"); got != "GPIO17" {
		t.Errorf("led.red_pin = %v", got)
	}
	if got := getNestedValue(data, "led.pwm.freq"); got != int64(100) {
		t.Errorf("led.pwm.freq = %v", got)
	}
	if got := getNestedValue(data, "flat"); got != "x" {
		t.Errorf("flat = %v", got)
	}
	if got := getNestedValue(data, "flat.deeper"); got != nil {
		t.Errorf("flat.deeper = %v, want nil", got)
	}
	if got := getNestedValue(data, "missing.key"); got != nil {
		t.Errorf("missing.key = %v, want nil", got)
	}
}

func TestSetFieldValueOverflow(t *testing.T) {
	var small struct{ V uint8 }
	field := reflect.ValueOf(&small).Elem().Field(0)

	setFieldValue(field, int64(300))
	if small.V != 0 {
		t.Errorf("overflowing value was stored: %d", small.V)
	}
	setFieldValue(field, int64(-1))
	if small.V != 0 {
		t.Errorf("negative value was stored: %d", small.V)
	}
	setFieldValue(field, int64(200))
	if small.V != 200 {
		t.Errorf("V = %d, want 200", small.V)
	}
}

func TestSetFieldValueFromStringInvalid(t *testing.T) {
	var opts testOptions
	v := reflect.ValueOf(&opts).Elem()

	setFieldValueFromString(v.FieldByName("Debounce"), "soon")
	setFieldValueFromString(v.FieldByName("Anode"), "maybe")
	setFieldValueFromString(v.FieldByName("PWMFreq"), "-5")

	if opts.Debounce != 0 || opts.Anode || opts.PWMFreq != 0 {
		t.Errorf("invalid strings should be ignored, got %+v", opts)
	}
}

func TestLoadLoggingConfig(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "warn"
format = "json"
device = "debug"

[logging.modules]
store = "error"
`)

	cfg, err := LoadLoggingConfig(path)
	if err != nil {
		t.Fatalf("LoadLoggingConfig failed: %v", err)
	}
	if cfg.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Modules["device"] != "debug" {
		t.Errorf("device = %q, want debug", cfg.Modules["device"])
	}
	if cfg.Modules["store"] != "error" {
		t.Errorf("store = %q, want error", cfg.Modules["store"])
	}
	if _, ok := cfg.Modules["modules"]; ok {
		t.Error("modules table should not be treated as a module name")
	}
}

func TestLoadLoggingConfigDefaults(t *testing.T) {
	path := writeConfig(t, "[server]\nport = \":1\"\n")

	cfg, err := LoadLoggingConfig(path)
	if err != nil {
		t.Fatalf("LoadLoggingConfig failed: %v", err)
	}
	if cfg.Level != "info" || cfg.Format != "text" || len(cfg.Modules) != 0 {
		t.Errorf("got %+v, want defaults", cfg)
	}

	if _, err := LoadLoggingConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}
