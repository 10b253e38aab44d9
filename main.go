package main

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/rgbnode/cmd"
	"github.com/smazurov/rgbnode/internal/config"
	"github.com/smazurov/rgbnode/internal/logging"
	"github.com/smazurov/rgbnode/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Storage settings
	StorageDir        string `help:"Directory holding profiles.dat and config.dat" default:"data" toml:"storage.dir" env:"STORAGE_DIR"`
	StorageDebounceMs int    `help:"Quiet period before a changed record is written, in milliseconds" default:"5000" toml:"storage.debounce_ms" env:"STORAGE_DEBOUNCE_MS"`

	// LED strip settings
	LedDriver      string `help:"Strip driver (pwm, noop)" default:"pwm" toml:"led.driver" env:"LED_DRIVER"`
	LedRedPin      string `help:"Red channel pin" default:"GPIO17" toml:"led.red_pin" env:"LED_RED_PIN"`
	LedGreenPin    string `help:"Green channel pin" default:"GPIO27" toml:"led.green_pin" env:"LED_GREEN_PIN"`
	LedBluePin     string `help:"Blue channel pin" default:"GPIO22" toml:"led.blue_pin" env:"LED_BLUE_PIN"`
	LedPwmFreqHz   int    `help:"PWM frequency in Hz" default:"10000" toml:"led.pwm_freq_hz" env:"LED_PWM_FREQ_HZ"`
	LedCommonAnode bool   `help:"Strip is wired common-anode" default:"false" toml:"led.common_anode" env:"LED_COMMON_ANODE"`
	LedStatusLed   string `help:"Board status LED under /sys/class/leds (empty detects, none disables)" default:"" toml:"led.status_led" env:"LED_STATUS_LED"`

	// Loop settings
	LoopIntervalMs int `help:"Main loop interval in milliseconds" default:"1" toml:"loop.interval_ms" env:"LOOP_INTERVAL_MS"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Metrics settings
	MetricsEnabled bool `help:"Serve Prometheus metrics and the stats stream" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Update settings
	UpdateRepository string `help:"GitHub repository for self update (empty disables)" default:"smazurov/rgbnode" toml:"update.repository" env:"UPDATE_REPOSITORY"`
	UpdatePrerelease bool   `help:"Offer prereleases" default:"false" toml:"update.prerelease" env:"UPDATE_PRERELEASE"`

	// NATS settings
	NatsEnabled bool   `help:"Serve the form over NATS" default:"false" toml:"nats.enabled" env:"NATS_ENABLED"`
	NatsURL     string `help:"External NATS server URL (empty runs an embedded server)" default:"" toml:"nats.url" env:"NATS_URL"`
	NatsHost    string `help:"Embedded NATS server host" default:"127.0.0.1" toml:"nats.host" env:"NATS_HOST"`
	NatsPort    int    `help:"Embedded NATS server port" default:"4222" toml:"nats.port" env:"NATS_PORT"`
	NatsPrefix  string `help:"Subject prefix" default:"rgbnode" toml:"nats.prefix" env:"NATS_PREFIX"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingDevice  string `help:"Device logging level" default:"info" toml:"logging.device" env:"LOGGING_DEVICE"`
	LoggingEngine  string `help:"Apply engine logging level" default:"info" toml:"logging.engine" env:"LOGGING_ENGINE"`
	LoggingStore   string `help:"Record store logging level" default:"info" toml:"logging.store" env:"LOGGING_STORE"`
	LoggingLed     string `help:"LED driver logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingLoop    string `help:"Main loop logging level" default:"info" toml:"logging.loop" env:"LOGGING_LOOP"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP    string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingUpdater string `help:"Updater logging level" default:"info" toml:"logging.updater" env:"LOGGING_UPDATER"`
	LoggingNats    string `help:"NATS logging level" default:"info" toml:"logging.nats" env:"LOGGING_NATS"`
}

func (o *Options) loggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"device":  o.LoggingDevice,
			"engine":  o.LoggingEngine,
			"store":   o.LoggingStore,
			"led":     o.LoggingLed,
			"loop":    o.LoggingLoop,
			"api":     o.LoggingAPI,
			"http":    o.LoggingHTTP,
			"updater": o.LoggingUpdater,
			"nats":    o.LoggingNats,
		},
	}
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Runs for subcommands too, so only cheap setup happens here
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(opts.loggingConfig())

		d := newDaemon(opts)

		hooks.OnStart(d.run)
		hooks.OnStop(d.stop)
	})

	root := cli.Root()
	root.Use = "rgbnode"
	root.Short = "RGB LED strip controller"
	root.Version = version.Get().String()

	root.AddCommand(cmd.CreateProfilesCmd())
	root.AddCommand(cmd.CreateUpdateCmd())

	cli.Run()
}
