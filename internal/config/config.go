// Package config loads settings from defaults, an optional config.yaml and
// NOSECATCH_* environment variables, and reloads them when the file changes.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tomz197/nosecatch/internal/distance"
	"github.com/tomz197/nosecatch/internal/filter"
	"github.com/tomz197/nosecatch/internal/game"
	"github.com/tomz197/nosecatch/internal/logging"
	"github.com/tomz197/nosecatch/internal/tracking"
)

// EnvPrefix prefixes every environment override, e.g. NOSECATCH_SERVER_SSH_PORT.
const EnvPrefix = "NOSECATCH"

// Config is the top-level configuration.
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database DatabaseConfig  `mapstructure:"database"`
	Logging  logging.Config  `mapstructure:"logging"`
	Profile  ProfileConfig   `mapstructure:"profile"`
	Audio    AudioConfig     `mapstructure:"audio"`
	Game     game.Config     `mapstructure:"game"`
	Tracking tracking.Config `mapstructure:"tracking"`
	Distance DistanceConfig  `mapstructure:"distance"`
}

// ServerConfig holds the listen addresses of the network front-ends.
type ServerConfig struct {
	SSHHost        string `mapstructure:"ssh_host"`
	SSHPort        string `mapstructure:"ssh_port"`
	HostKeyPath    string `mapstructure:"host_key"`
	WebHost        string `mapstructure:"web_host"`
	WebPort        string `mapstructure:"web_port"`
	SSHDisplayHost string `mapstructure:"ssh_display_host"`
	FPS            int    `mapstructure:"fps"`
}

// DatabaseConfig selects the leaderboard store. When disabled, scores live in memory.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// ProfileConfig locates the local player profile.
type ProfileConfig struct {
	Path string `mapstructure:"path"`
}

// AudioConfig controls the local speaker.
type AudioConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Volume  float64 `mapstructure:"volume"`
}

// DistanceConfig tunes zone classification and the in-game monitor.
type DistanceConfig struct {
	Thresholds   distance.Thresholds `mapstructure:"thresholds"`
	Debounce     time.Duration       `mapstructure:"debounce"`
	PenaltyAfter time.Duration       `mapstructure:"penalty_after"`
}

// GameConfig returns the engine settings with the tracking and distance
// sections folded in.
func (c Config) GameConfig() game.Config {
	g := c.Game
	g.Tracking = c.Tracking
	g.Monitor = distance.MonitorConfig{
		Thresholds:   c.Distance.Thresholds,
		Debounce:     c.Distance.Debounce,
		PenaltyAfter: c.Distance.PenaltyAfter,
	}
	return g
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.ssh_host", "0.0.0.0")
	v.SetDefault("server.ssh_port", "2222")
	v.SetDefault("server.host_key", ".ssh/id_ed25519")
	v.SetDefault("server.web_host", "0.0.0.0")
	v.SetDefault("server.web_port", "8080")
	v.SetDefault("server.ssh_display_host", "localhost")
	v.SetDefault("server.fps", game.DefaultFPS)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.dsn", "host=localhost user=nosecatch password=nosecatch dbname=nosecatch port=5432 sslmode=disable")

	lc := logging.DefaultConfig()
	v.SetDefault("logging.directory", lc.Directory)
	v.SetDefault("logging.level", lc.Level)
	v.SetDefault("logging.max_size", lc.MaxSize)
	v.SetDefault("logging.max_backups", lc.MaxBackups)
	v.SetDefault("logging.max_age", lc.MaxAge)
	v.SetDefault("logging.compress", lc.Compress)
	v.SetDefault("logging.console", lc.Console)

	v.SetDefault("profile.path", "nosecatch-profile.yaml")

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.volume", 0.8)

	gc := game.DefaultConfig()
	v.SetDefault("game.width", gc.Width)
	v.SetDefault("game.height", gc.Height)
	v.SetDefault("game.max_play_width", gc.MaxPlayWidth)
	v.SetDefault("game.min_radius", gc.MinRadius)
	v.SetDefault("game.hitbox_base", gc.HitboxBase)
	v.SetDefault("game.spawn_interval", gc.SpawnInterval)
	v.SetDefault("game.lives", gc.Lives)
	v.SetDefault("game.countdown_from", gc.CountdownFrom)
	v.SetDefault("game.countdown_step", gc.CountdownStep)
	v.SetDefault("game.hold_duration", gc.HoldDuration)

	setFilterDefaults(v, "tracking.position", filter.Position)
	setFilterDefaults(v, "tracking.scale", filter.Scale)

	th := distance.DefaultThresholds()
	v.SetDefault("distance.thresholds.too_far", th.TooFar)
	v.SetDefault("distance.thresholds.too_close", th.TooClose)
	v.SetDefault("distance.thresholds.too_high", th.TooHigh)
	v.SetDefault("distance.thresholds.too_low", th.TooLow)
	v.SetDefault("distance.thresholds.hysteresis_buffer", th.HysteresisBuffer)
	v.SetDefault("distance.debounce", distance.DefaultDebounce)
	v.SetDefault("distance.penalty_after", distance.DefaultPenaltyAfter)
}

func setFilterDefaults(v *viper.Viper, key string, p filter.Params) {
	v.SetDefault(key+".min_cutoff", p.MinCutoff)
	v.SetDefault(key+".beta", p.Beta)
	v.SetDefault(key+".derivative_cutoff", p.DerivativeCutoff)
}

// Loader owns the viper instance and the last successfully decoded Config.
type Loader struct {
	v   *viper.Viper
	log *zap.Logger

	mu  sync.RWMutex
	cur Config
}

// Load reads configuration. config.yaml is searched in root/config and root;
// a missing file is fine.
func Load(root string, log *zap.Logger) (*Loader, error) {
	if log == nil {
		log = zap.NewNop()
	}
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(filepath.Join(root, "config"))
	v.AddConfigPath(root)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	l := &Loader{v: v, log: log}
	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	l.cur = cfg

	if f := v.ConfigFileUsed(); f != "" {
		log.Info("configuration loaded", zap.String("file", f))
	} else {
		log.Info("configuration loaded from defaults and environment")
	}
	return l, nil
}

func (l *Loader) decode() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return cfg, nil
}

// Current returns the active configuration. Sessions read it once at start,
// so a reload applies from the next session on.
func (l *Loader) Current() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cur
}

// Watch enables hot reload of the config file. onChange, if set, receives
// every successfully decoded configuration.
func (l *Loader) Watch(onChange func(Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.log.Info("configuration file changed, reloading", zap.String("file", e.Name))
		cfg, err := l.decode()
		if err != nil {
			l.log.Error("error reloading configuration", zap.Error(err))
			return
		}
		l.mu.Lock()
		l.cur = cfg
		l.mu.Unlock()
		if onChange != nil {
			onChange(cfg)
		}
	})
	l.v.WatchConfig()
}
