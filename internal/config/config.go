package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"airdelta/internal/delta"
	"airdelta/internal/model"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when AIRDELTA_CONFIG is not set.
const DefaultPath = "config.yaml"

// Sides of a location.
const (
	SideIndoor  = "indoor"
	SideOutdoor = "outdoor"
)

// Feed kinds.
const (
	FeedThingSpeak = "thingspeak"
	FeedInfluxDB   = "influxdb"
	FeedFile       = "file"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Feed   FeedConfig   `yaml:"feed"`
	Engine EngineConfig `yaml:"engine"`

	// Fields overrides the channel field index per field type, e.g. {co2: 4}.
	Fields map[string]int `yaml:"fields"`

	Defaults DefaultsConfig `yaml:"defaults"`

	// Optional: load locations from a separate YAML (e.g. a catalog shared by
	// several deployments). Entries in Locations override the file per location.
	CatalogFile string                    `yaml:"catalog_file"`
	Locations   map[string]LocationConfig `yaml:"locations"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	Env            string   `yaml:"env"`
	StaticDir      string   `yaml:"static_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type FeedConfig struct {
	Kind       string        `yaml:"kind"`
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	MaxResults int           `yaml:"max_results"`
	Timeout    time.Duration `yaml:"timeout"`
	Dir        string        `yaml:"dir"`
	Influx     InfluxConfig  `yaml:"influx"`
}

type InfluxConfig struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
}

// EngineConfig holds engine defaults. Lag is a pointer so an explicit 0 can
// be told apart from unset.
type EngineConfig struct {
	Interval     time.Duration  `yaml:"interval"`
	Lag          *time.Duration `yaml:"lag"`
	Window       string         `yaml:"window"`
	FetchTimeout time.Duration  `yaml:"fetch_timeout"`
}

// DefaultsConfig picks what the legacy routes and bare requests use.
type DefaultsConfig struct {
	Location      string `yaml:"location"`
	IndoorSensor  string `yaml:"indoor_sensor"`
	OutdoorSensor string `yaml:"outdoor_sensor"`
	// LegacyChannel is the single channel served by /api/data/:chart_type.
	// Empty means the default location's default indoor sensor.
	LegacyChannel string `yaml:"legacy_channel"`
}

// LocationConfig maps sensor names to ThingSpeak channel ids on each side.
type LocationConfig struct {
	Name    string            `yaml:"name"`
	Indoor  map[string]string `yaml:"indoor"`
	Outdoor map[string]string `yaml:"outdoor"`
}

// Path returns the config file path from AIRDELTA_CONFIG or DefaultPath.
func Path() string {
	if p := os.Getenv("AIRDELTA_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// LoadDotEnv loads .env into the process environment if the file exists.
// Variables already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load reads path, applies environment overrides and defaults, and validates.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.CatalogFile != "" {
		catalogPath := c.CatalogFile
		if !filepath.IsAbs(catalogPath) {
			// Relative to the config file first, then to the working directory.
			cand := filepath.Join(filepath.Dir(path), catalogPath)
			if _, err := os.Stat(cand); err == nil {
				catalogPath = cand
			}
		}
		loaded, err := loadCatalogFile(catalogPath)
		if err != nil {
			return nil, err
		}
		c.Locations = MergeLocations(loaded, c.Locations)
	}
	return &c, nil
}

// ApplyEnv overlays the supported environment variables. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Port, "API_PORT")
	set(&c.Server.Env, "API_ENV")
	set(&c.Server.StaticDir, "STATIC_DIR")
	set(&c.Log.Level, "LOG_LEVEL")
	set(&c.Feed.Kind, "FEED_KIND")
	set(&c.Feed.APIKey, "THINGSPEAK_API_KEY")
	set(&c.Feed.BaseURL, "THINGSPEAK_BASE_URL")
	set(&c.Feed.Dir, "FEED_DIR")
	set(&c.Feed.Influx.URL, "INFLUXDB_URL")
	set(&c.Feed.Influx.Token, "INFLUXDB_TOKEN")
	set(&c.Feed.Influx.Org, "INFLUXDB_ORG")
	set(&c.Feed.Influx.Bucket, "INFLUXDB_BUCKET")
	if v := getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
}

// ApplyDefaults fills every unset value that has a sensible default.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "./web/dist"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Feed.Kind == "" {
		c.Feed.Kind = FeedThingSpeak
	}
	if c.Feed.Dir == "" {
		c.Feed.Dir = "./data/feeds"
	}
	if c.Engine.Interval == 0 {
		c.Engine.Interval = delta.DefaultInterval
	}
	if c.Engine.Lag == nil {
		lag := delta.DefaultLagOffset
		c.Engine.Lag = &lag
	}
	if c.Engine.Window == "" {
		c.Engine.Window = string(delta.WindowOverlap)
	}
	if c.Defaults.IndoorSensor == "" {
		c.Defaults.IndoorSensor = "main"
	}
	if c.Defaults.OutdoorSensor == "" {
		c.Defaults.OutdoorSensor = "main"
	}
	if c.Defaults.Location == "" && len(c.Locations) == 1 {
		for name := range c.Locations {
			c.Defaults.Location = name
		}
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric, got %q", c.Server.Port)
	}
	switch c.Feed.Kind {
	case FeedThingSpeak, FeedFile:
	case FeedInfluxDB:
		in := c.Feed.Influx
		if in.URL == "" || in.Token == "" || in.Org == "" || in.Bucket == "" {
			return errors.New("feed.influx requires url, token, org and bucket")
		}
	default:
		return fmt.Errorf("feed.kind must be one of thingspeak, influxdb, file; got %q", c.Feed.Kind)
	}
	if c.Engine.Interval <= 0 {
		return fmt.Errorf("engine.interval must be > 0, got %s", c.Engine.Interval)
	}
	if _, err := delta.ParseWindowPolicy(c.Engine.Window); err != nil {
		return fmt.Errorf("engine.window: %w", err)
	}
	for name, idx := range c.Fields {
		if _, err := model.ParseFieldType(name); err != nil {
			return fmt.Errorf("fields: %w", err)
		}
		if idx < 1 || idx > 8 {
			return fmt.Errorf("fields.%s must be in 1..8, got %d", name, idx)
		}
	}
	if len(c.Locations) == 0 {
		return errors.New("at least one location is required")
	}
	for name, loc := range c.Locations {
		if len(loc.Indoor) == 0 || len(loc.Outdoor) == 0 {
			return fmt.Errorf("location %q needs at least one indoor and one outdoor sensor", name)
		}
	}
	if c.Defaults.Location != "" {
		if _, ok := c.Locations[c.Defaults.Location]; !ok {
			return fmt.Errorf("defaults.location %q is not a configured location", c.Defaults.Location)
		}
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// FieldIndex resolves a field type name to its channel field index.
func (c *Config) FieldIndex(name string) (model.FieldType, int, error) {
	ft, err := model.ParseFieldType(name)
	if err != nil {
		return "", 0, err
	}
	if idx, ok := c.Fields[string(ft)]; ok {
		return ft, idx, nil
	}
	return ft, model.DefaultFieldIndex[ft], nil
}

// Channel resolves location/side/sensor to a channel id. An empty sensor
// picks the configured default sensor for that side.
func (c *Config) Channel(location, side, sensor string) (string, error) {
	loc, ok := c.Locations[location]
	if !ok {
		return "", fmt.Errorf("unknown location %q", location)
	}
	var sensors map[string]string
	switch side {
	case SideIndoor:
		sensors = loc.Indoor
		if sensor == "" {
			sensor = c.Defaults.IndoorSensor
		}
	case SideOutdoor:
		sensors = loc.Outdoor
		if sensor == "" {
			sensor = c.Defaults.OutdoorSensor
		}
	default:
		return "", fmt.Errorf("unknown side %q (allowed: indoor, outdoor)", side)
	}
	channel, ok := sensors[sensor]
	if !ok {
		return "", fmt.Errorf("location %q has no %s sensor %q", location, side, sensor)
	}
	return channel, nil
}

// LocationNames returns the configured location names, sorted.
func (c *Config) LocationNames() []string {
	out := make([]string, 0, len(c.Locations))
	for name := range c.Locations {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type catalogFileWrapper struct {
	Locations map[string]LocationConfig `yaml:"locations"`
}

func loadCatalogFile(path string) (map[string]LocationConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w catalogFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Locations, nil
}

// MergeLocations overlays override onto base. Sensors are merged per side,
// so an override can add or repoint a single sensor.
func MergeLocations(base, override map[string]LocationConfig) map[string]LocationConfig {
	out := make(map[string]LocationConfig, len(base)+len(override))
	for name, loc := range base {
		out[name] = loc
	}
	for name, o := range override {
		b, ok := out[name]
		if !ok {
			out[name] = o
			continue
		}
		if o.Name != "" {
			b.Name = o.Name
		}
		b.Indoor = mergeSensors(b.Indoor, o.Indoor)
		b.Outdoor = mergeSensors(b.Outdoor, o.Outdoor)
		out[name] = b
	}
	return out
}

func mergeSensors(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
