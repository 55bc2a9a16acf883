package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Postgres is optional; when absent the database-backed parish source
	// and the /api/parishes endpoint are disabled.
	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Geocoder configuration for the free-text location resolver.
	Geocoder *GeocoderConfig `json:"geocoder" yaml:"geocoder"`

	// Sources configuration for the parish data source adapters.
	Sources *SourcesConfig `json:"sources" yaml:"sources"`

	// Cache configuration for the in-process result cache.
	Cache *CacheConfig `json:"cache" yaml:"cache"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// GeocoderConfig defines the forward-geocoding dependency.
type GeocoderConfig struct {
	// Base search URL of the lookup service.
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	// UserAgent identifies this client to the lookup service, which
	// requires an identifying header on every request.
	UserAgent string `json:"userAgent" yaml:"userAgent"`

	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Retry budget for geocoding calls.
	MaxRetries   int           `json:"maxRetries" yaml:"maxRetries"`
	InitialDelay time.Duration `json:"initialDelay" yaml:"initialDelay"`
}

// SourcesConfig selects and configures the parish data source adapters.
type SourcesConfig struct {
	// Provider type: "local", "masstimes", "overpass" or "postgres".
	Provider string `json:"provider" yaml:"provider"`

	Local     *LocalSourceConfig `json:"local" yaml:"local"`
	MassTimes *MassTimesConfig   `json:"masstimes" yaml:"masstimes"`
	Overpass  *OverpassConfig    `json:"overpass" yaml:"overpass"`

	// Retry budget for parish-search calls. Schedule lookups are more
	// failure-prone than geocoding and get a larger budget.
	MaxRetries   int           `json:"maxRetries" yaml:"maxRetries"`
	InitialDelay time.Duration `json:"initialDelay" yaml:"initialDelay"`
}

// LocalSourceConfig defines the static pre-geocoded dataset source.
type LocalSourceConfig struct {
	Path        string  `json:"path" yaml:"path"`
	RadiusMiles float64 `json:"radiusMiles" yaml:"radiusMiles"`
	MaxResults  int     `json:"maxResults" yaml:"maxResults"`
}

// MassTimesConfig defines the external worship-schedule provider.
type MassTimesConfig struct {
	BaseURL string        `json:"baseUrl" yaml:"baseUrl"`
	APIKey  string        `json:"apiKey" yaml:"apiKey"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// OverpassConfig defines the public map-tag query interpreter.
type OverpassConfig struct {
	Endpoint     string        `json:"endpoint" yaml:"endpoint"`
	RadiusMeters int           `json:"radiusMeters" yaml:"radiusMeters"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
}

// CacheConfig defines TTLs for the in-process result cache.
type CacheConfig struct {
	ParishTTL  time.Duration `json:"parishTtl" yaml:"parishTtl"`
	GeocodeTTL time.Duration `json:"geocodeTtl" yaml:"geocodeTtl"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: SOURCES_MASSTIMES_APIKEY -> sources.masstimes.apiKey
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Geocoder == nil {
		cfg.Geocoder = &GeocoderConfig{}
	}
	if cfg.Geocoder.BaseURL == "" {
		cfg.Geocoder.BaseURL = "https://nominatim.openstreetmap.org/search"
	}
	if cfg.Geocoder.UserAgent == "" {
		cfg.Geocoder.UserAgent = "ParishFinder/1.0"
	}
	if cfg.Geocoder.Timeout <= 0 {
		cfg.Geocoder.Timeout = 30 * time.Second
	}
	if cfg.Geocoder.MaxRetries <= 0 {
		cfg.Geocoder.MaxRetries = 2
	}
	if cfg.Geocoder.InitialDelay <= 0 {
		cfg.Geocoder.InitialDelay = 500 * time.Millisecond
	}

	if cfg.Sources == nil {
		cfg.Sources = &SourcesConfig{}
	}
	if cfg.Sources.Provider == "" {
		cfg.Sources.Provider = "local"
	}
	if cfg.Sources.MaxRetries <= 0 {
		cfg.Sources.MaxRetries = 3
	}
	if cfg.Sources.InitialDelay <= 0 {
		cfg.Sources.InitialDelay = time.Second
	}
	if cfg.Sources.Local == nil {
		cfg.Sources.Local = &LocalSourceConfig{}
	}
	if cfg.Sources.Local.Path == "" {
		cfg.Sources.Local.Path = "data/parishes.json"
	}
	if cfg.Sources.Local.RadiusMiles <= 0 {
		cfg.Sources.Local.RadiusMiles = 50
	}
	if cfg.Sources.Local.MaxResults <= 0 {
		cfg.Sources.Local.MaxResults = 100
	}
	if cfg.Sources.MassTimes == nil {
		cfg.Sources.MassTimes = &MassTimesConfig{}
	}
	if cfg.Sources.MassTimes.BaseURL == "" {
		cfg.Sources.MassTimes.BaseURL = "https://apiv4.updateparishdata.org"
	}
	if cfg.Sources.MassTimes.Timeout <= 0 {
		cfg.Sources.MassTimes.Timeout = 30 * time.Second
	}
	if cfg.Sources.Overpass == nil {
		cfg.Sources.Overpass = &OverpassConfig{}
	}
	if cfg.Sources.Overpass.Endpoint == "" {
		cfg.Sources.Overpass.Endpoint = "https://overpass-api.de/api/interpreter"
	}
	if cfg.Sources.Overpass.RadiusMeters <= 0 {
		cfg.Sources.Overpass.RadiusMeters = 25000
	}
	if cfg.Sources.Overpass.Timeout <= 0 {
		cfg.Sources.Overpass.Timeout = 30 * time.Second
	}

	if cfg.Cache == nil {
		cfg.Cache = &CacheConfig{}
	}
	if cfg.Cache.ParishTTL <= 0 {
		cfg.Cache.ParishTTL = 15 * time.Minute
	}
	if cfg.Cache.GeocodeTTL <= 0 {
		cfg.Cache.GeocodeTTL = 24 * time.Hour
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
