package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
)

const (
	KeyAPIEndpoint = "api.endpoint"
	KeyPageSize    = "search.page_size"
	KeyDebounce    = "search.debounce"

	// EnvConfigPath overrides the settings file location.
	EnvConfigPath = "PROPERTYCTL_CONFIG"

	envPrefix      = "PROPERTYCTL"
	configFileName = "propertyctl/config.yaml"
)

var defaults = map[string]string{
	KeyAPIEndpoint: "http://localhost:5000/api",
	KeyPageSize:    strconv.Itoa(domain.DefaultPageSize),
	KeyDebounce:    "500ms",
}

// Settings are the persisted client preferences. Environment variables
// such as PROPERTYCTL_API_ENDPOINT take precedence over the file.
type Settings struct {
	v    *viper.Viper
	path string
}

func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load reads settings from $PROPERTYCTL_CONFIG or the XDG config dir.
func Load() (*Settings, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		p, err := xdg.ConfigFile(configFileName)
		if err != nil {
			return nil, fmt.Errorf("resolve settings path: %w", err)
		}
		path = p
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (*Settings, error) {
	v := newViper(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	if err := readIfExists(v); err != nil {
		return nil, err
	}
	return &Settings{v: v, path: path}, nil
}

func (s *Settings) Path() string { return s.path }

func (s *Settings) APIEndpoint() string {
	return s.v.GetString(KeyAPIEndpoint)
}

// PageSize falls back to the default when the stored value is out of range.
func (s *Settings) PageSize() int {
	n := s.v.GetInt(KeyPageSize)
	if n < 1 || n > domain.MaxPageSize {
		return domain.DefaultPageSize
	}
	return n
}

func (s *Settings) Debounce() time.Duration {
	d, err := time.ParseDuration(s.v.GetString(KeyDebounce))
	if err != nil || d < 0 {
		return 500 * time.Millisecond
	}
	return d
}

func (s *Settings) Get(key string) (string, error) {
	if _, ok := defaults[key]; !ok {
		return "", unknownKey(key)
	}
	return s.v.GetString(key), nil
}

// All returns every known key with its effective value.
func (s *Settings) All() map[string]string {
	out := make(map[string]string, len(defaults))
	for k := range defaults {
		out[k] = s.v.GetString(k)
	}
	return out
}

// Set validates value and writes it to the settings file. Only the file's
// own contents are persisted, never environment overrides.
func (s *Settings) Set(key, value string) error {
	if _, ok := defaults[key]; !ok {
		return unknownKey(key)
	}
	value = strings.TrimSpace(value)
	if err := check(key, value); err != nil {
		return err
	}

	file := newViper(s.path)
	if err := readIfExists(file); err != nil {
		return err
	}
	file.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := file.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	s.v.Set(key, value)
	return nil
}

func check(key, value string) error {
	switch key {
	case KeyAPIEndpoint:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", key, value)
		}
	case KeyPageSize:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > domain.MaxPageSize {
			return fmt.Errorf("%s must be an integer between 1 and %d, got %q", key, domain.MaxPageSize, value)
		}
	case KeyDebounce:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("%s must be a non-negative duration such as 300ms, got %q", key, value)
		}
	}
	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return v
}

func readIfExists(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("read settings: %w", err)
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys(), ", "))
}
