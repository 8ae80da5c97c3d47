package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/gigs/internal/gigs"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Gigs  GigsConfig        `yaml:"gigs"`
	Watch WatchConfig       `yaml:"watch"`
	Serve ServeConfig       `yaml:"serve"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Gigs.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	return c.Serve.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// GigsConfig locates the content tree and the exported document.
type GigsConfig struct {
	InputRoot  string `yaml:"input_root"`
	OutputPath string `yaml:"output_path"`
	Extension  string `yaml:"extension"`
}

// Validate validates the gigs configuration.
func (c *GigsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.InputRoot, validation.Required),
		validation.Field(&c.OutputPath, validation.Required),
		validation.Field(&c.Extension, validation.Required, validation.By(dotPrefixed)),
	)
}

// Options converts the configuration into export options.
func (c *GigsConfig) Options() gigs.Options {
	return gigs.Options{
		InputRoot:  c.InputRoot,
		OutputPath: c.OutputPath,
		Extension:  c.Extension,
	}
}

func dotPrefixed(value any) error {
	s, _ := value.(string)
	if s != "" && !strings.HasPrefix(s, ".") {
		return errors.New("must start with a dot")
	}
	return nil
}

// WatchConfig controls regeneration on content changes.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Required, validation.Min(time.Millisecond)),
	)
}

// ServeConfig controls the preview server.
type ServeConfig struct {
	Enabled     bool       `yaml:"enabled"`
	HTTP        HTTPConfig `yaml:"http"`
	AllowOrigin string     `yaml:"allow_origin"`
}

// Validate validates the serve configuration.
func (c *ServeConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelWarn,
		},
		Gigs: GigsConfig{
			InputRoot:  "src/data/gigs",
			OutputPath: "public/data/gigs.json",
			Extension:  ".mdx",
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Serve: ServeConfig{
			HTTP: HTTPConfig{
				Port: 4321,
			},
			AllowOrigin: "*",
		},
	}
}
