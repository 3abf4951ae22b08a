package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/jv/internal/exit"
	"github.com/jacoelho/jv/internal/stream"
)

// EnvConfigFile names the environment variable holding the default
// configuration file. The -config flag takes precedence.
const EnvConfigFile = "JV_CONFIG"

var (
	ErrNoArguments      = errors.New("no arguments provided")
	ErrNoPath           = errors.New("no path specified")
	ErrTooManyArguments = errors.New("too many arguments")
	ErrNegativeValue    = errors.New("value cannot be negative")
)

// Config represents the complete configuration for the jv tool.
type Config struct {
	// Input
	File string // empty reads stdin
	Path string

	// Engine
	BufferSize int
	Limit      int // bytes emitted (0 = unlimited)
	RateLimit  int // bytes read per second (0 = unlimited)

	// Behaviour
	Debug      bool
	JSONPath   bool
	ConfigFile string
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.BufferSize < 1 {
		return fmt.Errorf("buffer size must be at least 1, got %d", c.BufferSize)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit %w", ErrNegativeValue)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit %w", ErrNegativeValue)
	}
	return nil
}

// fileConfig mirrors the options that may be set from a YAML file.
type fileConfig struct {
	BufferSize *int  `yaml:"buffer_size"`
	Limit      *int  `yaml:"limit"`
	RateLimit  *int  `yaml:"rate_limit"`
	Debug      *bool `yaml:"debug"`
}

// loadFile decodes a YAML configuration file. Unknown keys are rejected.
func loadFile(filename string) (*fileConfig, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	defer f.Close()

	var fc fileConfig
	decoder := yaml.NewDecoder(f, yaml.DisallowUnknownField())
	if err := decoder.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	return &fc, nil
}

// apply copies file values into c for every option not set on the command
// line.
func (fc *fileConfig) apply(c *Config, set map[string]bool) {
	if fc.BufferSize != nil && !set["buffer-size"] {
		c.BufferSize = *fc.BufferSize
	}
	if fc.Limit != nil && !set["limit"] {
		c.Limit = *fc.Limit
	}
	if fc.RateLimit != nil && !set["rate-limit"] {
		c.RateLimit = *fc.RateLimit
	}
	if fc.Debug != nil && !set["debug"] {
		c.Debug = *fc.Debug
	}
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	// Suppress the default usage output since we handle it ourselves
	fs.Usage = func() {}
	// Suppress error output since we handle it ourselves
	fs.SetOutput(io.Discard)

	var (
		bufferSize = fs.Int("buffer-size", stream.DefaultBufferSize, "Size in bytes of the read buffer")
		limit      = fs.Int("limit", 0, "Maximum number of bytes written (0 for unlimited)")
		rateLimit  = fs.Int("rate-limit", 0, "Bytes read from the input per second (0 for unlimited)")
		debug      = fs.Bool("debug", false, "Trace scan decisions to stderr")
		jsonPath   = fs.Bool("jsonpath", false, "Print the equivalent JSONPath query and exit")
		configFile = fs.String("config", os.Getenv(EnvConfigFile), "Path to a YAML file with default options")
	)

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	config := &Config{
		BufferSize: *bufferSize,
		Limit:      *limit,
		RateLimit:  *rateLimit,
		Debug:      *debug,
		JSONPath:   *jsonPath,
		ConfigFile: *configFile,
	}

	switch positional := fs.Args(); len(positional) {
	case 0:
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoPath, Usage())
	case 1:
		config.Path = positional[0]
	case 2:
		config.File = positional[0]
		config.Path = positional[1]
	default:
		return nil, exit.Errorf("Error: %v: %d positional arguments\n\n%s", ErrTooManyArguments, len(positional), Usage())
	}

	if config.ConfigFile != "" {
		fc, err := loadFile(config.ConfigFile)
		if err != nil {
			return nil, exit.Errorf("Error: failed to load config file: %v\n\n%s", err, Usage())
		}

		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		fc.apply(config, set)
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `jv - extract a single value from a JSON stream

Usage: jv [options] <path>
       jv [options] <file> <path>

Reads stdin when no file is given. Strings are written without quotes,
objects and arrays byte for byte as they appear in the input.

Path syntax:
  name        object member, ends at '.' or '['
  ["name"]    object member with any characters, '\' escapes
  [N]         array element, N has no leading zeros

Options:
  --buffer-size N   Size in bytes of the read buffer (default: 2048)
  --limit N         Maximum number of bytes written (0 for unlimited)
  --rate-limit N    Bytes read from the input per second (0 for unlimited)
  --debug           Trace scan decisions to stderr
  --jsonpath        Print the equivalent JSONPath query and exit
  --config FILE     YAML file with default options (env: JV_CONFIG)
  -h, --help        Show this help message

Exit codes:
  0   value written, or path not found
  1   invalid arguments or unreadable input
  2   input file could not be opened
  3+  extraction error, see the message

Examples:
  jv dogs.json 'dogs[0].name'             # Name of the first dog
  curl -s api/items | jv 'items[2]'       # Third item from stdin
  jv --limit 64 big.json 'payload'        # At most 64 bytes of payload
  jv --jsonpath 'a["b.c"][0]'             # Prints $["a"]["b.c"][0]`
}
