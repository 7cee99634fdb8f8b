// ABOUTME: Collector configuration and its environment loader
// ABOUTME: Splits one heap budget between the nursery and the tenured semispaces

package gc

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/prateek/gengc/object"
)

// Size units.
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)

// Defaults used for zero Config fields.
const (
	DefaultHeapSize = 64 * MiB
	DefaultHeapBase = object.Addr(0x0000_1000_0000_0000)
	DefaultMaxRoots = 1024
	minSpaceSize    = 2 * object.WordSize
)

// Environment variables read by ConfigFromEnv.
const (
	EnvHeapSize = "GENGC_HEAP_SIZE"
	EnvStress   = "GENGC_STRESS"
	EnvChecked  = "GENGC_CHECKED"
	EnvLogLevel = "GENGC_LOG_LEVEL"
)

// Config describes a collector.
type Config struct {
	// HeapSize is the total budget. A third goes to generation 0 and each
	// generation 1 semispace gets twice the generation 0 size.
	HeapSize uint64

	// HeapBase is the first managed address
	HeapBase object.Addr

	// MaxRoots bounds the root stack
	MaxRoots int

	// Stress forces a minor collection on every allocation and a major
	// collection on every promotion
	Stress bool

	// Checked enables invariant assertions after every copy and collection
	Checked bool

	// Logger receives collector events. Nil means a text logger on stderr
	// at info level.
	Logger *slog.Logger

	// Fatal is called by the Must* entry points on unrecoverable errors.
	// Nil means log, print to stderr and exit with status 1.
	Fatal func(error)
}

func (cfg Config) withDefaults() Config {
	if cfg.HeapSize == 0 {
		cfg.HeapSize = DefaultHeapSize
	}
	if cfg.HeapBase == object.Nil {
		cfg.HeapBase = DefaultHeapBase
	}
	if cfg.MaxRoots == 0 {
		cfg.MaxRoots = DefaultMaxRoots
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if cfg.Fatal == nil {
		logger := cfg.Logger
		cfg.Fatal = func(err error) {
			logger.Error("fatal collector error", "err", err)
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	return cfg
}

// Gen0Size returns the size of generation 0 in bytes.
func (cfg Config) Gen0Size() uint64 {
	return cfg.HeapSize / 3 &^ (object.WordSize - 1)
}

// SemispaceSize returns the size of one generation 1 semispace in bytes.
func (cfg Config) SemispaceSize() uint64 {
	return 2 * cfg.Gen0Size()
}

func (cfg Config) validate() error {
	if cfg.Gen0Size() < minSpaceSize {
		return fmt.Errorf("heap size %d leaves generation 0 smaller than one object: %w", cfg.HeapSize, ErrInvalidConfig)
	}
	if !cfg.HeapBase.Aligned() {
		return fmt.Errorf("heap base %v is not word aligned: %w", cfg.HeapBase, ErrInvalidConfig)
	}
	if cfg.MaxRoots < 0 {
		return fmt.Errorf("max roots %d is negative: %w", cfg.MaxRoots, ErrInvalidConfig)
	}
	total := cfg.Gen0Size() + 2*cfg.SemispaceSize()
	if uint64(cfg.HeapBase)+total < uint64(cfg.HeapBase) {
		return fmt.Errorf("heap [%v, +%#x) overflows the address space: %w", cfg.HeapBase, total, ErrInvalidConfig)
	}
	return nil
}

// ConfigFromEnv builds a Config from environment variables looked up through
// getenv. Unset variables keep their defaults.
func ConfigFromEnv(getenv func(string) string) (Config, error) {
	var cfg Config

	if v := getenv(EnvHeapSize); v != "" {
		size, err := ParseSize(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvHeapSize, err)
		}
		cfg.HeapSize = size
	}

	for _, b := range []struct {
		name string
		dst  *bool
	}{
		{EnvStress, &cfg.Stress},
		{EnvChecked, &cfg.Checked},
	} {
		v := getenv(b.name)
		if v == "" {
			continue
		}
		on, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s=%q: %w", b.name, v, ErrInvalidConfig)
		}
		*b.dst = on
	}

	level := slog.LevelInfo
	if v := getenv(EnvLogLevel); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("%s=%q: %w", EnvLogLevel, v, ErrInvalidConfig)
		}
	}
	cfg.Logger = newLogger(os.Stderr, level)

	return cfg, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseSize parses a byte count with an optional K, M or G suffix
// (binary units, "KiB"/"KB"/"K" are all accepted).
func ParseSize(s string) (uint64, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	t = strings.TrimSuffix(t, "IB")
	t = strings.TrimSuffix(t, "B")

	mult := uint64(1)
	switch {
	case strings.HasSuffix(t, "K"):
		mult = KiB
	case strings.HasSuffix(t, "M"):
		mult = MiB
	case strings.HasSuffix(t, "G"):
		mult = GiB
	}
	if mult != 1 {
		t = t[:len(t)-1]
	}

	n, err := strconv.ParseUint(t, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("size %q: %w", s, ErrInvalidConfig)
	}
	if n > ^uint64(0)/mult {
		return 0, fmt.Errorf("size %q overflows: %w", s, ErrInvalidConfig)
	}
	return n * mult, nil
}
