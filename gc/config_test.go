// ABOUTME: Tests for configuration defaults, validation and the environment loader

package gc

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"4096", 4096, false},
		{"64K", 64 * KiB, false},
		{"64KiB", 64 * KiB, false},
		{"64kb", 64 * KiB, false},
		{" 2M ", 2 * MiB, false},
		{"1G", GiB, false},
		{"", 0, true},
		{"0", 0, true},
		{"-1", 0, true},
		{"12X", 0, true},
		{"K", 0, true},
		{"99999999999999999999G", 0, true},
		{"17179869184G", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("ParseSize(%q) error = %v, want ErrInvalidConfig", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg Config)
		wantErr bool
	}{
		{
			name: "empty",
			env:  nil,
			check: func(t *testing.T, cfg Config) {
				if cfg.HeapSize != 0 || cfg.Stress || cfg.Checked {
					t.Errorf("unexpected config %+v", cfg)
				}
				if cfg.Logger.Enabled(context.Background(), slog.LevelDebug) {
					t.Error("default logger enabled at debug")
				}
			},
		},
		{
			name: "all set",
			env: map[string]string{
				EnvHeapSize: "3M",
				EnvStress:   "true",
				EnvChecked:  "1",
				EnvLogLevel: "debug",
			},
			check: func(t *testing.T, cfg Config) {
				if cfg.HeapSize != 3*MiB || !cfg.Stress || !cfg.Checked {
					t.Errorf("unexpected config %+v", cfg)
				}
				if !cfg.Logger.Enabled(context.Background(), slog.LevelDebug) {
					t.Error("logger not enabled at debug")
				}
			},
		},
		{name: "bad size", env: map[string]string{EnvHeapSize: "lots"}, wantErr: true},
		{name: "bad bool", env: map[string]string{EnvStress: "maybe"}, wantErr: true},
		{name: "bad level", env: map[string]string{EnvLogLevel: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ConfigFromEnv(func(k string) string { return tt.env[k] })
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("ConfigFromEnv() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ConfigFromEnv() error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestSpaceSplit(t *testing.T) {
	tests := []struct {
		heap, gen0, semi uint64
	}{
		{3 * KiB, KiB, 2 * KiB},
		{100, 32, 64},
		{DefaultHeapSize, 22369616, 44739232},
	}
	for _, tt := range tests {
		cfg := Config{HeapSize: tt.heap}
		if got := cfg.Gen0Size(); got != tt.gen0 {
			t.Errorf("Gen0Size(%d) = %d, want %d", tt.heap, got, tt.gen0)
		}
		if got := cfg.SemispaceSize(); got != tt.semi {
			t.Errorf("SemispaceSize(%d) = %d, want %d", tt.heap, got, tt.semi)
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"tiny heap", Config{HeapSize: 40}},
		{"unaligned base", Config{HeapSize: 3 * KiB, HeapBase: 0x1003}},
		{"negative roots", Config{HeapSize: 3 * KiB, MaxRoots: -1}},
		{"overflowing base", Config{HeapSize: 3 * KiB, HeapBase: 0xFFFF_FFFF_FFFF_FF00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewLayout(t *testing.T) {
	c, _ := newCollector(t, smallHeap, func(cfg *Config) { cfg.HeapBase = 0x4000 })

	spaces := c.Spaces()
	want := []SpaceInfo{
		{Space: Gen0, Start: 0x4000, End: 0x4400, Next: 0x4000},
		{Space: Fromspace, Start: 0x4400, End: 0x4c00, Next: 0x4400},
		{Space: Tospace, Start: 0x4c00, End: 0x5400, Next: 0x4c00},
	}
	for i := range want {
		if spaces[i] != want[i] {
			t.Errorf("space %d = %+v, want %+v", i, spaces[i], want[i])
		}
	}
	if c.Config().MaxRoots != DefaultMaxRoots {
		t.Errorf("MaxRoots default = %d", c.Config().MaxRoots)
	}
}
