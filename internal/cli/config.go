package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marcusdavidalo/anychargen"
)

// FileConfig is the optional YAML config file. Zero values leave defaults in place.
type FileConfig struct {
	BatchSize       int           `yaml:"batch_size"`
	YieldDelay      time.Duration `yaml:"yield_delay"`
	MaxCombinations uint64        `yaml:"max_combinations"`
	MaxLength       int           `yaml:"max_length"`
	Sort            bool          `yaml:"sort"`
	Output          string        `yaml:"output"`
	Addr            string        `yaml:"addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// settings is the merged result of defaults, config file and flags.
type settings struct {
	batchSize       int
	yieldDelay      time.Duration
	maxCombinations uint64
	maxLength       int
	sort            bool
	output          string
	addr            string
	allowedOrigins  []string
}

func defaultSettings() settings {
	return settings{
		batchSize:  anychargen.DefaultBatchSize,
		yieldDelay: anychargen.DefaultYieldDelay,
		maxLength:  anychargen.DefaultMaxLength,
		output:     "-",
		addr:       ":8080",
	}
}

// LoadFile reads a YAML config file. Unknown keys are rejected.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// apply overlays the non-zero values of fc.
func (s *settings) apply(fc FileConfig) {
	if fc.BatchSize != 0 {
		s.batchSize = fc.BatchSize
	}
	if fc.YieldDelay != 0 {
		s.yieldDelay = fc.YieldDelay
	}
	if fc.MaxCombinations != 0 {
		s.maxCombinations = fc.MaxCombinations
	}
	if fc.MaxLength != 0 {
		s.maxLength = fc.MaxLength
	}
	if fc.Sort {
		s.sort = true
	}
	if fc.Output != "" {
		s.output = fc.Output
	}
	if fc.Addr != "" {
		s.addr = fc.Addr
	}
	if len(fc.AllowedOrigins) > 0 {
		s.allowedOrigins = fc.AllowedOrigins
	}
}

func (s settings) schedulerOptions() []anychargen.Option {
	return []anychargen.Option{
		anychargen.WithBatchSize(s.batchSize),
		anychargen.WithYieldDelay(s.yieldDelay),
		anychargen.WithMaxCombinations(s.maxCombinations),
		anychargen.WithMaxLength(s.maxLength),
	}
}
