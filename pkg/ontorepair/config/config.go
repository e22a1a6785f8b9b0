package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/ontorepair/pkg/ontorepair/internalerr"
)

// Defaults
const (
	DefaultConfidenceThreshold = 0.7
	DefaultReasoningTimeoutMs  = 300000
	DefaultMaxInferences       = 1_000_000
)

// Options holds every recognized engine option.
type Options struct {
	ConfidenceThreshold float64  `yaml:"confidence_threshold"`
	ReasoningTimeoutMs  int      `yaml:"reasoning_timeout_ms"`
	MaxInferences       int      `yaml:"max_inferences"`
	AutoRepair          bool     `yaml:"auto_repair"`
	EnableCompletion    bool     `yaml:"enable_completion"`
	Extensions          []string `yaml:"extensions"`
	Rules               string   `yaml:"rules"` // Datalog source for the rule extension
}

// Default returns the documented defaults.
func Default() Options {
	return Options{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		ReasoningTimeoutMs:  DefaultReasoningTimeoutMs,
		MaxInferences:       DefaultMaxInferences,
		AutoRepair:          true,
		EnableCompletion:    true,
	}
}

// Timeout returns the reasoning timeout as a duration. Zero disables it.
func (o Options) Timeout() time.Duration {
	return time.Duration(o.ReasoningTimeoutMs) * time.Millisecond
}

// Validate rejects values outside their documented ranges.
func (o Options) Validate() error {
	if !(o.ConfidenceThreshold >= 0 && o.ConfidenceThreshold <= 1) {
		return fmt.Errorf("%w: confidence_threshold %v outside [0,1]", internalerr.ErrInvalidConfig, o.ConfidenceThreshold)
	}
	if o.ReasoningTimeoutMs < 0 {
		return fmt.Errorf("%w: reasoning_timeout_ms %d is negative", internalerr.ErrInvalidConfig, o.ReasoningTimeoutMs)
	}
	if o.MaxInferences < 0 {
		return fmt.Errorf("%w: max_inferences %d is negative", internalerr.ErrInvalidConfig, o.MaxInferences)
	}
	return nil
}

// Load reads options from a YAML file. Keys absent from the file keep their
// default values.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	return Parse(data)
}

// Parse decodes YAML options on top of the defaults and validates them.
func Parse(data []byte) (Options, error) {
	opts := Default()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
