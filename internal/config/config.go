package config

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/climate-risk-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Assessment settings.
	AssessWorkers        int
	DefaultInsuranceRate float64
	CompoundWeight       float64
	TopRisks             int
	CorrelationPolicy    string

	// HazardConfigPath points at an optional YAML file of per-hazard
	// overrides, loaded into HazardOverrides.
	HazardConfigPath string
	HazardOverrides  map[domain.RiskType]domain.ProfileOverride
}

const maxAssessWorkers = 64

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	workers, err := parseInt("ASSESS_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	if workers < 1 || workers > maxAssessWorkers {
		return nil, fmt.Errorf("invalid ASSESS_WORKERS: must be between 1 and %d", maxAssessWorkers)
	}

	insurance, err := parseFloat("DEFAULT_INSURANCE_RATE", 0)
	if err != nil {
		return nil, err
	}
	if insurance < 0 || insurance > 1 {
		return nil, errors.New("invalid DEFAULT_INSURANCE_RATE: must be in [0, 1]")
	}

	compoundWeight, err := parseFloat("COMPOUND_WEIGHT", domain.DefaultCompoundWeight)
	if err != nil {
		return nil, err
	}
	if compoundWeight < 0 {
		return nil, errors.New("invalid COMPOUND_WEIGHT: must be >= 0")
	}

	topRisks, err := parseInt("TOP_RISKS", domain.DefaultTopRisks)
	if err != nil {
		return nil, err
	}
	if topRisks < 1 {
		return nil, errors.New("invalid TOP_RISKS: must be >= 1")
	}

	policy := sharedcfg.EnvOrDefault("CORRELATION_POLICY", domain.CorrelationMin)
	if _, err := domain.CorrelationByName(policy); err != nil {
		return nil, fmt.Errorf("invalid CORRELATION_POLICY: %w", err)
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "site-risk-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "site-risk-assessments"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "climate-risk-etl"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		AssessWorkers:        workers,
		DefaultInsuranceRate: insurance,
		CompoundWeight:       compoundWeight,
		TopRisks:             topRisks,
		CorrelationPolicy:    policy,
		HazardConfigPath:     os.Getenv("HAZARD_CONFIG_PATH"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	if cfg.HazardConfigPath != "" {
		overrides, err := LoadHazardOverrides(cfg.HazardConfigPath)
		if err != nil {
			return nil, fmt.Errorf("invalid HAZARD_CONFIG_PATH: %w", err)
		}
		cfg.HazardOverrides = overrides
	}

	return cfg, nil
}

// hazardFile is the YAML layout of HAZARD_CONFIG_PATH.
type hazardFile struct {
	Hazards map[string]domain.ProfileOverride `yaml:"hazards"`
}

// LoadHazardOverrides reads a hazard override file and checks that it applies
// cleanly to the default registry.
func LoadHazardOverrides(path string) (map[domain.RiskType]domain.ProfileOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hazard config: %w", err)
	}

	var f hazardFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse hazard config %s: %w", path, err)
	}

	overrides := make(map[domain.RiskType]domain.ProfileOverride, len(f.Hazards))
	seen := make(map[domain.RiskType]string, len(f.Hazards))
	for _, name := range slices.Sorted(maps.Keys(f.Hazards)) {
		rt, err := domain.ParseRiskType(name)
		if err != nil {
			return nil, fmt.Errorf("hazard config %s: %w", path, err)
		}
		if prev, dup := seen[rt]; dup {
			return nil, fmt.Errorf("hazard config %s: hazards %q and %q both name %s", path, prev, name, rt)
		}
		seen[rt] = name
		overrides[rt] = f.Hazards[name]
	}

	if _, err := domain.DefaultRegistry().WithOverrides(overrides); err != nil {
		return nil, fmt.Errorf("hazard config %s: %w", path, err)
	}
	return overrides, nil
}

func parseInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}

func parseFloat(name string, def float64) (float64, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s: must be finite", name)
	}
	return f, nil
}
