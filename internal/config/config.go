// Package config loads the pipeline's tunables with viper+YAML, mirroring
// the teacher's app/config/config.go loading shape but covering every row
// of the configuration table the core recognizes.
package config

import (
	"os"

	"github.com/spf13/viper"
)

// EnsembleWeights are the (token_sort, levenshtein) weights used to blend
// the two similarity signals in Phase 2 scoring.
type EnsembleWeights struct {
	TokenSort   float64 `mapstructure:"token_sort" yaml:"token_sort"`
	Levenshtein float64 `mapstructure:"levenshtein" yaml:"levenshtein"`
}

// TopKPerLevel bounds the cartesian-product breadth in Phase 3.
type TopKPerLevel struct {
	Province int `mapstructure:"province" yaml:"province"`
	District int `mapstructure:"district" yaml:"district"`
	Ward     int `mapstructure:"ward" yaml:"ward"`
}

// Config is the full set of tunables the core pipeline recognizes.
type Config struct {
	FuzzyThresholdProvince float64 `mapstructure:"fuzzy_threshold_province" yaml:"fuzzy_threshold_province"`
	FuzzyThresholdDistrict float64 `mapstructure:"fuzzy_threshold_district" yaml:"fuzzy_threshold_district"`
	FuzzyThresholdWard     float64 `mapstructure:"fuzzy_threshold_ward" yaml:"fuzzy_threshold_ward"`

	EnsembleWeights EnsembleWeights `mapstructure:"ensemble_weights" yaml:"ensemble_weights"`

	NumericKeywordBonus    float64 `mapstructure:"numeric_keyword_bonus" yaml:"numeric_keyword_bonus"`
	NumericNoKeywordPenalty float64 `mapstructure:"numeric_no_keyword_penalty" yaml:"numeric_no_keyword_penalty"`

	ExternalThreshold float64 `mapstructure:"external_threshold" yaml:"external_threshold"`
	ExternalTimeoutMs int     `mapstructure:"external_timeout_ms" yaml:"external_timeout_ms"`

	TopKPerLevel TopKPerLevel `mapstructure:"top_k_per_level" yaml:"top_k_per_level"`

	DisambiguationBand float64 `mapstructure:"disambiguation_band" yaml:"disambiguation_band"`

	NormalizationCacheSize int `mapstructure:"normalization_cache_size" yaml:"normalization_cache_size"`
	AbbreviationCacheSize  int `mapstructure:"abbreviation_cache_size" yaml:"abbreviation_cache_size"`
}

// Default returns the spec §6 defaults, compiled in so the pipeline runs
// with zero config file present.
func Default() Config {
	return Config{
		FuzzyThresholdProvince: 0.88,
		FuzzyThresholdDistrict: 0.85,
		FuzzyThresholdWard:     0.80,
		EnsembleWeights: EnsembleWeights{
			TokenSort:   0.65,
			Levenshtein: 0.35,
		},
		NumericKeywordBonus:     1.2,
		NumericNoKeywordPenalty: 0.7,
		ExternalThreshold:       0.7,
		ExternalTimeoutMs:       2000,
		TopKPerLevel: TopKPerLevel{
			Province: 3,
			District: 3,
			Ward:     5,
		},
		DisambiguationBand:     0.05,
		NormalizationCacheSize: 10000,
		AbbreviationCacheSize:  256,
	}
}

// Load reads YAML at path over the compiled-in defaults. A missing file is
// not an error: the pipeline falls back to Default() unchanged. Env vars of
// the form VNADDR_<OPTION> override top-level scalar options that the YAML
// file sets, mirroring the teacher's USE_LIBPOSTAL override pattern;
// options the file does not set are not read from the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("VNADDR")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return cfg, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
