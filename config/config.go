// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/nmfdata/base"
	"github.com/gorse-io/nmfdata/corrupt"
	"github.com/gorse-io/nmfdata/normalize"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

const (
	SourceSynthetic = "synthetic"
	SourceImages    = "images"
	SourceCSV       = "csv"
)

// Config is the configuration of a data preparation run.
type Config struct {
	// Seed makes every random draw reproducible. Nil means unseeded.
	Seed          *int64              `mapstructure:"seed"`
	Source        string              `mapstructure:"source" validate:"oneof=synthetic images csv"`
	Synthetic     SyntheticConfig     `mapstructure:"synthetic"`
	Images        ImagesConfig        `mapstructure:"images"`
	CSV           CSVConfig           `mapstructure:"csv"`
	Corruption    CorruptionConfig    `mapstructure:"corruption"`
	Normalization NormalizationConfig `mapstructure:"normalization"`
}

// SyntheticConfig is the configuration for low-rank matrix generation.
type SyntheticConfig struct {
	Rows     int     `mapstructure:"rows" validate:"gte=1"`
	Cols     int     `mapstructure:"cols" validate:"gte=1"`
	Rank     int     `mapstructure:"rank" validate:"gte=1"`
	NoiseStd float64 `mapstructure:"noise_std" validate:"gte=0"`
}

// ImagesConfig is the configuration for loading an image folder.
type ImagesConfig struct {
	Dir       string `mapstructure:"dir"`
	Pattern   string `mapstructure:"pattern"`
	Normalize bool   `mapstructure:"normalize"`
	// Images are resized when both Width and Height are positive.
	Width  int `mapstructure:"width" validate:"gte=0"`
	Height int `mapstructure:"height" validate:"gte=0"`
	// Number of goroutines decoding images.
	Jobs int `mapstructure:"jobs" validate:"gte=1"`
}

type CSVConfig struct {
	Path string `mapstructure:"path"`
}

// CorruptionConfig is the configuration for noise and outliers.
type CorruptionConfig struct {
	NoiseStd         float64             `mapstructure:"noise_std" validate:"gte=0"`
	ClipAtZero       bool                `mapstructure:"clip_at_zero"`
	OutlierFraction  float64             `mapstructure:"outlier_fraction" validate:"gte=0,lte=1"`
	OutlierMagnitude float64             `mapstructure:"outlier_magnitude" validate:"gt=0"`
	OutlierMode      corrupt.OutlierMode `mapstructure:"outlier_mode" validate:"oneof=add replace"`
	OutlierScale     float64             `mapstructure:"outlier_scale" validate:"gt=0"`
}

func (config *CorruptionConfig) Params() *corrupt.Params {
	return &corrupt.Params{
		NoiseStd:         config.NoiseStd,
		ClipAtZero:       config.ClipAtZero,
		OutlierFraction:  config.OutlierFraction,
		OutlierMode:      config.OutlierMode,
		OutlierMagnitude: config.OutlierMagnitude,
		OutlierScale:     config.OutlierScale,
	}
}

// NormalizationConfig is the configuration for the final rescaling.
type NormalizationConfig struct {
	Mode       normalize.Mode `mapstructure:"mode" validate:"oneof=none global_max column_max"`
	ClipAtZero bool           `mapstructure:"clip_at_zero"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Source: SourceSynthetic,
		Synthetic: SyntheticConfig{
			Rows: 100,
			Cols: 80,
			Rank: 5,
		},
		Images: ImagesConfig{
			Pattern:   ".png",
			Normalize: true,
			Jobs:      1,
		},
		Corruption: CorruptionConfig{
			ClipAtZero:       true,
			OutlierMagnitude: 10,
			OutlierMode:      corrupt.AddOutliers,
			OutlierScale:     5,
		},
		Normalization: NormalizationConfig{
			Mode:       normalize.None,
			ClipAtZero: true,
		},
	}
}

// RandomGenerator returns a generator seeded from Seed, or an unseeded one.
func (config *Config) RandomGenerator() base.RandomGenerator {
	if config.Seed == nil {
		return base.NewUnseededRandomGenerator()
	}
	return base.NewRandomGenerator(*config.Seed)
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	v.SetDefault("source", defaultConfig.Source)
	// [synthetic]
	v.SetDefault("synthetic.rows", defaultConfig.Synthetic.Rows)
	v.SetDefault("synthetic.cols", defaultConfig.Synthetic.Cols)
	v.SetDefault("synthetic.rank", defaultConfig.Synthetic.Rank)
	v.SetDefault("synthetic.noise_std", defaultConfig.Synthetic.NoiseStd)
	// [images]
	v.SetDefault("images.dir", defaultConfig.Images.Dir)
	v.SetDefault("images.pattern", defaultConfig.Images.Pattern)
	v.SetDefault("images.normalize", defaultConfig.Images.Normalize)
	v.SetDefault("images.width", defaultConfig.Images.Width)
	v.SetDefault("images.height", defaultConfig.Images.Height)
	v.SetDefault("images.jobs", defaultConfig.Images.Jobs)
	// [csv]
	v.SetDefault("csv.path", defaultConfig.CSV.Path)
	// [corruption]
	v.SetDefault("corruption.noise_std", defaultConfig.Corruption.NoiseStd)
	v.SetDefault("corruption.clip_at_zero", defaultConfig.Corruption.ClipAtZero)
	v.SetDefault("corruption.outlier_fraction", defaultConfig.Corruption.OutlierFraction)
	v.SetDefault("corruption.outlier_magnitude", defaultConfig.Corruption.OutlierMagnitude)
	v.SetDefault("corruption.outlier_mode", string(defaultConfig.Corruption.OutlierMode))
	v.SetDefault("corruption.outlier_scale", defaultConfig.Corruption.OutlierScale)
	// [normalization]
	v.SetDefault("normalization.mode", string(defaultConfig.Normalization.Mode))
	v.SetDefault("normalization.clip_at_zero", defaultConfig.Normalization.ClipAtZero)
}

// LoadConfig loads configuration from defaults, an optional file and
// environment variables prefixed with NMFDATA_. The environment overrides the
// file. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)

	// bind environment variables, e.g. NMFDATA_CORRUPTION_NOISE_STD
	v.SetEnvPrefix("nmfdata")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("seed"); err != nil {
		return nil, errors.Trace(err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "failed to read config %s", path)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(modeDecodeHook())); err != nil {
		return nil, errors.Annotate(err, "failed to parse config")
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// modeDecodeHook accepts mode names in any case.
func modeDecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		switch to {
		case reflect.TypeOf(normalize.Mode("")):
			return normalize.ParseMode(data.(string))
		case reflect.TypeOf(corrupt.OutlierMode("")):
			return corrupt.ParseOutlierMode(data.(string))
		}
		return data, nil
	}
}
