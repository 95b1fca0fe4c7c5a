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

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
)

// Validate checks field ranges and that the selected source has its input.
func (config *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
	})
	if err := validate.Struct(config); err != nil {
		return errors.NotValidf("config: %v", err)
	}
	switch config.Source {
	case SourceImages:
		if config.Images.Dir == "" {
			return errors.NotValidf("config: images.dir is required for source %q", config.Source)
		}
	case SourceCSV:
		if config.CSV.Path == "" {
			return errors.NotValidf("config: csv.path is required for source %q", config.Source)
		}
	}
	return nil
}
