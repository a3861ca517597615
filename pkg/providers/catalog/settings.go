/*
Copyright 2025 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package catalog

import (
	"fmt"

	"github.com/spf13/viper"
)

const settingsEnvPrefix = "PLANNER"

// Settings holds the weights of the server efficiency score.
//
// score = PurchaseCPUWeight*purchase/cpu + DailyCPUWeight*daily/cpu +
//
//	PurchaseMemoryWeight*purchase/mem + DailyMemoryWeight*daily/mem
//
// A lower score ranks a model earlier in the catalog.
type Settings struct {
	PurchaseCPUWeight    float64 `json:"purchaseCPUWeight" mapstructure:"purchase_cpu_weight"`
	PurchaseMemoryWeight float64 `json:"purchaseMemoryWeight" mapstructure:"purchase_memory_weight"`
	DailyCPUWeight       float64 `json:"dailyCPUWeight" mapstructure:"daily_cpu_weight"`
	DailyMemoryWeight    float64 `json:"dailyMemoryWeight" mapstructure:"daily_memory_weight"`
}

// DefaultSettings returns the weights used when no settings file is given.
func DefaultSettings() Settings {
	return Settings{
		PurchaseCPUWeight:    0.15,
		PurchaseMemoryWeight: 0.15,
		DailyCPUWeight:       0.35,
		DailyMemoryWeight:    0.35,
	}
}

// LoadSettings reads the weights from a yaml/json/toml file. Missing keys keep their defaults,
// and PLANNER_<KEY> environment variables override the file.
func LoadSettings(name string) (Settings, error) {
	def := DefaultSettings()

	v := viper.New()
	v.SetDefault("purchase_cpu_weight", def.PurchaseCPUWeight)
	v.SetDefault("purchase_memory_weight", def.PurchaseMemoryWeight)
	v.SetDefault("daily_cpu_weight", def.DailyCPUWeight)
	v.SetDefault("daily_memory_weight", def.DailyMemoryWeight)

	v.SetEnvPrefix(settingsEnvPrefix)
	v.AutomaticEnv()

	if name != "" {
		v.SetConfigFile(name)

		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read settings file %s: %w", name, err)
		}
	}

	settings := Settings{}
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// Validate checks that no weight is negative.
func (s Settings) Validate() error {
	for name, w := range map[string]float64{
		"purchase_cpu_weight":    s.PurchaseCPUWeight,
		"purchase_memory_weight": s.PurchaseMemoryWeight,
		"daily_cpu_weight":       s.DailyCPUWeight,
		"daily_memory_weight":    s.DailyMemoryWeight,
	} {
		if w < 0 {
			return fmt.Errorf("weight %s must not be negative: %v", name, w)
		}
	}

	return nil
}

// Score returns the efficiency score of a server model.
func (s Settings) Score(cpu, mem int, purchase, daily int64) float64 {
	c, m := float64(cpu), float64(mem)
	p, d := float64(purchase), float64(daily)

	return s.PurchaseCPUWeight*p/c + s.DailyCPUWeight*d/c + s.PurchaseMemoryWeight*p/m + s.DailyMemoryWeight*d/m
}
