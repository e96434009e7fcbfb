package main

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"clifgo/hourly"
	"clifgo/wide"
)

// runConfig is the YAML shape for -config: cohort selection, optional
// table/category filters, and the hourly aggregation spec, so a run can be
// scripted without a flag per field.
type runConfig struct {
	Cohort struct {
		Mode       string   `koanf:"mode"` // explicit | sample | all
		IDs        []string `koanf:"ids"`
		SampleSize int      `koanf:"sample_size"`
	} `koanf:"cohort"`
	OptionalTables  []string            `koanf:"optional_tables"`
	CategoryFilters map[string][]string `koanf:"category_filters"`
	Aggregation     map[string][]string `koanf:"aggregation"`
	VasoTargetUnit  string              `koanf:"vaso_target_unit"`
}

func loadRunConfig(path string) (*runConfig, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg := &runConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *runConfig) cohort() wide.Cohort {
	switch c.Cohort.Mode {
	case "explicit":
		return wide.Cohort{Mode: wide.CohortExplicit, IDs: c.Cohort.IDs}
	case "sample":
		return wide.Cohort{Mode: wide.CohortSample, SampleSize: c.Cohort.SampleSize}
	default:
		return wide.Cohort{Mode: wide.CohortAll}
	}
}

func (c *runConfig) aggregationSpec() hourly.Spec {
	spec := hourly.Spec{}
	for method, cols := range c.Aggregation {
		spec[hourly.Method(method)] = cols
	}
	return spec
}
