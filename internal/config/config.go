package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultInputFile  = "input/input"
	DefaultOutputPath = "Output"
	DefaultPlotWidth  = 80
	DefaultPlotHeight = 15
	DefaultSliceAxis  = "x"
	DefaultWorkers    = 4
)

// Config is the CLI settings file (.dhyb.yaml). Flags override file values.
type Config struct {
	InputFile   string     `yaml:"input_file"`
	OutputPath  string     `yaml:"output_path"`
	Lazy        bool       `yaml:"lazy"`
	IncludeZero bool       `yaml:"include_zero"`
	Workers     int        `yaml:"workers"`
	Plot        PlotConfig `yaml:"plot"`
}

// PlotConfig carries terminal plot defaults.
type PlotConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	SliceAxis  string `yaml:"slice_axis"`
	SliceIndex int    `yaml:"slice_index"`
}

func DefaultConfig() *Config {
	return &Config{
		InputFile:  DefaultInputFile,
		OutputPath: DefaultOutputPath,
		Workers:    DefaultWorkers,
		Plot: PlotConfig{
			Width:     DefaultPlotWidth,
			Height:    DefaultPlotHeight,
			SliceAxis: DefaultSliceAxis,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
