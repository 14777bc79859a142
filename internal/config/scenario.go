package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario scripts a headless run: place catalog defects on a target image
// with explicit transforms, then export the result.
type Scenario struct {
	Version string       `yaml:"version"`
	Target  string       `yaml:"target"` // path to the base image
	Defects []DefectSpec `yaml:"defects"`
	Strokes []StrokeSpec `yaml:"strokes"`
}

// DefectSpec is one scripted placement.
type DefectSpec struct {
	Type     string  `yaml:"type"` // catalog type directory
	Name     string  `yaml:"name"` // entry name; empty picks the first
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Scale    float64 `yaml:"scale"`    // 0 means 1.0
	Rotation float64 `yaml:"rotation"` // degrees
	Opacity  float64 `yaml:"opacity"`  // 0 means the kind default
}

// StrokeSpec is one scripted paint stroke: a polyline of canvas points.
type StrokeSpec struct {
	Radius int         `yaml:"radius"`
	Erase  bool        `yaml:"erase"`
	Points []PointSpec `yaml:"points"`
}

// PointSpec is one stroke vertex.
type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("cannot parse scenario %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks the scenario for fields that cannot be defaulted.
func (s *Scenario) Validate() error {
	if s.Target == "" {
		return fmt.Errorf("target image is required")
	}
	for i, d := range s.Defects {
		if d.Type == "" {
			return fmt.Errorf("defect %d: type is required", i)
		}
	}
	for i, st := range s.Strokes {
		if len(st.Points) == 0 {
			return fmt.Errorf("stroke %d: at least one point is required", i)
		}
	}
	return nil
}
