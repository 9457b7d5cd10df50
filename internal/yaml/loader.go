// Package yaml provides the YAML implementation of config.Loader. Scripts
// hold a `sweeps` list with the same structure as the HCL `sweep` blocks.
package yaml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/gridbench/internal/config"
	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/ctxlog"
	"github.com/vk/gridbench/internal/factor"
	"github.com/vk/gridbench/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions of YAML scripts.
var Extensions = []string{".yaml", ".yml"}

type fileRoot struct {
	Sweeps []*sweepDoc `yaml:"sweeps"`
}

type sweepDoc struct {
	Benchmark     string       `yaml:"benchmark"`
	Name          string       `yaml:"name"`
	SystemFactors bool         `yaml:"system_factors"`
	OptimiseOrder []string     `yaml:"optimise_order"`
	Factors       []*factorDoc `yaml:"factors"`
}

type factorDoc struct {
	Name   string    `yaml:"name"`
	Type   string    `yaml:"type"`
	Values yaml.Node `yaml:"values"`
	Range  yaml.Node `yaml:"range"`
}

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML script loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .yaml and .yml file under paths.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFiles(paths, Extensions...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	model := &config.Model{}
	for _, file := range files {
		fileModel, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if err := model.Append(fileModel); err != nil {
			return nil, err
		}
	}
	logger.Debug("YAML loading complete.", "sweeps", len(model.Sweeps))
	return model, nil
}

func (l *Loader) loadFile(file string) (*config.Model, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var root fileRoot
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}

	model := &config.Model{}
	for i, doc := range root.Sweeps {
		if doc.Benchmark == "" || doc.Name == "" {
			return nil, fmt.Errorf("sweep %d: benchmark and name are required", i)
		}
		sweep := &config.Sweep{
			Benchmark:     doc.Benchmark,
			Name:          doc.Name,
			Factors:       &configuration.Set{},
			OptimiseOrder: doc.OptimiseOrder,
			SystemFactors: doc.SystemFactors,
			Source:        file,
		}
		for _, fd := range doc.Factors {
			f, err := buildFactor(fd)
			if err != nil {
				return nil, fmt.Errorf("sweep %q: %w", sweep.ID(), err)
			}
			if err := sweep.Factors.AddFactor(f); err != nil {
				return nil, fmt.Errorf("sweep %q: %w", sweep.ID(), err)
			}
		}
		if err := model.Append(&config.Model{Sweeps: []*config.Sweep{sweep}}); err != nil {
			return nil, err
		}
	}
	return model, nil
}

func buildFactor(fd *factorDoc) (factor.Factor, error) {
	values, err := nodeToCty(&fd.Values)
	if err != nil {
		return factor.Factor{}, fmt.Errorf("factor %q values: %w", fd.Name, err)
	}
	var rng *config.Range
	if fd.Range.Kind != 0 {
		obj, err := nodeToCty(&fd.Range)
		if err != nil {
			return factor.Factor{}, fmt.Errorf("factor %q range: %w", fd.Name, err)
		}
		if rng, err = config.RangeFromObject(obj); err != nil {
			return factor.Factor{}, fmt.Errorf("factor %q: %w", fd.Name, err)
		}
	}
	return config.BuildFactor(fd.Name, fd.Type, values, rng)
}
