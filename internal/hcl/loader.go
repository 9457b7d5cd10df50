package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/gridbench/internal/config"
	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/ctxlog"
	"github.com/vk/gridbench/internal/factor"
	"github.com/vk/gridbench/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// Extension is the file extension of HCL scripts.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	vars    map[string]cty.Value
	evalCtx *hcl.EvalContext
}

// NewLoader creates a new HCL script loader. vars are exposed to factor
// expressions under the `var` object, e.g. `values = var.sizes`.
func NewLoader(vars map[string]cty.Value) *Loader {
	l := &Loader{
		vars:    vars,
		evalCtx: &hcl.EvalContext{Functions: functions()},
	}
	if len(vars) > 0 {
		l.evalCtx.Variables = map[string]cty.Value{"var": cty.ObjectVal(vars)}
	}
	return l
}

// Load parses every .hcl file under paths. Files are processed in the
// order they were found and sweeps keep their source order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, Extension)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := &config.Model{}
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, l.evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		fileModel := &config.Model{}
		for _, s := range root.Sweeps {
			sweep, err := l.translateSweep(ctx, s, file)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			fileModel.Sweeps = append(fileModel.Sweeps, sweep)
		}
		if err := model.Append(fileModel); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.", "sweeps", len(model.Sweeps))
	return model, nil
}

// translateSweep converts the HCL-specific sweep schema into the agnostic model.
func (l *Loader) translateSweep(ctx context.Context, s *Sweep, file string) (*config.Sweep, error) {
	sweep := &config.Sweep{
		Benchmark:     s.Benchmark,
		Name:          s.Name,
		Factors:       &configuration.Set{},
		OptimiseOrder: s.OptimiseOrder,
		Source:        file,
	}
	if s.SystemFactors != nil {
		sweep.SystemFactors = *s.SystemFactors
	}
	for _, f := range s.Factors {
		built, err := l.translateFactor(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("sweep %q: %w", sweep.ID(), err)
		}
		if err := sweep.Factors.AddFactor(built); err != nil {
			return nil, fmt.Errorf("sweep %q: %w", sweep.ID(), err)
		}
	}
	return sweep, nil
}

func (l *Loader) translateFactor(ctx context.Context, f *Factor) (factor.Factor, error) {
	if err := l.checkReferences(f.Values, f.Range); err != nil {
		return factor.Factor{}, fmt.Errorf("factor %q: %w", f.Name, err)
	}

	values := cty.NilVal
	if isExprDefined(ctx, f.Values, "values") {
		v, diags := f.Values.Value(l.evalCtx)
		if diags.HasErrors() {
			return factor.Factor{}, fmt.Errorf("factor %q values: %w", f.Name, diags)
		}
		values = v
	}

	var rng *config.Range
	if isExprDefined(ctx, f.Range, "range") {
		v, diags := f.Range.Value(l.evalCtx)
		if diags.HasErrors() {
			return factor.Factor{}, fmt.Errorf("factor %q range: %w", f.Name, diags)
		}
		r, err := config.RangeFromObject(v)
		if err != nil {
			return factor.Factor{}, fmt.Errorf("factor %q: %w", f.Name, err)
		}
		rng = r
	}

	return config.BuildFactor(f.Name, f.Type, values, rng)
}
