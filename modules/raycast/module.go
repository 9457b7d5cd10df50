// Package raycast renders a raw volume data set by marching one ray per
// pixel on the CPU. The volume is only re-read when the factors that
// describe it change, so sweeps over the viewport, the step size or the
// camera angle measure rendering alone.
package raycast

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/vk/gridbench/internal/benchmark"
	"github.com/vk/gridbench/internal/configuration"
	"github.com/vk/gridbench/internal/ctxlog"
	"github.com/vk/gridbench/internal/factor"
	"github.com/vk/gridbench/internal/registry"
	"github.com/vk/gridbench/internal/variant"
)

// Name is the benchmark's registered name.
const Name = "raycast"

// Factor names.
const (
	FactorVolumeFile     = "volume_file_name"
	FactorVolumeDims     = "volume_dims"
	FactorVolumeFormat   = "volume_format"
	FactorViewportWidth  = "viewport_width"
	FactorViewportHeight = "viewport_height"
	FactorStepSize       = "step_size"
	FactorCameraAngle    = "camera_angle"
)

// volumeFactors are the factors whose change forces a reload.
var volumeFactors = []string{FactorVolumeFile, FactorVolumeDims, FactorVolumeFormat}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the benchmark with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBenchmark(New())
}

// Benchmark caches the loaded volume and the frame buffer between
// configurations.
type Benchmark struct {
	*benchmark.Base
	volume *volume
	frame  *frame
	loads  int
}

// New returns the raycast benchmark with its defaults.
func New() *Benchmark {
	r := &Benchmark{}
	r.Base = benchmark.NewBase(Name, r)
	if err := r.Require(FactorVolumeFile); err != nil {
		panic(err)
	}
	for _, f := range []factor.Factor{
		factor.Must(factor.Of(FactorVolumeDims, [3]uint32{64, 64, 64})),
		factor.Must(factor.Of(FactorVolumeFormat, "uint8")),
		factor.Must(factor.Of(FactorViewportWidth, uint32(256))),
		factor.Must(factor.Of(FactorViewportHeight, uint32(256))),
		factor.Must(factor.Of(FactorStepSize, float32(0.5))),
		factor.Must(factor.Of(FactorCameraAngle, float32(0))),
	} {
		if err := r.SetDefault(f); err != nil {
			panic(err)
		}
	}
	return r
}

// OnRun renders one frame.
func (r *Benchmark) OnRun(ctx context.Context, cfg configuration.Configuration, changed []string) (*benchmark.Result, error) {
	logger := ctxlog.FromContext(ctx)

	if r.volume == nil || slices.ContainsFunc(changed, func(name string) bool { return slices.Contains(volumeFactors, name) }) {
		path, err := configuration.Lookup[string](cfg, FactorVolumeFile)
		if err != nil {
			return nil, err
		}
		dims, err := configuration.Lookup[[3]uint32](cfg, FactorVolumeDims)
		if err != nil {
			return nil, err
		}
		format, err := configuration.Lookup[string](cfg, FactorVolumeFormat)
		if err != nil {
			return nil, err
		}
		r.volume = nil
		logger.Debug("Loading volume.", "path", path, "dims", dims, "format", format)
		if r.volume, err = loadVolume(path, dims, format); err != nil {
			return nil, err
		}
		r.loads++
	}

	cam, err := readCamera(cfg)
	if err != nil {
		return nil, err
	}
	if r.frame == nil || len(r.frame.pixels) != cam.width*cam.height {
		r.frame = &frame{pixels: make([]float32, cam.width*cam.height)}
	}
	r.frame.samples.Store(0)

	start := time.Now()
	if err := render(ctx, r.volume, cam, r.frame); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	var checksum float64
	for _, p := range r.frame.pixels {
		checksum += float64(p)
	}
	return benchmark.NewResult().
		Add("frame_ms", variant.Of(float64(elapsed.Microseconds())/1000)).
		Add("rays", variant.Of(uint64(cam.width*cam.height))).
		Add("samples", variant.Of(r.frame.samples.Load())).
		Add("checksum", variant.Of(checksum)), nil
}

func readCamera(cfg configuration.Configuration) (camera, error) {
	w, err := configuration.Lookup[uint32](cfg, FactorViewportWidth)
	if err != nil {
		return camera{}, err
	}
	h, err := configuration.Lookup[uint32](cfg, FactorViewportHeight)
	if err != nil {
		return camera{}, err
	}
	if w == 0 || h == 0 || uint64(w)*uint64(h) > 1<<26 {
		return camera{}, fmt.Errorf("viewport %dx%d out of range", w, h)
	}
	step, err := configuration.Lookup[float32](cfg, FactorStepSize)
	if err != nil {
		return camera{}, err
	}
	if !(step > 0) {
		return camera{}, fmt.Errorf("%s must be positive, got %g", FactorStepSize, step)
	}
	angle, err := configuration.Lookup[float32](cfg, FactorCameraAngle)
	if err != nil {
		return camera{}, err
	}
	return camera{
		width:  int(w),
		height: int(h),
		angle:  float64(angle) * math.Pi / 180,
		step:   float64(step),
	}, nil
}
