package raycast

import (
	"context"
	"math"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

type camera struct {
	width, height int
	angle         float64 // radians around the y axis
	step          float64 // in voxels
}

// frame is a maximum intensity projection of the volume.
type frame struct {
	pixels  []float32
	samples atomic.Uint64
}

// extent is the side of the image plane, enough to cover the cube's diagonal.
const extent = 1.75

// render casts one orthographic ray per pixel through the unit cube,
// rendering rows in parallel.
func render(ctx context.Context, v *volume, cam camera, fb *frame) error {
	sin, cos := math.Sincos(cam.angle)
	dir := [3]float64{sin, 0, cos}
	right := [3]float64{cos, 0, -sin}
	maxDim := float64(max(v.dims[0], v.dims[1], v.dims[2]))
	dt := cam.step / maxDim

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < cam.height; y++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vy := ((float64(y)+0.5)/float64(cam.height) - 0.5) * extent
			var rowSamples uint64
			for x := 0; x < cam.width; x++ {
				ux := ((float64(x)+0.5)/float64(cam.width) - 0.5) * extent
				var origin [3]float64
				for a := range 3 {
					origin[a] = 0.5 + right[a]*ux - dir[a]
				}
				origin[1] += vy

				var best float32
				if t0, t1, hit := intersectUnitCube(origin, dir); hit {
					for t := t0; t <= t1; t += dt {
						p := [3]float64{origin[0] + dir[0]*t, origin[1] + dir[1]*t, origin[2] + dir[2]*t}
						best = max(best, v.sample(p))
						rowSamples++
					}
				}
				fb.pixels[y*cam.width+x] = best
			}
			fb.samples.Add(rowSamples)
			return nil
		})
	}
	return g.Wait()
}

// intersectUnitCube clips the ray o + t*d against [0, 1]^3 with the slab
// method.
func intersectUnitCube(o, d [3]float64) (t0, t1 float64, hit bool) {
	t0, t1 = math.Inf(-1), math.Inf(1)
	for a := range 3 {
		if d[a] == 0 {
			if o[a] < 0 || o[a] > 1 {
				return 0, 0, false
			}
			continue
		}
		ta, tb := (0-o[a])/d[a], (1-o[a])/d[a]
		if ta > tb {
			ta, tb = tb, ta
		}
		t0, t1 = max(t0, ta), min(t1, tb)
	}
	return max(t0, 0), t1, t1 >= max(t0, 0)
}
