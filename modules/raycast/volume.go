package raycast

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrVolumeSize is returned when a file does not hold exactly the voxels
// its dimensions and format imply.
var ErrVolumeSize = errors.New("volume size mismatch")

// volume holds voxel intensities normalised to [0, 1], x fastest.
type volume struct {
	dims   [3]int
	voxels []float32
}

var formats = map[string]int{
	"uint8":   1,
	"uint16":  2,
	"float32": 4,
}

// loadVolume reads a raw little-endian volume.
func loadVolume(path string, dims [3]uint32, format string) (*volume, error) {
	width, ok := formats[format]
	if !ok {
		return nil, fmt.Errorf("unknown volume format %q", format)
	}
	count := 1
	for _, d := range dims {
		if d == 0 {
			return nil, fmt.Errorf("volume dimensions must be positive, got %v", dims)
		}
		count *= int(d)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading volume: %w", err)
	}
	if len(data) != count*width {
		return nil, fmt.Errorf("%w: %s has %d bytes, %v %s needs %d", ErrVolumeSize, path, len(data), dims, format, count*width)
	}

	v := &volume{
		dims:   [3]int{int(dims[0]), int(dims[1]), int(dims[2])},
		voxels: make([]float32, count),
	}
	for i := range v.voxels {
		switch width {
		case 1:
			v.voxels[i] = float32(data[i]) / math.MaxUint8
		case 2:
			v.voxels[i] = float32(binary.LittleEndian.Uint16(data[2*i:])) / math.MaxUint16
		case 4:
			f := math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
			v.voxels[i] = min(max(f, 0), 1)
		}
	}
	return v, nil
}

// sample returns the nearest voxel to p in unit-cube coordinates.
func (v *volume) sample(p [3]float64) float32 {
	var idx [3]int
	for a := range 3 {
		i := int(p[a] * float64(v.dims[a]))
		idx[a] = min(max(i, 0), v.dims[a]-1)
	}
	return v.voxels[idx[0]+v.dims[0]*(idx[1]+v.dims[1]*idx[2])]
}
