//go:build !linux

package sysfactor

import (
	"errors"
	"runtime"
)

func installedMemory() (uint64, error) {
	return 0, errors.New("installed memory is not available on " + runtime.GOOS)
}

func cpuModel() string {
	return unknownCPU()
}
