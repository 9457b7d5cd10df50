package sysfactor

import "runtime"

// unknownCPU describes the processor when no model name can be read.
func unknownCPU() string {
	return runtime.GOARCH + " processor"
}
