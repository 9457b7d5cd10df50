package hcl

import (
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions are callable from factor expressions, e.g.
// `values = [for i in range(4) : 1024 * pow2]` or `values = range(1, 9)`.
func functions() map[string]function.Function {
	return map[string]function.Function{
		"range":    stdlib.RangeFunc,
		"concat":   stdlib.ConcatFunc,
		"distinct": stdlib.DistinctFunc,
		"reverse":  stdlib.ReverseListFunc,
		"sort":     stdlib.SortFunc,
		"min":      stdlib.MinFunc,
		"max":      stdlib.MaxFunc,
		"upper":    stdlib.UpperFunc,
		"lower":    stdlib.LowerFunc,
		"format":   stdlib.FormatFunc,
	}
}
