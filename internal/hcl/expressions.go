package hcl

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// traversalKey generates a stable, canonical string representation for an
// hcl.Traversal, e.g. `var.sizes`.
func traversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// references collects the unique variable traversals and function calls of
// exprs. Both results are sorted.
func references(exprs ...hcl.Expression) ([]hcl.Traversal, []string) {
	traversals := make(map[string]hcl.Traversal)
	calls := make(map[string]struct{})

	for _, expr := range exprs {
		if expr == nil {
			continue
		}
		for _, t := range expr.Variables() {
			traversals[traversalKey(t)] = t
		}
		// Variables() does not report function calls.
		if syntaxExpr, ok := expr.(hclsyntax.Expression); ok {
			hclsyntax.VisitAll(syntaxExpr, func(n hclsyntax.Node) hcl.Diagnostics {
				if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
					calls[call.Name] = struct{}{}
				}
				return nil
			})
		}
	}

	keys := slices.Sorted(maps.Keys(traversals))
	out := make([]hcl.Traversal, 0, len(keys))
	for _, k := range keys {
		out = append(out, traversals[k])
	}
	names := make([]string, 0, len(calls))
	for name := range calls {
		names = append(names, name)
	}
	sort.Strings(names)
	return out, names
}

// checkReferences reports references that cannot be resolved: anything
// outside `var`, undefined variables and unknown functions.
func (l *Loader) checkReferences(exprs ...hcl.Expression) error {
	traversals, calls := references(exprs...)
	for _, t := range traversals {
		if t.RootName() != "var" {
			return fmt.Errorf("unknown reference %s: only var.<name> can be referenced", traversalKey(t))
		}
		if len(t) < 2 {
			return fmt.Errorf("%s must name a variable, e.g. var.size", traversalKey(t))
		}
		attr, ok := t[1].(hcl.TraverseAttr)
		if !ok {
			return fmt.Errorf("%s must name a variable, e.g. var.size", traversalKey(t))
		}
		if _, ok := l.vars[attr.Name]; !ok {
			return fmt.Errorf("undefined variable var.%s: pass it with -var %s=<value>", attr.Name, attr.Name)
		}
	}
	for _, name := range calls {
		if _, ok := l.evalCtx.Functions[name]; !ok {
			return fmt.Errorf("unknown function %q (available: %v)", name, slices.Sorted(maps.Keys(l.evalCtx.Functions)))
		}
	}
	return nil
}
