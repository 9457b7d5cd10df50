package yaml

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// nodeToCty converts a decoded YAML node into the cty value the shared
// factor builder consumes. An absent node yields cty.NilVal.
func nodeToCty(n *yaml.Node) (cty.Value, error) {
	switch n.Kind {
	case 0:
		return cty.NilVal, nil
	case yaml.AliasNode:
		return nodeToCty(n.Alias)
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return cty.NilVal, nil
		}
		return nodeToCty(n.Content[0])
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(n.Content))
		for i, c := range n.Content {
			v, err := nodeToCty(c)
			if err != nil {
				return cty.NilVal, err
			}
			elems[i] = v
		}
		return cty.TupleVal(elems), nil
	case yaml.MappingNode:
		attrs := make(map[string]cty.Value, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeToCty(n.Content[i+1])
			if err != nil {
				return cty.NilVal, err
			}
			attrs[n.Content[i].Value] = v
		}
		return cty.ObjectVal(attrs), nil
	case yaml.ScalarNode:
		return scalarToCty(n)
	}
	return cty.NilVal, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func scalarToCty(n *yaml.Node) (cty.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return cty.NullVal(cty.DynamicPseudoType), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return cty.NilVal, err
		}
		return cty.BoolVal(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return cty.NumberIntVal(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return cty.NilVal, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return cty.NumberUIntVal(u), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return cty.NilVal, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return cty.NumberFloatVal(f), nil
	default:
		return cty.StringVal(n.Value), nil
	}
}
