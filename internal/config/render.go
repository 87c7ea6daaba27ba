package config

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Vars binds template variables to Go values. Supported value types are
// those gocty can imply a cty.Type for: strings, integers, and slices of
// strings cover every template shipped with the tool.
type Vars map[string]any

// templateFunctions are callable from command templates.
var templateFunctions = map[string]function.Function{
	"concat": stdlib.ConcatFunc,
	"format": stdlib.FormatFunc,
	"join":   stdlib.JoinFunc,
}

// Render evaluates the named command template with vars bound and returns
// the resulting argument vector.
func (m *Model) Render(name string, vars Vars) ([]string, error) {
	cmd, ok := m.Commands[name]
	if !ok {
		return nil, fmt.Errorf("command template %q is not defined", name)
	}
	return cmd.Render(vars)
}

// Render evaluates the template with vars bound.
func (c *Command) Render(vars Vars) ([]string, error) {
	ctyVars, err := toCtyVars(vars)
	if err != nil {
		return nil, fmt.Errorf("command %q: %w", c.Name, err)
	}
	evalCtx := &hcl.EvalContext{
		Variables: ctyVars,
		Functions: templateFunctions,
	}

	val, diags := c.Args.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("command %q: %w", c.Name, diags)
	}
	if val.IsNull() || !val.IsWhollyKnown() {
		return nil, fmt.Errorf("command %q: args must be a known list of strings", c.Name)
	}

	listVal, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("command %q: cannot convert %s to list of string: %w", c.Name, val.Type().FriendlyName(), err)
	}

	var args []string
	if err := gocty.FromCtyValue(listVal, &args); err != nil {
		return nil, fmt.Errorf("command %q: %w", c.Name, err)
	}
	if len(args) == 0 || args[0] == "" {
		return nil, fmt.Errorf("command %q: args must name a program", c.Name)
	}
	return args, nil
}

// toCtyVars converts vars into cty values, in a stable key order so that
// conversion errors are reported deterministically.
func toCtyVars(vars Vars) (map[string]cty.Value, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]cty.Value, len(vars))
	for _, name := range names {
		v := vars[name]
		ty, err := gocty.ImpliedType(v)
		if err != nil {
			return nil, fmt.Errorf("variable %q: unable to infer cty.Type: %w", name, err)
		}
		val, err := gocty.ToCtyValue(v, ty)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		out[name] = val
	}
	return out, nil
}
