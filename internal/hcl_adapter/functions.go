package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/specialistvlad/cbuild/internal/toolchain"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// newEvalContext returns the context every expression in a build script is
// evaluated in. The `binary` variable is added by the second pass.
func (l *Loader) newEvalContext(env config.Env) *hcl.EvalContext {
	optLevel := toolchain.OptDebug
	if env.Release {
		optLevel = toolchain.OptRelease
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{
			"default_toolchain":        constFunc(cty.StringVal(env.DefaultToolChain.String())),
			"default_opt_level":        constFunc(cty.StringVal(string(optLevel))),
			"host_os":                  constFunc(cty.StringVal(env.HostOS)),
			"wants_run":                constFunc(cty.BoolVal(env.Action == config.ActionRun)),
			"should_generate_database": constFunc(cty.BoolVal(env.Action == config.ActionGenDatabase)),
			"env":                      l.envFunc(),
			"concat":                   stdlib.ConcatFunc,
			"contains":                 stdlib.ContainsFunc,
			"format":                   stdlib.FormatFunc,
			"join":                     stdlib.JoinFunc,
			"lower":                    stdlib.LowerFunc,
			"upper":                    stdlib.UpperFunc,
		},
	}
}

// constFunc wraps a value as a zero-argument function.
func constFunc(v cty.Value) function.Function {
	return function.New(&function.Spec{
		Type: function.StaticReturnType(v.Type()),
		Impl: func(_ []cty.Value, _ cty.Type) (cty.Value, error) {
			return v, nil
		},
	})
}

// envFunc reads a process environment variable, yielding "" when unset.
func (l *Loader) envFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(l.getenv(args[0].AsString())), nil
		},
	})
}

// binaryVariables builds the `binary` object exposed to the second pass.
func binaryVariables(heads []*binaryHead) cty.Value {
	if len(heads) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(heads))
	for _, h := range heads {
		attrs[h.name] = cty.ObjectVal(map[string]cty.Value{
			"name":   cty.StringVal(h.name),
			"output": cty.StringVal(h.artifact),
			"type":   cty.StringVal(string(h.typ)),
		})
	}
	return cty.ObjectVal(attrs)
}
