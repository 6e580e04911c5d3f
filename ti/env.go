package ti

import "sort"

// Env represents an environment: a frame of bindings and
// the environment which encloses it.
type Env struct {
	frame map[*Sym]Any
	outer *Env
}

// NewEnv constructs an empty frame enclosed by outer.
// A global environment has a nil outer.
func NewEnv(outer *Env) *Env {
	return &Env{make(map[*Sym]Any), outer}
}

// Outer returns the enclosing environment or nil.
func (env *Env) Outer() *Env {
	return env.outer
}

// Put binds sym to value in the innermost frame of env.
func (env *Env) Put(sym *Sym, value Any) {
	env.frame[sym] = value
}

// PutAll binds every symbol of bindings in the innermost frame of env.
func (env *Env) PutAll(bindings map[*Sym]Any) {
	for sym, value := range bindings {
		env.frame[sym] = value
	}
}

// Lookup retrieves the value of sym, searching from the innermost frame
// outward.
func (env *Env) Lookup(sym *Sym) (Any, error) {
	for e := env; e != nil; e = e.outer {
		if v, ok := e.frame[sym]; ok {
			return v, nil
		}
	}
	return nil, NewEvalError(UnboundSymbolError, "unbound symbol: %s", sym.Name)
}

// Extend constructs a new frame enclosed by env which binds
// params to args positionally.
func (env *Env) Extend(params []*Sym, args []Any) (*Env, error) {
	if len(params) != len(args) {
		return nil, NewEvalError(ArityError,
			"%d arguments required, %d given", len(params), len(args))
	}
	e := &Env{make(map[*Sym]Any, len(params)), env}
	for i, sym := range params {
		e.frame[sym] = args[i]
	}
	return e, nil
}

// Symbols returns the symbols bound in env and all enclosing frames,
// sorted by name.
func (env *Env) Symbols() []*Sym {
	seen := make(map[*Sym]bool)
	result := make([]*Sym, 0, len(env.frame))
	for e := env; e != nil; e = e.outer {
		for sym := range e.frame {
			if !seen[sym] {
				seen[sym] = true
				result = append(result, sym)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
