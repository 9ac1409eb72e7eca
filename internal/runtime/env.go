package runtime

// Environment represents a variable scope with an enclosing chain. Lookups
// and assignments walk outward through enclosing scopes; definitions stay
// in the scope they were made in.
type Environment struct {
	values    map[string]Value
	enclosing *Environment
}

// NewEnvironment creates a new environment with an optional enclosing
// scope.
func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{
		values:    make(map[string]Value),
		enclosing: enclosing,
	}
}

// Define declares a variable in the current scope. Redeclaring a name in
// the same scope silently overwrites the previous binding.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks up a variable by walking the scope chain outward. The second
// return value is false if no scope binds the name.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.enclosing {
		if val, exists := env.values[name]; exists {
			return val, true
		}
	}
	return nil, false
}

// Assign mutates the nearest scope that already binds the name. It returns
// false, with no side effect, if no scope does: assignment never implicitly
// declares.
func (e *Environment) Assign(name string, value Value) bool {
	for env := e; env != nil; env = env.enclosing {
		if _, exists := env.values[name]; exists {
			env.values[name] = value
			return true
		}
	}
	return false
}
