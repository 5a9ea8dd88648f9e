package visitor

// scopeKind distinguishes the kinds of lexical scope the visitor tracks
// while walking a file (spec §4.3's "scope discipline").
type scopeKind int

const (
	scopeModule scopeKind = iota
	scopeClass
	scopeFunction
	scopeComprehension
)

// scope is one entry in the visitor's scope stack. localVars maps a
// locally-bound simple name (assignment target, parameter, comprehension
// induction variable, pattern-match binding) to its fully qualified
// name within this scope.
type scope struct {
	kind      scopeKind
	name      string // simple name of the class/function that opened this scope
	fqn       string // fully qualified name of this scope, for LocalVariable/Parameter fqns
	localVars map[string]string
}

// scopeStack tracks the module/class/function/comprehension nesting
// while the visitor walks a file. Class and function stacks are
// maintained separately from the generic stack because resolution
// (spec §4.4) needs the class-stack and function-stack independently.
type scopeStack struct {
	module      string
	classStack  []string // simple class names, innermost last
	funcStack   []string // simple function names, innermost last
	scopes      []*scope // full lexical nesting, including comprehensions
	aliases     map[string]string
}

func newScopeStack(module string) *scopeStack {
	root := &scope{kind: scopeModule, fqn: module, localVars: make(map[string]string)}
	return &scopeStack{
		module:  module,
		scopes:  []*scope{root},
		aliases: make(map[string]string),
	}
}

func (s *scopeStack) current() *scope {
	return s.scopes[len(s.scopes)-1]
}

func (s *scopeStack) pushClass(simpleName string) {
	fqn := s.currentFQN() + "." + simpleName
	s.classStack = append(s.classStack, simpleName)
	s.scopes = append(s.scopes, &scope{kind: scopeClass, name: simpleName, fqn: fqn, localVars: make(map[string]string)})
}

func (s *scopeStack) pushFunction(simpleName string) {
	fqn := s.currentFQN() + "." + simpleName
	s.funcStack = append(s.funcStack, simpleName)
	s.scopes = append(s.scopes, &scope{kind: scopeFunction, name: simpleName, fqn: fqn, localVars: make(map[string]string)})
}

func (s *scopeStack) pushComprehension() {
	s.scopes = append(s.scopes, &scope{kind: scopeComprehension, fqn: s.currentFQN(), localVars: make(map[string]string)})
}

func (s *scopeStack) pop() {
	top := s.current()
	switch top.kind {
	case scopeClass:
		s.classStack = s.classStack[:len(s.classStack)-1]
	case scopeFunction:
		s.funcStack = s.funcStack[:len(s.funcStack)-1]
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// currentFQN is the fully qualified name of the innermost enclosing
// class or function scope, or the module path at module scope.
func (s *scopeStack) currentFQN() string {
	return s.current().fqn
}

// inFunction reports whether the innermost non-comprehension scope is a
// function (spec §4.3: LocalVariable emission applies inside function
// scopes, including nested ones).
func (s *scopeStack) inFunction() bool {
	return len(s.funcStack) > 0
}

// bindLocal records name as locally bound in the innermost scope,
// mapped to its resolvable fully qualified target.
func (s *scopeStack) bindLocal(name, fqn string) {
	s.current().localVars[name] = fqn
}

// lookupLocal searches the scope stack from innermost to outermost for
// name, returning its bound fqn.
func (s *scopeStack) lookupLocal(name string) (string, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if fqn, ok := s.scopes[i].localVars[name]; ok {
			return fqn, true
		}
	}
	return "", false
}

func (s *scopeStack) bindAlias(name, target string) {
	s.aliases[name] = target
}

func (s *scopeStack) lookupAlias(name string) (string, bool) {
	target, ok := s.aliases[name]
	return target, ok
}

// classStackCopy returns a snapshot of the current class stack.
func (s *scopeStack) classStackCopy() []string {
	out := make([]string, len(s.classStack))
	copy(out, s.classStack)
	return out
}

func (s *scopeStack) funcStackCopy() []string {
	out := make([]string, len(s.funcStack))
	copy(out, s.funcStack)
	return out
}
