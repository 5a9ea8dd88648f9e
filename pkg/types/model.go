package types

// DefinitionKind enumerates the kinds of named entity the visitor can emit
// (spec §3).
type DefinitionKind int

const (
	KindFunction DefinitionKind = iota
	KindMethod
	KindClass
	KindImport
	KindImportAlias
	KindModuleVariable
	KindLocalVariable
	KindParameter
	KindClassAttribute
)

// String returns the human-readable name used in rule IDs and JSON output.
func (k DefinitionKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindClass:
		return "class"
	case KindImport:
		return "import"
	case KindImportAlias:
		return "import_alias"
	case KindModuleVariable:
		return "module_variable"
	case KindLocalVariable:
		return "local_variable"
	case KindParameter:
		return "parameter"
	case KindClassAttribute:
		return "class_attribute"
	default:
		return "unknown"
	}
}

// InitialConfidence returns the starting confidence score for a freshly
// emitted definition of this kind (spec §4.3: parameters start at 70,
// everything else starts at 100).
func (k DefinitionKind) InitialConfidence() int {
	if k == KindParameter {
		return 70
	}
	return 100
}

// Definition is a named entity declared in source that could be "used"
// elsewhere (spec §3).
type Definition struct {
	Kind       DefinitionKind
	FQN        string // module.(Class.)*name
	SimpleName string
	Module     string // dotted module name
	File       string // RelPath of the declaring file
	StartLine  int
	EndLine    int
	StartByte  uint
	EndByte    uint
	Decorators []string

	// BaseClasses holds the simple names of a class definition's direct
	// superclasses as written in source (no MRO resolution), used to
	// chase super().method() references to the class(es) that might
	// define it (spec §4.3).
	BaseClasses []string

	IsDunder            bool
	IsExportedViaAll    bool
	IsDataclassField    bool
	IsSettingsConst     bool
	IsVisitorMethod     bool
	IsPragmaSuppressed  bool
	IsTypeCheckingOnly  bool
	IsFrameworkSignaled bool

	Confidence int
	Shadowed   bool // a later definition with the same FQN replaced this one
}

// ResolutionContext is the snapshot of lexical state active when a
// reference was recorded (spec §3, §4.4). It is captured per reference,
// never shared or mutated after the fact.
type ResolutionContext struct {
	Module     string
	ClassStack []string          // innermost last
	FuncStack  []string          // innermost last
	LocalVars  map[string]string // unqualified name -> fully qualified name
	Aliases    map[string]string // local alias -> original dotted path
}

// Reference is a textual occurrence of a name the resolver ties (or fails
// to tie) to a Definition (spec §3).
type Reference struct {
	Name            string
	Context         ResolutionContext
	File            string
	Line            int
	Column          int
	IsDynamicSource bool // true if this reference arose from getattr/hasattr with a literal name
	IsAnnotation    bool // true if this reference came from a type annotation (incl. string-quoted)
}

// Severity ranks a rule Finding (spec §4.6).
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the rule-output name for a Severity.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	default:
		return "info"
	}
}

// Range marks a byte/line span eligible for an auto-fix suggestion.
type Range struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Finding is a single result emitted by a danger/secrets/quality/taint
// rule (spec §4.6).
type Finding struct {
	RuleID      string
	Severity    Severity
	File        string
	Line        int
	Column      int
	Message     string
	Replacement *Range
}

// ParseError records a file that could not be turned into a usable AST
// (spec §4.2, §7.2).
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

// UnusedFinding is an emitted unused-definition result (spec §6).
type UnusedFinding struct {
	File       string
	Line       int
	Col        int
	Name       string // fully qualified name
	SimpleName string
	Confidence int
	RuleID     string
}

// Result is the complete output of a single analysis run (spec §6).
type Result struct {
	UnusedFunctions  []UnusedFinding
	UnusedMethods    []UnusedFinding
	UnusedImports    []UnusedFinding
	UnusedClasses    []UnusedFinding
	UnusedVariables  []UnusedFinding
	UnusedParameters []UnusedFinding

	Danger        []Finding
	Secrets       []Finding
	Quality       []Finding
	TaintFindings []Finding

	ParseErrors []ParseError

	DynamicModules []string // modules observed using eval/exec/globals()
	ShadowedFQNs   []string // fqns that had more than one definition
}

// ExitError carries the exit-code contract of spec §6/§7 through the CLI
// layer. Code 0 is clean, 1 is a finding-count failure, 2 is I/O/config.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}
