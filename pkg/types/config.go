package types

// Config is the merged configuration the core pipeline runs with, after
// CLI flags, .cytoscnpy.toml, pyproject.toml [tool.cytoscnpy], and defaults
// have been layered per the precedence in spec §6.
type Config struct {
	RootPath string

	IncludeFolders []string
	ExcludeFolders []string

	IncludeTests      bool
	IncludeNotebooks  bool

	EnableSecrets bool
	EnableDanger  bool
	EnableQuality bool
	EnableTaint   bool

	ConfidenceThreshold int // 0-100, default 60
	FailThreshold       int // exit nonzero if unused-finding count exceeds this

	// Quality gates (spec §6); the quality rule only enforces these when
	// EnableQuality is set.
	MaxComplexity int
	MinMI         float64
	MaxNesting    int
	MaxArgs       int
	MaxLines      int
}

// DefaultConfig returns the baseline configuration applied before any
// project-file or CLI overrides.
func DefaultConfig() *Config {
	return &Config{
		IncludeTests:        false,
		IncludeNotebooks:    false,
		EnableSecrets:       true,
		EnableDanger:        true,
		EnableQuality:       true,
		EnableTaint:         true,
		ConfidenceThreshold: 60,
		FailThreshold:       0,
		MaxComplexity:       10,
		MinMI:               65,
		MaxNesting:          4,
		MaxArgs:             5,
		MaxLines:            50,
	}
}
