package config

// IsTestMode indicates if the program is running in test mode.
// It is set once at startup by the command-line tool.
var IsTestMode = false

// Rendering glyphs
const (
	TauSymbol           = "Τ"
	FunctionOpen        = "<"
	FunctionClose       = ">"
	Arrow               = "->"
	ProjectionMark      = "*"
	ProjectedCastMark   = "+"
	UnprojectedCastMark = "-"
	ParameterPrefix     = "@"
	IdentifiablePrefix  = "$"
)

// Printer defaults
const (
	DefaultLineWidth = 100
	DefaultIndent    = 4
)

// Law check defaults
const (
	DefaultCheckSeed  = 1
	DefaultCheckCount = 200
	DefaultCheckDepth = 4
	MaxCheckDepth     = 12
)

// ConfigFileNames are the recognized configuration file names, in lookup order.
var ConfigFileNames = []string{"kernel.yaml", "kernel.yml"}
