// Package settings holds build metadata and per-invocation options shared
// by the unpack CLI, server and TUI.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "unpack"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string `json:"commit" yaml:"commit"`
	BuildVersion string `json:"version" yaml:"version"`
	BuildTime    string `json:"build_time" yaml:"build_time"`
}

// InputSource says where the document comes from.
type InputSource int

const (
	InputStdin InputSource = iota
	InputFile
	InputDemo
)

func (s InputSource) String() string {
	switch s {
	case InputFile:
		return "file"
	case InputDemo:
		return "demo"
	default:
		return "stdin"
	}
}

// Input describes the document to render.
type Input struct {
	Source InputSource
	Path   string
}

// Run holds the options of a single invocation.
type Run struct {
	MinLogLevel int8
	Input       Input
	Expression  string
	Output      string
	Highlight   string
	Interactive bool
	Repair      bool
	NoColor     bool
	ConfigFile  string
}

// NewCliParams returns the defaults for a CLI invocation: read stdin and
// print the rough schema.
func NewCliParams() *Run {
	return &Run{
		Input:  Input{Source: InputStdin},
		Output: "schema",
	}
}
