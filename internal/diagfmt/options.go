package diagfmt

// PathMode specifies how span file names are rendered.
type PathMode uint8

const (
	// PathModeRaw emits the span file name as the tool reported it.
	PathModeRaw PathMode = iota
	// PathModeProject prefixes the file name with the project directory
	// relative to BaseDir. Used when several projects share one workspace.
	PathModeProject
)

// AnnotationOpts configures workflow-command output.
type AnnotationOpts struct {
	PathMode PathMode
	BaseDir  string
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode PathMode
	BaseDir  string
	Max      int // 0 keeps everything
}
