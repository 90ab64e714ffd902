package cargo

// ReasonCompilerMessage marks objects that carry a rustc/clippy diagnostic.
const ReasonCompilerMessage = "compiler-message"

// Message is one top-level object of the cargo JSON stream.
type Message struct {
	Reason       string           `json:"reason"`
	PackageID    string           `json:"package_id"`
	ManifestPath string           `json:"manifest_path,omitempty"`
	Target       *Target          `json:"target,omitempty"`
	Message      *CompilerMessage `json:"message,omitempty"`
}

// Target identifies the crate target the message was produced for.
type Target struct {
	Name    string   `json:"name"`
	Kind    []string `json:"kind"`
	SrcPath string   `json:"src_path"`
}

// CompilerMessage is the diagnostic payload of a compiler-message.
type CompilerMessage struct {
	Message  string            `json:"message"`
	Level    string            `json:"level"`
	Rendered string            `json:"rendered"`
	Code     *DiagnosticCode   `json:"code,omitempty"`
	Spans    []Span            `json:"spans"`
	Children []CompilerMessage `json:"children,omitempty"`
}

// DiagnosticCode is the lint or error code, e.g. "clippy::needless_return".
type DiagnosticCode struct {
	Code        string  `json:"code"`
	Explanation *string `json:"explanation,omitempty"`
}

// Span is a source range as reported by rustc. Lines and columns are 1-based.
type Span struct {
	FileName    string `json:"file_name"`
	ByteStart   int64  `json:"byte_start"`
	ByteEnd     int64  `json:"byte_end"`
	LineStart   int64  `json:"line_start"`
	LineEnd     int64  `json:"line_end"`
	ColumnStart int64  `json:"column_start"`
	ColumnEnd   int64  `json:"column_end"`
	IsPrimary   bool   `json:"is_primary"`
	Label       string `json:"label,omitempty"`
}

// IsCompilerMessage reports whether the object carries a diagnostic.
func (m Message) IsCompilerMessage() bool {
	return m.Reason == ReasonCompilerMessage && m.Message != nil
}
