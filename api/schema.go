package api

// Pipeline is the root configuration of one generation run. It names the
// inputs (documents, schema, template) and the output destination.
type Pipeline struct {
	// Version of the pipeline config format.
	Version string `json:"version"`
	// Schema is the path to the JSON Schema file carrying x-* directives.
	Schema string `json:"schema"`
	// Documents are glob patterns (doublestar syntax) selecting the source
	// markdown files. Matches are aggregated in lexical order.
	Documents []string `json:"documents"`
	// Template is the path to the output template resource.
	Template string `json:"template"`
	// Output is the destination file. Empty means stdout.
	Output string `json:"output,omitempty"`
	// Format selects the serialization of the rendered tree: "json" or "yaml".
	Format string `json:"format,omitempty"`
	// Aliases maps schema property names to document field names, consulted
	// by the explicit-mapping strategy before any heuristic matching.
	Aliases map[string]string `json:"aliases,omitempty"`
}

// Document is one source document's extracted metadata, read-only input to
// aggregation. Fields holds an ordered object tree (internal/datatree form).
type Document struct {
	// ID is the stable identifier, typically the path relative to the scan
	// root. Aggregation order follows the caller-supplied document order.
	ID string
	// Source is the path the document was read from.
	Source string
	// Fields is the decoded frontmatter block.
	Fields any
}

// Verbosity controls how much trace output the engines emit. It is threaded
// explicitly through aggregation and render options; nothing reads
// process-wide state.
type Verbosity int

const (
	Quiet Verbosity = iota
	Normal
	Verbose
	Debug
)
