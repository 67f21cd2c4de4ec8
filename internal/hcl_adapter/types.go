package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Binaries []*labeledBlock `hcl:"binary,block"`
	Runs     []*labeledBlock `hcl:"run,block"`
	Messages []*labeledBlock `hcl:"message,block"`
}

// labeledBlock defers decoding of a block body until its eval context exists.
type labeledBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// binaryHeaderSchema is the subset of a binary block needed to compute its
// artifact path before any cross-binary reference can be resolved.
var binaryHeaderSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "output"},
		{Name: "type"},
	},
}

// binaryBody is the full schema of a `binary` block.
type binaryBody struct {
	ToolChain    hcl.Expression `hcl:"tool_chain"`
	OptLevel     string         `hcl:"opt_level"`
	Type         *string        `hcl:"type,optional"`
	Files        []string       `hcl:"files"`
	Output       *string        `hcl:"output,optional"`
	SrcDir       *string        `hcl:"src_dir,optional"`
	Includes     []string       `hcl:"includes,optional"`
	Excludes     []string       `hcl:"excludes,optional"`
	Libraries    []string       `hcl:"libraries,optional"`
	LibraryPaths []string       `hcl:"library_paths,optional"`
	Links        []string       `hcl:"links,optional"`
	DependsOn    *hcl.Attribute `hcl:"depends_on,optional"`
	Args         *argsBlock     `hcl:"args,block"`
}

// argsBlock is the `args` block of a binary.
type argsBlock struct {
	Warnings   []string `hcl:"warnings,optional"`
	NoWarnings []string `hcl:"no_warnings,optional"`
	Custom     []string `hcl:"custom,optional"`
}

// runBody is the schema of a `run` block.
type runBody struct {
	Binary       string         `hcl:"binary"`
	Args         []string       `hcl:"args,optional"`
	When         *bool          `hcl:"when,optional"`
	AllowFailure *bool          `hcl:"allow_failure,optional"`
	DependsOn    *hcl.Attribute `hcl:"depends_on,optional"`
}

// messageBody is the schema of a `message` block.
type messageBody struct {
	Text  string `hcl:"text"`
	Level *int   `hcl:"level,optional"`
	When  *bool  `hcl:"when,optional"`
}
