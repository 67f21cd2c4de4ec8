package nodeid

// Kind is the block type a node was declared with.
type Kind string

const (
	Binary Kind = "binary"
	Run    Kind = "run"
)

// Address is the structured representation of a unique node identifier.
type Address struct {
	Kind Kind
	Name string
}

// NewBinary returns the address of a binary block.
func NewBinary(name string) Address {
	return Address{Kind: Binary, Name: name}
}

// NewRun returns the address of a run block.
func NewRun(name string) Address {
	return Address{Kind: Run, Name: name}
}

// String serializes the Address into its canonical representation.
func (a Address) String() string {
	return string(a.Kind) + "." + a.Name
}
