package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

// nameRegex matches an HCL identifier, the only thing a block label can be
// referenced by from an expression.
var nameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// Parse creates an Address from its canonical string representation.
func Parse(rawID string) (Address, error) {
	if rawID == "" {
		return Address{}, fmt.Errorf("identifier cannot be empty")
	}

	kind, name, ok := strings.Cut(rawID, ".")
	if !ok {
		return Address{}, fmt.Errorf("identifier %q must have the form <kind>.<name>", rawID)
	}

	switch Kind(kind) {
	case Binary, Run:
	default:
		return Address{}, fmt.Errorf("identifier %q has unknown kind %q", rawID, kind)
	}

	if !ValidName(name) {
		return Address{}, fmt.Errorf("identifier %q has invalid name %q", rawID, name)
	}
	return Address{Kind: Kind(kind), Name: name}, nil
}

// ParseTarget accepts either a canonical address or a bare name, which is
// taken to be of kind def.
func ParseTarget(raw string, def Kind) (Address, error) {
	if strings.Contains(raw, ".") {
		return Parse(raw)
	}
	if !ValidName(raw) {
		return Address{}, fmt.Errorf("invalid target name %q", raw)
	}
	return Address{Kind: def, Name: raw}, nil
}

// ValidName reports whether name can label a binary or run block.
func ValidName(name string) bool {
	return nameRegex.MatchString(name)
}
