// Package hcl_adapter is the HCL implementation of config.Loader. It parses
// build scripts, evaluates their expressions against the invocation
// environment, and translates the result into the agnostic config.Model.
//
// Evaluation runs in two passes. The first pass reads only the `output` and
// `type` attributes of every binary block, which is enough to compute each
// artifact path and expose it as `binary.<name>.output`. The second pass
// decodes every block with those variables in scope.
package hcl_adapter
