/*
Package nodeid provides the structured identifier of a build-graph node.

The canonical form is `<kind>.<name>`, e.g. `binary.core` or `run.tests`.
The same form is what build scripts write in depends_on lists and what the
CLI accepts as target selectors, so parsing lives in one place.
*/
package nodeid
