// Package dag is the execution layer of cbuild. It turns an evaluated build
// script into a directed acyclic graph with one node per binary and per
// enabled run step, then executes the nodes concurrently in dependency order.
//
// Edges come from two places: `binary.<name>` references anywhere in a
// block, and explicit depends_on lists. A binary node completes with the
// path of its artifact, which dependents read back from the node store.
package dag
