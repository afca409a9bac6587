// Package entity models the rows served by the graph source.
//
// A vertex collection holds the rows of one entity type in one workspace,
// addressed as namespace/name/type. An edge collection is derived from one
// reference-valued field of a vertex type and is addressed as
// namespace/name/type/field. Both kinds of collection serve the same Row
// shape: an id plus a JSON-like attribute mapping.
package entity
