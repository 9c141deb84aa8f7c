// Package pipeline drives one run over a working directory: load the graph,
// remove errors, resolve repeats, simplify, and write the artifacts.
//
// Stages run strictly in order on a single goroutine. Only the final export
// fans out, and it only reads the graph.
package pipeline
