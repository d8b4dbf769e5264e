// Package pipeline implements the document rendering stages: MyST
// preprocessing, markdown-to-HTML conversion, HTML injection (CSS, title
// block, references), and relative path rewriting.
//
// Stages are small interfaces so the exporter can be tested with fakes.
// Figure directives survive the markdown converter through private-use-area
// placeholder tokens that are swapped for real <figure> markup afterwards,
// which keeps Goldmark's raw-HTML pass-through disabled.
package pipeline
