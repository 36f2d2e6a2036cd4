// Package normalisers provides implementations of the Normaliser interface.
// A normaliser turns one source file into provisions: self-contained units
// of text with the metadata needed to locate them in the source.
//
// Chunking happens afterwards in the PostProcessor pipeline.
package normalisers
