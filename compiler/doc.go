// Package compiler implements the front end of the mbasic toolchain: a
// line-oriented scanner, a recursive-descent parser, symbol and string
// interning, and a code generator that emits a compact stack-machine image
// understood by the github.com/dmbetz/mbasic/vm package.
//
// A Compiler is driven one source line at a time through a GetLine
// callback, matching the original design's line-at-a-time input model:
// mbasic never requires the whole program to be resident in memory at
// once, which matters on the constrained hosts this toolchain targets.
//
// The image produced by Compile is the only contract between this package
// and vm: a (ImageHdr, TEXT, DATA) triple encoded exactly as
// github.com/dmbetz/mbasic/isa describes.
package compiler
