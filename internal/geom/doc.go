// Package geom generates closed superellipse ("squircle") outlines as SVG
// path data. It is pure computation: no I/O, no state, no concurrency. The
// generator never fails: invalid dimensions and exponents are clamped to
// safe values so that every call returns a finite, closed path.
package geom
