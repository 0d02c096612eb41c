// Package chart draws contribution comparisons as a grid of small multiples
// and encodes them as PNG, JPEG, SVG or PDF.
package chart
