// Package shared holds code used across packages that belongs to no single
// layer.
//
// The testutil subpackage provides test fixtures: a small reference
// dictionary, helpers that write input files into t.TempDir(), and a
// BufferedSlogHandler that captures log records for assertions.
package shared
