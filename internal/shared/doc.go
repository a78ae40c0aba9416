// Package shared holds code used across layers that belongs to no single
// domain package. Its testutil subpackage provides a capturing slog handler
// and CSV dataset fixtures for package tests.
package shared
