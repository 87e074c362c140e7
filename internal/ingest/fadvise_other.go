//go:build !linux

package ingest

// fadviseSequential is a no-op on non-Linux platforms.
func fadviseSequential(f any) {}
