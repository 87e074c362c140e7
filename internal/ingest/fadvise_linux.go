//go:build linux

package ingest

import "golang.org/x/sys/unix"

// fadviseSequential hints to the kernel that f will be read front to back.
// Files without a descriptor (in-memory filesystems) are left alone.
func fadviseSequential(f any) {
	fder, ok := f.(interface{ Fd() uintptr })
	if !ok {
		return
	}
	_ = unix.Fadvise(int(fder.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
