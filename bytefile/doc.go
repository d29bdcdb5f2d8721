// Package bytefile exposes a single on-disk file as a contiguous,
// memory-mapped byte region, and — when opened writable — as an
// append-only stream with a write-back tail buffer.
//
// A File's logical length is always mapped bytes + buffered tail
// bytes:
//
//	┌──────────────── mmap'd region ───────────────┐┌── tail buffer ──┐
//	│ on-disk, up to date as of the last Reload     ││ pending writes  │
//	└────────────────────────────────────────────────┘└─────────────────┘
//	0                                          mapped_len      logical length
//
// Writes at a cursor below mapped_len patch the mapping in place;
// writes at or past the logical end extend the tail buffer; a write
// that starts inside the mapping and runs past mapped_len is split
// across both regions. The tail buffer is flushed to disk — and the
// mapping replaced — on Close, on an explicit Flush, and automatically
// whenever it grows past the high-water mark.
package bytefile
