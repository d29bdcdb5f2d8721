// Package zero provides functions to zero slices of specific types.
package zero

// Bytes overwrites every byte of b with 0, in place.
func Bytes(b []byte) {
	for i := 0; i < len(b); i++ {
		b[i] = 0
	}
}
