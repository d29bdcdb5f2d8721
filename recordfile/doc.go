// Package recordfile treats a bytefile.File as a dense array of
// fixed-size records of type T: a File[T]'s length in records is
// always byte_len / size(T), with no header and no checksum.
package recordfile
