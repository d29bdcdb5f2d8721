// Package streamfile binds N parallel typed streams per logical
// record to one shared data arena.
//
// A File is a pair of on-disk files sharing a path prefix P:
//
//	P_index.dat — n offsets per logical record, host-endian int64s,
//	              no padding between slots
//	P_data.dat  — variable-length payloads from all N streams,
//	              concatenated in append order
//
// The index file stores one N-tuple of byte offsets per logical
// record; slot 0 always points at that record's stream-0 payload in
// the data file, and slot k>0 is either a valid offset or
// bytefile.InvalidOffset. Because N is a property of the dataset
// rather than of the Go type system (Go generics don't support a
// variadic list of type parameters), File itself is untyped over the
// stream element types: NumStreams is a runtime field, and typed
// access goes through the free generic functions DataAt, WriteNew,
// and WriteStream, each of which supplies its own T for that one call.
package streamfile
