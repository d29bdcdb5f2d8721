package main

// blockRecord is stream 0's element type: every logical record has
// one, written by build's initial WriteNew pass.
type blockRecord struct {
	Height    int64
	Timestamp int64
}

// metricRecord is the element type for every stream k>0 that build
// populates. Real datasets would give each stream its own type;
// chainfilectl reuses one to keep the CLI's --streams flag generic.
type metricRecord struct {
	Value int64
}
