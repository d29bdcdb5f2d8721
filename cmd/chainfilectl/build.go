package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blockwalk/chainfile/bytefile"
	"github.com/blockwalk/chainfile/streamfile"
)

var buildFlags struct {
	prefix  string
	streams int
	count   int64
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "synthesize a streamfile dataset",
	RunE:  runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVar(&buildFlags.prefix, "prefix", "", "path prefix for _index.dat/_data.dat (required)")
	f.IntVar(&buildFlags.streams, "streams", 1, "number of parallel streams")
	f.Int64Var(&buildFlags.count, "count", 1000, "number of logical records to synthesize")
	_ = buildCmd.MarkFlagRequired("prefix")
}

func runBuild(cmd *cobra.Command, args []string) error {
	f, err := streamfile.Open(buildFlags.prefix, buildFlags.streams, bytefile.WithWritable())
	if err != nil {
		return fmt.Errorf("build: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	for i := int64(0); i < buildFlags.count; i++ {
		if _, err := streamfile.WriteNew(f, blockRecord{Height: i, Timestamp: 1_600_000_000 + i*10}); err != nil {
			return fmt.Errorf("build: write record %d: %w", i, err)
		}
	}

	// Populate stream 1 (if present) for every third record, to
	// demonstrate sparse per-stream updates and leave the rest
	// InvalidOffset.
	if buildFlags.streams > 1 {
		for i := int64(0); i < buildFlags.count; i += 3 {
			v := metricRecord{Value: i * i}
			if _, err := streamfile.WriteStream(f, 1, i, v); err != nil {
				return fmt.Errorf("build: write stream 1 record %d: %w", i, err)
			}
		}
	}

	if err := f.Flush(); err != nil {
		return fmt.Errorf("build: flush: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records across %d streams to %s\n", buildFlags.count, buildFlags.streams, buildFlags.prefix)
	return nil
}
