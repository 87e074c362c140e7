package cmd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	genCount  int
	genHeader string
	genQuote  bool
	genOutput string
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a synthetic identifier set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if genCount < 0 {
			return fmt.Errorf("count must not be negative, got %d", genCount)
		}

		var w io.Writer = cmd.OutOrStdout()
		if genOutput != "" && genOutput != "-" {
			fs, name, err := hostFS(genOutput)
			if err != nil {
				return err
			}
			f, err := fs.Create(name)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer func() { _ = f.Close() }() // closed explicitly below on success
			if err := writeIDs(f); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s identifiers to %s\n", humanize.Comma(int64(genCount)), genOutput)
			return nil
		}
		return writeIDs(w)
	},
}

func writeIDs(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if genHeader != "" {
		if _, err := bw.WriteString(genHeader + ",source\n"); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for i := 0; i < genCount; i++ {
		id := uuid.NewString()
		if genQuote {
			id = `"` + id + `"`
		}
		if _, err := fmt.Fprintf(bw, "%s,gen-%d\n", id, i); err != nil {
			return fmt.Errorf("write identifiers: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write identifiers: %w", err)
	}
	return nil
}

func init() {
	genCmd.Flags().IntVarP(&genCount, "count", "n", 1000, "Number of identifiers")
	genCmd.Flags().StringVar(&genHeader, "header", "id", "Header column name; empty for no header line")
	genCmd.Flags().BoolVar(&genQuote, "quote", false, "Wrap identifiers in double quotes")
	genCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(genCmd)
}
