package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/agentic-research/idsieve/internal/bulk"
)

var (
	filterMode    string
	filterOutput  string
	filterVerbose bool
	filterLive    bool
)

var filterCmd = &cobra.Command{
	Use:   "filter [input]",
	Short: "Keep the lines of input whose identifier is (or is not) in the set",
	Long: `Filter copies input to the output, keeping the header line and every line
that starts with an identifier selected by --mode. Lines without an identifier
are dropped. Reads stdin when input is "-" or omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSet(); err != nil {
			return err
		}
		mode, err := bulk.ParseMode(filterMode)
		if err != nil {
			return err
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		run, err := s.load(cmd.Context(), setPath)
		if err != nil {
			return err
		}
		if err := newProgressPrinter(cmd.ErrOrStderr(), setPath).watch(run); err != nil {
			return err
		}

		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			fs, name, err := hostFS(args[0])
			if err != nil {
				return err
			}
			f, err := fs.Open(name)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer func() { _ = f.Close() }() // safe to ignore: read-only
			in = f
		}

		var out io.Writer = cmd.OutOrStdout()
		var outFile io.Closer
		if filterOutput != "" && filterOutput != "-" {
			fs, name, err := hostFS(filterOutput)
			if err != nil {
				return err
			}
			f, err := fs.Create(name)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer func() { _ = f.Close() }() // closed explicitly below on success
			out, outFile = f, f
		}

		opts := bulk.Options{
			Mode:       mode,
			Pattern:    bulk.Pattern(s.profile.Marker),
			Terminator: s.profile.Terminator,
			YieldEvery: s.profile.YieldEvery,
		}
		opts.OnDecision = s.decisionHook(filterLive, filterVerbose, cmd.ErrOrStderr())

		rep, err := bulk.Filter(cmd.Context(), in, out, s.svc, opts)
		if err != nil {
			return err
		}
		if outFile != nil {
			if err := outFile.Close(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}
		}

		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "kept %s of %s lines (%s %s, %s %s, %s without identifier)\n",
			humanize.Comma(int64(rep.Kept.GetCardinality())), humanize.Comma(int64(rep.Lines)),
			humanize.Comma(int64(rep.Matches)), s.profile.Labels.Match,
			humanize.Comma(int64(rep.NonMatches)), s.profile.Labels.NoMatch,
			humanize.Comma(int64(rep.NonCandidates)))
		return nil
	},
}

// decisionHook returns the bulk decision callback. With live set every
// decided identifier is also searched, so the query cache holds the answers
// the filter acted on. With verbose set each decision is printed to w.
func (s *session) decisionHook(live, verbose bool, w io.Writer) func(bulk.Decision) {
	if !live && !verbose {
		return nil
	}
	return func(d bulk.Decision) {
		if live {
			s.svc.Search(d.ID)
		}
		if verbose {
			_, _ = fmt.Fprintf(w, "line %d\t%s\t%s\n", d.Line+1, d.ID, s.labels.Label(d.Outcome))
		}
	}
}

func init() {
	filterCmd.Flags().StringVarP(&filterMode, "mode", "m", "matches", "Lines to keep: matches or non-matches")
	filterCmd.Flags().StringVarP(&filterOutput, "output", "o", "", "Output file (default stdout)")
	filterCmd.Flags().BoolVarP(&filterVerbose, "verbose", "v", false, "Report every identifier decision on stderr")
	filterCmd.Flags().BoolVar(&filterLive, "live", true, "Record every identifier decision in the query cache")
	rootCmd.AddCommand(filterCmd)
}
