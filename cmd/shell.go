package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/agentic-research/idsieve/internal/index"
	"github.com/agentic-research/idsieve/internal/ingest"
	"github.com/agentic-research/idsieve/internal/query"
)

const shellHelp = `enter an identifier to query it, or one of:
  :status        load state of the current set
  :wait          block until the current load ends
  :poll          re-check pending queries
  :refresh       re-check every cached query
  :clear         drop cached queries
  :load <file>   load a new set, replacing the current one
  :path <id>     show the index slots visited for id
  :quit
`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive queries while the set loads in the background",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		sh := &shell{session: s, ctx: ctx, out: cmd.OutOrStdout()}
		defer func() {
			cancel()
			sh.drain()
		}()

		if setPath != "" {
			if err := sh.load(setPath); err != nil {
				return err
			}
		}
		return sh.serve(cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

type shell struct {
	*session
	ctx  context.Context
	out  io.Writer
	runs []*ingest.Run
	cur  *ingest.Run
}

func (sh *shell) serve(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, ":") {
			sh.printResult(sh.svc.Search(line))
			continue
		}
		cmd, arg, _ := strings.Cut(line[1:], " ")
		arg = strings.TrimSpace(arg)
		switch cmd {
		case "status":
			sh.status()
		case "wait":
			sh.wait()
		case "poll":
			sh.printResults(sh.svc.Poll())
		case "refresh":
			sh.printResults(sh.svc.Refresh())
		case "clear":
			sh.svc.Clear()
			sh.printf("cleared\n")
		case "load":
			if arg == "" {
				sh.printf("usage: :load <file>\n")
				continue
			}
			if err := sh.load(arg); err != nil {
				sh.printf("error: %v\n", err)
			}
		case "path":
			sh.path(arg)
		case "quit", "q", "exit":
			return nil
		case "help", "h", "?":
			sh.printf("%s", shellHelp)
		default:
			sh.printf("unknown command %q (try :help)\n", cmd)
		}
	}
	return sc.Err()
}

func (sh *shell) load(path string) error {
	run, err := sh.session.load(sh.ctx, path)
	if err != nil {
		return err
	}
	sh.runs = append(sh.runs, run)
	sh.cur = run
	sh.printf("loading %s (generation %d)\n", path, run.Handle().Generation())
	return nil
}

func (sh *shell) wait() {
	if sh.cur == nil {
		sh.printf("nothing loading\n")
		return
	}
	if err := sh.cur.Wait(); err != nil {
		sh.printf("load failed: %v\n", err)
	}
	sh.status()
}

func (sh *shell) status() {
	snap := sh.swap.Current().Snapshot()
	sh.printf("generation %d %s: %s records processed, %s stored",
		snap.Generation, snap.Status, humanize.Comma(snap.Processed), humanize.Comma(int64(snap.Stored)))
	if snap.Label != "" {
		sh.printf(", column %q", snap.Label)
	}
	if snap.Err != nil {
		sh.printf(", error: %v", snap.Err)
	}
	sh.printf("\n")
}

func (sh *shell) path(id string) {
	h := sh.swap.Current()
	steps := h.Trie().LookupWithPath(id)
	if steps == nil {
		sh.printf("%q is not a well-formed identifier\n", id)
		return
	}
	for _, st := range steps {
		sh.printf("depth %d key %s %s", st.Depth, st.Key, st.Kind)
		if st.RecordID != "" {
			sh.printf(" %s", st.RecordID)
		}
		sh.printf("\n")
	}
	if h.Status() != index.Ready {
		sh.printf("(index %s)\n", h.Status())
	}
}

func (sh *shell) printResult(r query.Result) {
	sh.printf("%s\t%s\n", r.ID, sh.labels.Label(r.Outcome))
}

func (sh *shell) printResults(rs []query.Result) {
	if len(rs) == 0 {
		sh.printf("nothing to update\n")
		return
	}
	for _, r := range rs {
		sh.printResult(r)
	}
}

func (sh *shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(sh.out, format, args...)
}

// drain waits for every load started by the shell. Superseded and cancelled
// loads are expected at exit.
func (sh *shell) drain() {
	for _, r := range sh.runs {
		if err := r.Wait(); err != nil && !errors.Is(err, ingest.ErrSuperseded) && !errors.Is(err, context.Canceled) {
			sh.printf("load generation %d: %v\n", r.Handle().Generation(), err)
		}
	}
}
