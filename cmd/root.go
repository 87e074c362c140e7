package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/idsieve/api"
	"github.com/agentic-research/idsieve/internal/index"
	"github.com/agentic-research/idsieve/internal/ingest"
	"github.com/agentic-research/idsieve/internal/query"
)

var (
	profilePath string
	setPath     string
	workers     int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&profilePath, "profile", "p", "", "Path to an HCL or JSON profile")
	rootCmd.PersistentFlags().StringVarP(&setPath, "set", "s", "", "Path to the primary identifier set (text, .jsonl or SQLite)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Parallel index build workers (overrides the profile)")
}

var rootCmd = &cobra.Command{
	Use:           "idsieve",
	Short:         "idsieve: membership queries and bulk filtering against large identifier sets",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session wires the index, loader and query service for one command run.
type session struct {
	profile api.Profile
	swap    *index.HotSwap
	engine  *ingest.Engine
	svc     *query.Service
	labels  query.LabelSet
}

func newSession() (*session, error) {
	p := api.DefaultProfile()
	if profilePath != "" {
		var err error
		if p, err = api.LoadProfile(profilePath); err != nil {
			return nil, err
		}
	}
	if workers > 0 {
		p.Workers = workers
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	swap := index.NewHotSwap()
	svc, err := query.NewService(swap, p.CacheSize, p.CaseFold)
	if err != nil {
		return nil, err
	}
	return &session{
		profile: p,
		swap:    swap,
		engine:  ingest.NewEngine(p, swap),
		svc:     svc,
		labels:  query.LabelSet(p.Labels),
	}, nil
}

// load starts a background load of path, superseding any earlier one.
func (s *session) load(ctx context.Context, path string) (*ingest.Run, error) {
	fs, name, err := hostFS(path)
	if err != nil {
		return nil, err
	}
	src := ingest.Open(fs, name, s.profile)
	return s.engine.Start(ctx, s.swap.Begin(), src), nil
}

// hostFS returns a filesystem rooted at the directory holding path, and the
// file name within it. Files opened through it expose their descriptor.
func hostFS(path string) (billy.Filesystem, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return osfs.New(filepath.Dir(abs), osfs.WithBoundOS()), filepath.Base(abs), nil
}

func requireSet() error {
	if setPath == "" {
		return fmt.Errorf("no identifier set given (use --set)")
	}
	return nil
}
