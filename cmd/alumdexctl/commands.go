package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/alumdex/internal/config"
	"github.com/kailas-cloud/alumdex/internal/db"
	"github.com/kailas-cloud/alumdex/internal/db/driver"
	dombatch "github.com/kailas-cloud/alumdex/internal/domain/batch"
	domrec "github.com/kailas-cloud/alumdex/internal/domain/record"
	"github.com/kailas-cloud/alumdex/internal/domain/search/filter"
	"github.com/kailas-cloud/alumdex/internal/domain/search/request"
	"github.com/kailas-cloud/alumdex/internal/domain/search/screen"
	logpkg "github.com/kailas-cloud/alumdex/internal/logger"
	recordrepo "github.com/kailas-cloud/alumdex/internal/repository/record"
	importeruc "github.com/kailas-cloud/alumdex/internal/usecase/importer"
	searchuc "github.com/kailas-cloud/alumdex/internal/usecase/search"
	"github.com/kailas-cloud/alumdex/internal/version"
)

// app holds the dependencies shared by all subcommands. Fields left nil are
// built from configuration in PersistentPreRunE.
type app struct {
	env     string
	verbose bool

	cfg     config.Config
	logger  *zap.Logger
	store   db.Store
	owned   bool
	repo    *recordrepo.Repo
	screens *screen.Registry
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "alumdexctl",
		Short:         "Manage and query the alumdex record store",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.teardown()
		},
	}
	root.PersistentFlags().StringVar(&a.env, "env", config.GetEnv(), "Config environment (local, dev, prod)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newImportCmd(a),
		newSearchCmd(a),
		newOptionsCmd(a),
		newScreensCmd(a),
		newDeleteCmd(a),
	)
	return root
}

func (a *app) setup() error {
	if a.logger == nil {
		level := "warn"
		if a.verbose {
			level = "debug"
		}
		l, err := logpkg.NewLogger(a.env, level)
		if err != nil {
			return err
		}
		a.logger = l
	}

	if a.store == nil {
		cfg, err := config.Load(a.env)
		if err != nil {
			return err
		}
		a.cfg = cfg
		store, err := driver.Open(cfg.Database, a.logger)
		if err != nil {
			return err
		}
		a.store = store
		a.owned = true
	} else {
		a.cfg.ApplyDefaults()
	}

	if a.repo == nil {
		a.repo = recordrepo.New(a.store, a.cfg.Storage.KeyPrefix)
	}
	if a.screens == nil {
		overrides := make(map[string]screen.EmptyPolicy)
		for name, p := range a.cfg.Search.PolicyOverrides() {
			overrides[name] = screen.EmptyPolicy(p)
		}
		reg, err := screen.NewRegistry(overrides)
		if err != nil {
			return err
		}
		a.screens = reg
	}
	return nil
}

func (a *app) teardown() {
	if a.owned {
		a.store.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newImportCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import records from a JSON file (use - for stdin)",
		Long: `Imports a JSON array of records, or an object with a "records" array.
Existing records with the same kind and id are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			recs, err := importeruc.Decode(in)
			if err != nil {
				return err
			}

			svc, err := importeruc.New(a.repo, workers,
				importeruc.WithChunkSize(a.cfg.Import.ChunkSize),
				importeruc.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			defer svc.Release()

			results := svc.Import(cmd.Context(), recs)
			out := cmd.OutOrStdout()
			for _, res := range results {
				if res.Status() != dombatch.StatusOK {
					fmt.Fprintf(out, "%s\t%s\t%v\n", res.Status(), res.ID(), res.Err())
				}
			}
			sum := dombatch.Summarize(results)
			fmt.Fprintf(out, "imported %d of %d records (invalid: %d, failed: %d)\n",
				sum.OK, sum.Total(), sum.Invalid, sum.Failed)
			if sum.Failed > 0 {
				return fmt.Errorf("%d records failed to store", sum.Failed)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Import worker count (0 = half the CPUs)")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		filters []string
		limit   int
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "search SCREEN [QUERY]",
		Short: "Run a one-shot search over a screen's records",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 2 {
				query = args[1]
			}
			set, err := filter.ParseSet(filters)
			if err != nil {
				return err
			}
			req, err := request.New(query, set, limit)
			if err != nil {
				return err
			}

			res, err := searchuc.New(a.repo, a.screens).Search(cmd.Context(), args[0], &req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				recs := res.Records()
				if recs == nil {
					recs = []domrec.Record{}
				}
				return enc.Encode(recs)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCOMPANY\tLOCATION")
			for _, r := range res.Records() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, displayName(&r), r.Company, r.Location)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d of %d matches\n", res.Len(), res.Matched())
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter option key:value (repeatable, ORed)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print matching records as JSON")
	return cmd
}

func newOptionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "options SCREEN CATEGORY [TEXT]",
		Short: "List the filter options of a screen category",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 3 {
				text = args[2]
			}
			opts, err := searchuc.New(a.repo, a.screens).Options(cmd.Context(), args[0], args[1], text)
			if err != nil {
				return err
			}
			for _, o := range opts {
				fmt.Fprintln(cmd.OutOrStdout(), o)
			}
			return nil
		},
	}
}

func newScreensCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "screens",
		Short: "List the configured screens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCREEN\tKIND\tEMPTY\tCATEGORIES")
			for _, name := range a.screens.Names() {
				scr, err := a.screens.Get(name)
				if err != nil {
					return err
				}
				cats := make([]string, len(scr.Categories()))
				for i, c := range scr.Categories() {
					cats[i] = c.Name
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, scr.Kind(), scr.Policy(), strings.Join(cats, ","))
			}
			return tw.Flush()
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KIND ID",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.repo.Delete(cmd.Context(), domrec.Kind(args[0]), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", args[0], args[1])
			return nil
		},
	}
}

func displayName(r *domrec.Record) string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Title
}
