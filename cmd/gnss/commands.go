package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jobrunner/gnss/internal/adapters/bundle"
	"github.com/jobrunner/gnss/internal/adapters/sqlite"
	"github.com/jobrunner/gnss/internal/adapters/storage"
	"github.com/jobrunner/gnss/internal/adapters/watcher"
	"github.com/jobrunner/gnss/internal/app"
	"github.com/jobrunner/gnss/internal/application"
	"github.com/jobrunner/gnss/internal/config"
	"github.com/jobrunner/gnss/internal/domain"
	"github.com/jobrunner/gnss/internal/ports/output"
)

// commandEnv carries what every one-shot command needs.
type commandEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog *application.CatalogService
	out     *printer
}

// newCommandEnv loads the configuration and builds a catalog over the
// configured database source. Logs go to stderr; info is too chatty for a
// one-shot command so it is raised to warn.
func newCommandEnv(cmd *cobra.Command) (*commandEnv, error) {
	out, err := newPrinter(cmd.OutOrStdout(), outputFormat)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logCfg := cfg.Logging
	if logCfg.Level == "info" {
		logCfg.Level = "warn"
	}
	logCfg.Format = "text"
	logger := setupLogger(logCfg, cmd.ErrOrStderr())

	source, err := app.NewSource(cfg.Database)
	if err != nil {
		return nil, err
	}

	return &commandEnv{
		cfg:     cfg,
		logger:  logger,
		catalog: application.NewCatalogService(source, &output.NoOpMetrics{}, logger),
		out:     out,
	}, nil
}

// database loads the configured database, failing with the load error.
func (e *commandEnv) database(ctx context.Context) (*domain.Database, error) {
	if err := e.catalog.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading %s: %w", e.catalog.SourceName(), err)
	}
	return e.catalog.Database(ctx)
}

var parseCmd = &cobra.Command{
	Use:   "parse TEXT...",
	Short: "Decode constellation spellings or country codes",
	Example: `  gnss parse GPS "Galileo (EU)" R
  gnss parse --country us eu
  gnss parse --sbas jp south-africa`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}
		country, _ := cmd.Flags().GetBool("country")
		sbas, _ := cmd.Flags().GetBool("sbas")

		views := make([]constellationView, 0, len(args))
		for _, text := range args {
			var (
				c  domain.Constellation
				ok bool
			)
			switch {
			case sbas:
				c, ok = domain.FromSBASCountryCode(text)
			case country:
				c, ok = domain.FromCountryCode(text)
			default:
				c, err = env.catalog.ParseConstellation(cmd.Context(), text)
				ok = err == nil
			}
			if !ok {
				return unknownConstellation(env, text, country || sbas)
			}
			views = append(views, newConstellationView(text, c))
		}

		return env.out.print(views, func(tw *tabwriter.Writer) {
			printConstellations(tw, views)
		})
	},
}

func unknownConstellation(env *commandEnv, text string, countryCode bool) error {
	if countryCode {
		return fmt.Errorf("no constellation for country code %q", text)
	}
	if s := env.catalog.Suggest(text); len(s) > 0 {
		return fmt.Errorf("unknown constellation %q (did you mean %s?)", text, strings.Join(s, ", "))
	}
	return fmt.Errorf("unknown constellation %q", text)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every constellation with its spellings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}

		all := domain.All()
		views := make([]constellationView, len(all))
		for i, c := range all {
			views[i] = newConstellationView("", c)
		}
		return env.out.print(views, func(tw *tabwriter.Writer) {
			printConstellations(tw, views)
		})
	},
}

var renderCmd = &cobra.Command{
	Use:   "render TEXT",
	Short: "Re-encode a constellation in another spelling",
	Example: `  gnss render gps --spelling letter
  gnss render E --spelling long`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("spelling")
		sp, err := domain.ParseSpelling(name)
		if err != nil {
			return err
		}

		c, err := env.catalog.ParseConstellation(cmd.Context(), args[0])
		if err != nil {
			return unknownConstellation(env, args[0], false)
		}
		text, err := env.catalog.RenderConstellation(cmd.Context(), c, sp)
		if err != nil {
			return err
		}

		result := map[string]string{"input": args[0], "spelling": sp.String(), "text": text}
		return env.out.print(result, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, text)
		})
	},
}

var svCmd = &cobra.Command{
	Use:   "sv ID...",
	Short: "Decode satellite identifiers",
	Example: `  gnss sv G01 C05 S23`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		views := make([]svView, 0, len(args))
		for _, id := range args {
			sv, err := env.catalog.ResolveSV(ctx, id)
			if err != nil {
				return err
			}

			var (
				entry  *domain.SBASEntry
				launch time.Time
			)
			if sv.Constellation.IsSBAS() {
				e, err := env.catalog.LookupSBAS(ctx, sv.PRN)
				switch {
				case err == nil:
					entry = &e
				case !errors.Is(err, domain.ErrEntryNotFound):
					return err
				}
				if launch, _, err = env.catalog.LaunchDatetime(ctx, sv); err != nil {
					return err
				}
			}
			views = append(views, newSVView(sv, entry, launch))
		}

		return env.out.print(views, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "SV\tCONSTELLATION\tPRN\tTRUE\tTIMESCALE\tVEHICLE\tLAUNCHED")
			for _, v := range views {
				trueNum := "-"
				if v.TrueSatelliteNumber > 0 {
					trueNum = strconv.Itoa(v.TrueSatelliteNumber)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
					v.SV, v.Constellation, v.PRN, trueNum, dash(v.Timescale), dash(v.Vehicle), dash(v.Launch))
			}
		})
	},
}

var sbasCmd = &cobra.Command{
	Use:   "sbas [SLOT]",
	Short: "List SBAS database entries",
	Example: `  gnss sbas
  gnss sbas --constellation EGNOS
  gnss sbas 23 --coverage`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		withCoverage, _ := cmd.Flags().GetBool("coverage")
		filter, _ := cmd.Flags().GetString("constellation")

		db, err := env.database(ctx)
		if err != nil {
			return err
		}

		var entries []domain.SBASEntry
		if len(args) == 1 {
			slot, err := strconv.ParseUint(args[0], 10, 8)
			if err != nil {
				return fmt.Errorf("invalid slot %q: must be between 0 and 255", args[0])
			}
			sv, ok := domain.NewSBAS(db, uint8(slot))
			if !ok {
				return fmt.Errorf("slot %d: %w", slot, domain.ErrEntryNotFound)
			}
			e, _ := db.Lookup(sv.PRN)
			entries = []domain.SBASEntry{e}
		} else {
			entries = db.Entries()
		}

		if filter != "" {
			c, err := env.catalog.ParseConstellation(ctx, filter)
			if err != nil {
				return unknownConstellation(env, filter, false)
			}
			kept := entries[:0]
			for _, e := range entries {
				if e.Constellation == c {
					kept = append(kept, e)
				}
			}
			entries = kept
		}

		views := make([]entryView, len(entries))
		for i, e := range entries {
			views[i] = newEntryView(e, withCoverage)
		}
		return env.out.print(views, func(tw *tabwriter.Writer) {
			printEntries(tw, views)
		})
	},
}

var selectCmd = &cobra.Command{
	Use:   "select --lon LON --lat LAT",
	Short: "Select the augmentation service covering a coordinate",
	Example: `  gnss select --lon 2.35 --lat 48.85`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}
		lon, _ := cmd.Flags().GetFloat64("lon")
		lat, _ := cmd.Flags().GetFloat64("lat")

		if err := env.catalog.Load(cmd.Context()); err != nil {
			return err
		}
		selector := application.NewSelectorService(env.catalog, &output.NoOpMetrics{}, env.logger)
		sel, err := selector.Select(cmd.Context(), domain.NewCoordinate(lon, lat))
		if err != nil {
			return err
		}

		view := newSelectionView(sel)
		return env.out.print(view, func(tw *tabwriter.Writer) {
			if view.Entry == nil {
				fmt.Fprintf(tw, "no augmentation service covers %s\n", sel.Coordinate)
				return
			}
			fmt.Fprintf(tw, "%s\t%s (%s)\n", view.Constellation, view.Entry.SV, dash(view.Entry.Vehicle))
			if view.Overlapping {
				for _, m := range view.Matches[1:] {
					fmt.Fprintf(tw, "also\t%s %s\n", m.Constellation, m.SV)
				}
			}
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export --out PATH",
	Short: "Export the SBAS database as SQLite, JSON or GeoJSON",
	Long: `Export writes the configured database to PATH. The format follows the
extension: .sqlite or .db for SQLite, .json for the database document,
.geojson for a FeatureCollection of the coverage regions.`,
	Example: `  gnss export --out sbas.sqlite
  gnss export --out coverage.geojson`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("out")
		ctx := cmd.Context()

		db, err := env.database(ctx)
		if err != nil {
			return err
		}

		if err := exportDatabase(ctx, db, path); err != nil {
			return err
		}

		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		result := map[string]interface{}{
			"path":    path,
			"entries": db.Len(),
			"bytes":   info.Size(),
		}
		return env.out.print(result, func(tw *tabwriter.Writer) {
			fmt.Fprintf(tw, "wrote %d entries to %s (%s)\n", db.Len(), path, humanize.Bytes(uint64(info.Size())))
		})
	},
}

// exportDatabase writes db to path in the format selected by its extension.
func exportDatabase(ctx context.Context, db *domain.Database, path string) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".db":
		return sqlite.NewExporter().Export(ctx, db, path)
	case ".json":
		doc, err := bundle.Encode(db)
		if err != nil {
			return err
		}
		data = doc
	case ".geojson":
		doc, err := bundle.CoverageCollection(db.Entries()).MarshalJSON()
		if err != nil {
			return err
		}
		data = doc
	default:
		return fmt.Errorf("unsupported export format %q (.sqlite, .db, .json, .geojson)", filepath.Ext(path))
	}
	return os.WriteFile(path, data, 0o644)
}

var validateCmd = &cobra.Command{
	Use:   "validate PATH...",
	Short: "Validate candidate SBAS database files",
	Long: `Validate decodes every .json, .sqlite and .db file under the given
directories or files and checks it against the database invariants.
The command fails when any file is invalid.

With --watch it keeps running and re-validates files as they change.`,
	Example: `  gnss validate ./data
  gnss validate ./data/sbas.json --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}
		watch, _ := cmd.Flags().GetBool("watch")
		debounce, _ := cmd.Flags().GetDuration("debounce")

		store := storage.NewLocalStorage(sqlite.Load, args...)
		validation := application.NewValidationService(store, 0, env.logger)

		result, err := validation.ValidateAll(cmd.Context())
		if err != nil {
			return err
		}
		views := make([]reportView, len(result.Reports))
		for i, r := range result.Reports {
			views[i] = newReportView(r)
		}
		if err := env.out.print(views, func(tw *tabwriter.Writer) {
			printReports(tw, views)
		}); err != nil {
			return err
		}

		if watch {
			return watchCandidates(cmd.Context(), env, validation, args, debounce)
		}
		if result.Invalid > 0 {
			return fmt.Errorf("%d of %d files invalid", result.Invalid, result.Valid+result.Invalid)
		}
		return nil
	},
}

// watchCandidates re-validates changed files until interrupted.
func watchCandidates(
	ctx context.Context,
	env *commandEnv,
	validation *application.ValidationService,
	paths []string,
	debounce time.Duration,
) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	handler := func(ctx context.Context, event watcher.Event) error {
		mu.Lock()
		defer mu.Unlock()

		if event.Operation == watcher.OpDelete {
			validation.Forget(event.Path)
			env.logger.Warn("candidate removed", "path", event.Path)
			return nil
		}
		view := newReportView(validation.ValidateFile(ctx, event.Path))
		return env.out.print(view, func(tw *tabwriter.Writer) {
			printReports(tw, []reportView{view})
		})
	}

	w, err := watcher.New(watcher.Config{Paths: paths, Debounce: debounce}, handler, env.logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	<-ctx.Done()
	return nil
}

var cosparCmd = &cobra.Command{
	Use:     "cospar DESIGNATOR...",
	Short:   "Decode international launch designators",
	Example: `  gnss cospar 2018-080A`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newPrinter(cmd.OutOrStdout(), outputFormat)
		if err != nil {
			return err
		}

		type view struct {
			Designator string `json:"designator" yaml:"designator"`
			Year       uint16 `json:"year" yaml:"year"`
			Launch     uint16 `json:"launch" yaml:"launch"`
			Piece      string `json:"piece" yaml:"piece"`
		}
		views := make([]view, 0, len(args))
		for _, text := range args {
			c, err := domain.ParseCOSPAR(text)
			if err != nil {
				return err
			}
			views = append(views, view{Designator: c.String(), Year: c.Year, Launch: c.Launch, Piece: c.Piece})
		}

		return out.print(views, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "DESIGNATOR\tYEAR\tLAUNCH\tPIECE")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", v.Designator, v.Year, v.Launch, dash(v.Piece))
			}
		})
	},
}

var domesCmd = &cobra.Command{
	Use:     "domes NUMBER...",
	Short:   "Decode IERS DOMES site numbers",
	Example: `  gnss domes 10002M006`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newPrinter(cmd.OutOrStdout(), outputFormat)
		if err != nil {
			return err
		}

		type view struct {
			DOMES      string `json:"domes" yaml:"domes"`
			Area       uint16 `json:"area" yaml:"area"`
			Site       uint8  `json:"site" yaml:"site"`
			Point      string `json:"point" yaml:"point"`
			Sequential uint16 `json:"sequential" yaml:"sequential"`
		}
		views := make([]view, 0, len(args))
		for _, text := range args {
			d, err := domain.ParseDOMES(text)
			if err != nil {
				return err
			}
			point := "instrument"
			if d.Point == domain.Monument {
				point = "monument"
			}
			views = append(views, view{DOMES: d.String(), Area: d.Area, Site: d.Site, Point: point, Sequential: d.Sequential})
		}

		return out.print(views, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "DOMES\tAREA\tSITE\tPOINT\tSEQUENTIAL")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%03d\t%02d\t%s\t%03d\n", v.DOMES, v.Area, v.Site, v.Point, v.Sequential)
			}
		})
	},
}

func init() {
	parseCmd.Flags().Bool("country", false, "treat arguments as country codes of navigation constellations")
	parseCmd.Flags().Bool("sbas", false, "treat arguments as country codes of augmentation services")
	parseCmd.MarkFlagsMutuallyExclusive("country", "sbas")

	renderCmd.Flags().String("spelling", domain.SpellingLong.String(), "target spelling (long, short, letter)")

	sbasCmd.Flags().String("constellation", "", "only list entries of this augmentation service")
	sbasCmd.Flags().Bool("coverage", false, "include coverage regions as WKT")

	selectCmd.Flags().Float64("lon", 0, "longitude in decimal degrees")
	selectCmd.Flags().Float64("lat", 0, "latitude in decimal degrees")
	_ = selectCmd.MarkFlagRequired("lon")
	_ = selectCmd.MarkFlagRequired("lat")

	exportCmd.Flags().String("out", "", "output file (.sqlite, .db, .json, .geojson)")
	_ = exportCmd.MarkFlagRequired("out")

	validateCmd.Flags().Bool("watch", false, "keep running and re-validate files as they change")
	validateCmd.Flags().Duration("debounce", 500*time.Millisecond, "debounce interval for watched files")
}
