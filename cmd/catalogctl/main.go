package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	pipeline "github.com/vivispa/catalog-api/internal/catalog"
	"github.com/vivispa/catalog-api/internal/model"
	"github.com/vivispa/catalog-api/internal/repository/file"
	catalogService "github.com/vivispa/catalog-api/internal/service/catalog"
	"github.com/vivispa/catalog-api/pkg/metrics"
	"github.com/vivispa/catalog-api/pkg/validator"
)

type app struct {
	file    string
	query   string
	json    bool
	verbose bool
	timeout time.Duration

	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Run catalog queries against a catalog file",
		Long: `catalogctl loads a catalog file the same way the API does and runs the
filter pipeline over it. Criteria use the API's query string syntax:

  catalogctl items pricing -q 'category=Hydrofacial&sortBy=price-low-high'
  catalogctl offers -q 'location=Edmonton Trail'`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
			if a.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.file, "file", "f", "data/catalog.yaml", "catalog file to load")
	flags.StringVarP(&a.query, "query", "q", "", "filter criteria as a query string")
	flags.BoolVar(&a.json, "json", false, "print JSON instead of a table")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.DurationVar(&a.timeout, "timeout", 10*time.Second, "load timeout")

	root.AddCommand(
		a.itemsCmd(),
		a.groupsCmd(),
		a.optionsCmd(),
		a.filtersCmd(),
		a.offersCmd(),
		a.validateCmd(),
	)
	return root
}

// load reads the catalog file into a fresh service.
func (a *app) load(ctx context.Context) (*catalogService.Service, *model.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	repo := file.NewCatalogRepository(a.file, validator.New())
	m := metrics.NewMetrics(prometheus.NewRegistry(), "catalogctl", "catalog")
	svc := catalogService.NewService(repo, m, catalogService.Config{})

	snap, err := svc.Reload(ctx, catalogService.TriggerStartup)
	if err != nil {
		a.logger.Error("catalog load failed", zap.String("file", a.file), zap.Error(err))
		return nil, nil, err
	}
	a.logger.Debug("catalog loaded",
		zap.String("file", a.file),
		zap.Int("catalogs", len(snap.Catalogs)),
		zap.Int("items", snap.ItemCount()),
	)
	return svc, snap, nil
}

func (a *app) criteria() (model.Criteria, error) {
	v, err := url.ParseQuery(a.query)
	if err != nil {
		return model.Criteria{}, fmt.Errorf("failed to parse --query: %w", err)
	}
	return pipeline.ParseCriteria(v), nil
}

func (a *app) itemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "items [catalog]",
		Short: "List the items of a catalog that match --query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.criteria()
			if err != nil {
				return err
			}
			svc, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Query(cmd.Context(), args[0], c)
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeItems(cmd.OutOrStdout(), res)
		},
	}
}

func (a *app) groupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups [catalog]",
		Short: "Group matching items by category and subcategory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.criteria()
			if err != nil {
				return err
			}
			svc, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Groups(cmd.Context(), args[0], c)
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeGroups(cmd.OutOrStdout(), res)
		},
	}
}

func (a *app) optionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options [catalog] [field]",
		Short: "List the distinct values of category, subcategory or location",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			values, err := svc.Options(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(cmd.OutOrStdout(), values)
			}
			return writeLines(cmd.OutOrStdout(), values)
		},
	}
}

func (a *app) filtersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters [catalog]",
		Short: "Show the filter controls a catalog offers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			defs, err := svc.Definitions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(cmd.OutOrStdout(), defs)
			}
			return writeDefinitions(cmd.OutOrStdout(), defs)
		},
	}
}

func (a *app) offersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "offers",
		Short: "List offers as seen from the location in --query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.criteria()
			if err != nil {
				return err
			}
			svc, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Offers(cmd.Context(), c.Location, c)
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeItems(cmd.OutOrStdout(), res)
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the catalog file loads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, snap, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			return writeSnapshot(cmd.OutOrStdout(), a.file, snap)
		},
	}
}
