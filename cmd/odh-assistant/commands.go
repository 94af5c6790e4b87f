package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vitebski/odh-assistant/internal/assistant"
	"github.com/vitebski/odh-assistant/internal/config"
	"github.com/vitebski/odh-assistant/internal/connector"
	"github.com/vitebski/odh-assistant/internal/datasource"
	"github.com/vitebski/odh-assistant/internal/draft"
	"github.com/vitebski/odh-assistant/internal/selection"
	"github.com/vitebski/odh-assistant/internal/server"
	"github.com/vitebski/odh-assistant/internal/store"
	"github.com/vitebski/odh-assistant/internal/utils"
	"github.com/vitebski/odh-assistant/pkg/models"
)

// backend is the table source and the transformation store of one run
type backend struct {
	client datasource.Client
	store  store.TransformationStore
	db     *connector.DatabaseConnector
}

func openBackend(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*backend, error) {
	if cfg.Source == config.SourceSample {
		client := datasource.NewSampleClient(datasource.DemoTables(), cfg.SampleRows, logger)
		client.ForeignKeys = datasource.DemoForeignKeys()
		logger.Info("Using the demo catalogue, transformations are kept in memory")
		return &backend{client: client, store: store.NewMemoryStore(logger)}, nil
	}

	dbCfg := cfg.Database
	if !utils.ValidateConnectionParams(dbCfg.Host, dbCfg.User, dbCfg.Password, dbCfg.Database, dbCfg.Port, logger) {
		return nil, fmt.Errorf("invalid database connection parameters")
	}

	db := connector.NewDatabaseConnector(dbCfg.Host, dbCfg.User, dbCfg.Password, dbCfg.Database, dbCfg.Port, logger)
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	st := store.NewMySQLStore(db, logger)
	if err := st.EnsureSchema(ctx); err != nil {
		db.Disconnect()
		return nil, err
	}
	return &backend{client: datasource.NewCatalogClient(db, logger), store: st, db: db}, nil
}

func (b *backend) Close() {
	if b.db != nil {
		b.db.Disconnect()
	}
}

func newGenerateCmd(opts *globalOptions) *cobra.Command {
	var (
		draftFile   string
		quotes      bool
		save        bool
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the query of a YAML draft",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, logger := opts.setup()

			d, err := draft.Load(draftFile)
			if err != nil {
				logger.Errorf("Failed to load draft: %v", err)
				os.Exit(1)
			}

			s := selection.New()
			d.Apply(s)
			if cmd.Flags().Changed("quotes") {
				s.SetQuotes(quotes)
			}

			utils.PrintDiagnostics(os.Stderr, s.Diagnose())

			query, ok := s.Generate()
			if !ok {
				logger.Error("The draft does not produce a query: it needs a table without relationship and at least one selected field")
				os.Exit(1)
			}
			fmt.Println(query)

			if !save {
				return
			}

			if name == "" {
				name = d.Name
			}
			if description == "" {
				description = d.Description
			}
			if name == "" {
				logger.Error("A transformation name is required to save, set --name or name in the draft")
				os.Exit(1)
			}

			ctx := context.Background()
			b, err := openBackend(ctx, cfg, logger)
			if err != nil {
				logger.Errorf("%v", err)
				os.Exit(1)
			}
			defer b.Close()

			tr := &models.Transformation{
				Name:           name,
				Description:    description,
				Transformation: query,
				FileGroups:     s.FileGroups(),
				Private:        s.IsPrivate(),
			}
			if _, err := b.store.Save(ctx, tr); err != nil {
				logger.Errorf("Failed to save transformation: %v", err)
				os.Exit(1)
			}
			logger.Infof("Saved transformation %s with id %d", tr.Name, tr.ID)
		},
	}

	cmd.Flags().StringVarP(&draftFile, "file", "f", "", "Path to the YAML draft")
	cmd.Flags().BoolVarP(&quotes, "quotes", "q", false, "Quote every identifier (overrides the draft)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the query as a transformation")
	cmd.Flags().StringVar(&name, "name", "", "Transformation name (default: draft name)")
	cmd.Flags().StringVar(&description, "description", "", "Transformation description (default: draft description)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newCatalogCmd(opts *globalOptions) *cobra.Command {
	var (
		search   string
		page     int
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the tables that can be selected",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, logger := opts.setup()

			ctx := context.Background()
			b, err := openBackend(ctx, cfg, logger)
			if err != nil {
				logger.Errorf("%v", err)
				os.Exit(1)
			}
			defer b.Close()

			tables, err := b.client.List(ctx, models.ListParams{
				Search: search,
				Paging: models.Paging{Page: page, PageSize: pageSize},
			})
			if err != nil {
				logger.Errorf("Failed to list tables: %v", err)
				os.Exit(1)
			}
			utils.PrintTables(os.Stdout, tables)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Only list tables whose name contains this text")
	cmd.Flags().IntVar(&page, "page", 1, "Page to list")
	cmd.Flags().IntVar(&pageSize, "page-size", datasource.DefaultPageSize, "Tables per page")

	return cmd
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the assistant HTTP API",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, logger := opts.setup()
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}

			b, err := openBackend(context.Background(), cfg, logger)
			if err != nil {
				logger.Errorf("%v", err)
				os.Exit(1)
			}
			defer b.Close()

			fetcher := datasource.NewFetcher(b.client, cfg.PreviewTimeout, logger)
			registry := assistant.NewRegistry(func() *assistant.Session {
				s := assistant.NewSession(b.client, fetcher, b.store, logger)
				s.PreviewPaging = models.Paging{Page: 1, PageSize: cfg.PreviewPageSize}
				return s
			})

			if logger.Level < logrus.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := server.NewServer(cfg.ListenAddr, server.NewRouter(registry, b.client, logger))

			go func() {
				logger.Infof("Server listening on %s", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatalf("HTTP server error: %v", err)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			logger.Info("Shutting down server gracefully ...")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Errorf("Server shutdown: %v", err)
			}
			fetcher.Wait()
			logger.Info("Server exiting")
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default: ODH_LISTEN_ADDR or :8080)")

	return cmd
}
