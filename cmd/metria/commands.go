package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/metria/innovation-accounting/internal/engine"
	"github.com/metria/innovation-accounting/internal/portfolio"
	"github.com/metria/innovation-accounting/internal/project"
	"github.com/metria/innovation-accounting/internal/server"
	"github.com/metria/innovation-accounting/pkg/constants"
	"github.com/metria/innovation-accounting/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	var flags globalFlags
	var a *app

	root := &cobra.Command{
		Use:           "metria",
		Short:         "Innovation accounting: viability metrics for innovation projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = newApp(flags)
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	pf.StringVar(&flags.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVar(&flags.storePath, "store", "", "project database override")

	appFn := func() *app { return a }
	root.AddCommand(
		newComputeCmd(appFn),
		newSaveCmd(appFn),
		newListCmd(appFn),
		newReportCmd(appFn),
		newPortfolioCmd(appFn),
		newServeCmd(appFn),
	)
	return root
}

func newComputeCmd(appFn func() *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute metrics for a project file without saving it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			defer a.close()
			d, err := readDraft(file)
			if err != nil {
				return err
			}
			// Computing never touches the store.
			metrics, warnings, err := project.NewService(a.logger, nil).Compute(d)
			if err != nil {
				return err
			}
			return a.writeMetrics(cmd.OutOrStdout(), metrics, warnings)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "project YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSaveCmd(appFn func() *app) *cobra.Command {
	var file string
	var narrate bool
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Compute and store a project file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			defer a.close()
			d, err := readDraft(file)
			if err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := a.service.Save(ctx, d)
			if err != nil {
				return err
			}
			if narrate {
				if withNarrative, err := a.service.AttachNarrative(ctx, p.ID); err != nil {
					a.logger.Warn("narrative not attached",
						zap.String("op", "main.save"),
						zap.String("project", p.ID),
						zap.Error(err),
					)
				} else {
					p = withNarrative
				}
			}
			return a.writeProjects(cmd.OutOrStdout(), []*project.Project{p})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "project YAML file")
	cmd.Flags().BoolVar(&narrate, "narrate", false, "request the AI commentary after saving")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newListCmd(appFn func() *app) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's projects, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			defer a.close()
			if err := a.open(); err != nil {
				return err
			}
			projects, err := a.service.List(cmd.Context(), user)
			if err != nil {
				return err
			}
			return a.writeProjects(cmd.OutOrStdout(), projects)
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "owner user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newReportCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report <id>",
		Short: "Show the report for a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			defer a.close()
			if err := a.open(); err != nil {
				return err
			}
			p, err := a.service.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.writeProjects(cmd.OutOrStdout(), []*project.Project{p})
		},
	}
}

func newPortfolioCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Summarize every stored project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			defer a.close()
			if err := a.open(); err != nil {
				return err
			}
			projects, err := a.service.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch a.outputFormat {
			case constants.OutputFormatJSON:
				return output.JSONFormat(w, portfolio.Summarize(projects))
			case constants.OutputFormatCSV:
				// CSV has no room for the aggregate; export the rows instead.
				return a.writeProjects(w, projects)
			}
			return output.PrettySummary(w, portfolio.Summarize(projects), a.conf.Output.Currency)
		},
	}
}

func newServeCmd(appFn func() *app) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			defer a.close()
			if err := a.open(); err != nil {
				return err
			}
			if address != "" {
				a.conf.Server.Address = address
			}
			limit, err := server.BodyLimit(a.conf.Server)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              a.conf.Server.Address,
				Handler:           server.NewHandler(a.logger, a.service, limit, version),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("server listening",
					zap.String("op", "main.serve"),
					zap.String("address", srv.Addr),
					zap.String("version", version),
				)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server failed: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			a.logger.Info("server shutting down", zap.String("op", "main.serve"))
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	return cmd
}

func (a *app) writeMetrics(w io.Writer, metrics engine.ComputedMetrics, warnings []string) error {
	switch a.outputFormat {
	case constants.OutputFormatJSON:
		return output.JSONFormat(w, struct {
			Metrics  engine.ComputedMetrics `json:"metrics"`
			Warnings []string               `json:"warnings,omitempty"`
		}{metrics, warnings})
	case constants.OutputFormatCSV:
		return output.CsvMetrics(w, metrics)
	}
	return output.PrettyMetrics(w, metrics, warnings, a.conf.Output.Currency)
}

func (a *app) writeProjects(w io.Writer, projects []*project.Project) error {
	reports := make([]*project.Report, 0, len(projects))
	for _, p := range projects {
		r, err := project.BuildReport(p)
		if err != nil {
			return err
		}
		reports = append(reports, r)
	}
	switch a.outputFormat {
	case constants.OutputFormatJSON:
		return output.JSONFormat(w, reports)
	case constants.OutputFormatCSV:
		return output.CsvFormat(w, reports)
	}
	return output.PrettyFormat(w, reports, a.conf.Output.Currency)
}
