package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal"
	postgres_adapter "github.com/Pol1234589A/proyecto-rentia-sub003/internal/adapters/postgres"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/adapters/rentger_client"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/adapters/runlock"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/adapters/xlsx_report"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/configs"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/usecase"
	"github.com/Pol1234589A/proyecto-rentia-sub003/pkg/postgres"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type options struct {
	envFile    string
	failFast   bool
	dryRun     bool
	reportPath string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "reconcile-contracts",
		Short: "Run one contract reconciliation against the remote system",
		Long: `Fetches active contracts from the remote property-management system,
matches them with local contracts and creates or updates local records.

The run is best-effort by default: a failed record is reported and the
batch continues. Use --fail-fast to stop at the first write failure and
--dry-run to only print the plan.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env", "", "path to .env file (default: ./.env if present)")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "stop the batch at the first write failure")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "compute the report without writing anything")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "write the batch report to this .xlsx file")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := configs.LoadConfig(opts.envFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	baseLogger, fluentClient, err := internal.NewLogger(cfg)
	if err != nil {
		return err
	}
	if fluentClient != nil {
		defer fluentClient.Close()
	}

	jobLogger := baseLogger.WithFields(port.Fields{
		"component": "reconcile_cli",
		"trace_id":  uuid.New().String(),
	})
	ctx := contextkeys.ContextWithLogger(cmd.Context(), jobLogger)

	dbPool, err := postgres.NewClient(ctx, postgres.Config{
		DatabaseURL: cfg.Database.URL,
		MaxConns:    int32(cfg.Database.MaxConns),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer dbPool.Close()

	if err := postgres_adapter.EnsureSchema(ctx, dbPool); err != nil {
		return err
	}

	contractRepo, err := postgres_adapter.NewPostgresContractRepository(dbPool)
	if err != nil {
		return err
	}

	remoteClient, err := rentger_client.NewClient(rentger_client.Config{
		BaseURL:    cfg.Rentger.BaseURL,
		APIToken:   cfg.Rentger.APIToken,
		Timeout:    cfg.Rentger.Timeout,
		RetryCount: cfg.Rentger.RetryCount,
	})
	if err != nil {
		return err
	}

	// с Redis запуск из CLI не пересечется с запуском внутри сервиса
	var runLock port.RunLockPort = runlock.NewMemoryRunLock()
	if cfg.Redis.Enabled {
		redisClient, err := runlock.NewRedisClient(ctx, runlock.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer redisClient.Close()

		runLock, err = runlock.NewRedisRunLock(redisClient, cfg.Reconcile.LockTTL)
		if err != nil {
			return err
		}
	}

	reconcileUC := usecase.NewReconcileContractsUseCase(remoteClient, contractRepo, runLock, nil, cfg.Reconcile.Workers)

	report, runErr := reconcileUC.Execute(ctx, domain.ReconcileOptions{
		FailFast: opts.failFast,
		DryRun:   opts.dryRun,
	})
	if report == nil {
		return runErr
	}

	printSummary(cmd, report)

	if opts.reportPath != "" {
		if err := xlsx_report.WriteFile(opts.reportPath, report); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", opts.reportPath)
	}

	if runErr != nil {
		return runErr
	}
	if report.HasFailures() {
		return fmt.Errorf("%d record(s) failed", report.Failed)
	}
	return nil
}

func printSummary(cmd *cobra.Command, report *domain.ReconcileReport) {
	out := cmd.OutOrStdout()
	mode := "apply"
	if report.Options.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(out, "Run %s (%s)\n", report.RunID, mode)
	fmt.Fprintf(out, "  created: %d\n  updated: %d\n  skipped: %d\n  failed:  %d\n",
		report.Created, report.Updated, report.Skipped, report.Failed)

	for _, res := range report.Results {
		if res.Outcome != domain.OutcomeFailed {
			continue
		}
		fmt.Fprintf(out, "  ! %s (%s): %s\n", res.RemoteID, res.TenantName, res.Reason)
	}
}
