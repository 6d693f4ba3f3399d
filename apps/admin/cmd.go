package main

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/worksite/progress/core/project"
	"github.com/worksite/progress/storage/database"
)

type commandLine struct {
	db     *sql.DB
	prjSvc project.ServiceInterface
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Worksite Progress ops commands",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		cli.migrateCmd(),
		cli.seedCmd(),
		cli.backfillDatesCmd(),
	)
	return root
}

func (cli *commandLine) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Run database migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "up"
			if len(args) > 0 {
				dir = args[0]
			}
			switch dir {
			case "down":
				return database.MigrateDown(cli.db)
			case "status":
				return database.MigrationStatus(cli.db)
			default:
				return database.Migrate(cli.db)
			}
		},
	}
	return cmd
}

func (cli *commandLine) backfillDatesCmd() *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "backfill-dates",
		Short: "Recompute actual start/end dates from the progress ledger",
		Long: "Recomputes every work item's actual start and end dates from its recorded " +
			"progress entries. Use after importing historical entries or fixing ledger data.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if projectID != "" {
				return cli.prjSvc.BackfillProjectDates(ctx, projectID)
			}

			prjs, err := cli.prjSvc.QueryAllProjects(ctx)
			if err != nil {
				return err
			}
			for _, prj := range prjs {
				logger.Printf("backfilling dates: %s (%s)", prj.Name, prj.ID)
				if err = cli.prjSvc.BackfillProjectDates(ctx, prj.ID); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "limit the backfill to one project ID")
	return cmd
}
