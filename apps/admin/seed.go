package main

import (
	"github.com/spf13/cobra"
	"github.com/volatiletech/null/v8"

	"github.com/worksite/progress/core/project"
)

// seedCmd loads a small demo project so a fresh install has something to show.
func (cli *commandLine) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a demo project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			prj, err := cli.prjSvc.CreateProject(ctx, project.NewProject{
				Name:       "Demo Solar Farm",
				Location:   "Karibib",
				Kind:       project.KindGroundMount,
				AssignedTo: "demo",
			})
			if err != nil {
				return err
			}
			logger.Printf("created project %s (%s)", prj.Name, prj.ID)

			_, err = cli.prjSvc.RedefineSections(ctx, prj.ID, []project.SectionDefinition{
				{
					Title: "Civil Works",
					Items: []project.ItemDefinition{
						{Description: "Pile installation", Unit: "piles", Scope: null.Float64From(480), TargetedStart: "2026-09-07", TargetedEnd: "2026-10-02"},
						{Description: "Trenching", Unit: "m", Scope: null.Float64From(1200), TargetedStart: "2026-09-14", TargetedEnd: "2026-10-09"},
					},
				},
				{
					Title: "Mechanical",
					Items: []project.ItemDefinition{
						{Description: "Tracker assembly", Unit: "tables", Scope: null.Float64From(240), TargetedStart: "2026-09-28", TargetedEnd: "2026-11-06"},
						{Description: "Module mounting", Unit: "modules", Scope: null.Float64From(12960), TargetedStart: "2026-10-05", TargetedEnd: "2026-11-27"},
					},
				},
			})
			if err != nil {
				return err
			}
			logger.Printf("seeded sections for %s", prj.Name)
			return nil
		},
	}
}
