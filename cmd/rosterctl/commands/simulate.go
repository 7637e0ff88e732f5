package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/alanyang/robot-roster/internal/config"
	"github.com/alanyang/robot-roster/internal/domain/eligibility"
	"github.com/alanyang/robot-roster/internal/domain/simulation"
)

// NewSimulateCommand returns the simulate subcommand.
func NewSimulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Hand out tasks one at a time to the first eligible robot",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "tasks",
				Aliases: []string{"n"},
				Usage:   "Number of tasks to assign",
				Value:   30,
			},
			quotasFlag(),
			cooldownFlag(),
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Where quotas live: per-call or in-state",
				Value: simulation.QuotasPerCall.String(),
			},
			&cli.IntFlag{
				Name:  "max-idle",
				Usage: "Stop after this many blank slots in a row",
				Value: simulation.DefaultMaxIdle,
			},
			&cli.StringFlag{
				Name:  "seed-file",
				Usage: "Read quotas and cooldown from a pool in this seed file",
			},
			&cli.StringFlag{
				Name:  "pool",
				Usage: "Pool name to use from --seed-file",
			},
		},
		Action: runSimulate,
	}
}

func runSimulate(_ context.Context, cmd *cli.Command) error {
	if cmd.Int("tasks") < 0 {
		return fmt.Errorf("--tasks must not be negative")
	}
	mode, err := simulation.ParseMode(cmd.String("mode"))
	if err != nil {
		return err
	}

	quotas, cooldown, err := simulationInputs(cmd)
	if err != nil {
		return err
	}

	res, err := simulation.Run(simulation.Config{
		Tasks:    cmd.Int("tasks"),
		Quotas:   quotas,
		Cooldown: cooldown,
		Mode:     mode,
		MaxIdle:  cmd.Int("max-idle"),
	})
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	return writeJSON(cmd.Root().Writer, res)
}

func simulationInputs(cmd *cli.Command) (eligibility.QuotaTable, eligibility.Value, error) {
	cooldown, err := parseCooldown(cmd.String("cooldown"))
	if err != nil {
		return nil, eligibility.Null(), err
	}

	path := cmd.String("seed-file")
	if path == "" {
		quotas, err := parseQuotas(cmd.String("quotas"))
		return quotas, cooldown, err
	}

	seeds, err := config.LoadSeeds(path)
	if err != nil {
		return nil, eligibility.Null(), err
	}
	name := cmd.String("pool")
	for _, p := range seeds.Pools {
		if p.Name != name {
			continue
		}
		if cooldown.IsNull() && p.Cooldown != nil {
			cooldown = eligibility.Int(int64(*p.Cooldown))
		}
		return eligibility.Quotas(p.Quotas), cooldown, nil
	}
	return nil, eligibility.Null(), fmt.Errorf("pool %q not found in %s", name, path)
}
