package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/alanyang/robot-roster/internal/domain/eligibility"
)

// NewEvaluateCommand returns the evaluate subcommand.
func NewEvaluateCommand() *cli.Command {
	return &cli.Command{
		Name:  "evaluate",
		Usage: "Run a single eligibility evaluation with no carried state",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "batch",
				Aliases: []string{"b"},
				Usage:   "Assignment history as a JSON array, e.g. '[101, 202, null]'",
				Value:   "[]",
			},
			quotasFlag(),
			cooldownFlag(),
		},
		Action: runEvaluate,
	}
}

func runEvaluate(_ context.Context, cmd *cli.Command) error {
	var batch []eligibility.Value
	if err := json.Unmarshal([]byte(cmd.String("batch")), &batch); err != nil {
		return fmt.Errorf("parse --batch: %w", err)
	}
	quotas, err := parseQuotas(cmd.String("quotas"))
	if err != nil {
		return err
	}
	cooldown, err := parseCooldown(cmd.String("cooldown"))
	if err != nil {
		return err
	}

	eligible, err := eligibility.Evaluate(batch, quotas, cooldown, nil)
	if err != nil {
		return err
	}
	return writeJSON(cmd.Root().Writer, map[string]any{"eligible": eligible})
}
