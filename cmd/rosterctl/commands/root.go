package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/alanyang/robot-roster/internal/domain/eligibility"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "rosterctl",
		Usage: "Run the robot eligibility engine from the command line",
		Commands: []*cli.Command{
			NewSimulateCommand(),
			NewEvaluateCommand(),
		},
	}
}

func quotasFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "quotas",
		Aliases: []string{"q"},
		Usage:   `Quota table as JSON, e.g. '{"101": 2}' or '[{"worker": 101, "limit": 2}]'`,
	}
}

func cooldownFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "cooldown",
		Aliases: []string{"c"},
		Usage:   "Cooldown as a JSON value (empty = default)",
	}
}

func parseQuotas(raw string) (eligibility.QuotaTable, error) {
	if raw == "" {
		return eligibility.QuotaTable{}, nil
	}
	var q eligibility.QuotaTable
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, fmt.Errorf("parse --quotas: %w", err)
	}
	return q, nil
}

func parseCooldown(raw string) (eligibility.Value, error) {
	if raw == "" {
		return eligibility.Null(), nil
	}
	var v eligibility.Value
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return eligibility.Null(), fmt.Errorf("parse --cooldown: %w", err)
	}
	return v, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
