package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/webmasterarbez/elaoms/pkg/cli/config"
	"github.com/webmasterarbez/elaoms/pkg/domain/types"
	"github.com/webmasterarbez/elaoms/pkg/utils/logging"
)

var tierColors = map[types.SalienceTier]*color.Color{
	types.SalienceHigh:   color.New(color.FgRed, color.Bold),
	types.SalienceMedium: color.New(color.FgYellow),
	types.SalienceLow:    color.New(color.FgHiBlack),
}

func cmdValidate() *cli.Command {
	var salienceCfg config.Salience

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the salience configuration and print the effective field mapping",
		Flags:   salienceCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			table, err := salienceCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			sorted := config.SortedFields(table)
			w := c.Root().Writer
			for _, tier := range types.AllSalienceTiers() {
				fmt.Fprintf(w, "%s %s\n", tierLabel(tier), strings.Join(sorted[tier], ", "))
			}
			fmt.Fprintf(w, "%s (unmapped fields)\n", tierLabel(types.SalienceLow))

			logging.Default().Info("Configuration validation passed",
				"salience", salienceCfg,
				"field_count", len(table.Fields()),
			)
			return nil
		},
	}
}

func tierLabel(tier types.SalienceTier) string {
	return tierColors[tier].Sprintf("%-6s (%.1f)", strings.ToUpper(tier.String()), tier.Value())
}
