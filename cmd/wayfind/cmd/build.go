package cmd

import (
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/campusops/wayfind/pkg/aggregator"
	"github.com/campusops/wayfind/pkg/logging"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the aggregation pipeline and write JSON artifacts",
	Long: `Build fetches every upstream source, merges the records into the
canonical location set, and writes the locations and services resource
collections as JSON artifacts to the output directory.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	result, err := aggregator.New(cfg, *logging.Default()).Run(cmd.Context())
	if err != nil {
		return err
	}
	if err := aggregator.WriteArtifacts(cfg.Output.Dir, result); err != nil {
		return err
	}

	printBuildSummary(result)
	return nil
}

func printBuildSummary(result *aggregator.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Location Source", "Count"})

	tags := make([]string, 0, len(result.SourceCounts))
	for tag := range result.SourceCounts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	total := 0
	for _, tag := range tags {
		count := result.SourceCounts[tag]
		total += count
		table.Append([]string{tag, strconv.Itoa(count)})
	}
	table.Append([]string{"total", strconv.Itoa(total)})
	table.Append([]string{"services", strconv.Itoa(len(result.Services))})
	table.Render()
}
