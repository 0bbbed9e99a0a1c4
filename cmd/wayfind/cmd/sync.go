package cmd

import (
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/campusops/wayfind/pkg/aggregator"
	"github.com/campusops/wayfind/pkg/index"
	"github.com/campusops/wayfind/pkg/locations"
	"github.com/campusops/wayfind/pkg/logging"
)

var syncRebuild bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the built artifacts into the search index",
	Long: `Sync loads the locations and services artifacts, diffs each
collection against the IDs the search index currently holds, and executes
the resulting create/update/delete plan as bulk requests. A partial bulk
failure logs every failing document and exits non-zero.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncRebuild, "build", false, "rebuild artifacts before syncing")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := *logging.Default()

	var locs, services []locations.Resource
	if syncRebuild {
		result, err := aggregator.New(cfg, logger).Run(cmd.Context())
		if err != nil {
			return err
		}
		if err := aggregator.WriteArtifacts(cfg.Output.Dir, result); err != nil {
			return err
		}
		locs, services = result.Locations, result.Services
	} else {
		locs, services, err = aggregator.LoadArtifacts(cfg.Output.Dir)
		if err != nil {
			return err
		}
	}

	client, err := index.NewClient(cfg.Search.Addresses, cfg.Search.Username, cfg.Search.Password, logger)
	if err != nil {
		return err
	}

	collections := []struct {
		index string
		docs  []locations.Resource
	}{
		{"locations", locs},
		{"services", services},
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Index", "Create", "Update", "Delete", "Current", "New"})

	for _, collection := range collections {
		current, err := client.AllIDs(cmd.Context(), collection.index)
		if err != nil {
			return err
		}

		plan := index.BuildPlan(current, collection.docs)

		byID := make(map[string]locations.Resource, len(collection.docs))
		for _, doc := range collection.docs {
			byID[doc.ID] = doc
		}

		logger.Info().
			Str("index", collection.index).
			Int("create", len(plan.Create)).
			Int("update", len(plan.Update)).
			Int("delete", len(plan.Delete)).
			Msg("executing sync plan")
		if err := client.Execute(cmd.Context(), collection.index, plan, byID); err != nil {
			return err
		}

		table.Append([]string{
			collection.index,
			strconv.Itoa(len(plan.Create)),
			strconv.Itoa(len(plan.Update)),
			strconv.Itoa(len(plan.Delete)),
			strconv.Itoa(len(current)),
			strconv.Itoa(len(collection.docs)),
		})
	}

	table.Render()
	return nil
}
