// Package main provides the command-line interface for partsched, an
// offline static scheduler for mixed-criticality periodic task sets on
// multicore partitioned architectures.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/partsched/partsched/internal/archive"
	"github.com/partsched/partsched/internal/config"
	"github.com/partsched/partsched/internal/driver"
	"github.com/partsched/partsched/internal/ioformat"
)

var (
	// ErrNoDataset is returned when neither --case nor --collection yields
	// a single filepath pair.
	ErrNoDataset = fmt.Errorf("no matching *.tsk/*.cfg files found")
)

type rootFlags struct {
	casePath         string
	collectionPath   string
	configPath       string
	algorithm        string
	objective        string
	format           string
	switchTime       int
	initialStep      int
	trialLimit       int
	seed             int64
	archiveBucket    string
	discoverTopology string
	verbose          bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "partsched",
		Short: "Static scheduler for mixed-criticality periodic task sets",
		Long: `partsched computes a time-triggered schedule over the hyperperiod for a
set of periodic tasks mapped onto a multicore, partitioned architecture. It
maps applications to CPUs and cores under a chosen schedulability test
(EDF or RM), places concrete execution slices on the timeline, and then
hill-climbs toward a better schedule under one of three objectives.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.casePath, "case", "", "Import a single problem from FOLDER (first *.tsk and *.cfg found)")
	cmd.Flags().StringVar(&flags.collectionPath, "collection", "", "Recursively import problems from FOLDER and its subfolders")
	cmd.Flags().StringVar(&flags.configPath, "config", "config.json", "Path to the JSON configuration file")
	cmd.Flags().StringVarP(&flags.algorithm, "algorithm", "a", "", "Scheduling algorithm: edf or rm")
	cmd.Flags().StringVarP(&flags.objective, "objective", "o", "", "Objective: cumulated_free, nrml_dist_free or min_e2e_app_del")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format: json, xml, svg or raw")
	cmd.Flags().IntVarP(&flags.switchTime, "switch-time", "s", -1, "Partition switch cost")
	cmd.Flags().IntVarP(&flags.initialStep, "initial-step", "i", -1, "Initial narrowing step for the optimizer")
	cmd.Flags().IntVarP(&flags.trialLimit, "trial-limit", "t", -1, "Maximum optimizer iterations")
	cmd.Flags().Int64Var(&flags.seed, "seed", 1, "RNG seed for the optimizer's random task swaps")
	cmd.Flags().StringVar(&flags.archiveBucket, "archive-bucket", "", "Optional S3 bucket to additionally archive results to")
	cmd.Flags().StringVar(&flags.discoverTopology, "discover-topology", "", "Discover the architecture live from an EC2 instance type instead of parsing the *.cfg file")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "Accepted for compatibility; does not change the output")

	return cmd
}

func runSchedule(ctx context.Context, flags *rootFlags) error {
	if flags.casePath == "" && flags.collectionPath == "" {
		return fmt.Errorf("one of --case or --collection is required")
	}

	pairs, err := discoverPairs(flags)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return ErrNoDataset
	}

	fmt.Fprintf(os.Stderr, "🔍 found %d problem(s)\n", len(pairs))

	overrides := config.Overrides{
		Algorithm:      flags.algorithm,
		AlgorithmSet:   flags.algorithm != "",
		Objective:      flags.objective,
		ObjectiveSet:   flags.objective != "",
		SwitchTime:     flags.switchTime,
		SwitchTimeSet:  flags.switchTime >= 0,
		InitialStep:    flags.initialStep,
		InitialStepSet: flags.initialStep >= 0,
		TrialLimit:     flags.trialLimit,
		TrialLimitSet:  flags.trialLimit >= 0,
	}

	file := loadConfigFile(flags.configPath)
	resolved := config.Resolve(overrides, file)

	params := driver.Params{
		Algorithm:    resolved.Algorithm,
		Objective:    resolved.Objective,
		SwitchTime:   resolved.SwitchTime,
		InitialStep:  resolved.InitialStep,
		TrialLimit:   resolved.TrialLimit,
		Seed:         flags.seed,
		InstanceType: flags.discoverTopology,
	}

	outcomes := driver.RunAll(ctx, pairs, params, ioformat.Format(flags.format))

	var uploader *archive.Uploader
	if flags.archiveBucket != "" {
		uploader, err = archive.New(ctx, flags.archiveBucket)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️ archive disabled: %v\n", err)
			uploader = nil
		}
	}

	failures := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "❌ %s: %v\n", o.Files.Tsk, o.Err)
			continue
		}

		fmt.Println(string(o.Output))

		if uploader != nil {
			key := o.Files.Tsk + "." + flags.format
			if err := uploader.PutSchedule(ctx, key, o.Output); err != nil {
				fmt.Fprintf(os.Stderr, "⚠️ %v\n", err)
			}

			metrics := archive.RunMetrics{
				Problem:      o.Files.Tsk,
				Score:        o.Metrics.Score,
				Iterations:   o.Metrics.Iterations,
				ElapsedMilli: o.Metrics.ElapsedMilli,
			}
			if err := uploader.PutMetrics(ctx, metrics); err != nil {
				fmt.Fprintf(os.Stderr, "⚠️ %v\n", err)
			}
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d problems failed", failures, len(outcomes))
	}

	fmt.Fprintln(os.Stderr, "✅ done")
	return nil
}

func discoverPairs(flags *rootFlags) ([]driver.FilepathPair, error) {
	if flags.casePath != "" {
		return driver.DiscoverCase(flags.casePath)
	}
	return driver.DiscoverCollection(flags.collectionPath)
}

func loadConfigFile(path string) config.File {
	f, err := os.Open(path)
	if err != nil {
		return config.File{}
	}
	defer f.Close()

	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️ ignoring invalid config file %q: %v\n", path, err)
		return config.File{}
	}
	return cfg
}
