// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gorse-io/nmfdata/base/log"
	"github.com/gorse-io/nmfdata/cmd/version"
	"github.com/gorse-io/nmfdata/config"
	"github.com/gorse-io/nmfdata/corrupt"
	"github.com/gorse-io/nmfdata/dataset"
	"github.com/gorse-io/nmfdata/normalize"
	"github.com/gorse-io/nmfdata/pipeline"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "nmfdata",
		Short:         "Prepare synthetic and image data for NMF experiments.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			log.SetLogger(cmd.Flags(), debug)
		},
	}
	log.AddFlags(rootCommand.PersistentFlags())
	flags := rootCommand.PersistentFlags()
	flags.Bool("debug", false, "use debug log mode")
	flags.StringP("config", "c", "", "configuration file path")
	flags.StringP("output", "o", "", "write the matrix as CSV to this path (- for stdout)")
	flags.Int64("seed", 0, "seed of the random generator")
	// corruption
	flags.Float64("sigma", 0, "standard deviation of Gaussian noise")
	flags.Bool("clip", true, "clip negative entries to zero after noise")
	flags.Float64("outlier-fraction", 0, "fraction of entries corrupted by outliers")
	flags.Float64("outlier-magnitude", 10, "upper bound of additive outliers")
	flags.String("outlier-mode", string(corrupt.AddOutliers), "outlier semantics (add, replace)")
	flags.Float64("outlier-scale", 5, "multiplier of max(X) for replaced outliers")
	// normalization
	flags.String("mode", string(normalize.None), "normalization mode (none, global_max, column_max)")
	flags.Bool("normalize-clip", true, "clip negative entries to zero before normalization")

	rootCommand.AddCommand(newGenerateCommand(), newLoadCommand(), newRunCommand(), versionCommand)
	return rootCommand
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show the version of nmfdata",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
	},
}

func newGenerateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "generate",
		Short: "Generate a low-rank non-negative matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			conf.Source = config.SourceSynthetic
			flags := cmd.Flags()
			if flags.Changed("rows") {
				conf.Synthetic.Rows, _ = flags.GetInt("rows")
			}
			if flags.Changed("cols") {
				conf.Synthetic.Cols, _ = flags.GetInt("cols")
			}
			if flags.Changed("rank") {
				conf.Synthetic.Rank, _ = flags.GetInt("rank")
			}
			if flags.Changed("noise-std") {
				conf.Synthetic.NoiseStd, _ = flags.GetFloat64("noise-std")
			}
			return execute(cmd, conf)
		},
	}
	command.Flags().Int("rows", 100, "number of rows")
	command.Flags().Int("cols", 80, "number of columns")
	command.Flags().Int("rank", 5, "rank of the factors")
	command.Flags().Float64("noise-std", 0, "noise added while generating")
	return command
}

func newLoadCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "load <dir>",
		Short: "Stack a folder of images into a matrix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			conf.Source = config.SourceImages
			conf.Images.Dir = args[0]
			flags := cmd.Flags()
			if flags.Changed("pattern") {
				conf.Images.Pattern, _ = flags.GetString("pattern")
			}
			if flags.Changed("normalize") {
				conf.Images.Normalize, _ = flags.GetBool("normalize")
			}
			if flags.Changed("width") {
				conf.Images.Width, _ = flags.GetInt("width")
			}
			if flags.Changed("height") {
				conf.Images.Height, _ = flags.GetInt("height")
			}
			if flags.Changed("jobs") {
				conf.Images.Jobs, _ = flags.GetInt("jobs")
			}
			return execute(cmd, conf)
		},
	}
	command.Flags().String("pattern", ".png", "substring or glob selecting image files")
	command.Flags().Bool("normalize", true, "shift and rescale the matrix into [0, 1]")
	command.Flags().Int("width", 0, "resize images to this width")
	command.Flags().Int("height", 0, "resize images to this height")
	command.Flags().IntP("jobs", "j", 1, "number of goroutines decoding images")
	return command
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Prepare the matrix described by the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return errors.Trace(err)
			}
			return execute(cmd, conf)
		},
	}
}

// loadConfig reads the configuration file and applies flags that were set
// explicitly on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetInt64("seed")
		conf.Seed = &seed
	}
	if flags.Changed("sigma") {
		conf.Corruption.NoiseStd, _ = flags.GetFloat64("sigma")
	}
	if flags.Changed("clip") {
		conf.Corruption.ClipAtZero, _ = flags.GetBool("clip")
	}
	if flags.Changed("outlier-fraction") {
		conf.Corruption.OutlierFraction, _ = flags.GetFloat64("outlier-fraction")
	}
	if flags.Changed("outlier-magnitude") {
		conf.Corruption.OutlierMagnitude, _ = flags.GetFloat64("outlier-magnitude")
	}
	if flags.Changed("outlier-scale") {
		conf.Corruption.OutlierScale, _ = flags.GetFloat64("outlier-scale")
	}
	if flags.Changed("outlier-mode") {
		mode, _ := flags.GetString("outlier-mode")
		if conf.Corruption.OutlierMode, err = corrupt.ParseOutlierMode(mode); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if flags.Changed("mode") {
		mode, _ := flags.GetString("mode")
		if conf.Normalization.Mode, err = normalize.ParseMode(mode); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if flags.Changed("normalize-clip") {
		conf.Normalization.ClipAtZero, _ = flags.GetBool("normalize-clip")
	}
	return conf, nil
}

func execute(cmd *cobra.Command, conf *config.Config) error {
	if err := conf.Validate(); err != nil {
		return errors.Trace(err)
	}
	var bar *progressbar.ProgressBar
	result, err := pipeline.Run(conf, dataset.WithProgress(func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("decoding images"),
				progressbar.OptionClearOnFinish())
		}
		_ = bar.Set(done)
	}))
	if err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("matrix prepared", zap.String("source", conf.Source))

	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		if err = writeMatrix(cmd, output, result); err != nil {
			return errors.Trace(err)
		}
	}
	if output != "-" {
		return printSummary(cmd.OutOrStdout(), conf, result)
	}
	return nil
}

func writeMatrix(cmd *cobra.Command, output string, result *pipeline.Result) error {
	if output == "-" {
		return dataset.WriteCSV(cmd.OutOrStdout(), result.X)
	}
	f, err := os.Create(output)
	if err != nil {
		return errors.Trace(err)
	}
	if err = dataset.WriteCSV(f, result.X); err != nil {
		_ = f.Close()
		return errors.Trace(err)
	}
	log.Logger().Info("write matrix", zap.String("path", output))
	return errors.Trace(f.Close())
}

func printSummary(w io.Writer, conf *config.Config, result *pipeline.Result) error {
	summary := pipeline.Summarize(result.X)
	seed := lo.TernaryF(conf.Seed == nil,
		func() string { return "unseeded" },
		func() string { return strconv.FormatInt(*conf.Seed, 10) })
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")
	rows := [][]string{
		{"source", conf.Source},
		{"seed", seed},
		{"shape", fmt.Sprintf("%d x %d", summary.Rows, summary.Cols)},
		{"min", strconv.FormatFloat(summary.Min, 'g', 6, 64)},
		{"max", strconv.FormatFloat(summary.Max, 'g', 6, 64)},
		{"mean", strconv.FormatFloat(summary.Mean, 'g', 6, 64)},
		{"negatives", strconv.Itoa(summary.Negatives)},
	}
	if result.Names != nil {
		rows = append(rows,
			[]string{"images", strconv.Itoa(len(result.Names))},
			[]string{"image shape", fmt.Sprintf("%d x %d", result.Height, result.Width)})
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
