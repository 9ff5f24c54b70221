package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/s3browse/internal/app"
	"github.com/xxxsen/s3browse/internal/cli/common"
)

var rootCmd = &cobra.Command{
	Use:           "s3browse",
	Short:         "Download, upload, delete and list objects of one bucket",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Error("exec cmd failed", zap.Error(err))
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String(common.ConfigFlag, "", "Path to the json config file")

	for _, r := range app.RunnerList() {
		runner := app.MustResolveRunner(r)
		subcmd := &cobra.Command{
			Use:   runner.Name(),
			Short: runner.Desc(),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := commandContext(cmd)
				cfgPath, _ := cmd.Root().PersistentFlags().GetString(common.ConfigFlag)
				cfg, err := common.LoadConfig(cfgPath)
				if err != nil {
					return err
				}
				env, err := app.NewEnv(ctx, cfg, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				if err := runner.PreRun(ctx, env); err != nil {
					return err
				}
				if err := runner.Run(ctx); err != nil {
					return err
				}
				return runner.PostRun(ctx)
			},
		}
		runner.Init(subcmd.Flags())
		rootCmd.AddCommand(subcmd)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
