package agent

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/readfiles-agent/pkg/config"
)

var defaultCfg = config.NewDefaultConfig()

// newRootCmd 根命令：直接执行时只打印标识信息并以 0 退出，不做任何采集
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "readfiles-agent",
		Short:         "Periodically reads numeric values from files and publishes them as derive/gauge metrics",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s launched directly from command line\n", os.Args[0])
			return err
		},
	}

	root.PersistentFlags().StringP("config", "c", "configs/config.yaml", "配置文件路径")
	// 注册分组 flag
	initServerFlags(root)
	initAgentFlags(root)
	initLogFlags(root)

	root.AddCommand(newRunCmd(), newPrintConfigCmd())
	return root
}

// Execute 命令入口
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
