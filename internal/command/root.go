package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "agentjob"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Agentjob - background agent job supervisor",
		Long:          "Agentjob launches coding-agent harnesses as supervised background jobs\nand tracks their progress through per-job status records.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().Bool("json", false, "output in JSON format")

	cmd.AddCommand(
		NewSpawnCmd(),
		NewStatusCmd(),
		NewListCmd(),
		NewLogsCmd(),
		NewKillCmd(),
		NewMonitorCmd(),
		NewCommsCmd(),
		NewMonitorDaemonCmd(),
	)

	return cmd
}

func Execute() error {
	return NewRootCmd(Version).Execute()
}
