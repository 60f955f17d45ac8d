package command

import (
	"github.com/spf13/cobra"

	"github.com/adamavenir/agentjob/internal/config"
	"github.com/adamavenir/agentjob/internal/store"
)

// CommandContext provides shared command resources.
type CommandContext struct {
	Config   *config.Config
	Store    *store.Store
	JSONMode bool
}

// GetContext resolves configuration and the job store for a command.
func GetContext(cmd *cobra.Command) (*CommandContext, error) {
	jsonMode, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Config:   cfg,
		Store:    store.New(cfg.JobsRoot),
		JSONMode: jsonMode,
	}, nil
}
