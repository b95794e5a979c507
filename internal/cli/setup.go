package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/quadstore/internal/config"
	"github.com/roach88/quadstore/internal/provision"
)

// SetupResult is the JSON payload of setup.
type SetupResult struct {
	Backend    string   `json:"backend"`
	Collection string   `json:"collection"`
	Indexes    []string `json:"indexes"`
}

// NewSetupCommand creates the setup command.
func NewSetupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the quad collection indexes",
		Long: `Create the indexes the quad collection needs, including the unique
index over all four positions. Running setup again is a no-op.

Setup fails if the collection already holds duplicate quads.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(rootOpts, cmd)
		},
	}
}

func runSetup(opts *RootOptions, cmd *cobra.Command) error {
	out := formatter(opts, cmd)
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	connector, err := config.Connector(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid backend", err)
	}

	if err := provision.EnsureIndexes(commandContext(cmd), connector); err != nil {
		return out.Fail(CodeStorage, WrapExitError(ExitFailure, "setup failed", err))
	}

	specs := provision.Indexes()
	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.Name
	}
	return out.Success("indexes ready on "+cfg.Collection, SetupResult{
		Backend:    cfg.Backend,
		Collection: cfg.Collection,
		Indexes:    names,
	})
}
