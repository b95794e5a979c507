package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewSizeCommand creates the size command.
func NewSizeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Print the number of stored quads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSize(rootOpts, cmd)
		},
	}
}

func runSize(opts *RootOptions, cmd *cobra.Command) error {
	out := formatter(opts, cmd)
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	defer s.Close(ctx)

	n, err := s.store.Size(ctx)
	if err != nil {
		exitErr, code := storeExitError("size", err)
		return out.Fail(code, exitErr)
	}
	return out.Success(strconv.FormatInt(n, 10), CountResult{Count: n})
}
