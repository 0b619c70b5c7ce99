package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/pinvec/internal/refvec"
)

// NewContainersCommand creates the containers command, which lists the
// bundled reference containers.
func NewContainersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "containers",
		Short:         "List bundled reference containers",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			names := refvec.Names()
			if rootOpts.Format == "json" {
				return formatter.Success(names)
			}
			for _, name := range names {
				if err := formatter.Success(name); err != nil {
					return err
				}
			}
			formatter.VerboseLog("%d containers", len(names))
			return nil
		},
	}
}
