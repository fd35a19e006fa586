package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Dir     string // discovery directory (empty: resolve from cwd)
	Format  string // "json" | "text"
	Verbose bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the specledger CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "specledger",
		Short: "State management for discovery-driven spec writing",
		Long: `specledger maintains a discovery workspace: the working state, open
question registry, append-only decision/research/iteration/revision logs,
and the graduated specification they feed.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			if opts.Dir == "" {
				opts.Dir = cfg.Dir
			}
			if !cmd.Flags().Changed("format") && cfg.Format != "" {
				opts.Format = cfg.Format
			}
			if cfg.Verbose {
				opts.Verbose = true
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", "", "discovery directory (default: auto-resolve)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewAllocateIDCommand(opts))
	cmd.AddCommand(NewAddQuestionCommand(opts))
	cmd.AddCommand(NewResolveQuestionCommand(opts))
	cmd.AddCommand(NewMigrateQuestionCommand(opts))
	cmd.AddCommand(NewLogDecisionCommand(opts))
	cmd.AddCommand(NewFindDecisionsCommand(opts))
	cmd.AddCommand(NewLogResearchCommand(opts))
	cmd.AddCommand(NewFindResearchCommand(opts))
	cmd.AddCommand(NewLogIterationCommand(opts))
	cmd.AddCommand(NewFindIterationsCommand(opts))
	cmd.AddCommand(NewAddRevisionCommand(opts))
	cmd.AddCommand(NewUpdateStoryStatusCommand(opts))
	cmd.AddCommand(NewGraduateStoryCommand(opts))
	cmd.AddCommand(NewAddRequirementCommand(opts))
	cmd.AddCommand(NewAddEdgeCaseCommand(opts))
	cmd.AddCommand(NewAddSuccessCriteriaCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
