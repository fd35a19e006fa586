package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/ids"
)

// NewAllocateIDCommand creates the allocate-id command.
func NewAllocateIDCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "allocate-id <entity>",
		Short: "Print the next available ID for an entity type",
		Long: `Scan the entity's defining document and print max(existing)+1 in the
entity's canonical format. Nothing is written: the ID is taken only when
the entry that uses it lands.

Entity types: ` + strings.Join(ids.Entities(), ", "),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAllocateID(rootOpts, args[0], cmd)
		},
	}
}

func runAllocateID(opts *RootOptions, entity string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	spec, ok := ids.Lookup(ids.Entity(entity))
	if !ok {
		return fail(formatter, fmt.Errorf("unknown entity type %q (valid: %s)",
			entity, strings.Join(ids.Entities(), ", ")))
	}

	r, err := openRepo(opts)
	if err != nil {
		return fail(formatter, err)
	}
	id, err := r.NextID(spec.Entity)
	if err != nil {
		return fail(formatter, err)
	}
	formatter.VerboseLog("Scanned %s", r.Path(spec.Doc))

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"entity": entity, "id": id})
	}
	return formatter.Success(id)
}
