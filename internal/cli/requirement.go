package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/docmodel"
	"github.com/specledger/specledger/internal/ids"
)

// The requirement-style commands share one shape: append a table row
// with a fresh ID, or re-issue an existing ID to update its row in
// place. IDs are never renumbered by an update.

// NewAddRequirementCommand creates the add-requirement command.
func NewAddRequirementCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		id          string
		requirement string
		stories     string
		confidence  string
		fromStdin   bool
	)

	cmd := &cobra.Command{
		Use:   "add-requirement",
		Short: "Add or update a functional requirement in SPEC.md",
		Long: `Append a row to the Functional Requirements table with the next FR-ID,
or update an existing row in place when --id (or a leading FR-ID on
stdin) re-issues one.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				parts, err := stdinFields(cmd, 2, "requirement|stories")
				if err != nil {
					return err
				}
				if ids.Valid(field(parts, 0), ids.FunctionalRequirement) {
					id = field(parts, 0)
					parts = parts[1:]
				}
				requirement = field(parts, 0)
				stories = field(parts, 1)
				if c := field(parts, 2); c != "" {
					confidence = c
				}
			}
			return runAddRequirement(rootOpts, id, requirement, stories, confidence, cmd)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "FR ID to update (omit to add)")
	cmd.Flags().StringVar(&requirement, "requirement", "", "requirement text")
	cmd.Flags().StringVar(&stories, "stories", "", "stories this applies to")
	cmd.Flags().StringVar(&confidence, "confidence", "🔄 Draft", "confidence level")
	cmd.Flags().BoolVar(&fromStdin, "from-stdin", false, "read pipe-separated input (FR-ID|requirement|stories|confidence, ID optional)")

	return cmd
}

func runAddRequirement(opts *RootOptions, id, requirement, stories, confidence string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if requirement == "" || stories == "" {
		return fail(formatter, fmt.Errorf("--requirement and --stories are required"))
	}
	if confidence == "" {
		confidence = "🔄 Draft"
	}
	return upsertRow(opts, formatter, rowUpsert{
		entity:   ids.FunctionalRequirement,
		id:       id,
		sections: []string{"### Functional Requirements", "## Requirements"},
		data: map[string]string{
			"Requirement": requirement,
			"Stories":     stories,
			"Confidence":  confidence,
		},
		summary: requirement,
		extra:   []string{"Stories: " + stories, "Confidence: " + confidence},
	})
}

// NewAddEdgeCaseCommand creates the add-edge-case command.
func NewAddEdgeCaseCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		id        string
		scenario  string
		handling  string
		stories   string
		fromStdin bool
	)

	cmd := &cobra.Command{
		Use:           "add-edge-case",
		Short:         "Add or update an edge case in SPEC.md",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				parts, err := stdinFields(cmd, 2, "scenario|handling|stories")
				if err != nil {
					return err
				}
				if ids.Valid(field(parts, 0), ids.EdgeCase) {
					id = field(parts, 0)
					parts = parts[1:]
				}
				scenario = field(parts, 0)
				handling = field(parts, 1)
				stories = field(parts, 2)
			}
			return runAddEdgeCase(rootOpts, id, scenario, handling, stories, cmd)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "EC ID to update (omit to add)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "edge case scenario")
	cmd.Flags().StringVar(&handling, "handling", "", "how the edge case is handled")
	cmd.Flags().StringVar(&stories, "stories", "", "stories affected")
	cmd.Flags().BoolVar(&fromStdin, "from-stdin", false, "read pipe-separated input (EC-ID|scenario|handling|stories, ID optional)")

	return cmd
}

func runAddEdgeCase(opts *RootOptions, id, scenario, handling, stories string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if scenario == "" || handling == "" {
		return fail(formatter, fmt.Errorf("--scenario and --handling are required"))
	}
	return upsertRow(opts, formatter, rowUpsert{
		entity:   ids.EdgeCase,
		id:       id,
		sections: []string{"## Edge Cases"},
		data: map[string]string{
			"Scenario":         scenario,
			"Handling":         handling,
			"Stories Affected": stories,
		},
		summary: scenario,
		extra:   []string{"Stories: " + stories},
	})
}

// NewAddSuccessCriteriaCommand creates the add-success-criteria command.
func NewAddSuccessCriteriaCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		id          string
		criterion   string
		measurement string
		stories     string
		fromStdin   bool
	)

	cmd := &cobra.Command{
		Use:           "add-success-criteria",
		Short:         "Add or update a success criterion in SPEC.md",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				parts, err := stdinFields(cmd, 3, "criterion|measurement|stories")
				if err != nil {
					return err
				}
				if ids.Valid(field(parts, 0), ids.SuccessCriteria) {
					id = field(parts, 0)
					parts = parts[1:]
				}
				criterion = field(parts, 0)
				measurement = field(parts, 1)
				stories = field(parts, 2)
			}
			return runAddSuccessCriteria(rootOpts, id, criterion, measurement, stories, cmd)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "SC ID to update (omit to add)")
	cmd.Flags().StringVar(&criterion, "criterion", "", "what success looks like")
	cmd.Flags().StringVar(&measurement, "measurement", "", "how it is measured")
	cmd.Flags().StringVar(&stories, "stories", "", "stories this applies to")
	cmd.Flags().BoolVar(&fromStdin, "from-stdin", false, "read pipe-separated input (SC-ID|criterion|measurement|stories, ID optional)")

	return cmd
}

func runAddSuccessCriteria(opts *RootOptions, id, criterion, measurement, stories string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if criterion == "" || measurement == "" || stories == "" {
		return fail(formatter, fmt.Errorf("--criterion, --measurement, and --stories are required"))
	}
	return upsertRow(opts, formatter, rowUpsert{
		entity:   ids.SuccessCriteria,
		id:       id,
		sections: []string{"## Success Criteria"},
		data: map[string]string{
			"Criterion":   criterion,
			"Measurement": measurement,
			"Stories":     stories,
		},
		summary: criterion,
		extra:   []string{"Stories: " + stories},
	})
}

// rowUpsert describes one add-or-update against a SPEC.md table.
type rowUpsert struct {
	entity   ids.Entity
	id       string   // existing ID to update; empty allocates a new one
	sections []string // candidate table headings, tried in order
	data     map[string]string
	summary  string // first confirmation line payload
	extra    []string
}

func upsertRow(opts *RootOptions, formatter *OutputFormatter, up rowUpsert) error {
	if up.id != "" && !ids.Valid(up.id, up.entity) {
		return fail(formatter, fmt.Errorf("invalid %s ID %q", up.entity, up.id))
	}

	r, err := openLocked(opts)
	if err != nil {
		return fail(formatter, err)
	}
	defer r.Unlock()

	spec, err := r.Load(ids.FileSpec)
	if err != nil {
		return fail(formatter, err)
	}

	action := "Updated"
	id := up.id
	if id == "" {
		action = "Added"
		if id, err = r.NextID(up.entity); err != nil {
			return fail(formatter, err)
		}
	}

	if err := applyRow(spec, up, id, action == "Updated"); err != nil {
		return fail(formatter, err)
	}
	r.MarkDirty(ids.FileSpec)
	if err := r.Commit(); err != nil {
		return fail(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"id": id, "action": action})
	}
	out := fmt.Sprintf("✓ %s %s: %s", action, id, truncateLine(up.summary, 60))
	for _, line := range up.extra {
		out += "\n  " + line
	}
	return formatter.Success(out)
}

// applyRow updates or appends the row, trying each candidate section.
func applyRow(spec *docmodel.Document, up rowUpsert, id string, update bool) error {
	row := map[string]string{"ID": id}
	for k, v := range up.data {
		row[k] = v
	}
	var lastErr error
	for _, section := range up.sections {
		var err error
		if update {
			err = spec.UpdateTableRow(section, "ID", id, row)
		} else {
			err = spec.AppendTableRow(section, row)
		}
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func truncateLine(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
