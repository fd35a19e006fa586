// Package ids defines the identifier namespaces of the discovery
// workspace: one per entity type, each with a definition pattern (how the
// entity's ID appears where it is defined), a reference pattern (how other
// documents cite it), and a print format.
//
// Allocation is scan-based: the next ID for a type is max(existing)+1 over
// the defining document's current content, never a stored counter. Manual
// edits that add or remove entries out of band therefore cannot desynchronize
// the sequence.
package ids

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Entity identifies an ID namespace.
type Entity string

const (
	Decision              Entity = "decision"
	Research              Entity = "research"
	Question              Entity = "question"
	FunctionalRequirement Entity = "functional_requirement"
	EdgeCase              Entity = "edge_case"
	SuccessCriteria       Entity = "success_criteria"
	Revision              Entity = "revision"
	Iteration             Entity = "iteration"
	Story                 Entity = "story"
)

// Workspace document paths, relative to the discovery directory.
const (
	FileSpec       = "SPEC.md"
	FileState      = "STATE.md"
	FileQuestions  = "OPEN_QUESTIONS.md"
	FileDecisions  = "archive/DECISIONS.md"
	FileResearch   = "archive/RESEARCH.md"
	FileIterations = "archive/ITERATIONS.md"
	FileRevisions  = "archive/REVISIONS.md"
)

// Spec describes one ID namespace.
type Spec struct {
	Entity Entity
	// Doc is the document that defines entities of this type.
	Doc string
	// Def matches a definition and captures the numeric part.
	Def *regexp.Regexp
	// Ref matches a citation anywhere in prose and captures the numeric part.
	Ref *regexp.Regexp
	// Exact matches a full ID string and captures the numeric part.
	Exact *regexp.Regexp
	// format is the fmt verb producing the canonical ID from a number.
	format string
}

// Format renders the canonical ID string for number n.
func (s Spec) Format(n int) string {
	return fmt.Sprintf(s.format, n)
}

var registry = map[Entity]Spec{
	Decision: {
		Entity: Decision,
		Doc:    FileDecisions,
		Def:    regexp.MustCompile(`(?m)^## D(\d+):`),
		Ref:    regexp.MustCompile(`\bD(\d+)\b`),
		Exact:  regexp.MustCompile(`^D(\d+)$`),
		format: "D%d",
	},
	Research: {
		Entity: Research,
		Doc:    FileResearch,
		Def:    regexp.MustCompile(`(?m)^## R(\d+):`),
		Ref:    regexp.MustCompile(`\bR(\d+)\b`),
		Exact:  regexp.MustCompile(`^R(\d+)$`),
		format: "R%d",
	},
	Question: {
		Entity: Question,
		Doc:    FileQuestions,
		Def:    regexp.MustCompile(`\*\*Q(\d+)\*\*:`),
		Ref:    regexp.MustCompile(`\bQ(\d+)\b`),
		Exact:  regexp.MustCompile(`^Q(\d+)$`),
		format: "Q%d",
	},
	FunctionalRequirement: {
		Entity: FunctionalRequirement,
		Doc:    FileSpec,
		Def:    regexp.MustCompile(`(?m)^\| FR-(\d+) \|`),
		Ref:    regexp.MustCompile(`\bFR-(\d+)\b`),
		Exact:  regexp.MustCompile(`^FR-(\d+)$`),
		format: "FR-%03d",
	},
	EdgeCase: {
		Entity: EdgeCase,
		Doc:    FileSpec,
		Def:    regexp.MustCompile(`(?m)^\| EC-(\d+) \|`),
		Ref:    regexp.MustCompile(`\bEC-(\d+)\b`),
		Exact:  regexp.MustCompile(`^EC-(\d+)$`),
		format: "EC-%02d",
	},
	SuccessCriteria: {
		Entity: SuccessCriteria,
		Doc:    FileSpec,
		Def:    regexp.MustCompile(`(?m)^\| SC-(\d+) \|`),
		Ref:    regexp.MustCompile(`\bSC-(\d+)\b`),
		Exact:  regexp.MustCompile(`^SC-(\d+)$`),
		format: "SC-%03d",
	},
	Revision: {
		Entity: Revision,
		Doc:    FileRevisions,
		Def:    regexp.MustCompile(`(?m)^## REV-(\d+):`),
		Ref:    regexp.MustCompile(`\bREV-(\d+)\b`),
		Exact:  regexp.MustCompile(`^REV-(\d+)$`),
		format: "REV-%03d",
	},
	Iteration: {
		Entity: Iteration,
		Doc:    FileIterations,
		Def:    regexp.MustCompile(`(?m)^## ITR-(\d+):`),
		Ref:    regexp.MustCompile(`\bITR-(\d+)\b`),
		Exact:  regexp.MustCompile(`^ITR-(\d+)$`),
		format: "ITR-%03d",
	},
	Story: {
		Entity: Story,
		Doc:    FileState,
		Def:    regexp.MustCompile(`(?m)^\| (\d+) \|`),
		// Stories are cited as "Story 3", never as a bare number.
		Ref:    regexp.MustCompile(`\bStory (\d+)\b`),
		Exact:  regexp.MustCompile(`^(\d+)$`),
		format: "%d",
	},
}

// Lookup returns the Spec for an entity type.
func Lookup(e Entity) (Spec, bool) {
	s, ok := registry[e]
	return s, ok
}

// All returns every namespace Spec in deterministic order.
func All() []Spec {
	out := make([]Spec, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Entity < out[j].Entity })
	return out
}

// Entities returns every known entity type name, sorted.
func Entities() []string {
	specs := All()
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = string(s.Entity)
	}
	return out
}

// MaxDefined scans content for definitions of entity e and returns the
// highest numeric ID found, or 0 if there are none.
func MaxDefined(content string, e Entity) int {
	spec, ok := registry[e]
	if !ok {
		return 0
	}
	max := 0
	for _, m := range spec.Def.FindAllStringSubmatch(content, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > max {
			max = n
		}
	}
	return max
}

// MaxCited scans content for citations of entity e and returns the
// highest numeric ID found, or 0 if there are none. Citations count
// resolution comments and archive mentions, not just definitions.
func MaxCited(content string, e Entity) int {
	spec, ok := registry[e]
	if !ok || spec.Ref == nil {
		return 0
	}
	max := 0
	for _, m := range spec.Ref.FindAllStringSubmatch(content, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > max {
			max = n
		}
	}
	return max
}

// Defined returns every numeric ID defined for entity e in content, in
// document order, duplicates included.
func Defined(content string, e Entity) []int {
	spec, ok := registry[e]
	if !ok {
		return nil
	}
	var out []int
	for _, m := range spec.Def.FindAllStringSubmatch(content, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// Parse identifies the entity type and number of a full ID string such as
// "D15" or "FR-007". The bare-integer story form is deliberately excluded:
// a lone number is only a story ID in explicit story context.
func Parse(id string) (Entity, int, bool) {
	for _, s := range All() {
		if s.Entity == Story {
			continue
		}
		if m := s.Exact.FindStringSubmatch(id); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return "", 0, false
			}
			return s.Entity, n, true
		}
	}
	return "", 0, false
}

// Valid reports whether id is a well-formed ID for entity e.
func Valid(id string, e Entity) bool {
	spec, ok := registry[e]
	if !ok {
		return false
	}
	return spec.Exact.MatchString(id)
}
