package validate

import (
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/specledger/specledger/internal/ids"
	"github.com/specledger/specledger/internal/lifecycle"
	"github.com/specledger/specledger/internal/openitems"
	"github.com/specledger/specledger/internal/repo"
)

// requiredSections lists the headings every core document must carry.
var requiredSections = map[string][]string{
	ids.FileSpec: {
		"## User Scenarios & Testing",
		"## Requirements",
	},
	ids.FileState: {
		"## Story Status Overview",
	},
	ids.FileQuestions: questionHeadings(),
}

// resolvedRe matches the comments Resolve leaves behind in the registry.
var resolvedRe = regexp.MustCompile(`(?m)^<!-- Resolved: Q\d+.*?-->$`)

func questionHeadings() []string {
	var out []string
	for _, c := range openitems.Categories() {
		out = append(out, openitems.Header(c))
	}
	return out
}

// Validator runs integrity checks over one discovery directory.
type Validator struct {
	repo *repo.Repo
}

// New creates a Validator over the given repository handle.
func New(r *repo.Repo) *Validator {
	return &Validator{repo: r}
}

// Run executes every check and returns the grouped findings. The
// repository is never modified.
func (v *Validator) Run() (*Report, error) {
	report := &Report{}

	docs, err := v.markdownFiles()
	if err != nil {
		return nil, err
	}
	contents := make(map[string]string, len(docs))
	for _, rel := range docs {
		doc, err := v.repo.Load(rel)
		if err != nil {
			return nil, err
		}
		contents[rel] = doc.Serialize()
	}

	v.checkStructure(report, contents)
	v.checkSequences(report, contents)
	v.checkReferences(report, contents)
	v.checkStories(report)
	return report, nil
}

// markdownFiles lists every markdown document under the discovery
// directory, relative paths sorted for deterministic reports.
func (v *Validator) markdownFiles() ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(v.repo.Dir), "**/*.md",
		doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// checkStructure verifies the core documents exist and carry their
// required sections.
func (v *Validator) checkStructure(r *Report, contents map[string]string) {
	for _, rel := range []string{ids.FileSpec, ids.FileState, ids.FileQuestions} {
		content, ok := contents[rel]
		if !ok {
			r.errorf(CodeMissingFile, rel, "required document is missing")
			continue
		}
		for _, heading := range requiredSections[rel] {
			if !hasHeadingLine(content, heading) {
				r.errorf(CodeMissingSection, rel, "missing required section %q", heading)
			}
		}
	}
}

// hasHeadingLine reports whether content contains heading as a full line.
func hasHeadingLine(content, heading string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == heading {
			return true
		}
	}
	return false
}

// checkSequences flags duplicate IDs and warns on numbering gaps in
// each entity's defining document.
func (v *Validator) checkSequences(r *Report, contents map[string]string) {
	for _, spec := range ids.All() {
		content, ok := contents[spec.Doc]
		if !ok {
			continue
		}
		defined := ids.Defined(content, spec.Entity)
		if len(defined) == 0 {
			continue
		}
		seen := map[int]int{}
		for _, n := range defined {
			seen[n]++
		}
		nums := make([]int, 0, len(seen))
		for n, count := range seen {
			if count > 1 {
				r.errorf(CodeDuplicateID, spec.Doc, "%s defined %d times", spec.Format(n), count)
			}
			nums = append(nums, n)
		}
		if spec.Entity == ids.Story {
			continue // story numbering is curated by hand, gaps are fine
		}
		sort.Ints(nums)
		for i := 1; i < len(nums); i++ {
			if nums[i] != nums[i-1]+1 {
				r.warnf(CodeSequenceGap, spec.Doc, "%s jumps to %s",
					spec.Format(nums[i-1]), spec.Format(nums[i]))
			}
		}
	}
}

// checkReferences verifies every citation resolves to a definition.
// Question citations also resolve through the archives: a resolved
// question leaves the registry but survives in decision and research
// entries that mention it.
func (v *Validator) checkReferences(r *Report, contents map[string]string) {
	defined := make(map[ids.Entity]map[int]bool)
	for _, spec := range ids.All() {
		set := map[int]bool{}
		if content, ok := contents[spec.Doc]; ok {
			for _, n := range ids.Defined(content, spec.Entity) {
				set[n] = true
			}
		}
		defined[spec.Entity] = set
	}

	// Question mentions in the archives count as resolutions, as do the
	// resolution comments left behind in the registry itself.
	questionTrail := contents[ids.FileDecisions] + "\n" + contents[ids.FileResearch]
	if resolved := resolvedRe.FindAllString(contents[ids.FileQuestions], -1); len(resolved) > 0 {
		questionTrail += "\n" + strings.Join(resolved, "\n")
	}

	files := make([]string, 0, len(contents))
	for rel := range contents {
		files = append(files, rel)
	}
	sort.Strings(files)

	for _, rel := range files {
		content := contents[rel]
		for _, spec := range ids.All() {
			if spec.Ref == nil {
				continue
			}
			reported := map[int]bool{}
			for _, m := range spec.Ref.FindAllStringSubmatch(content, -1) {
				n, _ := strconv.Atoi(m[1])
				if defined[spec.Entity][n] || reported[n] {
					continue
				}
				if spec.Entity == ids.Question && containsID(questionTrail, spec, n) {
					continue
				}
				reported[n] = true
				r.errorf(CodeDanglingRef, rel, "%s is cited but never defined", spec.Format(n))
			}
		}
	}
}

// containsID reports whether content cites the given entity number.
func containsID(content string, spec ids.Spec, n int) bool {
	for _, m := range spec.Ref.FindAllStringSubmatch(content, -1) {
		if cited, _ := strconv.Atoi(m[1]); cited == n {
			return true
		}
	}
	return false
}

// checkStories verifies the overview table's status cells and the
// single in-progress invariant.
func (v *Validator) checkStories(r *Report) {
	state, err := v.repo.Load(ids.FileState)
	if err != nil {
		return // absence already reported by checkStructure
	}
	stories, err := lifecycle.Stories(state)
	if err != nil {
		r.errorf(CodeMissingSection, ids.FileState, "%v", err)
		return
	}
	var inProgress []int
	for _, s := range stories {
		if s.Status == "" {
			r.errorf(CodeBadStatus, ids.FileState, "story %d has an unrecognized status cell", s.Num)
			continue
		}
		if s.Status == lifecycle.StatusInProgress {
			inProgress = append(inProgress, s.Num)
		}
	}
	if len(inProgress) > 1 {
		nums := make([]string, len(inProgress))
		for i, n := range inProgress {
			nums[i] = strconv.Itoa(n)
		}
		r.errorf(CodeMultiProgress, ids.FileState,
			"%d stories are In Progress at once: %s", len(inProgress), strings.Join(nums, ", "))
	}
}
