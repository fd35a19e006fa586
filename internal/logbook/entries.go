package logbook

// Decision is one immutable entry in archive/DECISIONS.md.
type Decision struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Date         string `json:"date"`
	Context      string `json:"context"`
	Question     string `json:"question"`
	Options      string `json:"options"`
	Chosen       string `json:"decision"`
	Rationale    string `json:"rationale"`
	Implications string `json:"implications"`
	Stories      string `json:"stories"`
	Questions    string `json:"questions"`
}

// Research is one immutable entry in archive/RESEARCH.md.
type Research struct {
	ID           string `json:"id"`
	Topic        string `json:"topic"`
	Date         string `json:"date"`
	Purpose      string `json:"purpose"`
	Approach     string `json:"approach"`
	Findings     string `json:"findings"`
	Patterns     string `json:"patterns"`
	Examples     string `json:"examples"`
	Implications string `json:"implications"`
	Stories      string `json:"stories"`
	Questions    string `json:"questions"`
}

// Iteration is one immutable entry in archive/ITERATIONS.md.
type Iteration struct {
	ID                string `json:"id"`
	DateRange         string `json:"date_range"`
	Phase             string `json:"phase"`
	Goals             string `json:"goals"`
	Activities        string `json:"activities"`
	Outcomes          string `json:"outcomes"`
	QuestionsAdded    string `json:"questions_added"`
	DecisionsMade     string `json:"decisions_made"`
	ResearchConducted string `json:"research_conducted"`
	NextSteps         string `json:"next_steps"`
}

// Scope classifies how far a revision reaches into a graduated story.
type Scope string

const (
	ScopeAdditive     Scope = "additive"
	ScopeModificative Scope = "modificative"
	ScopeStructural   Scope = "structural"
)

// ValidScope reports whether s is a recognized revision scope.
func ValidScope(s Scope) bool {
	switch s {
	case ScopeAdditive, ScopeModificative, ScopeStructural:
		return true
	}
	return false
}

// Revision is one immutable entry in archive/REVISIONS.md.
type Revision struct {
	ID         string `json:"id"`
	Story      int    `json:"story"`
	Date       string `json:"date"`
	ChangeType string `json:"change_type"`
	Scope      Scope  `json:"scope"`
	Trigger    string `json:"trigger"`
	Before     string `json:"before"`
	After      string `json:"after"`
	Decision   string `json:"decision"`
}
