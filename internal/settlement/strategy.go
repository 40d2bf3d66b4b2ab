package settlement

// Outcome is the settled result of one position.
type Outcome string

const (
	Won  Outcome = "won"
	Lost Outcome = "lost"
	Void Outcome = "void"
)

// Strategy classifies one selection against a parsed result. Implementations
// are pure and total: any selection string and any result (including nil)
// maps to exactly one outcome, never an error.
type Strategy interface {
	Name() string
	Determine(selection string, result *Result) Outcome
}
