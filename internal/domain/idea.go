package domain

import "math"

// IdeaState is the lifecycle state of an idea.
type IdeaState string

const (
	// StateIdea is the initial backlog state for new ideas.
	StateIdea IdeaState = "idea"
	// StateDoLater marks an idea deferred for later.
	StateDoLater IdeaState = "doLater"
	// StateOnHold marks an idea paused indefinitely.
	StateOnHold IdeaState = "onHold"
	// StateExecution marks an idea currently being worked on.
	StateExecution IdeaState = "execution"
	// StateExecuted marks an idea that has been completed.
	StateExecuted IdeaState = "executed"
)

// AllIdeaStates lists every lifecycle state in display order.
var AllIdeaStates = []IdeaState{StateIdea, StateDoLater, StateOnHold, StateExecution, StateExecuted}

// ValidIdeaState reports whether s is one of the five lifecycle states.
func ValidIdeaState(s IdeaState) bool {
	switch s {
	case StateIdea, StateDoLater, StateOnHold, StateExecution, StateExecuted:
		return true
	}
	return false
}

// Ranking holds the four sub-ratings and the derived score for a ranked idea.
// Each sub-rating is on a 1-10 scale.
type Ranking struct {
	Feasibility int `json:"feasibility"`
	Impact      int `json:"impact"`
	Scalability int `json:"scalability"`
	Excitement  int `json:"excitement"`
	Score       int `json:"score"`
}

// ComputeScore returns the rounded mean of the four sub-ratings,
// rounding halves away from zero (7.5 -> 8).
func ComputeScore(feasibility, impact, scalability, excitement int) int {
	sum := feasibility + impact + scalability + excitement
	return int(math.Round(float64(sum) / 4.0))
}

// Idea represents a single idea owned by a user.
// An idea is always in exactly one lifecycle state and is either
// unranked or carries a full Ranking.
type Idea struct {
	Syncable
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	State       IdeaState `json:"state"`
	Ranked      bool      `json:"ranked"`
	Ranking     *Ranking  `json:"ranking,omitempty"` // present iff Ranked
}

// Rank applies a full set of sub-ratings, replacing any previous ranking.
// The lifecycle state is untouched.
func (i *Idea) Rank(feasibility, impact, scalability, excitement int) {
	i.Ranking = &Ranking{
		Feasibility: feasibility,
		Impact:      impact,
		Scalability: scalability,
		Excitement:  excitement,
		Score:       ComputeScore(feasibility, impact, scalability, excitement),
	}
	i.Ranked = true
}

// Score returns the current score, or 0 if the idea is unranked.
func (i *Idea) Score() int {
	if i.Ranking == nil {
		return 0
	}
	return i.Ranking.Score
}

// IsExecuted reports whether the idea is in the executed state.
func (i *Idea) IsExecuted() bool {
	return i.State == StateExecuted
}

// IdeaTagLink associates a tag with an idea.
// Links are created and destroyed whole; the pair is unique per idea.
type IdeaTagLink struct {
	IdeaID    string `json:"idea_id"`
	TagID     string `json:"tag_id"`
	CreatedAt int64  `json:"created_at"` // unix seconds
}
