package types

import "time"

// ImplicationType is the closed set of higher-order insight categories.
type ImplicationType string

const (
	ImplicationPredictive     ImplicationType = "predictive"
	ImplicationEmotional      ImplicationType = "emotional"
	ImplicationRelational     ImplicationType = "relational"
	ImplicationIdentity       ImplicationType = "identity"
	ImplicationBehavioral     ImplicationType = "behavioral"
	ImplicationActionable     ImplicationType = "actionable"
	ImplicationAbsence        ImplicationType = "absence"
	ImplicationTrajectory     ImplicationType = "trajectory"
	ImplicationMetaCognitive  ImplicationType = "meta_cognitive"
	ImplicationRetrograde     ImplicationType = "retrograde"
	ImplicationCounterfactual ImplicationType = "counterfactual"
)

// ValidImplicationTypes is the closed set used to reject LLM output outside
// the typology at parse time.
var ValidImplicationTypes = map[ImplicationType]bool{
	ImplicationPredictive:     true,
	ImplicationEmotional:      true,
	ImplicationRelational:     true,
	ImplicationIdentity:       true,
	ImplicationBehavioral:     true,
	ImplicationActionable:     true,
	ImplicationAbsence:        true,
	ImplicationTrajectory:     true,
	ImplicationMetaCognitive:  true,
	ImplicationRetrograde:     true,
	ImplicationCounterfactual: true,
}

// Implication is a higher-order insight derived from one or more source
// memories.
type Implication struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Content          string          `json:"content"`
	Embedding        []float32       `json:"embedding"`
	ImplicationType  ImplicationType `json:"implication_type"`
	ImplicationOrder int             `json:"implication_order"` // 1, 2, or 3
	SourceMemoryIDs  []string        `json:"source_memory_ids"`
	Strength         float64         `json:"strength"`
	CreatedAt        time.Time       `json:"created_at"`
	LastReinforcedAt time.Time       `json:"last_reinforced_at"`
}

// SourceOverlap returns the count of ids present in both SourceMemoryIDs and
// activated.
func (im *Implication) SourceOverlap(activated map[string]bool) int {
	n := 0
	for _, id := range im.SourceMemoryIDs {
		if activated[id] {
			n++
		}
	}
	return n
}
