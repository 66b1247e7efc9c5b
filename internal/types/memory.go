package types

import "time"

// SignificanceWeight is the closed set of significance levels the extraction
// prompt may assign to an atomic memory.
type SignificanceWeight float64

const (
	SignificanceHigh   SignificanceWeight = 1.5
	SignificanceMedium SignificanceWeight = 1.0
	SignificanceLow    SignificanceWeight = 0.7
)

// ParseSignificance maps the extraction prompt's {high,medium,low} tag to a
// weight. Unknown tags default to medium.
func ParseSignificance(tag string) SignificanceWeight {
	switch tag {
	case "high":
		return SignificanceHigh
	case "low":
		return SignificanceLow
	default:
		return SignificanceMedium
	}
}

// Memory is an atomic, self-contained statement distilled from a journal
// entry.
type Memory struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	Content            string             `json:"content"`
	Embedding          []float32          `json:"embedding,omitempty"`
	AbstractEmbedding  []float32          `json:"abstract_embedding,omitempty"`
	Source             string             `json:"source"`
	SourceDate         string             `json:"source_date"`
	ContactIDs         []string           `json:"contact_ids"`
	SignificanceWeight SignificanceWeight `json:"significance_weight"`
	Strength           float64            `json:"strength"`
	ActivationCount    int                `json:"activation_count"`
	LastActivatedAt    time.Time          `json:"last_activated_at"`
	CreatedAt          time.Time          `json:"created_at"`
}

// HasContact reports whether id is present in the memory's contact set.
// Set containment, never substring match (spec.md §9 Open Question #1).
func (m *Memory) HasContact(id string) bool {
	if id == "" {
		return true
	}
	for _, c := range m.ContactIDs {
		if c == id {
			return true
		}
	}
	return false
}
