package types

import "time"

// ConnectionType is the closed set of typed edges a connection may carry.
type ConnectionType string

const (
	ConnectionCausal           ConnectionType = "causal"
	ConnectionThematic         ConnectionType = "thematic"
	ConnectionContradiction    ConnectionType = "contradiction"
	ConnectionPattern          ConnectionType = "pattern"
	ConnectionTemporalSequence ConnectionType = "temporal_sequence"
	ConnectionCrossDomain      ConnectionType = "cross_domain"
	ConnectionSensory          ConnectionType = "sensory"
	ConnectionDeviation        ConnectionType = "deviation"
	ConnectionEscalation       ConnectionType = "escalation"
)

// ValidConnectionTypes is the closed set used to reject LLM output outside
// the typology at parse time (design note in spec.md §9).
var ValidConnectionTypes = map[ConnectionType]bool{
	ConnectionCausal:           true,
	ConnectionThematic:         true,
	ConnectionContradiction:    true,
	ConnectionPattern:          true,
	ConnectionTemporalSequence: true,
	ConnectionCrossDomain:      true,
	ConnectionSensory:          true,
	ConnectionDeviation:        true,
	ConnectionEscalation:       true,
}

// Connection is an undirected, typed, weighted edge between two memories of
// the same user. Invariant: AID < BID lexicographically (normalized pair),
// and AID != BID (spec.md §9 Open Question #2 — no self-edges).
type Connection struct {
	MemoryAID         string         `json:"memory_a_id"`
	MemoryBID         string         `json:"memory_b_id"`
	ConnectionType    ConnectionType `json:"connection_type"`
	Weight            float64        `json:"weight"`
	Reason            string         `json:"reason"`
	CreatedAt         time.Time      `json:"created_at"`
	LastCoactivatedAt time.Time      `json:"last_coactivated_at"`
}

// NormalizePair returns (a, b) ordered so a < b lexicographically.
func NormalizePair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}
