// Package prompts holds the fixed prompt templates for the five LLM
// operations the engine depends on (extraction, abstraction, connection
// discovery, implication synthesis, quality scoring). Wording here is
// treated as part of the external interface: it encodes the typologies
// and tone rules the LLM provider is expected to honor, so callers should
// not reword these templates lightly.
package prompts

import (
	"fmt"
	"strings"
)

// ConnectionTypes lists the closed set of connection type tags the
// discover-connections prompt is instructed to choose from.
const ConnectionTypes = "causal, thematic, contradiction, pattern, temporal_sequence, cross_domain, sensory, deviation, escalation"

// ImplicationTypes lists the closed set of implication type tags the
// synthesize-implication prompt is instructed to choose from.
const ImplicationTypes = "predictive, emotional, relational, identity, behavioral, actionable, absence, trajectory, meta_cognitive, retrograde, counterfactual"

// Extract builds the atomic-extraction prompt for a single journal entry.
func Extract(journalText, sourceDate string, contacts []string) string {
	var b strings.Builder
	b.WriteString("You distill a journal entry into atomic, self-contained memory statements.\n\n")
	b.WriteString("A memory statement must stand alone: resolve pronouns, carry its own date and\n")
	b.WriteString("subject, and state exactly one fact, event, decision, or observation.\n\n")
	fmt.Fprintf(&b, "Entry date: %s\n", sourceDate)
	if len(contacts) > 0 {
		fmt.Fprintf(&b, "Known contacts: %s\n", strings.Join(contacts, ", "))
	}
	b.WriteString("\nJournal entry:\n")
	b.WriteString(journalText)
	b.WriteString("\n\nFor each distinct memory, output:\n")
	b.WriteString("- content: the atomic statement, written in the third person\n")
	b.WriteString("- contact_names: any names from the known contacts (or plausible names) involved\n")
	b.WriteString("- significance: one of high, medium, low\n\n")
	b.WriteString("Respond with a single JSON object: {\"memories\": [{\"content\": \"...\", ")
	b.WriteString("\"contact_names\": [\"...\"], \"significance\": \"high|medium|low\"}]}\n")
	b.WriteString("If the entry yields no atomic memory, respond {\"memories\": []}.\n")
	b.WriteString("Output only the JSON object, no commentary.")
	return b.String()
}

// Abstract builds the prompt that paraphrases a memory with all proper
// nouns, dates, and locations replaced by relational roles.
func Abstract(content string) string {
	var b strings.Builder
	b.WriteString("Rewrite the memory below as a 1-2 sentence paraphrase with every proper noun,\n")
	b.WriteString("date, and location replaced by a relational role (e.g. \"a close friend\",\n")
	b.WriteString("\"a former employer\", \"last winter\", \"a coastal city\").\n\n")
	b.WriteString("Preserve the emotional and causal shape of the statement; discard anything\n")
	b.WriteString("that identifies a specific person, place, or date.\n\n")
	b.WriteString("Memory:\n")
	b.WriteString(content)
	b.WriteString("\n\nOutput only the paraphrase, no commentary, no quotation marks.")
	return b.String()
}

// ClusterMember is the minimal view of a memory the cluster-scoped
// prompts need.
type ClusterMember struct {
	ID      string
	Content string
}

// DiscoverConnections builds the prompt that proposes typed connections
// among the members of a cluster (or anti-cluster).
func DiscoverConnections(members []ClusterMember, contacts []string, isAntiCluster bool) string {
	var b strings.Builder
	if isAntiCluster {
		b.WriteString("The memories below were grouped because they are superficially unrelated\n")
		b.WriteString("but share an underlying pattern once stripped of names, dates, and places.\n")
		b.WriteString("Look for the deeper structural or thematic link, not surface similarity.\n\n")
	} else {
		b.WriteString("The memories below were grouped by semantic similarity. Find meaningful\n")
		b.WriteString("connections between specific pairs.\n\n")
	}
	fmt.Fprintf(&b, "Allowed connection types: %s\n\n", ConnectionTypes)
	if len(contacts) > 0 {
		fmt.Fprintf(&b, "Known contacts: %s\n\n", strings.Join(contacts, ", "))
	}
	b.WriteString("Memories:\n")
	for _, m := range members {
		fmt.Fprintf(&b, "- [%s] %s\n", m.ID, m.Content)
	}
	b.WriteString("\nPropose at most 4 connections. Each needs a reason of at least two sentences'\n")
	b.WriteString("worth of justification (at least 10 characters) naming the specific link.\n\n")
	b.WriteString("Respond with a single JSON object: {\"connections\": [{\"memory_a_id\": \"...\", ")
	b.WriteString("\"memory_b_id\": \"...\", \"connection_type\": \"...\", \"reason\": \"...\"}]}\n")
	b.WriteString("If no connection is warranted, respond {\"connections\": []}.\n")
	b.WriteString("Output only the JSON object, no commentary.")
	return b.String()
}

// Connection is the minimal view of a discovered connection the
// synthesis prompt needs for context.
type Connection struct {
	MemoryAID      string
	MemoryBID      string
	ConnectionType string
	Reason         string
}

// SynthesizeImplication builds the prompt that derives a higher-order
// insight from a cluster and its discovered connections.
func SynthesizeImplication(members []ClusterMember, connections []Connection, contacts []string, isAntiCluster bool) string {
	var b strings.Builder
	if isAntiCluster {
		b.WriteString("Given this set of surface-unrelated memories and the cross-domain connection\n")
		b.WriteString("found between them, synthesize a single higher-order insight that would only\n")
		b.WriteString("be visible by comparing them side by side.\n\n")
	} else {
		b.WriteString("Given this cluster of related memories and the connections found between them,\n")
		b.WriteString("synthesize at most one higher-order insight that goes beyond any single memory.\n\n")
	}
	fmt.Fprintf(&b, "Allowed implication types: %s\n\n", ImplicationTypes)
	if len(contacts) > 0 {
		fmt.Fprintf(&b, "Known contacts: %s\n\n", strings.Join(contacts, ", "))
	}
	b.WriteString("Memories:\n")
	for _, m := range members {
		fmt.Fprintf(&b, "- [%s] %s\n", m.ID, m.Content)
	}
	if len(connections) > 0 {
		b.WriteString("\nConnections:\n")
		for _, c := range connections {
			fmt.Fprintf(&b, "- %s -- %s: %s (%s)\n", c.MemoryAID, c.MemoryBID, c.ConnectionType, c.Reason)
		}
	}
	b.WriteString("\nAn implication's content must be at least 20 characters and name which\n")
	b.WriteString("memories it draws on. Assign implication_order 1 for a direct observation,\n")
	b.WriteString("2 for a pattern across multiple entries, 3 for a meta-level insight about\n")
	b.WriteString("the person's patterns themselves.\n\n")
	b.WriteString("Respond with a single JSON object: {\"implications\": [{\"content\": \"...\", ")
	b.WriteString("\"implication_type\": \"...\", \"source_memory_ids\": [\"...\"], \"order\": 1}]}\n")
	b.WriteString("If nothing rises above the individual memories, respond {\"implications\": []}.\n")
	b.WriteString("Output only the JSON object, no commentary.")
	return b.String()
}

// Score builds the quality-gate prompt for a synthesized implication.
func Score(implicationContent string, sourceContents []string) string {
	var b strings.Builder
	b.WriteString("Rate the insight below on a scale of 1 to 5 for whether it is genuinely\n")
	b.WriteString("non-obvious, specific, and well-supported by its source memories.\n\n")
	b.WriteString("1 = restates a single memory with no added insight\n")
	b.WriteString("3 = plausible but generic, could apply to almost anyone\n")
	b.WriteString("5 = specific, well-supported, and reveals something not stated outright\n\n")
	b.WriteString("Insight:\n")
	b.WriteString(implicationContent)
	b.WriteString("\n\nSource memories:\n")
	for _, c := range sourceContents {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nOutput only the digit, no commentary.")
	return b.String()
}
