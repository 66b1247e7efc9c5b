package memory

import "strings"

// Contact is the minimal view of an external contact the ingest pipeline
// needs for name resolution.
type Contact struct {
	ID   string
	Name string
}

// ResolveContacts implements the contact resolution algorithm of
// spec.md §4.4: given the names the extraction prompt attributed to a
// memory, the user's contact snapshot, and any caller-supplied explicit
// mentions (a label -> contact id mapping), return the deduplicated set
// of contact ids the memory should carry.
func ResolveContacts(names []string, memoryText string, contacts []Contact, explicitMentions map[string]string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, name := range names {
		if id, ok := matchExplicitLabel(name, explicitMentions); ok {
			add(id)
			continue
		}
		if id, ok := matchExplicitFirstToken(name, explicitMentions); ok {
			add(id)
			continue
		}
		if id, ok := matchFullName(name, contacts); ok {
			add(id)
			continue
		}
		if id, ok := matchFirstName(name, contacts); ok {
			add(id)
			continue
		}
	}

	lowerText := strings.ToLower(memoryText)
	for label, id := range explicitMentions {
		if strings.Contains(lowerText, strings.ToLower(label)) {
			add(id)
		}
	}

	return out
}

func matchExplicitLabel(name string, explicitMentions map[string]string) (string, bool) {
	for label, id := range explicitMentions {
		if strings.EqualFold(label, name) {
			return id, true
		}
	}
	return "", false
}

func matchExplicitFirstToken(name string, explicitMentions map[string]string) (string, bool) {
	nameFirst := firstToken(name)
	var matchID string
	count := 0
	for label, id := range explicitMentions {
		if strings.EqualFold(firstToken(label), nameFirst) {
			count++
			matchID = id
		}
	}
	if count == 1 {
		return matchID, true
	}
	return "", false
}

func matchFullName(name string, contacts []Contact) (string, bool) {
	for _, c := range contacts {
		if strings.EqualFold(c.Name, name) {
			return c.ID, true
		}
	}
	return "", false
}

func matchFirstName(name string, contacts []Contact) (string, bool) {
	nameFirst := strings.ToLower(firstToken(name))
	for _, c := range contacts {
		for _, tok := range strings.Fields(c.Name) {
			if strings.ToLower(tok) == nameFirst {
				return c.ID, true
			}
		}
	}
	return "", false
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}
