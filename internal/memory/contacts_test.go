package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveContactsFullNameMatch(t *testing.T) {
	contacts := []Contact{{ID: "c1", Name: "Jordan Lee"}}
	ids := ResolveContacts([]string{"Jordan Lee"}, "had coffee with Jordan Lee", contacts, nil)
	assert.Equal(t, []string{"c1"}, ids)
}

func TestResolveContactsFirstNameMatch(t *testing.T) {
	contacts := []Contact{{ID: "c1", Name: "Jordan Lee"}}
	ids := ResolveContacts([]string{"Jordan"}, "saw Jordan today", contacts, nil)
	assert.Equal(t, []string{"c1"}, ids)
}

func TestResolveContactsExplicitLabelTakesPriorityOverFullName(t *testing.T) {
	contacts := []Contact{{ID: "wrong", Name: "Sam"}}
	explicit := map[string]string{"Sam": "right"}
	ids := ResolveContacts([]string{"Sam"}, "talked to Sam", contacts, explicit)
	assert.Equal(t, []string{"right"}, ids)
}

func TestResolveContactsAmbiguousFirstTokenIsSkipped(t *testing.T) {
	explicit := map[string]string{"Sam Carter": "a", "Sam Young": "b"}
	ids := ResolveContacts([]string{"Sam"}, "met with sam", nil, explicit)
	// two explicit labels share first token "Sam" -> ambiguous -> the
	// extracted name "Sam" resolves to nothing, and neither full label
	// appears verbatim in the memory text either.
	assert.Empty(t, ids)
}

func TestResolveContactsSubstringScanFindsFullLabelRegardlessOfExtractedNames(t *testing.T) {
	explicit := map[string]string{"Sam Carter": "a", "Sam Young": "b"}
	ids := ResolveContacts(nil, "met with Sam Carter and Sam Young today", nil, explicit)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestResolveContactsDeduplicates(t *testing.T) {
	contacts := []Contact{{ID: "c1", Name: "Jordan Lee"}}
	ids := ResolveContacts([]string{"Jordan Lee", "Jordan"}, "Jordan Lee and Jordan talked", contacts, nil)
	assert.Equal(t, []string{"c1"}, ids)
}

func TestResolveContactsNoMatchReturnsEmpty(t *testing.T) {
	ids := ResolveContacts([]string{"Nobody"}, "a quiet day alone", nil, nil)
	assert.Empty(t, ids)
}
