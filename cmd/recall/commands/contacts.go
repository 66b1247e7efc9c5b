package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/icyhot/recall/internal/memory"
)

// contactRecord is the on-disk shape of a --contacts file: a snapshot of
// the user's contacts, since this repo has no contact directory of its
// own (spec.md §2 treats Contact as owned by the journaling app).
type contactRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func loadContacts(path string) ([]memory.Contact, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contacts file: %w", err)
	}
	var records []contactRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse contacts file: %w", err)
	}
	contacts := make([]memory.Contact, len(records))
	for i, r := range records {
		contacts[i] = memory.Contact{ID: r.ID, Name: r.Name}
	}
	return contacts, nil
}

func contactNames(contacts []memory.Contact) []string {
	names := make([]string, len(contacts))
	for i, c := range contacts {
		names[i] = c.Name
	}
	return names
}
