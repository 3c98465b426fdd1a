package normalisers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

const airtableURL = "https://airtable.com/"

// AirtableNormaliser maps bases and their tables. Bases are directories;
// tables point back at their base.
type AirtableNormaliser struct{}

func (n *AirtableNormaliser) Platform() domain.PlatformType {
	return domain.PlatformAirtable
}

func (n *AirtableNormaliser) Normalise(raw driven.RawRecord) (*domain.IntegrationItem, error) {
	var rec struct {
		ID   string `json:"id"`
		Name text   `json:"name"`
	}
	if err := json.Unmarshal(raw.Data, &rec); err != nil {
		return nil, fmt.Errorf("decode airtable %s: %w", raw.Type, err)
	}
	if rec.ID == "" {
		return nil, errors.New("airtable record has no id")
	}

	item := domain.NewIntegrationItem(rec.ID, raw.Type)
	item.Name = JoinName(string(rec.Name))

	if raw.ParentID == "" {
		item.Directory = true
		item.URL = airtableURL + rec.ID
		return item, nil
	}

	item.WithParent(raw.ParentID, raw.ParentName)
	item.URL = airtableURL + raw.ParentID + "/" + rec.ID
	return item, nil
}
