package normalisers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

const hubspotContactURL = "https://app.hubspot.com/contacts/"

// HubSpotNormaliser maps CRM contacts.
type HubSpotNormaliser struct{}

func (n *HubSpotNormaliser) Platform() domain.PlatformType {
	return domain.PlatformHubSpot
}

type hubspotContact struct {
	ID         string          `json:"id"`
	Properties json.RawMessage `json:"properties"`
}

type hubspotProperties struct {
	FirstName        text `json:"firstname"`
	LastName         text `json:"lastname"`
	CreateDate       text `json:"createdate"`
	LastModifiedDate text `json:"lastmodifieddate"`
}

func (n *HubSpotNormaliser) Normalise(raw driven.RawRecord) (*domain.IntegrationItem, error) {
	var c hubspotContact
	if err := json.Unmarshal(raw.Data, &c); err != nil {
		return nil, fmt.Errorf("decode hubspot contact: %w", err)
	}
	if c.ID == "" {
		return nil, errors.New("hubspot contact has no id")
	}

	var p hubspotProperties
	decodeLenient(c.Properties, &p)

	item := domain.NewIntegrationItem(c.ID, "contact")
	item.Name = JoinName(string(p.FirstName), string(p.LastName))
	item.CreationTime = ParseTimestamp(string(p.CreateDate))
	item.LastModifiedTime = ParseTimestamp(string(p.LastModifiedDate))
	item.URL = hubspotContactURL + c.ID
	return item, nil
}
