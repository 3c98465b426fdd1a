package normalisers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

const notionURL = "https://www.notion.so/"

// NotionNormaliser maps pages and databases returned by search.
type NotionNormaliser struct{}

func (n *NotionNormaliser) Platform() domain.PlatformType {
	return domain.PlatformNotion
}

type notionRichText struct {
	PlainText text `json:"plain_text"`
}

type notionParent struct {
	Type       text `json:"type"`
	PageID     text `json:"page_id"`
	DatabaseID text `json:"database_id"`
	BlockID    text `json:"block_id"`
}

type notionProperty struct {
	Type  text             `json:"type"`
	Title []notionRichText `json:"title"`
}

type notionObject struct {
	Object         text            `json:"object"`
	ID             string          `json:"id"`
	URL            text            `json:"url"`
	CreatedTime    text            `json:"created_time"`
	LastEditedTime text            `json:"last_edited_time"`
	Parent         json.RawMessage `json:"parent"`
	// Title is set on databases.
	Title json.RawMessage `json:"title"`
	// Properties holds a page's title property among others.
	Properties json.RawMessage `json:"properties"`
}

func (n *NotionNormaliser) Normalise(raw driven.RawRecord) (*domain.IntegrationItem, error) {
	var obj notionObject
	if err := json.Unmarshal(raw.Data, &obj); err != nil {
		return nil, fmt.Errorf("decode notion object: %w", err)
	}
	if obj.ID == "" {
		return nil, errors.New("notion object has no id")
	}

	kind := string(obj.Object)
	if kind == "" {
		kind = raw.Type
	}

	item := domain.NewIntegrationItem(obj.ID, kind)
	item.Directory = kind == "database"
	item.Name = JoinName(obj.title())
	item.CreationTime = ParseTimestamp(string(obj.CreatedTime))
	item.LastModifiedTime = ParseTimestamp(string(obj.LastEditedTime))

	item.URL = string(obj.URL)
	if item.URL == "" {
		item.URL = notionURL + strings.ReplaceAll(obj.ID, "-", "")
	}

	var parent notionParent
	decodeLenient(obj.Parent, &parent)
	var parentID text
	switch parent.Type {
	case "page_id":
		parentID = parent.PageID
	case "database_id":
		parentID = parent.DatabaseID
	case "block_id":
		parentID = parent.BlockID
	}
	if parentID != "" {
		item.WithParent(string(parentID), "")
	}

	return item, nil
}

// title concatenates the plain text of the database title or the page's
// title property.
func (o *notionObject) title() string {
	var parts []notionRichText
	decodeLenient(o.Title, &parts)
	if len(parts) == 0 {
		var props map[string]notionProperty
		decodeLenient(o.Properties, &props)
		for _, prop := range props {
			if prop.Type == "title" {
				parts = prop.Title
				break
			}
		}
	}

	var b strings.Builder
	for _, p := range parts {
		b.WriteString(string(p.PlainText))
	}
	return b.String()
}
