package domain

import "time"

// IntegrationItem is the platform-agnostic view of a listed resource
type IntegrationItem struct {
	ID               string     `json:"id"`
	Type             string     `json:"type"`
	Directory        bool       `json:"directory"`
	ParentPathOrName *string    `json:"parent_path_or_name"`
	ParentID         *string    `json:"parent_id"`
	Name             string     `json:"name"`
	CreationTime     *time.Time `json:"creation_time"`
	LastModifiedTime *time.Time `json:"last_modified_time"`
	URL              string     `json:"url"`
	Children         []string   `json:"children,omitempty"`
	MimeType         *string    `json:"mime_type"`
	Delta            *string    `json:"delta"`
	DriveID          *string    `json:"drive_id"`
	Visibility       bool       `json:"visibility"`
}

// NewIntegrationItem creates an item with the default visibility.
func NewIntegrationItem(id, itemType string) *IntegrationItem {
	return &IntegrationItem{
		ID:         id,
		Type:       itemType,
		Visibility: true,
	}
}

// WithParent sets the parent reference for hierarchical sources.
// Empty values leave the parent unset.
func (i *IntegrationItem) WithParent(id, name string) *IntegrationItem {
	if id != "" {
		i.ParentID = &id
	}
	if name != "" {
		i.ParentPathOrName = &name
	}
	return i
}
