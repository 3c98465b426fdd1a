package normalisers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

func TestAirtableNormaliser_Base(t *testing.T) {
	n := &AirtableNormaliser{}

	item, err := n.Normalise(driven.RawRecord{
		Platform: domain.PlatformAirtable,
		Type:     "Base",
		Data:     []byte(`{"id":"appABC","name":"Sales CRM","permissionLevel":"create"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "appABC", item.ID)
	assert.Equal(t, "Base", item.Type)
	assert.Equal(t, "Sales CRM", item.Name)
	assert.True(t, item.Directory)
	assert.Equal(t, "https://airtable.com/appABC", item.URL)
	assert.Nil(t, item.ParentID)
	assert.Nil(t, item.CreationTime)
}

func TestAirtableNormaliser_Table(t *testing.T) {
	n := &AirtableNormaliser{}

	item, err := n.Normalise(driven.RawRecord{
		Platform:   domain.PlatformAirtable,
		Type:       "Table",
		Data:       []byte(`{"id":"tblXYZ","name":"Leads","primaryFieldId":"fld1"}`),
		ParentID:   "appABC",
		ParentName: "Sales CRM",
	})
	require.NoError(t, err)

	assert.Equal(t, "Table", item.Type)
	assert.False(t, item.Directory)
	assert.Equal(t, "https://airtable.com/appABC/tblXYZ", item.URL)
	require.NotNil(t, item.ParentID)
	assert.Equal(t, "appABC", *item.ParentID)
	require.NotNil(t, item.ParentPathOrName)
	assert.Equal(t, "Sales CRM", *item.ParentPathOrName)
}

func TestAirtableNormaliser_NonStringName(t *testing.T) {
	n := &AirtableNormaliser{}

	item, err := n.Normalise(driven.RawRecord{
		Platform: domain.PlatformAirtable,
		Type:     "Base",
		Data:     []byte(`{"id":"appABC","name":123}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "appABC", item.ID)
	assert.Equal(t, "", item.Name)
}

func TestAirtableNormaliser_Invalid(t *testing.T) {
	n := &AirtableNormaliser{}

	_, err := n.Normalise(driven.RawRecord{Platform: domain.PlatformAirtable, Type: "Base", Data: []byte(`{`)})
	assert.Error(t, err)

	_, err = n.Normalise(driven.RawRecord{Platform: domain.PlatformAirtable, Type: "Base", Data: []byte(`{"name":"x"}`)})
	assert.Error(t, err)
}
