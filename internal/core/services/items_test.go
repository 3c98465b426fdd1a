package services

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driving"
)

// stubNormalisers decodes {"id": ...} records and rejects anything else.
type stubNormalisers struct{}

func newStubNormalisers() driven.NormaliserRegistry { return stubNormalisers{} }

func (stubNormalisers) Register(driven.ItemNormaliser) {}

func (stubNormalisers) Normalise(raw driven.RawRecord) (*domain.IntegrationItem, error) {
	var rec struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw.Data, &rec); err != nil {
		return nil, err
	}
	return domain.NewIntegrationItem(rec.ID, raw.Type).WithParent(raw.ParentID, raw.ParentName), nil
}

// records yields the given JSON documents, then err when non-nil.
func records(err error, docs ...string) iter.Seq2[driven.RawRecord, error] {
	return func(yield func(driven.RawRecord, error) bool) {
		for _, doc := range docs {
			if !yield(driven.RawRecord{Platform: domain.PlatformHubSpot, Type: "contact", Data: json.RawMessage(doc)}, nil) {
				return
			}
		}
		if err != nil {
			yield(driven.RawRecord{}, err)
		}
	}
}

func (h *testHarness) loadItems(credentials string) ([]*domain.IntegrationItem, error) {
	return h.svc.LoadItems(context.Background(), driving.LoadItemsRequest{
		Platform:    h.adapter.Platform(),
		Credentials: credentials,
	})
}

func TestLoadItems_NormalisesEveryRecord(t *testing.T) {
	h := newTestHarness(t, domain.PlatformHubSpot)

	var gotToken string
	h.adapter.ListResourcesFn = func(ctx context.Context, cred *domain.Credential) iter.Seq2[driven.RawRecord, error] {
		gotToken = cred.AccessToken
		return records(nil, `{"id":"1"}`, `{"id":"2"}`, `{"id":"3"}`)
	}

	items, err := h.loadItems(`{"access_token":"T"}`)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "T", gotToken)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "3", items[2].ID)
}

func TestLoadItems_EmptyListing(t *testing.T) {
	h := newTestHarness(t, domain.PlatformHubSpot)

	items, err := h.loadItems(`{"access_token":"T"}`)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestLoadItems_PartialResultsOnUpstreamFailure(t *testing.T) {
	h := newTestHarness(t, domain.PlatformHubSpot)
	h.adapter.ListResourcesFn = func(ctx context.Context, cred *domain.Credential) iter.Seq2[driven.RawRecord, error] {
		return records(domain.NewUpstreamError(domain.KindUpstreamFetchFailed, "page 3 failed", 500, nil), `{"id":"1"}`, `{"id":"2"}`)
	}

	items, err := h.loadItems(`{"access_token":"T"}`)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestLoadItems_ContextErrorReturned(t *testing.T) {
	h := newTestHarness(t, domain.PlatformHubSpot)
	h.adapter.ListResourcesFn = func(ctx context.Context, cred *domain.Credential) iter.Seq2[driven.RawRecord, error] {
		return records(context.Canceled, `{"id":"1"}`)
	}

	_, err := h.loadItems(`{"access_token":"T"}`)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadItems_SkipsUndecodableRecords(t *testing.T) {
	h := newTestHarness(t, domain.PlatformHubSpot)
	h.adapter.ListResourcesFn = func(ctx context.Context, cred *domain.Credential) iter.Seq2[driven.RawRecord, error] {
		return records(nil, `{"id":"1"}`, `not json`, `{"id":"3"}`)
	}

	items, err := h.loadItems(`{"access_token":"T"}`)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "3", items[1].ID)
}

func TestLoadItems_InvalidCredential(t *testing.T) {
	h := newTestHarness(t, domain.PlatformHubSpot)

	listed := false
	h.adapter.ListResourcesFn = func(ctx context.Context, cred *domain.Credential) iter.Seq2[driven.RawRecord, error] {
		listed = true
		return records(nil)
	}

	for _, payload := range []string{"", "not json", `{"refresh_token":"R"}`, `{"access_token":""}`} {
		_, err := h.loadItems(payload)
		assert.ErrorIs(t, err, domain.ErrInvalidCredential, "payload %q", payload)
	}
	assert.False(t, listed)
}

func TestLoadItems_UnknownPlatform(t *testing.T) {
	h := newTestHarness(t, domain.PlatformHubSpot)

	_, err := h.svc.LoadItems(context.Background(), driving.LoadItemsRequest{
		Platform:    domain.PlatformAirtable,
		Credentials: `{"access_token":"T"}`,
	})
	assert.True(t, errors.Is(err, domain.ErrUnsupportedPlatform))
}
