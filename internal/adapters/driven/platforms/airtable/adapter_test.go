package airtable

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-bridge/internal/adapters/driven/platforms"
	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

func testAdapter(serverURL string) *Adapter {
	return New(Config{
		OAuth: domain.PlatformConfig{
			Platform:     domain.PlatformAirtable,
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURI:  "http://localhost:8000/integrations/airtable/oauth2callback",
		},
		TokenURL:   serverURL + "/oauth2/v1/token",
		APIBaseURL: serverURL,
		Client:     platforms.NewClient(nil).WithRetry(0, time.Millisecond),
	})
}

func TestAdapter_AuthorizationURL(t *testing.T) {
	a := testAdapter("http://unused")
	require.True(t, a.UsesPKCE())

	u, err := url.Parse(a.AuthorizationURL("st", "challenge"))
	require.NoError(t, err)

	assert.Equal(t, "airtable.com", u.Host)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "st", q.Get("state"))
	assert.Equal(t, "challenge", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "data.records:read schema.bases:read", q.Get("scope"))
}

func TestAdapter_ExchangeToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "the-verifier", r.PostForm.Get("code_verifier"))
		assert.Empty(t, r.PostForm.Get("client_secret"))
		fmt.Fprint(w, `{"access_token":"T","refresh_token":"R","expires_in":3600}`)
	}))
	defer server.Close()

	body, err := testAdapter(server.URL).ExchangeToken(context.Background(), "the-code", "the-verifier")
	require.NoError(t, err)
	assert.Contains(t, string(body), `"access_token":"T"`)
}

func TestAdapter_ListResources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer T", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v0/meta/bases":
			if r.URL.Query().Get("offset") == "" {
				fmt.Fprint(w, `{"bases":[{"id":"app1","name":"CRM"}],"offset":"o1"}`)
				return
			}
			fmt.Fprint(w, `{"bases":[{"id":"app2","name":"Ops"}]}`)
		case "/v0/meta/bases/app1/tables":
			fmt.Fprint(w, `{"tables":[{"id":"tbl1","name":"Leads"},{"id":"tbl2","name":"Deals"}]}`)
		case "/v0/meta/bases/app2/tables":
			fmt.Fprint(w, `{"tables":[]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	var got []driven.RawRecord
	for rec, err := range testAdapter(server.URL).ListResources(context.Background(), &domain.Credential{AccessToken: "T"}) {
		require.NoError(t, err)
		got = append(got, rec)
	}

	require.Len(t, got, 4)
	assert.Equal(t, RecordTypeBase, got[0].Type)
	assert.Equal(t, RecordTypeTable, got[1].Type)
	assert.Equal(t, "app1", got[1].ParentID)
	assert.Equal(t, "CRM", got[1].ParentName)
	assert.Equal(t, RecordTypeTable, got[2].Type)
	assert.Equal(t, RecordTypeBase, got[3].Type)
	assert.Empty(t, got[3].ParentID)
}

func TestAdapter_ListResourcesTablesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v0/meta/bases":
			fmt.Fprint(w, `{"bases":[{"id":"app1","name":"CRM"},{"id":"app2","name":"Ops"}]}`)
		case "/v0/meta/bases/app1/tables":
			fmt.Fprint(w, `{"tables":[{"id":"tbl1","name":"Leads"}]}`)
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer server.Close()

	var (
		got  []driven.RawRecord
		errs int
	)
	for rec, err := range testAdapter(server.URL).ListResources(context.Background(), &domain.Credential{AccessToken: "T"}) {
		if err != nil {
			errs++
			assert.ErrorIs(t, err, domain.ErrUpstreamFetchFailed)
			continue
		}
		got = append(got, rec)
	}
	assert.Equal(t, 1, errs)

	require.Len(t, got, 3, "records gathered before the failure are kept")
	assert.Equal(t, RecordTypeBase, got[0].Type)
	assert.Equal(t, RecordTypeTable, got[1].Type)
	assert.Equal(t, RecordTypeBase, got[2].Type)
	assert.JSONEq(t, `{"id":"app2","name":"Ops"}`, string(got[2].Data))
}
