// Package airtable connects Airtable workspaces and lists their bases and tables.
package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strings"

	"github.com/custodia-labs/sercha-bridge/internal/adapters/driven/platforms"
	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

// Ensure Adapter implements the interface.
var _ driven.PlatformAdapter = (*Adapter)(nil)

const (
	DefaultAuthorizeURL = "https://airtable.com/oauth2/v1/authorize"
	DefaultTokenURL     = "https://airtable.com/oauth2/v1/token"
	DefaultAPIBaseURL   = "https://api.airtable.com"

	RecordTypeBase  = "Base"
	RecordTypeTable = "Table"
)

// DefaultScopes are requested when the configuration names none.
var DefaultScopes = []string{
	"data.records:read",
	"schema.bases:read",
}

// Config holds the Airtable OAuth application and endpoint settings.
// Empty endpoints fall back to the public Airtable URLs.
type Config struct {
	OAuth        domain.PlatformConfig
	AuthorizeURL string
	TokenURL     string
	APIBaseURL   string
	Client       *platforms.Client
}

// Adapter implements driven.PlatformAdapter for Airtable.
// Airtable requires PKCE and HTTP Basic client authentication.
type Adapter struct {
	oauth        domain.PlatformConfig
	authorizeURL string
	tokenURL     string
	apiBaseURL   string
	client       *platforms.Client
}

// New creates an Airtable adapter.
func New(cfg Config) *Adapter {
	a := &Adapter{
		oauth:        cfg.OAuth,
		authorizeURL: cfg.AuthorizeURL,
		tokenURL:     cfg.TokenURL,
		apiBaseURL:   strings.TrimRight(cfg.APIBaseURL, "/"),
		client:       cfg.Client,
	}
	if a.authorizeURL == "" {
		a.authorizeURL = DefaultAuthorizeURL
	}
	if a.tokenURL == "" {
		a.tokenURL = DefaultTokenURL
	}
	if a.apiBaseURL == "" {
		a.apiBaseURL = DefaultAPIBaseURL
	}
	if len(a.oauth.Scopes) == 0 {
		a.oauth.Scopes = DefaultScopes
	}
	if a.client == nil {
		a.client = platforms.NewClient(nil)
	}
	return a
}

func (a *Adapter) Platform() domain.PlatformType {
	return domain.PlatformAirtable
}

func (a *Adapter) UsesPKCE() bool {
	return true
}

// AuthorizationURL builds the Airtable consent URL with an S256 challenge.
func (a *Adapter) AuthorizationURL(state, codeChallenge string) string {
	params := url.Values{
		"client_id":             {a.oauth.ClientID},
		"redirect_uri":          {a.oauth.RedirectURI},
		"response_type":         {"code"},
		"scope":                 {strings.Join(a.oauth.Scopes, " ")},
		"state":                 {state},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {"S256"},
	}
	return a.authorizeURL + "?" + params.Encode()
}

// ExchangeToken trades the authorization code and PKCE verifier for tokens.
func (a *Adapter) ExchangeToken(ctx context.Context, code, codeVerifier string) ([]byte, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {a.oauth.RedirectURI},
		"client_id":     {a.oauth.ClientID},
		"code_verifier": {codeVerifier},
	}
	return a.client.ExchangeForm(ctx, a.tokenURL, form, &platforms.BasicAuth{
		Username: a.oauth.ClientID,
		Password: a.oauth.ClientSecret,
	})
}

type basesPage struct {
	Bases  []json.RawMessage `json:"bases"`
	Offset string            `json:"offset"`
}

type tablesResponse struct {
	Tables []json.RawMessage `json:"tables"`
}

type baseRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListResources pages through the bases the token can see. Each base is
// followed by its tables, which carry the base as their parent. A failure
// listing one base's tables ends the listing after the records gathered so far.
func (a *Adapter) ListResources(ctx context.Context, cred *domain.Credential) iter.Seq2[driven.RawRecord, error] {
	return platforms.Paginate(ctx, func(ctx context.Context, cursor string) (*platforms.Page, error) {
		endpoint := a.apiBaseURL + "/v0/meta/bases"
		if cursor != "" {
			endpoint += "?" + url.Values{"offset": {cursor}}.Encode()
		}

		var resp basesPage
		if err := a.client.FetchJSON(ctx, platforms.Request{URL: endpoint, Token: cred.AccessToken}, &resp); err != nil {
			return nil, err
		}

		page := &platforms.Page{NextCursor: resp.Offset}
		for _, data := range resp.Bases {
			page.Records = append(page.Records, driven.RawRecord{
				Platform: domain.PlatformAirtable,
				Type:     RecordTypeBase,
				Data:     data,
			})

			var base baseRef
			if err := json.Unmarshal(data, &base); err != nil || base.ID == "" {
				continue
			}

			tables, err := a.listTables(ctx, cred, base)
			if err != nil {
				return page, err
			}
			page.Records = append(page.Records, tables...)
		}
		return page, nil
	})
}

func (a *Adapter) listTables(ctx context.Context, cred *domain.Credential, base baseRef) ([]driven.RawRecord, error) {
	var resp tablesResponse
	err := a.client.FetchJSON(ctx, platforms.Request{
		URL:   fmt.Sprintf("%s/v0/meta/bases/%s/tables", a.apiBaseURL, url.PathEscape(base.ID)),
		Token: cred.AccessToken,
	}, &resp)
	if err != nil {
		return nil, err
	}

	records := make([]driven.RawRecord, 0, len(resp.Tables))
	for _, data := range resp.Tables {
		records = append(records, driven.RawRecord{
			Platform:   domain.PlatformAirtable,
			Type:       RecordTypeTable,
			Data:       data,
			ParentID:   base.ID,
			ParentName: base.Name,
		})
	}
	return records, nil
}
