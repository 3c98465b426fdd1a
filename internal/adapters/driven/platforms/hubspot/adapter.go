// Package hubspot connects HubSpot CRM accounts and lists their contacts.
package hubspot

import (
	"context"
	"encoding/json"
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
	DefaultAuthorizeURL = "https://app.hubspot.com/oauth/authorize"
	DefaultTokenURL     = "https://api.hubapi.com/oauth/v1/token"
	DefaultAPIBaseURL   = "https://api.hubapi.com"

	// RecordTypeContact is the RawRecord type of listed contacts.
	RecordTypeContact = "contact"

	pageSize = "100"
)

// DefaultScopes are requested when the configuration names none.
var DefaultScopes = []string{
	"crm.objects.contacts.read",
	"crm.objects.contacts.write",
	"crm.schemas.contacts.read",
	"crm.schemas.contacts.write",
}

// Config holds the HubSpot OAuth application and endpoint settings.
// Empty endpoints fall back to the public HubSpot URLs.
type Config struct {
	OAuth        domain.PlatformConfig
	AuthorizeURL string
	TokenURL     string
	APIBaseURL   string
	Client       *platforms.Client
}

// Adapter implements driven.PlatformAdapter for HubSpot.
type Adapter struct {
	oauth        domain.PlatformConfig
	authorizeURL string
	tokenURL     string
	apiBaseURL   string
	client       *platforms.Client
}

// New creates a HubSpot adapter.
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
	return domain.PlatformHubSpot
}

func (a *Adapter) UsesPKCE() bool {
	return false
}

// AuthorizationURL builds the HubSpot consent URL.
func (a *Adapter) AuthorizationURL(state, _ string) string {
	params := url.Values{
		"client_id":    {a.oauth.ClientID},
		"redirect_uri": {a.oauth.RedirectURI},
		"scope":        {strings.Join(a.oauth.Scopes, " ")},
		"state":        {state},
	}
	return a.authorizeURL + "?" + params.Encode()
}

// ExchangeToken trades the authorization code for tokens.
// HubSpot expects the client credentials in the form body.
func (a *Adapter) ExchangeToken(ctx context.Context, code, _ string) ([]byte, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {a.oauth.ClientID},
		"client_secret": {a.oauth.ClientSecret},
		"redirect_uri":  {a.oauth.RedirectURI},
		"code":          {code},
	}
	return a.client.ExchangeForm(ctx, a.tokenURL, form, nil)
}

// contactsPage is the subset of the CRM list response we page through.
type contactsPage struct {
	Results []json.RawMessage `json:"results"`
	Paging  *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

// ListResources pages through the account's contacts.
func (a *Adapter) ListResources(ctx context.Context, cred *domain.Credential) iter.Seq2[driven.RawRecord, error] {
	return platforms.Paginate(ctx, func(ctx context.Context, cursor string) (*platforms.Page, error) {
		params := url.Values{"limit": {pageSize}}
		if cursor != "" {
			params.Set("after", cursor)
		}

		var resp contactsPage
		err := a.client.FetchJSON(ctx, platforms.Request{
			URL:   a.apiBaseURL + "/crm/v3/objects/contacts?" + params.Encode(),
			Token: cred.AccessToken,
		}, &resp)
		if err != nil {
			return nil, err
		}

		page := &platforms.Page{Records: make([]driven.RawRecord, 0, len(resp.Results))}
		for _, data := range resp.Results {
			page.Records = append(page.Records, driven.RawRecord{
				Platform: domain.PlatformHubSpot,
				Type:     RecordTypeContact,
				Data:     data,
			})
		}
		if resp.Paging != nil && resp.Paging.Next != nil {
			page.NextCursor = resp.Paging.Next.After
		}
		return page, nil
	})
}
