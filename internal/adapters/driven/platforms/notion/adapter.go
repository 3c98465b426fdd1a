// Package notion connects Notion workspaces and lists the pages and
// databases shared with the integration.
package notion

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
	DefaultAuthorizeURL = "https://api.notion.com/v1/oauth/authorize"
	DefaultTokenURL     = "https://api.notion.com/v1/oauth/token"
	DefaultAPIBaseURL   = "https://api.notion.com"

	// APIVersion is sent as the Notion-Version header on every API call.
	APIVersion = "2022-06-28"

	pageSize = 100
)

// Config holds the Notion OAuth application and endpoint settings.
// Empty endpoints fall back to the public Notion URLs.
type Config struct {
	OAuth        domain.PlatformConfig
	AuthorizeURL string
	TokenURL     string
	APIBaseURL   string
	Client       *platforms.Client
}

// Adapter implements driven.PlatformAdapter for Notion.
type Adapter struct {
	oauth        domain.PlatformConfig
	authorizeURL string
	tokenURL     string
	apiBaseURL   string
	client       *platforms.Client
}

// New creates a Notion adapter.
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
	if a.client == nil {
		a.client = platforms.NewClient(nil)
	}
	return a
}

func (a *Adapter) Platform() domain.PlatformType {
	return domain.PlatformNotion
}

func (a *Adapter) UsesPKCE() bool {
	return false
}

// AuthorizationURL builds the Notion consent URL. Notion grants access per
// page at consent time, so no scopes are sent.
func (a *Adapter) AuthorizationURL(state, _ string) string {
	params := url.Values{
		"client_id":     {a.oauth.ClientID},
		"redirect_uri":  {a.oauth.RedirectURI},
		"response_type": {"code"},
		"owner":         {"user"},
		"state":         {state},
	}
	return a.authorizeURL + "?" + params.Encode()
}

// ExchangeToken trades the authorization code for an access token.
// Notion takes a JSON body and HTTP Basic client authentication.
func (a *Adapter) ExchangeToken(ctx context.Context, code, _ string) ([]byte, error) {
	payload := map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": a.oauth.RedirectURI,
	}
	return a.client.ExchangeJSON(ctx, a.tokenURL, payload, &platforms.BasicAuth{
		Username: a.oauth.ClientID,
		Password: a.oauth.ClientSecret,
	})
}

type searchRequest struct {
	PageSize    int    `json:"page_size"`
	StartCursor string `json:"start_cursor,omitempty"`
}

type searchResponse struct {
	Results    []json.RawMessage `json:"results"`
	NextCursor *string           `json:"next_cursor"`
	HasMore    bool              `json:"has_more"`
}

// ListResources pages through the search endpoint, which returns every page
// and database shared with the integration.
func (a *Adapter) ListResources(ctx context.Context, cred *domain.Credential) iter.Seq2[driven.RawRecord, error] {
	return platforms.Paginate(ctx, func(ctx context.Context, cursor string) (*platforms.Page, error) {
		var resp searchResponse
		err := a.client.FetchJSON(ctx, platforms.Request{
			Method:  "POST",
			URL:     a.apiBaseURL + "/v1/search",
			Token:   cred.AccessToken,
			Headers: map[string]string{"Notion-Version": APIVersion},
			Body:    searchRequest{PageSize: pageSize, StartCursor: cursor},
		}, &resp)
		if err != nil {
			return nil, err
		}

		page := &platforms.Page{Records: make([]driven.RawRecord, 0, len(resp.Results))}
		for _, data := range resp.Results {
			var head struct {
				Object string `json:"object"`
			}
			_ = json.Unmarshal(data, &head)

			page.Records = append(page.Records, driven.RawRecord{
				Platform: domain.PlatformNotion,
				Type:     head.Object,
				Data:     data,
			})
		}
		if resp.HasMore && resp.NextCursor != nil {
			page.NextCursor = *resp.NextCursor
		}
		return page, nil
	})
}
