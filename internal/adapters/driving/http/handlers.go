package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driving"
)

// maxFormBytes caps form bodies; a credential payload is well under this.
const maxFormBytes = 1 << 20

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error   string `json:"error" example:"state_mismatch"`
	Message string `json:"message" example:"state does not match"`
	Detail  string `json:"detail,omitempty"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleRoot godoc
// @Summary      Ping
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       / [get]
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"Ping": "Pong"})
}

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns ready once the key-value store answers a ping
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "not_ready", "store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

// Integration endpoints

// handleAuthorize godoc
// @Summary      Start authorization
// @Description  Stores a pending state and returns the platform consent URL
// @Tags         Integrations
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        platform  path      string  true  "Platform (hubspot, airtable, notion)"
// @Param        user_id   formData  string  true  "User ID"
// @Param        org_id    formData  string  true  "Organization ID"
// @Success      200       {string}  string  "Authorization URL"
// @Failure      400       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse  "Unknown platform"
// @Router       /integrations/{platform}/authorize [post]
func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	platform, ok := s.platformParam(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	resp, err := s.integrations.Authorize(r.Context(), driving.AuthorizeRequest{
		Platform: platform,
		UserID:   r.PostFormValue("user_id"),
		OrgID:    r.PostFormValue("org_id"),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp.AuthorizationURL)
}

// handleCallback godoc
// @Summary      OAuth callback
// @Description  Receives the platform redirect, exchanges the code and closes the popup window
// @Tags         Integrations
// @Produce      html
// @Param        platform           path   string  true   "Platform"
// @Param        code               query  string  false  "Authorization code"
// @Param        state              query  string  false  "State token"
// @Param        error              query  string  false  "Error from the platform"
// @Param        error_description  query  string  false  "Error description"
// @Success      200  {string}  string  "HTML that closes the window"
// @Failure      400  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse  "Token exchange failed"
// @Router       /integrations/{platform}/oauth2callback [get]
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	platform, ok := s.platformParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	resp, err := s.integrations.Callback(r.Context(), driving.CallbackRequest{
		Platform:         platform,
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(resp.HTML))
}

// handleCredentials godoc
// @Summary      Retrieve credentials
// @Description  Returns the exchanged credential once and deletes it
// @Tags         Integrations
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        platform  path      string  true  "Platform"
// @Param        user_id   formData  string  true  "User ID"
// @Param        org_id    formData  string  true  "Organization ID"
// @Success      200       {object}  map[string]interface{}  "Raw token response"
// @Failure      404       {object}  ErrorResponse  "No credentials found"
// @Router       /integrations/{platform}/credentials [post]
func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request) {
	platform, ok := s.platformParam(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	cred, err := s.integrations.Credentials(r.Context(), driving.CredentialsRequest{
		Platform: platform,
		UserID:   r.PostFormValue("user_id"),
		OrgID:    r.PostFormValue("org_id"),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cred)
}

// handleLoad godoc
// @Summary      Load items
// @Description  Lists the platform's resources as integration items
// @Tags         Integrations
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        platform     path      string  true  "Platform"
// @Param        credentials  formData  string  true  "Credential JSON from the credentials endpoint"
// @Success      200          {array}   domain.IntegrationItem
// @Failure      400          {object}  ErrorResponse  "Invalid credential"
// @Router       /integrations/{platform}/load [post]
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	platform, ok := s.platformParam(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	items, err := s.integrations.LoadItems(r.Context(), driving.LoadItemsRequest{
		Platform:    platform,
		Credentials: r.PostFormValue("credentials"),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// platformParam resolves the {platform} path segment, writing a 404 for unknown platforms.
func (s *Server) platformParam(w http.ResponseWriter, r *http.Request) (domain.PlatformType, bool) {
	platform, ok := domain.ParsePlatform(r.PathValue("platform"))
	if !ok {
		writeError(w, http.StatusNotFound, "unsupported_platform", "unsupported platform: "+r.PathValue("platform"))
		return "", false
	}
	return platform, true
}

// writeServiceError maps service errors to HTTP responses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var ie *domain.IntegrationError
	switch {
	case errors.As(err, &ie):
		writeJSON(w, integrationStatus(ie), ErrorResponse{
			Error:   string(ie.Kind),
			Message: ie.Message,
			Detail:  ie.Detail,
		})
	case errors.Is(err, domain.ErrUnsupportedPlatform):
		writeError(w, http.StatusNotFound, "unsupported_platform", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// integrationStatus picks the response status for an IntegrationError.
func integrationStatus(ie *domain.IntegrationError) int {
	switch ie.Kind {
	case domain.KindCredentialNotFound:
		return http.StatusNotFound
	case domain.KindTokenExchangeFailed:
		if ie.Status >= 400 && ie.Status < 500 {
			return ie.Status
		}
		return http.StatusBadGateway
	case domain.KindUpstreamFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	// Authorization URLs carry '&'; keep them readable.
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, ErrorResponse{Error: kind, Message: message})
}
