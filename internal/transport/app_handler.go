package transport

import (
	"net/http"
	"time"

	"cafebar-be/internal/auth"
	"cafebar-be/internal/issue"
	"cafebar-be/internal/logger"
	"cafebar-be/internal/user"

	"go.uber.org/zap"
)

type sessionResponse struct {
	Token     string    `json:"token"`
	DeviceID  string    `json:"deviceId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// createSession issues a device token. An already authenticated device
// keeps its id; anyone else gets a newly generated one. Ids named by the
// client are never honoured.
func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	token, claims, err := h.Sessions.Issue(deviceID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	expires := claims.ExpiresAt.Time
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.FromCtx(r.Context()).Info("session issued",
		zap.String("layer", "transport"),
		zap.String("device_id", claims.DeviceID),
	)
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, DeviceID: claims.DeviceID, ExpiresAt: expires})
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Products())
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.Product(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) listBrands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Brands())
}

func (h *handler) getBrand(w http.ResponseWriter, r *http.Request) {
	b, err := h.Catalog.Brand(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Users.GetProfile(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in user.UpdateProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.Users.UpdateProfile(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) issueTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, issue.Catalog())
}

func (h *handler) listIssues(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Issues.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *handler) submitIssue(w http.ResponseWriter, r *http.Request) {
	var in issue.SubmitInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.Issues.Submit(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}
