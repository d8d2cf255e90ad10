package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"imgguard/internal/appinfo"
	"imgguard/pkg/logger"
	"imgguard/pkg/remotepattern"
	"imgguard/pkg/utils"
)

// Decision is the verdict for one URL. Denied decisions carry an
// allowlist/* error code.
type Decision struct {
	URL     string `json:"url"`
	Allowed bool   `json:"allowed"`
	Pattern string `json:"pattern,omitempty"`
	Code    string `json:"code,omitempty"`
}

type batchRequest struct {
	URLs []string `json:"urls" validate:"required,min=1,max=100,dive,required"`
}

type batchResponse struct {
	Allowed int        `json:"allowed"`
	Denied  int        `json:"denied"`
	Results []Decision `json:"results"`
}

type patternsResponse struct {
	Count    int                           `json:"count"`
	Patterns []remotepattern.RemotePattern `json:"patterns"`
}

// Evaluate checks rawURL against allow without side effects.
func Evaluate(allow *remotepattern.Allowlist, rawURL string) Decision {
	d, _ := evaluate(allow, rawURL)
	return d
}

func evaluate(allow *remotepattern.Allowlist, rawURL string) (Decision, error) {
	p, err := allow.Check(rawURL)

	d := Decision{URL: rawURL, Allowed: err == nil}
	switch {
	case err == nil:
		d.Pattern = p.String()
	case errors.Is(err, remotepattern.ErrMalformedURL):
		d.Code = utils.ErrAllowlistMalformedURL
	default:
		d.Code = utils.ErrAllowlistNoMatch
	}
	return d, err
}

func (h *Handler) decide(rawURL string) Decision {
	d, err := evaluate(h.allow, rawURL)
	appinfo.RecordDecision(err)
	return d
}

// CheckURL answers 200 when the url query parameter may be fetched and 403
// otherwise. The URL itself is never contacted.
// Path: GET /v1/allow?url=
func (h *Handler) CheckURL(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestMissingURL, "Query parameter 'url' is required.")
		return
	}

	d := h.decide(rawURL)
	if !d.Allowed {
		logger.LogDebug("Denied %s (%s)", rawURL, d.Code)
		utils.WriteJSON(w, http.StatusForbidden, d)
		return
	}
	utils.WriteJSON(w, http.StatusOK, d)
}

// CheckBatch evaluates up to MaxBatchURLs URLs in one call, preserving order.
// Path: POST /v1/allow
func (h *Handler) CheckBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteError(w, http.StatusRequestEntityTooLarge, utils.ErrRequestBodyTooLarge,
				fmt.Sprintf("Request body exceeds %s.", utils.FormatBytes(tooLarge.Limit)))
			return
		}
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestBadRequest, "Body must be JSON like {\"urls\": [\"https://...\"]}.")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Tag() == "max" {
			utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestTooManyURLs,
				fmt.Sprintf("At most %d URLs per request.", MaxBatchURLs))
			return
		}
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "'urls' must be a non-empty list of non-empty strings.")
		return
	}

	resp := batchResponse{Results: make([]Decision, 0, len(req.URLs))}
	for _, u := range req.URLs {
		d := h.decide(u)
		if d.Allowed {
			resp.Allowed++
		} else {
			resp.Denied++
		}
		resp.Results = append(resp.Results, d)
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// ListPatterns returns the loaded patterns in evaluation order.
// Path: GET /v1/patterns
func (h *Handler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	serveWithETag(w, r, h.patternsBody, h.patternsETag)
}

// Stats reports decision counters since startup.
// Path: GET /v1/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, struct {
		appinfo.Snapshot
		Patterns int `json:"patterns"`
	}{appinfo.Stats(), h.allow.Len()})
}

// Health is the liveness probe.
// Path: GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
