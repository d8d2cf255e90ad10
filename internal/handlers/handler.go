package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"imgguard/pkg/remotepattern"
)

// MaxBatchURLs caps how many URLs one POST /v1/allow may carry.
const MaxBatchURLs = 100

// Handler serves allowlist decisions for one immutable Allowlist.
type Handler struct {
	allow    *remotepattern.Allowlist
	maxBody  int64
	validate *validator.Validate

	patternsBody []byte
	patternsETag string
}

func New(allow *remotepattern.Allowlist, maxBody int64) *Handler {
	if maxBody <= 0 {
		maxBody = 64 << 10
	}

	h := &Handler{
		allow:    allow,
		maxBody:  maxBody,
		validate: validator.New(),
	}

	patterns := allow.Patterns()
	if patterns == nil {
		patterns = []remotepattern.RemotePattern{}
	}
	body, _ := json.Marshal(patternsResponse{Count: len(patterns), Patterns: patterns})
	hash := sha256.Sum256(body)
	h.patternsBody = body
	h.patternsETag = `"` + hex.EncodeToString(hash[:16]) + `"`

	return h
}

// Routes registers every endpoint on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/allow", h.CheckURL)    // /v1/allow?url=https://i.seadn.io/a.png
	mux.HandleFunc("POST /v1/allow", h.CheckBatch) // {"urls": [...]}
	mux.HandleFunc("GET /v1/patterns", h.ListPatterns)
	mux.HandleFunc("GET /v1/stats", h.Stats)
	mux.HandleFunc("GET /healthz", Health)

	return mux
}

// serveWithETag answers with body, or 304 when the client already holds it.
func serveWithETag(w http.ResponseWriter, r *http.Request, body []byte, etag string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", etag)

	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Write(body)
}
