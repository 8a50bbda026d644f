package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_rating/internal/app"
	"hotel_rating/internal/domain"
)

type Handlers struct {
	S     *app.SessionService
	Q     *app.QueryService
	Admin *app.AdminService

	guard operatorGuard
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	operator := RequireOperator(h.S.Status, h.guard.holds)

	s.mux.Route("/v1", func(r chi.Router) {
		r.Post("/session", h.login)
		r.Get("/session", h.status)
		r.Post("/session/elevate", h.elevate)
		r.With(operator).Post("/session/restore", h.restore)
		r.Get("/capability", h.capability)

		r.Get("/hotels/rating", h.rating)
		r.Get("/hotels/{name}/reviews", h.reviews)
		r.Get("/cities", h.cities)
		r.Get("/cities/{city}/hotels", h.cityHotels)
		r.Get("/cities/{city}/names", h.cityNames)
		r.Get("/search", h.search)
		r.Get("/features", h.features)
		r.Get("/report", h.report)

		r.Group(func(r chi.Router) {
			r.Use(operator)
			r.Post("/admin/features", h.addFeature)
			r.Post("/admin/seeds", h.addSeed)
			r.Get("/explorer", h.namespaces)
			r.Get("/explorer/{namespace}/{table}", h.tableData)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps an error kind onto a problem response.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindConnection:
		status = http.StatusBadGateway
	case domain.KindSchemaNotFound, domain.KindBusy:
		status = http.StatusConflict
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindInvalid:
		status = http.StatusBadRequest
	}
	if errors.Is(err, domain.ErrElevateThrottle) {
		status = http.StatusTooManyRequests
	}
	if status >= 500 {
		log.Error().Err(err).Msg("request failed")
	}
	writeProblem(w, status, http.StatusText(status), err.Error())
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON answers GETs with an ETag and honours If-None-Match.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	etag, body := calcETagAndBody(v)
	if r.Method == http.MethodGet && etag != "" {
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
			w.Header().Set("ETag", etag) // include ETag on 304
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return false
	}
	return true
}

// ---- session ----

type sessionResponse struct {
	Status     domain.SessionStatus    `json:"status"`
	Capability domain.SchemaCapability `json:"capability"`
	// Token authorizes the admin surface; only elevate returns one.
	Token string `json:"token,omitempty"`
}

// login opens the first session freely; replacing a live one takes the
// operator token.
func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	if h.S.Status().Connected {
		h.withOperator(w, r, h.relogin)
		return
	}
	h.relogin(w, r)
}

func (h *Handlers) relogin(w http.ResponseWriter, r *http.Request) {
	var d domain.ConnectionDescriptor
	if !decode(w, r, &d) {
		return
	}
	c, err := h.S.Login(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	h.guard.revoke()
	writeJSON(w, r, http.StatusOK, sessionResponse{Status: h.S.Status(), Capability: c})
}

func (h *Handlers) withOperator(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	RequireOperator(h.S.Status, h.guard.holds)(next).ServeHTTP(w, r)
}

func (h *Handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.S.Status())
}

func (h *Handlers) elevate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	c, err := h.S.Elevate(r.Context(), body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	tok, err := h.guard.issue()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse{Status: h.S.Status(), Capability: c, Token: tok})
}

func (h *Handlers) restore(w http.ResponseWriter, r *http.Request) {
	c, err := h.S.Restore(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.guard.revoke()
	writeJSON(w, r, http.StatusOK, sessionResponse{Status: h.S.Status(), Capability: c})
}

func (h *Handlers) capability(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.S.Capability(r.Context()))
}

// ---- reads ----

func (h *Handlers) rating(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid name", "name is required")
		return
	}
	out, err := h.Q.GetRating(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handlers) reviews(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.GetReviews(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handlers) cities(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Cities(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handlers) cityHotels(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListByCity(r.Context(), chi.URLParam(r, "city"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handlers) cityNames(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.HotelsByCity(r.Context(), chi.URLParam(r, "city"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

// search takes the city plus one optional minimum per criterion, e.g.
// /v1/search?city=Paris&cleanliness=3.5&overall=4
func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := domain.SearchCriteria{}
	for key, vals := range q {
		if key == "city" {
			continue
		}
		c, err := domain.ParseCriterion(key)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid criterion", err.Error())
			return
		}
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		v, err := strconv.ParseFloat(vals[0], 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid threshold", key+" must be a number")
			return
		}
		criteria[c] = &v
	}
	out, err := h.Q.Search(r.Context(), q.Get("city"), criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handlers) features(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Features(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handlers) report(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid city", "city is required")
		return
	}
	top := 5
	if ts := r.URL.Query().Get("top"); ts != "" {
		n, err := strconv.Atoi(ts)
		if err != nil || n <= 0 || n > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid top", "top must be an integer between 1 and 200")
			return
		}
		top = n
	}
	out, err := h.Q.CityReport(r.Context(), city, top)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

// ---- elevated ----

type idResponse struct {
	ID int64 `json:"id"`
}

func (h *Handlers) addFeature(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &body) {
		return
	}
	id, err := h.Admin.AddFeature(r.Context(), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, idResponse{ID: id})
}

func (h *Handlers) addSeed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Feature string `json:"feature"`
		Phrase  string `json:"phrase"`
		Weight  int    `json:"weight"`
	}
	if !decode(w, r, &body) {
		return
	}
	id, err := h.Admin.AddSeedWord(r.Context(), body.Feature, body.Phrase, body.Weight)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, idResponse{ID: id})
}

func (h *Handlers) namespaces(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Namespaces(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handlers) tableData(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.TableData(r.Context(), chi.URLParam(r, "namespace"), chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}
