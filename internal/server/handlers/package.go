package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wiredhikari/eix/internal/apierrors"
	"github.com/wiredhikari/eix/internal/models"
	"github.com/wiredhikari/eix/internal/output"
	"github.com/wiredhikari/eix/internal/query"
	"github.com/wiredhikari/eix/internal/version"
)

// PackageHandler serves read-only package queries
type PackageHandler struct {
	source IndexSource
	logger *slog.Logger
}

// NewPackageHandler creates a new package handler
func NewPackageHandler(source IndexSource, logger *slog.Logger) *PackageHandler {
	return &PackageHandler{
		source: source,
		logger: logger,
	}
}

// ListResponse is the body of a search
type ListResponse struct {
	Count    int              `json:"count"`
	Packages []output.Summary `json:"packages"`
}

// BestResponse is the body of a best-version lookup
type BestResponse struct {
	Package string               `json:"package"`
	Version models.VersionRecord `json:"version"`
}

// ListPackages handles GET /api/v1/packages
func (h *PackageHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, err.Error(), http.StatusBadRequest, nil)
		return
	}

	idx, ok := h.index(w, r)
	if !ok {
		return
	}

	pkgs, err := query.Run(idx, criteria)
	if err != nil {
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, err.Error(), http.StatusBadRequest, nil)
		return
	}

	h.logger.Debug("Packages listed",
		"pattern", criteria.Pattern,
		"count", len(pkgs),
		"remote_addr", r.RemoteAddr)

	writeJSON(w, ListResponse{Count: len(pkgs), Packages: output.Summaries(pkgs)})
}

// GetPackage handles GET /api/v1/packages/{category}/{name}
func (h *PackageHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, p.ToRecord())
}

// GetBest handles GET /api/v1/packages/{category}/{name}/best
func (h *PackageHandler) GetBest(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(w, r)
	if !ok {
		return
	}
	best := p.BestVisible()
	if best == nil {
		apierrors.WriteError(w, apierrors.ErrCodeNoVisibleVersion,
			"No stable, unmasked version of "+p.FullName(), http.StatusNotFound, nil)
		return
	}
	writeJSON(w, BestResponse{Package: p.FullName(), Version: best.ToRecord()})
}

func (h *PackageHandler) lookup(w http.ResponseWriter, r *http.Request) (*models.Package, bool) {
	category := chi.URLParam(r, "category")
	name := chi.URLParam(r, "name")
	if err := models.ValidateCategory(category); err != nil {
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, err.Error(), http.StatusBadRequest, nil)
		return nil, false
	}
	if err := models.ValidatePackageName(name); err != nil {
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, err.Error(), http.StatusBadRequest, nil)
		return nil, false
	}

	idx, ok := h.index(w, r)
	if !ok {
		return nil, false
	}
	p := idx.Get(category, name)
	if p == nil {
		apierrors.WriteError(w, apierrors.ErrCodePackageNotFound,
			"Package "+category+"/"+name+" not found", http.StatusNotFound, nil)
		return nil, false
	}
	return p, true
}

func (h *PackageHandler) index(w http.ResponseWriter, r *http.Request) (*models.Index, bool) {
	idx, err := h.source.Index(r.Context())
	if err != nil {
		code, msg, status := apierrors.MapStorageError(err)
		if status >= http.StatusInternalServerError && code != apierrors.ErrCodeIndexNotFound {
			h.logger.Error("Failed to load index", "error", err, "path", r.URL.Path)
		}
		apierrors.WriteError(w, code, msg, status, nil)
		return nil, false
	}
	return idx, true
}

// parseCriteria maps query parameters onto search criteria:
// q, field (repeatable or comma separated), category, dup, overlay,
// slots=many, system=true, stable=true
func parseCriteria(r *http.Request) (query.Criteria, error) {
	q := r.URL.Query()
	c := query.Criteria{
		Pattern:  q.Get("q"),
		Category: q.Get("category"),
	}

	for _, raw := range q["field"] {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				c.Fields = append(c.Fields, f)
			}
		}
	}

	if s := q.Get("dup"); s != "" {
		d, err := models.ParseDuplicateStatus(s)
		if err != nil {
			return c, err
		}
		c.Duplicates = &d
	}

	if s := q.Get("overlay"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return c, &models.ValidationError{Field: "overlay", Message: "overlay must be a non-negative integer"}
		}
		o := version.Overlay(n)
		c.Overlay = &o
	}

	if s := q.Get("slots"); s != "" {
		if s != "many" {
			return c, &models.ValidationError{Field: "slots", Message: "slots only accepts \"many\""}
		}
		c.SlotsMany = true
	}

	var err error
	if c.SystemOnly, err = parseBool(q.Get("system"), "system"); err != nil {
		return c, err
	}
	if c.StableOnly, err = parseBool(q.Get("stable"), "stable"); err != nil {
		return c, err
	}
	return c, nil
}

func parseBool(s, field string) (bool, error) {
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, &models.ValidationError{Field: field, Message: field + " must be true or false"}
	}
	return b, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
