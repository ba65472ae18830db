// Package api serves the dashboard page and its JSON, upload and export endpoints.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"beta-dashboard/dashboard"
	"beta-dashboard/loader"
	"beta-dashboard/models"
	"beta-dashboard/reference"
	"beta-dashboard/report"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var (
	jsonAPI           = jsoniter.ConfigCompatibleWithStandardLibrary
	errSessionExpired = errors.New("session expired")
)

const (
	uploadRegional = "regional"
	uploadBeta     = "beta"
)

type Options struct {
	Store reference.Store
	// Discover is called for every new session; nil disables auto-discovery.
	Discover        func() (*loader.BankBetaDocument, error)
	DefaultLanguage models.Language
	SearchEngine    string
	SessionTTL      time.Duration
	MaxUploadBytes  int64
	Logger          *zap.Logger
}

type Handler struct {
	sessions    *sessionStore
	defaultLang models.Language
	maxUpload   int64
	logger      *zap.Logger
}

func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, ok := models.ParseLanguage(string(opts.DefaultLanguage)); !ok {
		opts.DefaultLanguage = models.English
	}

	newState := func() *dashboard.State {
		var doc *loader.BankBetaDocument
		if opts.Discover != nil {
			d, err := opts.Discover()
			switch {
			case err == nil:
				doc = d
			case loader.IsMissingFile(err):
			default:
				logger.Debug("ignoring auto-discovered bank beta file", zap.Error(err))
			}
		}
		return dashboard.New(opts.Store, doc)
	}

	return &Handler{
		sessions:    newSessionStore(opts.SessionTTL, opts.SearchEngine, newState, logger),
		defaultLang: opts.DefaultLanguage,
		maxUpload:   opts.MaxUploadBytes,
		logger:      logger,
	}
}

// Routes builds the router for every dashboard endpoint.
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/reference", h.Reference).Methods(http.MethodGet)
	a.HandleFunc("/geo", h.Geo).Methods(http.MethodGet)
	a.HandleFunc("/regional", h.Regional).Methods(http.MethodGet)
	a.HandleFunc("/groups", h.Groups).Methods(http.MethodGet)
	a.HandleFunc("/banks", h.Banks).Methods(http.MethodGet)
	a.HandleFunc("/choices", h.Choices).Methods(http.MethodGet)
	a.HandleFunc("/insights", h.Insights).Methods(http.MethodGet)
	a.HandleFunc("/search", h.Search).Methods(http.MethodGet)
	a.HandleFunc("/bank/{name}", h.Bank).Methods(http.MethodGet)
	a.HandleFunc("/warnings", h.Warnings).Methods(http.MethodGet)
	a.HandleFunc("/warnings/{id}", h.DeleteWarning).Methods(http.MethodDelete)

	r.HandleFunc("/upload/{kind:regional|beta}", h.Upload).Methods(http.MethodPost)
	r.HandleFunc("/warnings/{id}/dismiss", h.DismissWarning).Methods(http.MethodPost)
	r.HandleFunc("/export/banks.csv", h.ExportCSV).Methods(http.MethodGet)
	r.HandleFunc("/export/report.pdf", h.ExportPDF).Methods(http.MethodGet)

	return r
}

// Close releases every session.
func (h *Handler) Close() {
	h.sessions.closeAll()
}

func (h *Handler) language(r *http.Request) models.Language {
	if lang, ok := models.ParseLanguage(r.URL.Query().Get("lang")); ok {
		return lang
	}
	return h.defaultLang
}

func filterFrom(r *http.Request) dashboard.Filter {
	q := r.URL.Query()
	return dashboard.Filter{Country: q.Get("country"), Bank: q.Get("bank")}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (snapshot, bool) {
	snap, err := h.sessions.load(w, r)
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return snapshot{}, false
	}
	return snap, true
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	data := pageData{
		View:     snap.state.View(h.language(r), filterFrom(r)),
		Current:  r.URL.RequestURI(),
		MaxBytes: h.maxUpload,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("failed to render dashboard", zap.Error(err))
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": h.sessions.count(),
	})
}

func (h *Handler) Reference(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	lang := h.language(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"language": lang,
		"concepts": snap.state.Reference(lang).Concepts(),
	})
}

func (h *Handler) Geo(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	store := snap.state.Store()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": store.Geo(),
		"map":  store.Map(),
	})
}

func (h *Handler) Regional(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.state.Regional())
}

func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	v := snap.state.View(h.language(r), dashboard.Filter{})
	groups := v.Groups
	if groups == nil {
		groups = []dashboard.GroupView{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *Handler) Banks(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	v := snap.state.View(h.language(r), filterFrom(r))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filter":  v.Filter,
		"rows":    v.Filtered,
		"insight": v.Insight,
	})
}

func (h *Handler) Choices(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	banks := snap.state.Banks()
	country := r.URL.Query().Get("country")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"countries": dashboard.CountryChoices(banks),
		"banks":     dashboard.BankChoices(banks, country),
	})
}

func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.state.Insights(h.language(r)))
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter 'q'")
		return
	}
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	results, err := snap.engine.Search(query)
	if err != nil {
		h.logger.Error("bank search failed", zap.String("query", query), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if results == nil {
		results = []models.BankBetaRow{}
	}
	writeJSON(w, http.StatusOK, results)
}

// Bank looks up one bank by exact, case-insensitive name.
func (h *Handler) Bank(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["name"]
	bank := snap.engine.GetBank(name)
	if bank == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("bank %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, bank)
}

func (h *Handler) Warnings(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, nonNilWarnings(snap.state.Warnings()))
}

func (h *Handler) DeleteWarning(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	next, err := h.sessions.update(snap.id, false, func(s *dashboard.State) *dashboard.State {
		return s.WithoutWarning(id)
	})
	if err != nil {
		h.updateFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilWarnings(next.Warnings()))
}

func (h *Handler) DismissWarning(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	if _, err := h.sessions.update(snap.id, false, func(s *dashboard.State) *dashboard.State {
		return s.WithoutWarning(id)
	}); err != nil {
		h.updateFailed(w, err)
		return
	}
	http.Redirect(w, r, safeRedirect(r.FormValue("redirect")), http.StatusSeeOther)
}

// Upload replaces one of the session's documents. A document that fails to parse
// still updates the session (with a warning) and is answered with 422.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	kind := mux.Vars(r)["kind"]

	if r.ContentLength > h.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.maxUpload))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.maxUpload))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing form file 'file'")
		return
	}
	defer file.Close()

	var (
		apply    func(*dashboard.State) *dashboard.State
		parseErr error
	)
	switch kind {
	case uploadRegional:
		var doc *loader.RegionalDocument
		doc, parseErr = loader.ParseRegional(file)
		apply = func(s *dashboard.State) *dashboard.State { return s.WithRegional(doc, parseErr) }
	case uploadBeta:
		var doc *loader.BankBetaDocument
		doc, parseErr = loader.ParseBankBeta(file)
		apply = func(s *dashboard.State) *dashboard.State { return s.WithBankBeta(doc, parseErr) }
	default:
		writeError(w, http.StatusNotFound, "unknown upload kind")
		return
	}

	next, err := h.sessions.update(snap.id, kind == uploadBeta, apply)
	if err != nil {
		h.updateFailed(w, err)
		return
	}

	if parseErr != nil {
		h.logger.Warn("upload rejected",
			zap.String("kind", kind),
			zap.String("filename", header.Filename),
			zap.Error(parseErr))
	} else {
		h.logger.Info("upload applied", zap.String("kind", kind), zap.String("filename", header.Filename))
	}

	if target := r.FormValue("redirect"); target != "" {
		http.Redirect(w, r, safeRedirect(target), http.StatusSeeOther)
		return
	}
	status := http.StatusOK
	if parseErr != nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]interface{}{
		"accepted": parseErr == nil,
		"banks":    len(next.Banks()),
		"warnings": nonNilWarnings(next.Warnings()),
	})
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	v := snap.state.View(h.language(r), filterFrom(r))

	var buf bytes.Buffer
	if err := report.WriteBanksCSV(&buf, v.Filtered); err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bank_betas.csv"`)
	_, _ = w.Write(buf.Bytes())
}

// ExportPDF always renders English; the PDF core fonts cannot show Tamil or Hindi.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session(w, r)
	if !ok {
		return
	}
	v := snap.state.View(models.English, filterFrom(r))

	var buf bytes.Buffer
	if err := report.WritePDF(&buf, v); err != nil {
		h.logger.Error("pdf export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="beta_report.pdf"`)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) updateFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, errSessionExpired) {
		writeError(w, http.StatusGone, err.Error())
		return
	}
	h.logger.Error("failed to update session", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "failed to update session")
}

func nonNilWarnings(ws []dashboard.Warning) []dashboard.Warning {
	if ws == nil {
		return []dashboard.Warning{}
	}
	return ws
}

// safeRedirect only allows local absolute paths.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonAPI.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
