package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"beta-dashboard/dashboard"
	"beta-dashboard/loader"
	"beta-dashboard/models"
	"beta-dashboard/reference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const bankBeta = `{
	"India": {
		"Index": "NIFTY Bank",
		"Index_Beta": "1.2",
		"Large_Cap_Banks": [{"name": "HDFC", "beta": 1.3}],
		"Insights": "text",
		"Insights_HI": "hindi text"
	},
	"Japan": {
		"Index": "TOPIX Banks",
		"Index_Beta": "<0.7",
		"Large_Cap_Banks": [{"name": "MUFG", "beta": 0.65}, {"name": "SMFG", "beta": 0.7}]
	}
}`

const regionalWithoutUseCases = `{
	"definition": {"en": "a", "ta": "b", "hi": "c"},
	"regional_summaries": []
}`

const validRegional = `{
	"definition": {"en": "Custom EN", "ta": "Custom TA", "hi": "Custom HI"},
	"use_cases": {
		"en": {"stock": "s", "portfolio": "p"},
		"ta": {"stock": "s", "portfolio": "p"},
		"hi": {"stock": "s", "portfolio": "p"}
	},
	"regional_summaries": [{"Country": "Brazil", "Index": "IBOV Banks", "Beta Range": "1.1"}]
}`

func newTestHandler(t *testing.T, opts Options) *Handler {
	t.Helper()
	opts.Store = reference.Default()
	if opts.SearchEngine == "" {
		opts.SearchEngine = "memory"
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = time.Hour
	}
	if opts.MaxUploadBytes == 0 {
		opts.MaxUploadBytes = 1 << 20
	}
	h := NewHandler(opts)
	t.Cleanup(h.Close)
	return h
}

func testBankDocument(t *testing.T) *loader.BankBetaDocument {
	t.Helper()
	doc, err := loader.ParseBankBeta(strings.NewReader(bankBeta))
	require.NoError(t, err)
	return doc
}

func discovered() func() (*loader.BankBetaDocument, error) {
	return func() (*loader.BankBetaDocument, error) {
		return loader.ParseBankBeta(strings.NewReader(bankBeta))
	}
}

// client keeps the session cookie between requests like a browser.
type client struct {
	handler http.Handler
	cookies []*http.Cookie
}

func newClient(h *Handler) *client {
	return &client{handler: h.Routes()}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		c.cookies = cs
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) upload(t *testing.T, kind, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "upload.json")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload/"+kind, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, jsonAPI.Unmarshal(rec.Body.Bytes(), v))
}

type uploadResponse struct {
	Accepted bool                `json:"accepted"`
	Banks    int                 `json:"banks"`
	Warnings []dashboard.Warning `json:"warnings"`
}

func TestIndexWithDiscoveredData(t *testing.T) {
	c := newClient(newTestHandler(t, Options{Discover: discovered()}))

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Global Banking Beta Dashboard")
	assert.Contains(t, body, "Beta measures the volatility")
	assert.Contains(t, body, "NIFTY Bank - Beta: 1.2")
	assert.Contains(t, body, `class="card band-high"`)
	assert.Contains(t, body, `class="card band-low"`)
	assert.Contains(t, body, "Sensitive to macroeconomic shifts")

	require.Len(t, c.cookies, 1)
	assert.Equal(t, sessionCookie, c.cookies[0].Name)
}

func TestIndexWithoutBankData(t *testing.T) {
	c := newClient(newTestHandler(t, Options{}))

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "No bank beta data loaded.")
	assert.NotContains(t, body, "Index-wise Beta Overview")
}

func TestIndexBrokenDiscoveredFileFallsBackSilently(t *testing.T) {
	path := filepath.Join(t.TempDir(), loader.BankBetaDocumentName)
	require.NoError(t, os.WriteFile(path, []byte(`{"India": {"Index": "NIFTY"`), 0o644))

	core, logs := observer.New(zapcore.WarnLevel)
	c := newClient(newTestHandler(t, Options{
		Discover: func() (*loader.BankBetaDocument, error) { return loader.LoadBankBetaFile(path) },
		Logger:   zap.New(core),
	}))

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No bank beta data loaded.")

	var banks struct {
		Rows []models.BankBetaRow `json:"rows"`
	}
	decode(t, c.get("/api/banks"), &banks)
	assert.Empty(t, banks.Rows)

	var insights map[string]string
	decode(t, c.get("/api/insights"), &insights)
	assert.Empty(t, insights)

	rec = c.get("/api/warnings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Zero(t, logs.Len())
}

func TestIndexCardShowsCountryWithoutInsight(t *testing.T) {
	c := newClient(newTestHandler(t, Options{Discover: discovered()}))

	body := c.get("/").Body.String()
	assert.Contains(t, body, `<p class="insight"><b>India</b>: text</p>`)
	assert.Contains(t, body, `<p class="insight"><b>Japan</b>: </p>`)
}

func TestIndexSelectedCountryInsight(t *testing.T) {
	c := newClient(newTestHandler(t, Options{Discover: discovered()}))

	rec := c.get("/?lang=hi&country=India")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Insight for India: hindi text")
}

func TestReferenceLanguageFallback(t *testing.T) {
	c := newClient(newTestHandler(t, Options{DefaultLanguage: models.Tamil}))

	var got struct {
		Language models.Language `json:"language"`
		Concepts []models.Concept `json:"concepts"`
	}
	decode(t, c.get("/api/reference?lang=fr"), &got)
	assert.Equal(t, models.Tamil, got.Language)
	require.Len(t, got.Concepts, 3)
	assert.Equal(t, reference.Default().Entry(models.Tamil).Definition, got.Concepts[0].Content)

	decode(t, c.get("/api/reference?lang=EN"), &got)
	assert.Equal(t, models.English, got.Language)
}

func TestGeoAndRegional(t *testing.T) {
	c := newClient(newTestHandler(t, Options{}))

	var geo struct {
		Rows []models.GeoBetaRow   `json:"rows"`
		Map  reference.MapSettings `json:"map"`
	}
	decode(t, c.get("/api/geo"), &geo)
	assert.Len(t, geo.Rows, 4)
	assert.Equal(t, "Reds", geo.Map.ColorScale)

	var regional []models.RegionalSummaryRow
	decode(t, c.get("/api/regional"), &regional)
	assert.Equal(t, reference.Default().Regional(), regional)
}

func TestBanksFilterAndChoices(t *testing.T) {
	c := newClient(newTestHandler(t, Options{Discover: discovered()}))

	var banks struct {
		Filter  dashboard.Filter     `json:"filter"`
		Rows    []models.BankBetaRow `json:"rows"`
		Insight string               `json:"insight"`
	}
	decode(t, c.get("/api/banks"), &banks)
	assert.Len(t, banks.Rows, 3)
	assert.Equal(t, dashboard.Filter{Country: dashboard.All, Bank: dashboard.All}, banks.Filter)

	decode(t, c.get("/api/banks?country=India"), &banks)
	require.Len(t, banks.Rows, 1)
	assert.Equal(t, models.BankBetaRow{Country: "India", Index: "NIFTY Bank", IndexBeta: "1.2", BankName: "HDFC", BankBeta: 1.3}, banks.Rows[0])
	assert.Equal(t, "text", banks.Insight)

	var choices struct {
		Countries []string `json:"countries"`
		Banks     []string `json:"banks"`
	}
	decode(t, c.get("/api/choices?country=Japan"), &choices)
	assert.Equal(t, []string{"All", "India", "Japan"}, choices.Countries)
	assert.Equal(t, []string{"All", "MUFG", "SMFG"}, choices.Banks)
}

func TestGroupsAndInsights(t *testing.T) {
	c := newClient(newTestHandler(t, Options{Discover: discovered()}))

	var groups []dashboard.GroupView
	decode(t, c.get("/api/groups?lang=en"), &groups)
	require.Len(t, groups, 2)
	assert.Equal(t, "NIFTY Bank", groups[0].Index)
	assert.Equal(t, "text", groups[0].Insight)
	assert.Equal(t, dashboard.BandLow, groups[1].Band)

	var insights map[string]string
	decode(t, c.get("/api/insights?lang=ta"), &insights)
	assert.Equal(t, map[string]string{"India": "", "Japan": ""}, insights)
}

func TestUploadBankBeta(t *testing.T) {
	c := newClient(newTestHandler(t, Options{}))

	var res uploadResponse
	rec := c.upload(t, uploadBeta, bankBeta, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &res)
	assert.True(t, res.Accepted)
	assert.Equal(t, 3, res.Banks)
	assert.Empty(t, res.Warnings)

	var found []models.BankBetaRow
	decode(t, c.get("/api/search?q=smfg"), &found)
	require.Len(t, found, 1)
	assert.Equal(t, "Japan", found[0].Country)
}

func TestUploadInvalidBankBetaEmptiesTable(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := newClient(newTestHandler(t, Options{Discover: discovered(), Logger: zap.New(core)}))

	rec := c.upload(t, uploadBeta, `{"India": {"Index": "NIFTY Bank"}}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var res uploadResponse
	decode(t, rec, &res)
	assert.False(t, res.Accepted)
	assert.Zero(t, res.Banks)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, loader.BankBetaDocumentName, res.Warnings[0].Document)

	assert.Equal(t, 1, logs.FilterMessage("upload rejected").Len())

	var found []models.BankBetaRow
	decode(t, c.get("/api/search?q=HDFC"), &found)
	assert.Empty(t, found)
}

func TestUploadRegionalMissingUseCasesKeepsDefaults(t *testing.T) {
	c := newClient(newTestHandler(t, Options{}))

	rec := c.upload(t, uploadRegional, regionalWithoutUseCases, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var res uploadResponse
	decode(t, rec, &res)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, loader.RegionalDocumentName, res.Warnings[0].Document)
	assert.Contains(t, res.Warnings[0].Message, "use_cases")

	var regional []models.RegionalSummaryRow
	decode(t, c.get("/api/regional"), &regional)
	assert.Equal(t, reference.Default().Regional(), regional)
}

func TestUploadRegionalReplacesTables(t *testing.T) {
	c := newClient(newTestHandler(t, Options{}))

	rec := c.upload(t, uploadRegional, validRegional, map[string]string{"redirect": "/?lang=ta"})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?lang=ta", rec.Header().Get("Location"))

	var regional []models.RegionalSummaryRow
	decode(t, c.get("/api/regional"), &regional)
	require.Len(t, regional, 1)
	assert.Equal(t, "Brazil", regional[0].Country)

	assert.Contains(t, c.get("/").Body.String(), "Custom EN")
}

func TestUploadTooLarge(t *testing.T) {
	c := newClient(newTestHandler(t, Options{MaxUploadBytes: 64}))

	rec := c.upload(t, uploadBeta, bankBeta, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadMissingFile(t *testing.T) {
	c := newClient(newTestHandler(t, Options{}))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("redirect", "/"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/upload/beta", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	assert.Equal(t, http.StatusBadRequest, c.do(req).Code)
}

func TestUnknownUploadKind(t *testing.T) {
	c := newClient(newTestHandler(t, Options{}))
	rec := c.do(httptest.NewRequest(http.MethodPost, "/upload/other", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDismissWarnings(t *testing.T) {
	c := newClient(newTestHandler(t, Options{}))

	c.upload(t, uploadRegional, "not json", nil)
	c.upload(t, uploadBeta, "[]", nil)

	var warnings []dashboard.Warning
	decode(t, c.get("/api/warnings"), &warnings)
	require.Len(t, warnings, 2)
	assert.Equal(t, "w1", warnings[0].ID)
	assert.Equal(t, "w2", warnings[1].ID)

	rec := c.do(httptest.NewRequest(http.MethodDelete, "/api/warnings/w1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &warnings)
	require.Len(t, warnings, 1)
	assert.Equal(t, "w2", warnings[0].ID)

	form := strings.NewReader("redirect=%2F%3Flang%3Dhi")
	req := httptest.NewRequest(http.MethodPost, "/warnings/w2/dismiss", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = c.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?lang=hi", rec.Header().Get("Location"))

	decode(t, c.get("/api/warnings"), &warnings)
	assert.Empty(t, warnings)
}

func TestSessionsAreIsolated(t *testing.T) {
	h := newTestHandler(t, Options{})
	alice, bob := newClient(h), newClient(h)

	alice.upload(t, uploadBeta, bankBeta, nil)

	var banks struct {
		Rows []models.BankBetaRow `json:"rows"`
	}
	decode(t, alice.get("/api/banks"), &banks)
	assert.Len(t, banks.Rows, 3)
	decode(t, bob.get("/api/banks"), &banks)
	assert.Empty(t, banks.Rows)
}

func TestSearch(t *testing.T) {
	c := newClient(newTestHandler(t, Options{Discover: discovered(), SearchEngine: "bleve"}))

	assert.Equal(t, http.StatusBadRequest, c.get("/api/search").Code)

	var found []models.BankBetaRow
	decode(t, c.get("/api/search?q=hdfc"), &found)
	require.NotEmpty(t, found)
	assert.Equal(t, "HDFC", found[0].BankName)
}

func TestBankLookup(t *testing.T) {
	c := newClient(newTestHandler(t, Options{Discover: discovered(), SearchEngine: "bleve"}))

	var bank models.BankBetaRow
	decode(t, c.get("/api/bank/mufg"), &bank)
	assert.Equal(t, "MUFG", bank.BankName)
	assert.Equal(t, "<0.7", bank.IndexBeta)

	assert.Equal(t, http.StatusNotFound, c.get("/api/bank/Barclays").Code)
}

func TestExportCSV(t *testing.T) {
	c := newClient(newTestHandler(t, Options{Discover: discovered()}))

	rec := c.get("/export/banks.csv?country=Japan")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t,
		"Country,Index,Index Beta,Bank Name,Bank Beta\nJapan,TOPIX Banks,<0.7,MUFG,0.65\nJapan,TOPIX Banks,<0.7,SMFG,0.7\n",
		rec.Body.String())
}

func TestExportPDF(t *testing.T) {
	c := newClient(newTestHandler(t, Options{Discover: discovered()}))

	rec := c.get("/export/report.pdf?lang=ta")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestHealth(t *testing.T) {
	c := newClient(newTestHandler(t, Options{}))
	c.get("/")

	var got map[string]interface{}
	decode(t, c.get("/healthz"), &got)
	assert.Equal(t, "ok", got["status"])
	assert.EqualValues(t, 1, got["sessions"])
}

func TestSafeRedirect(t *testing.T) {
	tests := map[string]string{
		"":                    "/",
		"/":                   "/",
		"/?lang=ta":           "/?lang=ta",
		"//evil.example":      "/",
		"/\\evil.example":     "/",
		"https://example.com": "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeRedirect(in), "input %q", in)
	}
}
