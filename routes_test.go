package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"g2p-curation/config"
	"g2p-curation/models"
	"g2p-curation/providers"
	"g2p-curation/services"
	"g2p-curation/store"
	"g2p-curation/store/storetest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testAPIKey = "secret"

type stubLiterature struct {
	titles map[int]string
}

func (s *stubLiterature) Name() string { return "stub" }

func (s *stubLiterature) Lookup(_ context.Context, pmid int) (*providers.LookupResult, error) {
	title, ok := s.titles[pmid]
	if !ok {
		return &providers.LookupResult{}, nil
	}
	return &providers.LookupResult{HitCount: 1, Result: providers.Result{Title: title}, Authors: "Smith J et al."}, nil
}

type stubOntology struct{}

func (stubOntology) Lookup(context.Context, string) (*providers.OntologyResult, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := storetest.New(t)
	log := zaptest.NewLogger(t)

	visible := storetest.Panel(t, s, "DD", true)
	hidden := storetest.Panel(t, s, "Eye", false)
	storetest.User(t, s, "curator", "curator@example.org")
	gene := storetest.Locus(t, s, "FBN1")
	disease := storetest.Disease(t, s, "Marfan syndrome")
	rec := storetest.LGD(t, s, storetest.Record{StableID: "G2P00001", Gene: gene, Disease: disease, Genotype: "monoallelic_autosomal"})
	storetest.OnPanel(t, s, rec, visible)
	storetest.OnPanel(t, s, rec, hidden)
	storetest.Publication(t, s, 100, "Already stored")

	resolver := services.NewPublicationResolver(s, &stubLiterature{titles: map[int]string{200: "<i>New</i> paper"}}, log)
	deps := apiDeps{
		store:    s,
		catalog:  services.NewCatalog(s, log),
		diseases: services.NewDiseaseDeduplicator(s, resolver, stubOntology{}, log),
		resolver: resolver,
	}
	return newRouter(&config.Config{APISecretKey: testAPIKey}, deps, log), s
}

func do(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func writer() map[string]string {
	return map[string]string{"X-API-KEY": testAPIKey, userEmailHeader: "curator@example.org"}
}

func TestPanelListHonoursAPIKey(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(t, router, http.MethodGet, apiPrefix+"/panel/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var anon struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &anon))
	assert.Equal(t, 1, anon.Count)

	w = do(t, router, http.MethodGet, apiPrefix+"/panel/", nil, map[string]string{"X-API-KEY": testAPIKey})
	require.Equal(t, http.StatusOK, w.Code)
	var all struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Equal(t, 2, all.Count)

	w = do(t, router, http.MethodGet, apiPrefix+"/panel/", nil, map[string]string{"X-API-KEY": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHiddenPanelIsNotFoundAnonymously(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(t, router, http.MethodGet, apiPrefix+"/panel/Eye", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, apiPrefix+"/panel/Eye/stats", nil, map[string]string{"X-API-KEY": testAPIKey})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"number of records":1,"number of genes":1,"number of disease":1}`, w.Body.String())
}

func TestRecordDetail(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(t, router, http.MethodGet, apiPrefix+"/lgd/G2P00001", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rec services.RecordDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "FBN1", rec.Locus.GeneSymbol)
	assert.Equal(t, []string{"DD"}, rec.Panels)

	w = do(t, router, http.MethodGet, apiPrefix+"/lgd/G2P09999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePublication(t *testing.T) {
	router, s := newTestRouter(t)
	path := apiPrefix + "/publication/"

	w := do(t, router, http.MethodPost, path, gin.H{"pmid": 200}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodPost, path, gin.H{"pmid": 200}, map[string]string{"X-API-KEY": testAPIKey})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing acting user")

	w = do(t, router, http.MethodPost, path, gin.H{"pmid": 200}, writer())
	require.Equal(t, http.StatusCreated, w.Code)
	var pub models.Publication
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pub))
	assert.Equal(t, "New paper", pub.Title)
	assert.EqualValues(t, 1, storetest.Count(t, s, &models.Publication{}, "pmid = ?", 200))

	w = do(t, router, http.MethodPost, path, gin.H{"pmid": 100}, writer())
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPost, path, gin.H{"pmid": 999}, writer())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, path, gin.H{"title": "no pmid"}, writer())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDisease(t *testing.T) {
	router, s := newTestRouter(t)
	path := apiPrefix + "/disease/"

	w := do(t, router, http.MethodPost, path, gin.H{"name": "Syndrome, Marfan."}, writer())
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPost, path, gin.H{"name": "Loeys-Dietz syndrome", "publication": gin.H{"pmid": 100, "families": 3}}, writer())
	require.Equal(t, http.StatusCreated, w.Code)
	assert.EqualValues(t, 1, storetest.Count(t, s, &models.Disease{}, "name = ?", "Loeys-Dietz syndrome"))

	w = do(t, router, http.MethodGet, apiPrefix+"/disease/Loeys-Dietz%20syndrome", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var disease services.DiseaseView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &disease))
	require.Len(t, disease.Publications, 1)
	assert.Equal(t, 3, *disease.Publications[0].Families)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	w := do(t, router, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "g2p_publication_links_added_total")
}
