package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/tastebud-labs/recipedex/internal/domain"
	"github.com/tastebud-labs/recipedex/internal/domain/search"
	"github.com/tastebud-labs/recipedex/internal/usecase/recommend"
	"github.com/tastebud-labs/recipedex/internal/usecase/suggest"
)

// --- Fakes ---

type fakeRecommender struct {
	ranked []recommend.RankedRecipe
	err    error
	lastQ  search.Query
}

func (f *fakeRecommender) SearchByIngredients(_ context.Context, q search.Query) ([]recommend.RankedRecipe, error) {
	f.lastQ = q
	return f.ranked, f.err
}

func (f *fakeRecommender) SearchByName(_ context.Context, q search.Query) ([]recommend.RankedRecipe, error) {
	f.lastQ = q
	return f.ranked, f.err
}

type fakeSuggester struct {
	items []suggest.Suggestion
	err   error
}

func (f *fakeSuggester) Suggest(context.Context, string, int) ([]suggest.Suggestion, error) {
	return f.items, f.err
}

type fakeCatalog struct {
	rec  domain.Recipe
	warn *domain.SyncWarning
	err  error
}

func (f *fakeCatalog) Create(_ context.Context, in domain.RecipeInput) (domain.Recipe, *domain.SyncWarning, error) {
	if f.err != nil {
		return domain.Recipe{}, nil, f.err
	}
	if err := in.Validate(); err != nil {
		return domain.Recipe{}, nil, err
	}
	return f.rec, f.warn, nil
}

func (f *fakeCatalog) Update(context.Context, int64, domain.RecipePatch) (domain.Recipe, *domain.SyncWarning, error) {
	return f.rec, f.warn, f.err
}

func (f *fakeCatalog) Delete(context.Context, int64) (*domain.SyncWarning, error) {
	return f.warn, f.err
}

func testServer(rec *fakeRecommender, sug *fakeSuggester, cat *fakeCatalog, checks []HealthCheck) *Server {
	if rec == nil {
		rec = &fakeRecommender{}
	}
	if sug == nil {
		sug = &fakeSuggester{}
	}
	if cat == nil {
		cat = &fakeCatalog{}
	}
	return NewServer(rec, sug, cat, checks, zap.NewNop())
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.Router(nil).ServeHTTP(w, r)
	return w
}

// --- Search handlers ---

func TestSearchIngredients_OK(t *testing.T) {
	rec := &fakeRecommender{ranked: []recommend.RankedRecipe{
		{Recipe: domain.Recipe{ID: 1, Name: "Miso Soup", Cuisine: "Asian"}, Score: 0.91},
	}}
	s := testServer(rec, nil, nil, nil)

	w := do(t, s, http.MethodGet, "/search/ingredients?q=miso,+tofu&k=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var resp searchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Items[0].Recipe.Name != "Miso Soup" || resp.Items[0].Score != 0.91 {
		t.Errorf("resp = %+v", resp)
	}
	if rec.lastQ.K() != 3 {
		t.Errorf("k = %d", rec.lastQ.K())
	}
}

func TestSearchIngredients_MissingQuery(t *testing.T) {
	s := testServer(nil, nil, nil, nil)
	w := do(t, s, http.MethodGet, "/search/ingredients", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestSearch_UnknownTaxonomyParamIs400(t *testing.T) {
	s := testServer(nil, nil, nil, nil)

	w := do(t, s, http.MethodGet, "/search/ingredients?q=egg&category=Molecular", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown category: status = %d", w.Code)
	}
	w = do(t, s, http.MethodGet, "/search/name?q=soup&cuisine=Martian", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown cuisine: status = %d", w.Code)
	}
}

func TestSearchName_PassesIngredientsParam(t *testing.T) {
	rec := &fakeRecommender{}
	s := testServer(rec, nil, nil, nil)

	w := do(t, s, http.MethodGet, "/search/name?q=pancakes&ingredients=egg,%20flour", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	ing := rec.lastQ.Ingredients()
	if len(ing) != 2 || ing[0] != "egg" || ing[1] != "flour" {
		t.Errorf("ingredients = %v", ing)
	}
}

func TestSearch_SentinelStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrEncoding, http.StatusBadGateway},
		{domain.ErrRetrieval, http.StatusServiceUnavailable},
		{domain.ErrHydration, http.StatusServiceUnavailable},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		s := testServer(&fakeRecommender{err: tc.err}, nil, nil, nil)
		w := do(t, s, http.MethodGet, "/search/ingredients?q=egg", "")
		if w.Code != tc.want {
			t.Errorf("err %v: status = %d, want %d", tc.err, w.Code, tc.want)
		}
	}
}

// --- Suggest handler ---

func TestSuggest_OK(t *testing.T) {
	sug := &fakeSuggester{items: []suggest.Suggestion{{Text: "tomato", Score: 98.3}}}
	s := testServer(nil, sug, nil, nil)

	w := do(t, s, http.MethodGet, "/suggest?q=tom", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp suggestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Text != "tomato" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSuggest_MissingQuery(t *testing.T) {
	s := testServer(nil, nil, nil, nil)
	if w := do(t, s, http.MethodGet, "/suggest", ""); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

// --- Catalog handlers ---

func TestCreateRecipe_Created(t *testing.T) {
	cat := &fakeCatalog{rec: domain.Recipe{ID: 7, Name: "Miso Soup", Cuisine: "Asian"}}
	s := testServer(nil, nil, cat, nil)

	body := `{"name":"Miso Soup","category":["Soup"],"ingredients":["miso","tofu"],"cuisine":"Asian"}`
	w := do(t, s, http.MethodPost, "/recipes", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/recipes/7" {
		t.Errorf("Location = %q", loc)
	}

	var resp mutationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Recipe.ID != 7 || resp.Warning != nil {
		t.Errorf("resp = %+v", resp)
	}
}

func TestCreateRecipe_ValidationFailures(t *testing.T) {
	s := testServer(nil, nil, &fakeCatalog{}, nil)

	cases := []string{
		`{"name":"","category":["Soup"],"ingredients":["miso"],"cuisine":"Asian"}`,
		`{"name":"X","category":["Bogus"],"ingredients":["miso"],"cuisine":"Asian"}`,
		`{"name":"X","category":["Soup"],"ingredients":["miso"],"cuisine":"Martian"}`,
		`not json`,
	}
	for _, body := range cases {
		if w := do(t, s, http.MethodPost, "/recipes", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestCreateRecipe_SurfacesSyncWarning(t *testing.T) {
	cat := &fakeCatalog{
		rec:  domain.Recipe{ID: 7, Name: "Miso Soup", Cuisine: "Asian"},
		warn: domain.NewSyncWarning(7, "upsert", errors.New("redis unreachable")),
	}
	s := testServer(nil, nil, cat, nil)

	body := `{"name":"Miso Soup","category":["Soup"],"ingredients":["miso"],"cuisine":"Asian"}`
	w := do(t, s, http.MethodPost, "/recipes", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d (warning must not fail the request)", w.Code)
	}
	var resp mutationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Warning == nil || !strings.Contains(*resp.Warning, "upsert") {
		t.Errorf("warning = %v", resp.Warning)
	}
}

func TestPatchRecipe_NotFound(t *testing.T) {
	s := testServer(nil, nil, &fakeCatalog{err: domain.ErrNotFound}, nil)
	w := do(t, s, http.MethodPatch, "/recipes/42", `{"name":"x"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

func TestPatchRecipe_BadID(t *testing.T) {
	s := testServer(nil, nil, nil, nil)
	w := do(t, s, http.MethodPatch, "/recipes/abc", `{"name":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestDeleteRecipe_OK(t *testing.T) {
	s := testServer(nil, nil, &fakeCatalog{}, nil)
	w := do(t, s, http.MethodDelete, "/recipes/7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp deleteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Deleted || resp.Warning != nil {
		t.Errorf("resp = %+v", resp)
	}
}

func TestDeleteRecipe_NotFound(t *testing.T) {
	s := testServer(nil, nil, &fakeCatalog{err: domain.ErrNotFound}, nil)
	if w := do(t, s, http.MethodDelete, "/recipes/7", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

// --- Health ---

func TestHealth_AllHealthy(t *testing.T) {
	checks := []HealthCheck{
		{Name: "database", Probe: func(context.Context) error { return nil }},
		{Name: "embedder", Probe: func(context.Context) error { return nil }},
	}
	s := testServer(nil, nil, nil, checks)

	w := do(t, s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestHealth_DegradedDependency(t *testing.T) {
	checks := []HealthCheck{
		{Name: "database", Probe: func(context.Context) error { return nil }},
		{Name: "embedder", Probe: func(context.Context) error { return errors.New("down") }},
	}
	s := testServer(nil, nil, nil, checks)

	w := do(t, s, http.MethodGet, "/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "unhealthy") {
		t.Errorf("body = %s", w.Body.String())
	}
}
