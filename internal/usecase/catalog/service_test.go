package catalog

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"github.com/tastebud-labs/recipedex/internal/domain"
	"github.com/tastebud-labs/recipedex/internal/domain/search"
)

// --- Fakes ---

type fakeRecipes struct {
	rows   map[int64]domain.Recipe
	nextID int64
}

func newFakeRecipes() *fakeRecipes {
	return &fakeRecipes{rows: make(map[int64]domain.Recipe), nextID: 1}
}

func (f *fakeRecipes) Insert(_ context.Context, in domain.RecipeInput) (int64, error) {
	id := f.nextID
	f.nextID++
	f.rows[id] = fromInput(id, in)
	return id, nil
}

func (f *fakeRecipes) Update(_ context.Context, id int64, in domain.RecipeInput) error {
	if _, ok := f.rows[id]; !ok {
		return domain.ErrNotFound
	}
	f.rows[id] = fromInput(id, in)
	return nil
}

func (f *fakeRecipes) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeRecipes) GetByID(_ context.Context, id int64) (domain.Recipe, error) {
	r, ok := f.rows[id]
	if !ok {
		return domain.Recipe{}, domain.ErrNotFound
	}
	return r, nil
}

func fromInput(id int64, in domain.RecipeInput) domain.Recipe {
	return domain.Recipe{
		ID: id, Name: in.Name, Category: in.Category, Ingredients: in.Ingredients,
		Cuisine: in.Cuisine, Instructions: in.Instructions,
	}
}

type fakeIndex struct {
	points    map[string]search.Payload // collection:id
	upsertErr error
	deleteErr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{points: make(map[string]search.Payload)}
}

func key(coll string, id int64) string {
	return coll + ":" + strconv.FormatInt(id, 10)
}

func (f *fakeIndex) Upsert(_ context.Context, coll string, _ []float32, p search.Payload) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.points[key(coll, p.ID)] = p
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, coll string, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.points, key(coll, id))
	return nil
}

type fakeEmbedder struct{ err error }

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type fakeRefresher struct{ calls int }

func (f *fakeRefresher) Refresh(context.Context) error {
	f.calls++
	return nil
}

func validInput() domain.RecipeInput {
	return domain.RecipeInput{
		Name:        "Miso Soup",
		Category:    []string{"Soup"},
		Ingredients: []string{"miso", "tofu"},
		Cuisine:     "Asian",
	}
}

func testService(recipes *fakeRecipes, idx *fakeIndex, emb *fakeEmbedder, vocab VocabularyRefresher) *Service {
	if emb == nil {
		emb = &fakeEmbedder{}
	}
	return New(recipes, idx, emb, vocab, zap.NewNop())
}

// --- Tests ---

func TestCreate_WritesRowAndBothCollections(t *testing.T) {
	recipes := newFakeRecipes()
	idx := newFakeIndex()
	vocab := &fakeRefresher{}
	svc := testService(recipes, idx, nil, vocab)

	rec, warn, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if warn != nil {
		t.Errorf("unexpected warning: %v", warn)
	}
	if rec.ID == 0 || rec.Name != "Miso Soup" {
		t.Errorf("rec = %+v", rec)
	}
	if len(idx.points) != 2 {
		t.Errorf("expected points in both collections, got %d", len(idx.points))
	}
	if vocab.calls != 1 {
		t.Errorf("vocabulary refreshes = %d, want 1", vocab.calls)
	}
}

func TestCreate_RejectsUnknownTaxonomy(t *testing.T) {
	svc := testService(newFakeRecipes(), newFakeIndex(), nil, nil)

	in := validInput()
	in.Cuisine = "Martian"
	_, _, err := svc.Create(context.Background(), in)
	if !errors.Is(err, domain.ErrUnknownCuisine) {
		t.Errorf("expected ErrUnknownCuisine, got %v", err)
	}

	in = validInput()
	in.Category = []string{"Molecular"}
	_, _, err = svc.Create(context.Background(), in)
	if !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestCreate_IndexFailureIsWarningNotError(t *testing.T) {
	recipes := newFakeRecipes()
	idx := newFakeIndex()
	idx.upsertErr = errors.New("redis unreachable")
	svc := testService(recipes, idx, nil, nil)

	rec, warn, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create must succeed despite index failure, got %v", err)
	}
	if warn == nil {
		t.Fatal("expected a sync warning")
	}
	if warn.RecipeID != rec.ID || warn.Op != "upsert" {
		t.Errorf("warn = %+v", warn)
	}
	if _, ok := recipes.rows[rec.ID]; !ok {
		t.Error("relational row must survive the failed index sync")
	}
}

func TestCreate_EmbedFailureIsWarningNotError(t *testing.T) {
	svc := testService(newFakeRecipes(), newFakeIndex(), &fakeEmbedder{err: errors.New("api down")}, nil)

	_, warn, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if warn == nil {
		t.Fatal("expected a sync warning when embedding fails during sync")
	}
}

func TestUpdate_MergesPatchAndResyncs(t *testing.T) {
	recipes := newFakeRecipes()
	idx := newFakeIndex()
	svc := testService(recipes, idx, nil, nil)

	created, _, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	name := "Spicy Miso Soup"
	rec, warn, err := svc.Update(context.Background(), created.ID, domain.RecipePatch{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if warn != nil {
		t.Errorf("unexpected warning: %v", warn)
	}
	if rec.Name != "Spicy Miso Soup" {
		t.Errorf("name = %q", rec.Name)
	}
	// Unpatched fields survive the merge.
	if rec.Cuisine != "Asian" || len(rec.Ingredients) != 2 {
		t.Errorf("merged rec = %+v", rec)
	}
}

func TestUpdate_EmptyPatchIsNoop(t *testing.T) {
	recipes := newFakeRecipes()
	idx := newFakeIndex()
	vocab := &fakeRefresher{}
	svc := testService(recipes, idx, nil, vocab)

	created, _, _ := svc.Create(context.Background(), validInput())
	refreshesAfterCreate := vocab.calls

	rec, warn, err := svc.Update(context.Background(), created.ID, domain.RecipePatch{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if warn != nil || rec.ID != created.ID {
		t.Errorf("rec=%+v warn=%v", rec, warn)
	}
	if vocab.calls != refreshesAfterCreate {
		t.Error("empty patch must not trigger a vocabulary refresh")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := testService(newFakeRecipes(), newFakeIndex(), nil, nil)

	name := "x"
	_, _, err := svc.Update(context.Background(), 42, domain.RecipePatch{Name: &name})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_RejectsInvalidPatchTaxonomy(t *testing.T) {
	recipes := newFakeRecipes()
	svc := testService(recipes, newFakeIndex(), nil, nil)
	created, _, _ := svc.Create(context.Background(), validInput())

	bad := "Martian"
	_, _, err := svc.Update(context.Background(), created.ID, domain.RecipePatch{Cuisine: &bad})
	if !errors.Is(err, domain.ErrUnknownCuisine) {
		t.Errorf("expected ErrUnknownCuisine, got %v", err)
	}
	if recipes.rows[created.ID].Cuisine != "Asian" {
		t.Error("row must not change on rejected patch")
	}
}

func TestDelete_RemovesRowAndPoints(t *testing.T) {
	recipes := newFakeRecipes()
	idx := newFakeIndex()
	svc := testService(recipes, idx, nil, nil)

	created, _, _ := svc.Create(context.Background(), validInput())
	warn, err := svc.Delete(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if warn != nil {
		t.Errorf("unexpected warning: %v", warn)
	}
	if len(recipes.rows) != 0 || len(idx.points) != 0 {
		t.Errorf("rows=%d points=%d after delete", len(recipes.rows), len(idx.points))
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := testService(newFakeRecipes(), newFakeIndex(), nil, nil)

	_, err := svc.Delete(context.Background(), 42)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_IndexFailureIsWarning(t *testing.T) {
	recipes := newFakeRecipes()
	idx := newFakeIndex()
	svc := testService(recipes, idx, nil, nil)

	created, _, _ := svc.Create(context.Background(), validInput())
	idx.deleteErr = errors.New("redis unreachable")

	warn, err := svc.Delete(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Delete must succeed despite index failure, got %v", err)
	}
	if warn == nil || warn.Op != "remove" {
		t.Errorf("warn = %+v", warn)
	}
	if len(recipes.rows) != 0 {
		t.Error("relational delete must stick")
	}
}
