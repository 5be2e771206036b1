// Package recipes is the authoritative relational store. Recipe rows are the
// source of truth; vector points are derived from them and never the reverse.
package recipes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tastebud-labs/recipedex/internal/domain"
)

// Repo provides recipe row access over database/sql.
type Repo struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the schema.
func Open(path string) (*Repo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return NewWithDB(db)
}

// NewWithDB wraps an existing connection and ensures the schema.
func NewWithDB(db *sql.DB) (*Repo, error) {
	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Repo{db: db}, nil
}

// Close closes the underlying connection.
func (r *Repo) Close() error { return r.db.Close() }

// Ping checks connectivity.
func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS recipes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			preparation_time INTEGER NOT NULL DEFAULT 0,
			cooking_time INTEGER NOT NULL DEFAULT 0,
			category TEXT NOT NULL,         -- JSON array
			ingredients TEXT NOT NULL,      -- JSON array
			ingredients_raw TEXT NOT NULL,  -- JSON array
			instructions TEXT NOT NULL DEFAULT '',
			cooking_methods TEXT,           -- JSON array
			implements TEXT,                -- JSON array
			nutrition TEXT,                 -- JSON object
			cuisine TEXT NOT NULL,
			number_of_steps INTEGER NOT NULL DEFAULT 0,
			url TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			rating_value REAL,
			rating_count INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_recipes_cuisine ON recipes(cuisine);
		CREATE INDEX IF NOT EXISTS idx_recipes_name ON recipes(name);
	`)
	return err
}

const recipeColumns = `id, name, preparation_time, cooking_time, category, ingredients,
	ingredients_raw, instructions, cooking_methods, implements, nutrition, cuisine,
	number_of_steps, url, created_at, rating_value, rating_count`

// Insert stores a new recipe and returns its id.
func (r *Repo) Insert(ctx context.Context, in domain.RecipeInput) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recipes (
			name, preparation_time, cooking_time, category, ingredients,
			ingredients_raw, instructions, cooking_methods, implements, nutrition,
			cuisine, number_of_steps, url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.PreparationTime, in.CookingTime,
		marshalList(in.Category), marshalList(in.Ingredients), marshalList(in.IngredientsRaw),
		in.Instructions, marshalList(in.CookingMethods), marshalList(in.Implements),
		marshalMap(in.Nutrition), in.Cuisine, in.NumberOfSteps, nullString(in.URL),
	)
	if err != nil {
		return 0, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert recipe id: %w", err)
	}
	return id, nil
}

// Update rewrites the mutable columns of an existing row.
func (r *Repo) Update(ctx context.Context, id int64, in domain.RecipeInput) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recipes SET
			name = ?, preparation_time = ?, cooking_time = ?, category = ?,
			ingredients = ?, ingredients_raw = ?, instructions = ?,
			cooking_methods = ?, implements = ?, nutrition = ?, cuisine = ?,
			number_of_steps = ?, url = ?
		WHERE id = ?`,
		in.Name, in.PreparationTime, in.CookingTime,
		marshalList(in.Category), marshalList(in.Ingredients), marshalList(in.IngredientsRaw),
		in.Instructions, marshalList(in.CookingMethods), marshalList(in.Implements),
		marshalMap(in.Nutrition), in.Cuisine, in.NumberOfSteps, nullString(in.URL),
		id,
	)
	if err != nil {
		return fmt.Errorf("update recipe %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update recipe %d: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a row. Returns domain.ErrNotFound when no row matched.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recipe %d: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID fetches one row. Returns domain.ErrNotFound when absent.
func (r *Repo) GetByID(ctx context.Context, id int64) (domain.Recipe, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	rec, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Recipe{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("get recipe %d: %w", id, err)
	}
	return rec, nil
}

// FetchByIDs hydrates candidate ids in one round trip. Ids without a row are
// simply absent from the result; callers treat them as stale index entries.
func (r *Repo) FetchByIDs(ctx context.Context, ids []int64) ([]domain.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch recipes by ids: %w", err)
	}
	defer rows.Close()

	var out []domain.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch recipes by ids: %w", err)
	}
	return out, nil
}

// FetchVocabulary returns the distinct ingredient names across all recipes,
// used by the suggestion engine.
func (r *Repo) FetchVocabulary(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT je.value
		FROM recipes, json_each(recipes.ingredients) AS je
		ORDER BY je.value`)
	if err != nil {
		return nil, fmt.Errorf("fetch vocabulary: %w", err)
	}
	defer rows.Close()

	var vocab []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan vocabulary: %w", err)
		}
		if name != "" {
			vocab = append(vocab, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch vocabulary: %w", err)
	}
	return vocab, nil
}

// --- Row mapping ---

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(s scanner) (domain.Recipe, error) {
	var (
		rec            domain.Recipe
		category       string
		ingredients    string
		ingredientsRaw string
		cookingMethods sql.NullString
		implements     sql.NullString
		nutrition      sql.NullString
		url            sql.NullString
		createdAt      sql.NullString
		ratingValue    sql.NullFloat64
	)

	err := s.Scan(
		&rec.ID, &rec.Name, &rec.PreparationTime, &rec.CookingTime,
		&category, &ingredients, &ingredientsRaw, &rec.Instructions,
		&cookingMethods, &implements, &nutrition, &rec.Cuisine,
		&rec.NumberOfSteps, &url, &createdAt, &ratingValue, &rec.RatingCount,
	)
	if err != nil {
		return domain.Recipe{}, err
	}

	rec.Category = unmarshalList(category)
	rec.Ingredients = unmarshalList(ingredients)
	rec.IngredientsRaw = unmarshalList(ingredientsRaw)
	rec.CookingMethods = unmarshalList(cookingMethods.String)
	rec.Implements = unmarshalList(implements.String)
	rec.Nutrition = unmarshalMap(nutrition.String)
	rec.URL = url.String
	if ratingValue.Valid {
		rec.RatingValue = ratingValue.Float64
	}
	if createdAt.Valid {
		if ts, err := time.Parse("2006-01-02 15:04:05", createdAt.String); err == nil {
			rec.CreatedAt = ts
		}
	}
	return rec, nil
}

func marshalList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func unmarshalList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func marshalMap(m map[string]any) any {
	if m == nil {
		return nil
	}
	b, _ := json.Marshal(m)
	return string(b)
}

func unmarshalMap(s string) map[string]any {
	if s == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
