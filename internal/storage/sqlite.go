// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/larder/internal/errors"
	"github.com/hyperjump/larder/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes writers; WAL keeps readers of other processes unblocked.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		title_key TEXT NOT NULL,
		category TEXT NOT NULL,
		type TEXT,
		servings INTEGER,
		prep_time TEXT,
		cook_time TEXT,
		total_time TEXT,
		difficulty TEXT,
		description TEXT,
		notes TEXT,
		source TEXT,
		url TEXT,
		instructions TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_recipes_title_key ON recipes(title_key);
	CREATE INDEX IF NOT EXISTS idx_recipes_category ON recipes(category);

	CREATE TABLE IF NOT EXISTS recipe_ingredients (
		recipe_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		quantity TEXT,
		unit TEXT,
		name TEXT NOT NULL,
		raw_text TEXT NOT NULL,
		PRIMARY KEY (recipe_id, position),
		FOREIGN KEY (recipe_id) REFERENCES recipes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS recipe_tags (
		recipe_id TEXT NOT NULL,
		tag TEXT NOT NULL,
		PRIMARY KEY (recipe_id, tag),
		FOREIGN KEY (recipe_id) REFERENCES recipes(id) ON DELETE CASCADE
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Upsert inserts or replaces a recipe with its ingredients and tags.
// created_at survives updates.
func (s *SQLiteStorage) Upsert(ctx context.Context, id string, d *models.RecipeDraft) (string, error) {
	if id == "" {
		id = uuid.New().String()
	}
	instructions, err := json.Marshal(d.Instructions)
	if err != nil {
		return "", fmt.Errorf("failed to marshal instructions: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO recipes (id, title, title_key, category, type, servings, prep_time, cook_time,
			total_time, difficulty, description, notes, source, url, instructions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, title_key = excluded.title_key, category = excluded.category,
			type = excluded.type, servings = excluded.servings, prep_time = excluded.prep_time,
			cook_time = excluded.cook_time, total_time = excluded.total_time,
			difficulty = excluded.difficulty, description = excluded.description,
			notes = excluded.notes, source = excluded.source, url = excluded.url,
			instructions = excluded.instructions, updated_at = excluded.updated_at`,
		id, d.Title, models.NormalizeTitle(d.Title), d.Category, d.Type, d.Servings, d.PrepTime, d.CookTime,
		d.TotalTime, d.Difficulty, d.Description, d.Notes, d.Source, d.URL, string(instructions), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to write recipe: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = ?`, id); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = ?`, id); err != nil {
		return "", err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO recipe_ingredients (recipe_id, position, quantity, unit, name, raw_text)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for i, l := range d.Ingredients {
		if _, err := stmt.ExecContext(ctx, id, i, l.Quantity, l.Unit, l.Name, l.RawText); err != nil {
			return "", fmt.Errorf("failed to write ingredient %d: %w", i, err)
		}
	}

	for _, tag := range d.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO recipe_tags (recipe_id, tag) VALUES (?, ?)`, id, tag,
		); err != nil {
			return "", fmt.Errorf("failed to write tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// FindIDByTitle returns the oldest recipe whose normalized title matches.
func (s *SQLiteStorage) FindIDByTitle(ctx context.Context, title string) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM recipes WHERE title_key = ? ORDER BY created_at, id LIMIT 1`,
		models.NormalizeTitle(title),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// GetRecipe returns a recipe by ID with its ingredients in order.
func (s *SQLiteStorage) GetRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	var (
		r            models.Recipe
		servings     sql.NullInt64
		instructions string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, category, type, servings, prep_time, cook_time, total_time, difficulty,
			description, notes, source, url, instructions, created_at, updated_at
		 FROM recipes WHERE id = ?`, id,
	).Scan(&r.ID, &r.Title, &r.Category, &r.Type, &servings, &r.PrepTime, &r.CookTime, &r.TotalTime,
		&r.Difficulty, &r.Description, &r.Notes, &r.Source, &r.URL, &instructions, &r.CreatedAt, &r.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	if servings.Valid {
		n := int(servings.Int64)
		r.Servings = &n
	}
	if err := json.Unmarshal([]byte(instructions), &r.Instructions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instructions: %w", err)
	}
	if r.Instructions == nil {
		r.Instructions = []string{}
	}

	if r.Ingredients, err = s.ingredients(ctx, id); err != nil {
		return nil, err
	}
	if r.Tags, err = s.tags(ctx, id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStorage) ingredients(ctx context.Context, id string) ([]models.IngredientLine, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT quantity, unit, name, raw_text FROM recipe_ingredients
		 WHERE recipe_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []models.IngredientLine{}
	for rows.Next() {
		var l models.IngredientLine
		if err := rows.Scan(&l.Quantity, &l.Unit, &l.Name, &l.RawText); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *SQLiteStorage) tags(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tag FROM recipe_tags WHERE recipe_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// ListRecipes returns recipe summaries, most recently updated first.
func (s *SQLiteStorage) ListRecipes(ctx context.Context, opts ListOptions) ([]*models.RecipeSummary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.title, r.category, r.updated_at,
			(SELECT COUNT(*) FROM recipe_ingredients i WHERE i.recipe_id = r.id)
		 FROM recipes r
		 WHERE ? = '' OR r.category = ? COLLATE NOCASE
		 ORDER BY r.updated_at DESC, r.id LIMIT ? OFFSET ?`,
		opts.Category, opts.Category, limit, opts.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.RecipeSummary
	for rows.Next() {
		var r models.RecipeSummary
		if err := rows.Scan(&r.ID, &r.Title, &r.Category, &r.UpdatedAt, &r.IngredientCount); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// DeleteRecipe removes a recipe and, through the foreign keys, its ingredients and tags.
func (s *SQLiteStorage) DeleteRecipe(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// CountRecipes returns the total number of recipes.
func (s *SQLiteStorage) CountRecipes(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
