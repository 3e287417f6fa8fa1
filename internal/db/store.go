package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fichaflow/backend/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

//go:embed migrations/001_init.sql
var schema string

// EnsureSchema applies the idempotent DDL. Safe to run on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schema)
	return err
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SaveAnalysis appends one analysis snapshot and returns its id. The
// bigserial id doubles as the monotonic analysis sequence, so "previous"
// lookups never depend on wall-clock ordering. Rows are never updated.
func (s *Store) SaveAnalysis(ctx context.Context, a models.StoreAnalysis) (int64, error) {
	counts, err := json.Marshal(a.CategoryCounts)
	if err != nil {
		return 0, err
	}
	items, err := json.Marshal(a.CategoryItems)
	if err != nil {
		return 0, err
	}
	hist, err := json.Marshal(a.StatusHistogram)
	if err != nil {
		return 0, err
	}
	diags, err := json.Marshal(a.Diagnostics)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.Pool.QueryRow(ctx, `
		INSERT INTO analyses (store_id, store_name, store_number, total_tickets, category_counts, category_items, status_histogram, diagnostics, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
		RETURNING id
	`, a.StoreID, a.StoreName, a.StoreNumber, a.TotalTickets, counts, items, hist, diags).Scan(&id)
	return id, err
}

func (s *Store) GetAnalysis(ctx context.Context, id int64) (models.StoreAnalysis, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, store_id, store_name, store_number, total_tickets, category_counts, category_items, status_histogram, diagnostics, created_at
		FROM analyses WHERE id = $1
	`, id)
	return scanAnalysis(row)
}

// GetPreviousAnalysis returns the most recent analysis for the store
// strictly before the given sequence id, or nil when no history exists.
func (s *Store) GetPreviousAnalysis(ctx context.Context, storeID string, beforeID int64) (*models.StoreAnalysis, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, store_id, store_name, store_number, total_tickets, category_counts, category_items, status_histogram, diagnostics, created_at
		FROM analyses
		WHERE store_id = $1 AND id < $2
		ORDER BY id DESC
		LIMIT 1
	`, storeID, beforeID)

	a, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListAnalyses(ctx context.Context, storeID string, limit, offset int) ([]map[string]any, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT a.id, a.store_id, a.store_name, a.store_number, a.total_tickets, a.category_counts, a.created_at, r.pages
		FROM analyses a
		LEFT JOIN reports r ON r.analysis_id = a.id`
	var args []any
	var wheres []string
	if storeID != "" {
		args = append(args, storeID)
		wheres = append(wheres, fmt.Sprintf("a.store_id = $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY a.id DESC LIMIT $" + fmt.Sprint(len(args)+1) + " OFFSET $" + fmt.Sprint(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var (
			id          int64
			sid         string
			name        string
			number      *int
			total       int
			countsRaw   []byte
			createdAt   time.Time
			reportPages *int
		)
		if err := rows.Scan(&id, &sid, &name, &number, &total, &countsRaw, &createdAt, &reportPages); err != nil {
			return nil, err
		}
		counts := map[models.Category]int{}
		_ = json.Unmarshal(countsRaw, &counts)
		out = append(out, map[string]any{
			"id":              id,
			"store_id":        sid,
			"store_name":      name,
			"store_number":    number,
			"total_tickets":   total,
			"category_counts": counts,
			"created_at":      createdAt,
			"report_pages":    reportPages,
		})
	}
	return out, rows.Err()
}

func (s *Store) SaveReport(ctx context.Context, analysisID int64, pdf []byte, pages int) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO reports (analysis_id, pdf, pages, created_at)
		VALUES ($1,$2,$3,NOW())
		ON CONFLICT (analysis_id) DO UPDATE SET
			pdf = EXCLUDED.pdf,
			pages = EXCLUDED.pages,
			created_at = EXCLUDED.created_at
	`, analysisID, pdf, pages)
	return err
}

func (s *Store) GetReport(ctx context.Context, analysisID int64) ([]byte, int, error) {
	var (
		pdf   []byte
		pages int
	)
	err := s.Pool.QueryRow(ctx, `SELECT pdf, pages FROM reports WHERE analysis_id = $1`, analysisID).Scan(&pdf, &pages)
	if err != nil {
		return nil, 0, err
	}
	return pdf, pages, nil
}

func (s *Store) CreateRun(ctx context.Context, status string) (string, error) {
	var id string
	err := s.Pool.QueryRow(ctx, `INSERT INTO runs (status, started_at) VALUES ($1, NOW()) RETURNING id`, status).Scan(&id)
	return id, err
}

func (s *Store) FinishRun(ctx context.Context, runID string, status string, summary []byte) error {
	_, err := s.Pool.Exec(ctx, `UPDATE runs SET status = $1, summary = $2, finished_at = NOW() WHERE id = $3`, status, summary, runID)
	return err
}

func (s *Store) GetLatestRun(ctx context.Context) (models.Run, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, started_at, finished_at, status, summary FROM runs ORDER BY started_at DESC LIMIT 1`)
	var r models.Run
	if err := row.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Summary); err != nil {
		return models.Run{}, err
	}
	return r, nil
}

func scanAnalysis(row pgx.Row) (models.StoreAnalysis, error) {
	var (
		a         models.StoreAnalysis
		countsRaw []byte
		itemsRaw  []byte
		histRaw   []byte
		diagsRaw  []byte
	)
	if err := row.Scan(&a.ID, &a.StoreID, &a.StoreName, &a.StoreNumber, &a.TotalTickets, &countsRaw, &itemsRaw, &histRaw, &diagsRaw, &a.CreatedAt); err != nil {
		return models.StoreAnalysis{}, err
	}

	a.CategoryCounts = map[models.Category]int{}
	a.CategoryItems = map[models.Category][]string{}
	a.StatusHistogram = map[string]int{}
	if err := json.Unmarshal(countsRaw, &a.CategoryCounts); err != nil {
		return models.StoreAnalysis{}, err
	}
	if err := json.Unmarshal(itemsRaw, &a.CategoryItems); err != nil {
		return models.StoreAnalysis{}, err
	}
	if err := json.Unmarshal(histRaw, &a.StatusHistogram); err != nil {
		return models.StoreAnalysis{}, err
	}
	if err := json.Unmarshal(diagsRaw, &a.Diagnostics); err != nil {
		return models.StoreAnalysis{}, err
	}
	return a, nil
}
