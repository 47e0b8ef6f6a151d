package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/grzywek/beancount-import/internal/common"
	"github.com/grzywek/beancount-import/internal/model"
)

// pendingOrder is the server's stable ordering of the pending list. Index i
// in the published list is the i-th row under this ordering.
const pendingOrder = "ORDER BY date, id"

// InsertEntries stores imported entries, skipping content-hash duplicates.
// It returns how many were inserted and how many were skipped. A non-empty
// insertion bumps the generation.
func (s *SQLiteStorage) InsertEntries(ctx context.Context, entries []model.PendingEntry) (inserted, skipped int, err error) {
	if err := validateContext(ctx); err != nil {
		return 0, 0, err
	}
	if err := validateEntries(entries); err != nil {
		return 0, 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO entries
			(hash, date, payee, narration, account, currency, source_desc, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range entries {
		entry := &entries[i]
		hash := entry.Hash
		if hash == "" {
			hash = entry.GenerateHash()
		}

		result, execErr := stmt.ExecContext(ctx,
			hash, entry.Date, entry.Payee, entry.Narration,
			entry.Account, entry.Currency, entry.SourceDesc, entry.Amount)
		if execErr != nil {
			err = fmt.Errorf("failed to insert entry: %w", execErr)
			return 0, 0, err
		}

		affected, execErr := result.RowsAffected()
		if execErr != nil {
			err = fmt.Errorf("failed to read insert result: %w", execErr)
			return 0, 0, err
		}
		if affected == 0 {
			skipped++
		} else {
			inserted++
		}
	}

	if inserted > 0 {
		if err = bumpGeneration(ctx, tx); err != nil {
			return 0, 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit: %w", err)
	}

	slog.Debug("inserted entries", "inserted", inserted, "skipped", skipped)
	return inserted, skipped, nil
}

// Metadata returns the current generation and pending-list length.
func (s *SQLiteStorage) Metadata(ctx context.Context) (model.Metadata, error) {
	if err := validateContext(ctx); err != nil {
		return model.Metadata{}, err
	}

	gen, err := s.generation(ctx, s.db)
	if err != nil {
		return model.Metadata{}, err
	}

	var total int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE status = ?`, model.StatusPending).Scan(&total)
	if err != nil {
		return model.Metadata{}, fmt.Errorf("failed to count pending entries: %w", err)
	}

	return model.Metadata{Generation: gen, Total: total}, nil
}

// ListPending returns the pending entries in [offset, offset+limit) of the
// server ordering, each stamped with its index and the generation it was
// read under.
func (s *SQLiteStorage) ListPending(ctx context.Context, offset, limit int) ([]model.PendingEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: offset=%d limit=%d", common.ErrIndexOutOfRange, offset, limit)
	}

	gen, err := s.generation(ctx, s.db)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT date, payee, narration, account, currency, source_desc, amount, hash
		FROM entries
		WHERE status = ?
		%s
		LIMIT ? OFFSET ?`, pendingOrder)

	rows, err := s.db.QueryContext(ctx, query, model.StatusPending, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.PendingEntry
	index := offset
	for rows.Next() {
		var entry model.PendingEntry
		if err := rows.Scan(&entry.Date, &entry.Payee, &entry.Narration,
			&entry.Account, &entry.Currency, &entry.SourceDesc,
			&entry.Amount, &entry.Hash); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entry.Index = index
		entry.Generation = gen
		index++
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}

// SetStatusByIndex marks the pending entry at the given index under the
// given generation as accepted or ignored. The entry leaves the pending list
// and the generation is bumped, so every client re-synchronizes. A stale
// generation is rejected with common.ErrStaleGeneration.
func (s *SQLiteStorage) SetStatusByIndex(ctx context.Context, generation int64, index int, status model.Status) (err error) {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !status.Valid() || status == model.StatusPending {
		return fmt.Errorf("%w: cannot set status %q", ErrInvalidEntry, status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	gen, err := s.generation(ctx, tx)
	if err != nil {
		return err
	}
	if generation != gen {
		return fmt.Errorf("%w: got %d, current %d", common.ErrStaleGeneration, generation, gen)
	}

	query := fmt.Sprintf(`
		UPDATE entries SET status = ?
		WHERE id = (
			SELECT id FROM entries WHERE status = ? %s LIMIT 1 OFFSET ?
		)`, pendingOrder)

	result, err := tx.ExecContext(ctx, query, status, model.StatusPending, index)
	if err != nil {
		return fmt.Errorf("failed to update entry status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: index %d", common.ErrIndexOutOfRange, index)
	}

	if err = bumpGeneration(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// MatchingIndices returns the pending-list indices whose payee or narration
// contains the filter text, case-insensitively, in ascending order. An
// empty filter matches every pending entry.
func (s *SQLiteStorage) MatchingIndices(ctx context.Context, filterText string) ([]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(filterText))

	query := fmt.Sprintf(`
		SELECT idx FROM (
			SELECT ROW_NUMBER() OVER (%s) - 1 AS idx, payee, narration
			FROM entries
			WHERE status = ?
		)
		WHERE ? = ''
			OR instr(lower(payee), ?) > 0
			OR instr(lower(narration), ?) > 0
		ORDER BY idx`, pendingOrder)

	rows, err := s.db.QueryContext(ctx, query, model.StatusPending, needle, needle, needle)
	if err != nil {
		return nil, fmt.Errorf("failed to query matching indices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []int
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		matches = append(matches, idx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate indices: %w", err)
	}

	return matches, nil
}

type queryable interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStorage) generation(ctx context.Context, q queryable) (int64, error) {
	var value string
	err := q.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'generation'`).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to read generation: %w", err)
	}

	gen, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse generation %q: %w", value, err)
	}
	return gen, nil
}

func bumpGeneration(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE meta SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT) WHERE key = 'generation'`)
	if err != nil {
		return fmt.Errorf("failed to bump generation: %w", err)
	}
	return nil
}
