package storage

import (
	"context"
	"database/sql"
	"fmt"

	"ShortageWatcher/internal/domain"
	"ShortageWatcher/internal/ports"
	"ShortageWatcher/internal/report"
)

// ShortageRepository runs report statements against the shared pool.
type ShortageRepository struct {
	conn ports.ConnectionProvider
}

var _ ports.ShortageSource = (*ShortageRepository)(nil)

// NewShortageRepository wires the connection provider.
func NewShortageRepository(conn ports.ConnectionProvider) *ShortageRepository {
	return &ShortageRepository{conn: conn}
}

// FetchShortages executes the report query and scans its canonical columns.
func (r *ShortageRepository) FetchShortages(ctx context.Context, rep report.Report) ([]domain.ShortageRow, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	query, args, err := rep.Query()
	if err != nil {
		return nil, &domain.QueryError{Report: rep.Name, Err: fmt.Errorf("build statement: %w", err)}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.QueryError{Report: rep.Name, Err: err}
	}

	result, err := scanShortages(rows)
	if err != nil {
		_ = rows.Close()
		return nil, &domain.QueryError{Report: rep.Name, Err: err}
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, &domain.QueryError{Report: rep.Name, Err: fmt.Errorf("close rows: %w", closeErr)}
	}

	return result, nil
}

func scanShortages(rows *sql.Rows) ([]domain.ShortageRow, error) {
	result := make([]domain.ShortageRow, 0)
	for rows.Next() {
		var (
			row                                         domain.ShortageRow
			date, line, seq, status, parent, item, name sql.NullString
		)
		err := rows.Scan(
			&date,
			&line,
			&seq,
			&status,
			&parent,
			&item,
			&name,
			&row.Required,
			&row.Used,
			&row.OnHand,
			&row.Standby,
			&row.LotIn,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row.Date = date.String
		row.Line = line.String
		row.Item = item.String
		row.Sequence = seq.String
		row.WorkStatus = status.String
		row.ProductItem = parent.String
		row.ItemName = name.String
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}
