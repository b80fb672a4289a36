// Package export builds equity-history reports from persisted snapshots and
// writes them to an Excel workbook or a Google Sheets spreadsheet.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/traderops/snaptrak/internal/store"
)

// EquitySource reads persisted equity history.
type EquitySource interface {
	EquityHistory(ctx context.Context, ts store.TableSet) ([]store.EquityRow, error)
}

// AccountHistory is the report data for one account: a header row of column
// names and one row per equity snapshot.
type AccountHistory struct {
	Account string
	Columns []string
	Rows    []store.EquityRow
}

// Service assembles equity reports for a set of accounts.
type Service struct {
	db     EquitySource
	tables []store.TableSet
}

// NewService creates an export Service.
func NewService(db EquitySource, tables []store.TableSet) *Service {
	return &Service{db: db, tables: tables}
}

// Build reads the equity history of every account.
func (s *Service) Build(ctx context.Context) ([]AccountHistory, error) {
	histories := make([]AccountHistory, 0, len(s.tables))
	for _, ts := range s.tables {
		rows, err := s.db.EquityHistory(ctx, ts)
		if err != nil {
			return nil, fmt.Errorf("building report for %s: %w", ts.Account, err)
		}
		histories = append(histories, AccountHistory{
			Account: ts.Account,
			Columns: ts.Equity().ValueCols,
			Rows:    rows,
		})
	}
	return histories, nil
}

// sheetValues renders one account's history as spreadsheet rows.
func sheetValues(h AccountHistory) [][]any {
	header := make([]any, 0, len(h.Columns)+1)
	header = append(header, "time")
	for _, col := range h.Columns {
		header = append(header, col)
	}

	values := make([][]any, 0, len(h.Rows)+1)
	values = append(values, header)
	for _, row := range h.Rows {
		cells := make([]any, 0, len(row.Values)+1)
		cells = append(cells, time.Unix(row.Timestamp, 0).UTC().Format(time.DateTime))
		for _, v := range row.Values {
			cells = append(cells, v)
		}
		values = append(values, cells)
	}
	return values
}
