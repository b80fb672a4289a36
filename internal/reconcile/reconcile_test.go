package reconcile

import (
	"context"
	"errors"
	"sort"
	"testing"
)

type entry struct {
	Key   string
	Value float64
}

func entryKey(e entry) string { return e.Key }

type mockTable struct {
	rows      map[string]float64
	keysErr   error
	upsertErr error
	deleteErr error
	upserts   []string
	deletes   []string
}

func newMockTable(keys ...string) *mockTable {
	rows := make(map[string]float64, len(keys))
	for _, k := range keys {
		rows[k] = 1
	}
	return &mockTable{rows: rows}
}

func (m *mockTable) Name() string { return "test_positions" }

func (m *mockTable) Keys(_ context.Context) ([]string, error) {
	if m.keysErr != nil {
		return nil, m.keysErr
	}
	keys := make([]string, 0, len(m.rows))
	for k := range m.rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *mockTable) Upsert(_ context.Context, row entry) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.rows[row.Key] = row.Value
	m.upserts = append(m.upserts, row.Key)
	return nil
}

func (m *mockTable) Delete(_ context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.rows, key)
	m.deletes = append(m.deletes, key)
	return nil
}

func (m *mockTable) keySet() []string {
	keys, _ := m.Keys(context.Background())
	return keys
}

func TestSyncDiffCorrectness(t *testing.T) {
	tbl := newMockTable("BTCUSDT", "ETHUSDT")

	result, err := Sync(context.Background(), tbl, []entry{{Key: "BTCUSDT", Value: 2}}, entryKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys := tbl.keySet()
	if len(keys) != 1 || keys[0] != "BTCUSDT" {
		t.Errorf("persisted keys = %v, want [BTCUSDT]", keys)
	}
	if tbl.rows["BTCUSDT"] != 2 {
		t.Errorf("BTCUSDT value = %v, want overwritten to 2", tbl.rows["BTCUSDT"])
	}
	if len(result.Deleted) != 1 || result.Deleted[0] != "ETHUSDT" {
		t.Errorf("deleted = %v, want [ETHUSDT]", result.Deleted)
	}
}

func TestSyncIdempotent(t *testing.T) {
	tbl := newMockTable()
	next := []entry{{Key: "BTCUSDT", Value: 2}, {Key: "ETHUSDT", Value: 3}}

	if _, err := Sync(context.Background(), tbl, next, entryKey); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	firstKeys := tbl.keySet()

	result, err := Sync(context.Background(), tbl, next, entryKey)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(result.Deleted) != 0 {
		t.Errorf("second pass deleted = %v, want none", result.Deleted)
	}

	secondKeys := tbl.keySet()
	if len(firstKeys) != len(secondKeys) {
		t.Errorf("key set changed between identical passes: %v -> %v", firstKeys, secondKeys)
	}
}

func TestSyncEmptySetDeletesEverything(t *testing.T) {
	tbl := newMockTable("BTCUSDT", "ETHUSDT")

	result, err := Sync(context.Background(), tbl, nil, entryKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tbl.keySet()) != 0 {
		t.Errorf("persisted keys = %v, want empty", tbl.keySet())
	}
	if len(result.Deleted) != 2 {
		t.Errorf("deleted = %v, want both keys", result.Deleted)
	}
}

func TestSyncKeysErrorSurfaces(t *testing.T) {
	tbl := newMockTable()
	tbl.keysErr = errors.New("relation does not exist")

	if _, err := Sync(context.Background(), tbl, []entry{{Key: "BTCUSDT"}}, entryKey); err == nil {
		t.Fatal("expected error when persisted keys cannot be read")
	}
}

func TestSyncUpsertErrorSurfaces(t *testing.T) {
	tbl := newMockTable()
	tbl.upsertErr = errors.New("write failed")

	if _, err := Sync(context.Background(), tbl, []entry{{Key: "BTCUSDT"}}, entryKey); err == nil {
		t.Fatal("expected upsert error to propagate")
	}
}
