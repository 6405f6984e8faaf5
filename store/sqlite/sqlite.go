/*
Package sqlite provides a SQLite-backed implementation of pricing.RuleStore.

PURPOSE:
  Persists price rules and their child records, and applies the scheduler
  policies as set-based SQL. In production, the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  rules:                Rule header (status, window, discount, priority)
  rule_quantity_ranges: Quantity tiers, ordered by position
  rule_items:           Product/category bindings
  rule_exclusions:      Excluded products
  rule_gift_products:   Free items granted by a rule

NO FOREIGN KEYS:
  Child tables reference rules.id without a constraint. Rules may be removed
  by other writers without cascading; DeleteOrphans restores referential
  integrity on its daily run.

SET-BASED TRANSITIONS:
  ActivateScheduled and ExpireActive are single UPDATE statements with the
  transition predicate in the WHERE clause. Re-running them is a no-op.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  store, err := sqlite.New("./data/pricing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  quoter := &pricing.Quoter{Rules: store, Resolver: pricing.NewResolver(nil)}

SEE ALSO:
  - pricing/store.go: Interface definitions
  - pricing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/price-engine/pricing"
)

// Store implements pricing.RuleStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		rule_type TEXT NOT NULL DEFAULT 'price_rule',
		status TEXT NOT NULL,
		priority INTEGER NOT NULL DEFAULT 0,
		schedule_from TEXT,
		schedule_to TEXT,
		discount_type TEXT NOT NULL,
		discount_value TEXT NOT NULL,
		exclusive BOOLEAN NOT NULL DEFAULT FALSE,
		condition_expr TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Hot path: active rules by type in priority order
	CREATE INDEX IF NOT EXISTS idx_rules_type_status_priority
		ON rules(rule_type, status, priority, id);
	CREATE INDEX IF NOT EXISTS idx_rules_schedule_from
		ON rules(schedule_from);
	CREATE INDEX IF NOT EXISTS idx_rules_status_schedule_to
		ON rules(status, schedule_to);

	CREATE TABLE IF NOT EXISTS rule_quantity_ranges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rule_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		min_quantity INTEGER NOT NULL,
		max_quantity INTEGER,
		discount_type TEXT NOT NULL,
		discount_value TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_quantity_ranges_rule
		ON rule_quantity_ranges(rule_id, position);

	CREATE TABLE IF NOT EXISTS rule_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rule_id INTEGER NOT NULL,
		item_kind TEXT NOT NULL,
		item_id INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rule_items_rule
		ON rule_items(rule_id);

	CREATE TABLE IF NOT EXISTS rule_exclusions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rule_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rule_exclusions_rule
		ON rule_exclusions(rule_id);

	CREATE TABLE IF NOT EXISTS rule_gift_products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rule_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_rule_gift_products_rule
		ON rule_gift_products(rule_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// childTables lists every table whose rows are owned by a rule.
var childTables = []string{
	"rule_quantity_ranges",
	"rule_items",
	"rule_exclusions",
	"rule_gift_products",
}

const ruleColumns = `id, name, rule_type, status, priority, schedule_from, schedule_to,
	discount_type, discount_value, exclusive, condition_expr, created_at, updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// RULE PERSISTENCE
// =============================================================================

// SaveRule inserts a rule (ID zero) or replaces an existing one and its children.
func (s *Store) SaveRule(ctx context.Context, rule pricing.Rule) (pricing.RuleID, error) {
	if err := rule.Validate(); err != nil {
		return 0, err
	}
	if rule.Type == "" {
		rule.Type = pricing.RuleTypePrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	now := time.Now().UTC().Format(timeLayout)
	args := []any{
		rule.Name, string(rule.Type), string(rule.Status), rule.Priority,
		formatTime(rule.ScheduleFrom), formatTime(rule.ScheduleTo),
		string(rule.DiscountType), rule.DiscountValue.String(), rule.Exclusive,
		rule.Condition,
	}

	id := rule.ID
	if id == 0 {
		res, err := sqlTx.ExecContext(ctx, `
			INSERT INTO rules (name, rule_type, status, priority, schedule_from, schedule_to,
				discount_type, discount_value, exclusive, condition_expr, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			append(args, now, now)...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert rule: %w", err)
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read rule id: %w", err)
		}
		id = pricing.RuleID(lastID)
	} else {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO rules (id, name, rule_type, status, priority, schedule_from, schedule_to,
				discount_type, discount_value, exclusive, condition_expr, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				rule_type = excluded.rule_type,
				status = excluded.status,
				priority = excluded.priority,
				schedule_from = excluded.schedule_from,
				schedule_to = excluded.schedule_to,
				discount_type = excluded.discount_type,
				discount_value = excluded.discount_value,
				exclusive = excluded.exclusive,
				condition_expr = excluded.condition_expr,
				updated_at = excluded.updated_at`,
			append(append([]any{int64(id)}, args...), now, now)...)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert rule: %w", err)
		}
		for _, table := range childTables {
			if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table+" WHERE rule_id = ?", int64(id)); err != nil {
				return 0, fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
	}

	if err := saveChildren(ctx, sqlTx, id, rule); err != nil {
		return 0, err
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rule: %w", err)
	}
	return id, nil
}

func saveChildren(ctx context.Context, db execer, id pricing.RuleID, rule pricing.Rule) error {
	for pos, qr := range rule.QuantityRanges {
		var maxQty sql.NullInt64
		if qr.MaxQuantity != nil {
			maxQty = sql.NullInt64{Int64: int64(*qr.MaxQuantity), Valid: true}
		}
		if _, err := db.ExecContext(ctx, `
			INSERT INTO rule_quantity_ranges (rule_id, position, min_quantity, max_quantity, discount_type, discount_value)
			VALUES (?, ?, ?, ?, ?, ?)`,
			int64(id), pos, qr.MinQuantity, maxQty, string(qr.DiscountType), qr.DiscountValue.String(),
		); err != nil {
			return fmt.Errorf("failed to save quantity range: %w", err)
		}
	}

	insertItem := func(kind string, itemID int64) error {
		_, err := db.ExecContext(ctx,
			"INSERT INTO rule_items (rule_id, item_kind, item_id) VALUES (?, ?, ?)",
			int64(id), kind, itemID)
		return err
	}
	for _, pid := range rule.Targeting.ProductIDs {
		if err := insertItem("product", pid); err != nil {
			return fmt.Errorf("failed to save rule item: %w", err)
		}
	}
	for _, cid := range rule.Targeting.CategoryIDs {
		if err := insertItem("category", cid); err != nil {
			return fmt.Errorf("failed to save rule item: %w", err)
		}
	}

	for _, pid := range rule.Targeting.ExcludedProductIDs {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO rule_exclusions (rule_id, product_id) VALUES (?, ?)",
			int64(id), pid,
		); err != nil {
			return fmt.Errorf("failed to save exclusion: %w", err)
		}
	}

	for _, g := range rule.GiftProducts {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO rule_gift_products (rule_id, product_id, quantity) VALUES (?, ?, ?)",
			int64(id), g.ProductID, g.Quantity,
		); err != nil {
			return fmt.Errorf("failed to save gift product: %w", err)
		}
	}
	return nil
}

// GetRule retrieves a rule with its children.
func (s *Store) GetRule(ctx context.Context, id pricing.RuleID) (*pricing.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules, err := s.queryRules(ctx, "SELECT "+ruleColumns+" FROM rules WHERE id = ?", int64(id))
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, pricing.ErrRuleNotFound
	}
	return &rules[0], nil
}

// ListRules returns all rules in priority order.
func (s *Store) ListRules(ctx context.Context) ([]pricing.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRules(ctx, "SELECT "+ruleColumns+" FROM rules ORDER BY priority ASC, id ASC")
}

// DeleteRule removes the rule row only. Child rows are left for DeleteOrphans.
func (s *Store) DeleteRule(ctx context.Context, id pricing.RuleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM rules WHERE id = ?", int64(id))
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pricing.ErrRuleNotFound
	}
	return nil
}

// GetActiveRules returns active rules of a type, priority order.
func (s *Store) GetActiveRules(ctx context.Context, ruleType pricing.RuleType) ([]pricing.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRules(ctx, `
		SELECT `+ruleColumns+` FROM rules
		WHERE rule_type = ? AND status = ?
		ORDER BY priority ASC, id ASC`,
		string(ruleType), string(pricing.StatusActive))
}

// =============================================================================
// LIFECYCLE (pricing.LifecycleStore)
// =============================================================================

// ActivateScheduled is the scheduled -> active set update.
func (s *Store) ActivateScheduled(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := now.UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `
		UPDATE rules SET status = ?, updated_at = ?
		WHERE status = ?
		  AND schedule_from IS NOT NULL AND schedule_from <= ?
		  AND (schedule_to IS NULL OR schedule_to >= ?)`,
		string(pricing.StatusActive), ts, string(pricing.StatusScheduled), ts, ts)
	if err != nil {
		return 0, fmt.Errorf("failed to activate scheduled rules: %w", err)
	}
	return res.RowsAffected()
}

// ExpireActive is the active -> expired set update.
func (s *Store) ExpireActive(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := now.UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `
		UPDATE rules SET status = ?, updated_at = ?
		WHERE status = ? AND schedule_to IS NOT NULL AND schedule_to < ?`,
		string(pricing.StatusExpired), ts, string(pricing.StatusActive), ts)
	if err != nil {
		return 0, fmt.Errorf("failed to expire active rules: %w", err)
	}
	return res.RowsAffected()
}

// DeleteOrphans removes child rows whose rule is gone.
func (s *Store) DeleteOrphans(ctx context.Context) (pricing.OrphanReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report pricing.OrphanReport

	var ruleCount int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rules").Scan(&ruleCount); err != nil {
		return report, fmt.Errorf("failed to count rules: %w", err)
	}
	report.Truncated = ruleCount == 0

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	deleted := make([]int64, len(childTables))
	for i, table := range childTables {
		query := "DELETE FROM " + table + " WHERE rule_id NOT IN (SELECT id FROM rules)"
		if report.Truncated {
			query = "DELETE FROM " + table
		}
		res, err := sqlTx.ExecContext(ctx, query)
		if err != nil {
			return report, fmt.Errorf("failed to clean %s: %w", table, err)
		}
		deleted[i], _ = res.RowsAffected()
	}

	if err := sqlTx.Commit(); err != nil {
		return report, fmt.Errorf("failed to commit cleanup: %w", err)
	}

	report.QuantityRanges = deleted[0]
	report.RuleItems = deleted[1]
	report.Exclusions = deleted[2]
	report.GiftProducts = deleted[3]
	return report, nil
}

// CountChildren reports row counts per child table.
func (s *Store) CountChildren(ctx context.Context) (pricing.ChildCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make([]int64, len(childTables))
	for i, table := range childTables {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&counts[i]); err != nil {
			return pricing.ChildCounts{}, fmt.Errorf("failed to count %s: %w", table, err)
		}
	}
	return pricing.ChildCounts{
		QuantityRanges: counts[0],
		RuleItems:      counts[1],
		Exclusions:     counts[2],
		GiftProducts:   counts[3],
	}, nil
}

// UpcomingRules returns rules starting after now, soonest first.
// A limit of zero or less returns all of them.
func (s *Store) UpcomingRules(ctx context.Context, now time.Time, limit int) ([]pricing.Rule, error) {
	if limit <= 0 {
		limit = -1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRules(ctx, `
		SELECT `+ruleColumns+` FROM rules
		WHERE schedule_from IS NOT NULL AND schedule_from > ?
		ORDER BY schedule_from ASC, id ASC
		LIMIT ?`,
		now.UTC().Format(timeLayout), limit)
}

// ExpiringRules returns active rules ending in [now, now+within], soonest first.
func (s *Store) ExpiringRules(ctx context.Context, now time.Time, within time.Duration) ([]pricing.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRules(ctx, `
		SELECT `+ruleColumns+` FROM rules
		WHERE status = ? AND schedule_to IS NOT NULL
		  AND schedule_to BETWEEN ? AND ?
		ORDER BY schedule_to ASC, id ASC`,
		string(pricing.StatusActive),
		now.UTC().Format(timeLayout), now.Add(within).UTC().Format(timeLayout))
}

// Reset deletes all rules and child rows (dev scenarios only).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range append([]string{"rules"}, childTables...) {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// QUERY HELPERS
// =============================================================================

// queryRules scans rule headers then loads children for each. Caller holds mu.
func (s *Store) queryRules(ctx context.Context, query string, args ...any) ([]pricing.Rule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	var rules []pricing.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range rules {
		if err := s.loadChildren(ctx, &rules[i]); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

func scanRule(rows *sql.Rows) (pricing.Rule, error) {
	var (
		r             pricing.Rule
		id            int64
		ruleType      string
		status        string
		scheduleFrom  sql.NullString
		scheduleTo    sql.NullString
		discountType  string
		discountValue string
		createdAt     string
		updatedAt     string
	)

	err := rows.Scan(
		&id, &r.Name, &ruleType, &status, &r.Priority, &scheduleFrom, &scheduleTo,
		&discountType, &discountValue, &r.Exclusive, &r.Condition, &createdAt, &updatedAt,
	)
	if err != nil {
		return r, fmt.Errorf("failed to scan rule: %w", err)
	}

	r.ID = pricing.RuleID(id)
	r.Type = pricing.RuleType(ruleType)
	r.Status = pricing.Status(status)
	r.ScheduleFrom = parseTime(scheduleFrom)
	r.ScheduleTo = parseTime(scheduleTo)
	r.DiscountType = pricing.DiscountType(discountType)
	r.DiscountValue = parseDecimal(discountValue)
	r.CreatedAt, _ = parseTimestamp(createdAt)
	r.UpdatedAt, _ = parseTimestamp(updatedAt)
	return r, nil
}

func (s *Store) loadChildren(ctx context.Context, r *pricing.Rule) error {
	id := int64(r.ID)

	rows, err := s.db.QueryContext(ctx, `
		SELECT min_quantity, max_quantity, discount_type, discount_value
		FROM rule_quantity_ranges WHERE rule_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return fmt.Errorf("failed to query quantity ranges: %w", err)
	}
	for rows.Next() {
		var (
			qr     pricing.QuantityRange
			maxQty sql.NullInt64
			dtype  string
			value  string
		)
		if err := rows.Scan(&qr.MinQuantity, &maxQty, &dtype, &value); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan quantity range: %w", err)
		}
		if maxQty.Valid {
			m := int(maxQty.Int64)
			qr.MaxQuantity = &m
		}
		qr.DiscountType = pricing.DiscountType(dtype)
		qr.DiscountValue = parseDecimal(value)
		r.QuantityRanges = append(r.QuantityRanges, qr)
	}
	if err := closeRows(rows); err != nil {
		return fmt.Errorf("failed to read quantity ranges: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		"SELECT item_kind, item_id FROM rule_items WHERE rule_id = ? ORDER BY id ASC", id)
	if err != nil {
		return fmt.Errorf("failed to query rule items: %w", err)
	}
	for rows.Next() {
		var kind string
		var itemID int64
		if err := rows.Scan(&kind, &itemID); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan rule item: %w", err)
		}
		if strings.EqualFold(kind, "category") {
			r.Targeting.CategoryIDs = append(r.Targeting.CategoryIDs, itemID)
		} else {
			r.Targeting.ProductIDs = append(r.Targeting.ProductIDs, itemID)
		}
	}
	if err := closeRows(rows); err != nil {
		return fmt.Errorf("failed to read rule items: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		"SELECT product_id FROM rule_exclusions WHERE rule_id = ? ORDER BY id ASC", id)
	if err != nil {
		return fmt.Errorf("failed to query exclusions: %w", err)
	}
	for rows.Next() {
		var pid int64
		if err := rows.Scan(&pid); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan exclusion: %w", err)
		}
		r.Targeting.ExcludedProductIDs = append(r.Targeting.ExcludedProductIDs, pid)
	}
	if err := closeRows(rows); err != nil {
		return fmt.Errorf("failed to read exclusions: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		"SELECT product_id, quantity FROM rule_gift_products WHERE rule_id = ? ORDER BY id ASC", id)
	if err != nil {
		return fmt.Errorf("failed to query gift products: %w", err)
	}
	for rows.Next() {
		var g pricing.GiftProduct
		if err := rows.Scan(&g.ProductID, &g.Quantity); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan gift product: %w", err)
		}
		r.GiftProducts = append(r.GiftProducts, g)
	}
	if err := closeRows(rows); err != nil {
		return fmt.Errorf("failed to read gift products: %w", err)
	}
	return nil
}

// closeRows closes rows and reports any error that ended iteration early.
func closeRows(rows *sql.Rows) error {
	err := rows.Err()
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	return err
}

// Helper functions

// timeLayout is fixed-width UTC with nanoseconds, so string comparison in SQL
// orders the same way as time comparison in Go.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := parseTimestamp(s.String)
	if err != nil {
		return nil
	}
	return &t
}

// parseTimestamp also accepts RFC3339 values written by older databases.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var _ pricing.RuleStore = (*Store)(nil)
