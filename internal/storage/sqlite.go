package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"gagyebu/internal/core"

	_ "modernc.org/sqlite"
)

// connParams turn on foreign keys and make every transaction take the write
// lock at BEGIN, so check-then-insert sequences cannot interleave.
const connParams = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"

type SQLiteRepository struct {
	db *sql.DB
}

var _ UnitOfWork = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?"+connParams)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection: units of work are serialized by the pool itself.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// WithinTx implements UnitOfWork.
func (r *SQLiteRepository) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&sqliteTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type sqliteTx struct {
	tx *sql.Tx
}

var _ Tx = (*sqliteTx)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func nullID(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullDate(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func parseNullDate(ns sql.NullString) (core.Date, error) {
	if !ns.Valid {
		return core.Date{}, nil
	}
	return core.ParseDate(ns.String)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (t *sqliteTx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

// execOne runs a statement that must touch exactly one row of entity id.
func (t *sqliteTx) execOne(ctx context.Context, entity string, id int64, query string, args ...any) error {
	res, err := t.exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s %d: %w", entity, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d rows affected: %w", entity, id, err)
	}
	if n == 0 {
		return core.NotFound(entity, id)
	}
	return nil
}

func notFoundOr(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.NotFound(entity, id)
	}
	return fmt.Errorf("get %s %d: %w", entity, id, err)
}

// Assets

const assetColumns = "id, type, name, balance, purchase_price, is_default"

func scanAsset(s scanner) (core.Asset, error) {
	var (
		a       core.Asset
		balance string
		isDef   int
	)
	if err := s.Scan(&a.ID, &a.Type, &a.Name, &balance, &a.PurchasePrice, &isDef); err != nil {
		return core.Asset{}, err
	}
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return core.Asset{}, fmt.Errorf("asset %d balance %q: %w", a.ID, balance, err)
	}
	a.Balance = b
	a.IsDefault = isDef == 1
	return a, nil
}

func (t *sqliteTx) GetAsset(ctx context.Context, id int64) (core.Asset, error) {
	row := t.tx.QueryRowContext(ctx, "SELECT "+assetColumns+" FROM assets WHERE id = ?", id)
	a, err := scanAsset(row)
	if err != nil {
		return core.Asset{}, notFoundOr(err, "asset", id)
	}
	return a, nil
}

func (t *sqliteTx) ListAssets(ctx context.Context) ([]core.Asset, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT "+assetColumns+" FROM assets ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var out []core.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (t *sqliteTx) DefaultAsset(ctx context.Context) (*core.Asset, error) {
	row := t.tx.QueryRowContext(ctx, "SELECT "+assetColumns+" FROM assets WHERE is_default = 1 LIMIT 1")
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get default asset: %w", err)
	}
	return &a, nil
}

func (t *sqliteTx) CreateAsset(ctx context.Context, a *core.Asset) error {
	res, err := t.exec(ctx,
		"INSERT INTO assets (type, name, balance, purchase_price, is_default) VALUES (?, ?, ?, ?, ?)",
		a.Type, a.Name, a.Balance.String(), a.PurchasePrice, boolInt(a.IsDefault))
	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("create asset id: %w", err)
	}
	return nil
}

func (t *sqliteTx) UpdateAsset(ctx context.Context, a core.Asset) error {
	return t.execOne(ctx, "asset", a.ID,
		"UPDATE assets SET type = ?, name = ?, balance = ?, purchase_price = ?, is_default = ? WHERE id = ?",
		a.Type, a.Name, a.Balance.String(), a.PurchasePrice, boolInt(a.IsDefault), a.ID)
}

func (t *sqliteTx) DeleteAsset(ctx context.Context, id int64) error {
	return t.execOne(ctx, "asset", id, "DELETE FROM assets WHERE id = ?", id)
}

func (t *sqliteTx) ClearDefaultAsset(ctx context.Context) error {
	if _, err := t.exec(ctx, "UPDATE assets SET is_default = 0 WHERE is_default = 1"); err != nil {
		return fmt.Errorf("clear default asset: %w", err)
	}
	return nil
}

// Categories

func (t *sqliteTx) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := t.tx.QueryRowContext(ctx, "SELECT id, name, type FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Type)
	if err != nil {
		return core.Category{}, notFoundOr(err, "category", id)
	}
	return c, nil
}

func (t *sqliteTx) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT id, name, type FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (t *sqliteTx) CreateCategory(ctx context.Context, c *core.Category) error {
	res, err := t.exec(ctx, "INSERT INTO categories (name, type) VALUES (?, ?)", c.Name, c.Type)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("create category id: %w", err)
	}
	return nil
}

func (t *sqliteTx) UpdateCategory(ctx context.Context, c core.Category) error {
	return t.execOne(ctx, "category", c.ID,
		"UPDATE categories SET name = ?, type = ? WHERE id = ?", c.Name, c.Type, c.ID)
}

func (t *sqliteTx) DeleteCategory(ctx context.Context, id int64) error {
	return t.execOne(ctx, "category", id, "DELETE FROM categories WHERE id = ?", id)
}

func (t *sqliteTx) CategoryInUse(ctx context.Context, id int64) (bool, error) {
	var inUse bool
	err := t.tx.QueryRowContext(ctx, `SELECT
		EXISTS (SELECT 1 FROM entries WHERE category_id = ?) OR
		EXISTS (SELECT 1 FROM recurring_templates WHERE category_id = ?) OR
		EXISTS (SELECT 1 FROM budgets WHERE category_id = ?)`, id, id, id).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("check category %d usage: %w", id, err)
	}
	return inUse, nil
}

// Cards

func (t *sqliteTx) GetCard(ctx context.Context, id int64) (core.Card, error) {
	var c core.Card
	err := t.tx.QueryRowContext(ctx, "SELECT id, name, type FROM cards WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Type)
	if err != nil {
		return core.Card{}, notFoundOr(err, "card", id)
	}
	return c, nil
}

func (t *sqliteTx) ListCards(ctx context.Context) ([]core.Card, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT id, name, type FROM cards ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var out []core.Card
	for rows.Next() {
		var c core.Card
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (t *sqliteTx) CreateCard(ctx context.Context, c *core.Card) error {
	res, err := t.exec(ctx, "INSERT INTO cards (name, type) VALUES (?, ?)", c.Name, c.Type)
	if err != nil {
		return fmt.Errorf("create card: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("create card id: %w", err)
	}
	return nil
}

func (t *sqliteTx) DeleteCard(ctx context.Context, id int64) error {
	if _, err := t.exec(ctx, "UPDATE entries SET card_id = NULL WHERE card_id = ?", id); err != nil {
		return fmt.Errorf("unlink card %d from entries: %w", id, err)
	}
	if _, err := t.exec(ctx, "UPDATE recurring_templates SET card_id = NULL WHERE card_id = ?", id); err != nil {
		return fmt.Errorf("unlink card %d from templates: %w", id, err)
	}
	return t.execOne(ctx, "card", id, "DELETE FROM cards WHERE id = ?", id)
}

// Entries

const entryColumns = "id, date, amount, memo, payment_method, category_id, card_id, source_asset_id, dest_asset_id, recurring_template_id, is_confirmed"

func scanEntry(s scanner) (core.Entry, error) {
	var (
		e                    core.Entry
		date, amount         string
		card, src, dst, tmpl sql.NullInt64
		confirmed            int
	)
	if err := s.Scan(&e.ID, &date, &amount, &e.Memo, &e.PaymentMethod, &e.CategoryID,
		&card, &src, &dst, &tmpl, &confirmed); err != nil {
		return core.Entry{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Entry{}, fmt.Errorf("entry %d: %w", e.ID, err)
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Entry{}, fmt.Errorf("entry %d amount %q: %w", e.ID, amount, err)
	}
	e.Date = d
	e.Amount = amt
	e.CardID = idPtr(card)
	e.SourceAssetID = idPtr(src)
	e.DestAssetID = idPtr(dst)
	e.RecurringTemplateID = idPtr(tmpl)
	e.IsConfirmed = confirmed == 1
	return e, nil
}

func (t *sqliteTx) GetEntry(ctx context.Context, id int64) (core.Entry, error) {
	row := t.tx.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM entries WHERE id = ?", id)
	e, err := scanEntry(row)
	if err != nil {
		return core.Entry{}, notFoundOr(err, "entry", id)
	}
	return e, nil
}

func (t *sqliteTx) ListEntries(ctx context.Context, f EntryFilter) ([]core.Entry, error) {
	var (
		where []string
		args  []any
	)
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.To.String())
	}
	if !f.After.IsZero() {
		where = append(where, "date > ?")
		args = append(args, f.After.String())
	}
	if f.CardID != nil {
		where = append(where, "card_id = ?")
		args = append(args, *f.CardID)
	}
	if f.PaymentMethod != "" {
		where = append(where, "payment_method = ?")
		args = append(args, f.PaymentMethod)
	}
	if f.TemplateID != nil {
		where = append(where, "recurring_template_id = ?")
		args = append(args, *f.TemplateID)
	}
	if f.Confirmed != nil {
		where = append(where, "is_confirmed = ?")
		args = append(args, boolInt(*f.Confirmed))
	}

	query := "SELECT " + entryColumns + " FROM entries"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, id"

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []core.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (t *sqliteTx) CreateEntry(ctx context.Context, e *core.Entry) error {
	res, err := t.exec(ctx, `INSERT INTO entries
		(date, amount, memo, payment_method, category_id, card_id, source_asset_id, dest_asset_id, recurring_template_id, is_confirmed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Date.String(), e.Amount.String(), e.Memo, e.PaymentMethod, e.CategoryID,
		nullID(e.CardID), nullID(e.SourceAssetID), nullID(e.DestAssetID), nullID(e.RecurringTemplateID),
		boolInt(e.IsConfirmed))
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("create entry id: %w", err)
	}
	slog.DebugContext(ctx, "Entry saved to SQLite", "id", e.ID, "date", e.Date.String(), "amount", e.Amount.String())
	return nil
}

func (t *sqliteTx) UpdateEntry(ctx context.Context, e core.Entry) error {
	return t.execOne(ctx, "entry", e.ID, `UPDATE entries SET
		date = ?, amount = ?, memo = ?, payment_method = ?, category_id = ?, card_id = ?,
		source_asset_id = ?, dest_asset_id = ?, recurring_template_id = ?, is_confirmed = ?
		WHERE id = ?`,
		e.Date.String(), e.Amount.String(), e.Memo, e.PaymentMethod, e.CategoryID, nullID(e.CardID),
		nullID(e.SourceAssetID), nullID(e.DestAssetID), nullID(e.RecurringTemplateID), boolInt(e.IsConfirmed),
		e.ID)
}

func (t *sqliteTx) DeleteEntry(ctx context.Context, id int64) error {
	return t.execOne(ctx, "entry", id, "DELETE FROM entries WHERE id = ?", id)
}

func (t *sqliteTx) ExistsEntryForTemplate(ctx context.Context, templateID int64, from, to core.Date) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM entries WHERE recurring_template_id = ? AND date BETWEEN ? AND ?)",
		templateID, from.String(), to.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check entries of template %d: %w", templateID, err)
	}
	return exists, nil
}

func (t *sqliteTx) ClearAssetReferences(ctx context.Context, assetID int64) error {
	if _, err := t.exec(ctx, "UPDATE entries SET source_asset_id = NULL WHERE source_asset_id = ?", assetID); err != nil {
		return fmt.Errorf("clear source asset %d: %w", assetID, err)
	}
	if _, err := t.exec(ctx, "UPDATE entries SET dest_asset_id = NULL WHERE dest_asset_id = ?", assetID); err != nil {
		return fmt.Errorf("clear destination asset %d: %w", assetID, err)
	}
	return nil
}

// Recurring templates

const templateColumns = "id, name, amount, day_of_month, payment_method, card_id, category_id, source_asset_id, dest_asset_id, start_date, end_date"

func scanTemplate(s scanner) (core.RecurringTemplate, error) {
	var (
		rt             core.RecurringTemplate
		amount         string
		card, src, dst sql.NullInt64
		start, end     sql.NullString
	)
	if err := s.Scan(&rt.ID, &rt.Name, &amount, &rt.DayOfMonth, &rt.PaymentMethod, &card,
		&rt.CategoryID, &src, &dst, &start, &end); err != nil {
		return core.RecurringTemplate{}, err
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("template %d amount %q: %w", rt.ID, amount, err)
	}
	if rt.StartDate, err = parseNullDate(start); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("template %d: %w", rt.ID, err)
	}
	if rt.EndDate, err = parseNullDate(end); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("template %d: %w", rt.ID, err)
	}
	rt.Amount = amt
	rt.CardID = idPtr(card)
	rt.SourceAssetID = idPtr(src)
	rt.DestAssetID = idPtr(dst)
	return rt, nil
}

func (t *sqliteTx) GetTemplate(ctx context.Context, id int64) (core.RecurringTemplate, error) {
	row := t.tx.QueryRowContext(ctx, "SELECT "+templateColumns+" FROM recurring_templates WHERE id = ?", id)
	rt, err := scanTemplate(row)
	if err != nil {
		return core.RecurringTemplate{}, notFoundOr(err, "recurring template", id)
	}
	return rt, nil
}

func (t *sqliteTx) ListTemplates(ctx context.Context) ([]core.RecurringTemplate, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT "+templateColumns+" FROM recurring_templates ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTemplate
	for rows.Next() {
		rt, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (t *sqliteTx) CreateTemplate(ctx context.Context, rt *core.RecurringTemplate) error {
	res, err := t.exec(ctx, `INSERT INTO recurring_templates
		(name, amount, day_of_month, payment_method, card_id, category_id, source_asset_id, dest_asset_id, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.Name, rt.Amount.String(), rt.DayOfMonth, rt.PaymentMethod, nullID(rt.CardID), rt.CategoryID,
		nullID(rt.SourceAssetID), nullID(rt.DestAssetID), nullDate(rt.StartDate), nullDate(rt.EndDate))
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	if rt.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("create template id: %w", err)
	}
	return nil
}

func (t *sqliteTx) UpdateTemplate(ctx context.Context, rt core.RecurringTemplate) error {
	return t.execOne(ctx, "recurring template", rt.ID, `UPDATE recurring_templates SET
		name = ?, amount = ?, day_of_month = ?, payment_method = ?, card_id = ?, category_id = ?,
		source_asset_id = ?, dest_asset_id = ?, start_date = ?, end_date = ?
		WHERE id = ?`,
		rt.Name, rt.Amount.String(), rt.DayOfMonth, rt.PaymentMethod, nullID(rt.CardID), rt.CategoryID,
		nullID(rt.SourceAssetID), nullID(rt.DestAssetID), nullDate(rt.StartDate), nullDate(rt.EndDate),
		rt.ID)
}

func (t *sqliteTx) DeleteTemplate(ctx context.Context, id int64) error {
	if _, err := t.exec(ctx, "UPDATE entries SET recurring_template_id = NULL WHERE recurring_template_id = ?", id); err != nil {
		return fmt.Errorf("unlink template %d from entries: %w", id, err)
	}
	return t.execOne(ctx, "recurring template", id, "DELETE FROM recurring_templates WHERE id = ?", id)
}

// Budgets

const budgetColumns = "id, year, month, category_id, amount"

func scanBudget(s scanner) (core.Budget, error) {
	var (
		b      core.Budget
		amount string
	)
	if err := s.Scan(&b.ID, &b.Year, &b.Month, &b.CategoryID, &amount); err != nil {
		return core.Budget{}, err
	}
	var err error
	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Budget{}, fmt.Errorf("budget %d amount %q: %w", b.ID, amount, err)
	}
	return b, nil
}

func (t *sqliteTx) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	b, err := scanBudget(t.tx.QueryRowContext(ctx, "SELECT "+budgetColumns+" FROM budgets WHERE id = ?", id))
	if err != nil {
		return core.Budget{}, notFoundOr(err, "budget", id)
	}
	return b, nil
}

func (t *sqliteTx) FindBudget(ctx context.Context, year, month int, categoryID int64) (*core.Budget, error) {
	b, err := scanBudget(t.tx.QueryRowContext(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE year = ? AND month = ? AND category_id = ?",
		year, month, categoryID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find budget %04d-%02d category %d: %w", year, month, categoryID, err)
	}
	return &b, nil
}

func (t *sqliteTx) ListBudgets(ctx context.Context, from, to int) ([]core.Budget, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT "+budgetColumns+` FROM budgets
		WHERE year * 12 + month - 1 BETWEEN ? AND ?
		ORDER BY year, month, category_id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (t *sqliteTx) CreateBudget(ctx context.Context, b *core.Budget) error {
	res, err := t.exec(ctx, "INSERT INTO budgets (year, month, category_id, amount) VALUES (?, ?, ?, ?)",
		b.Year, b.Month, b.CategoryID, b.Amount.String())
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	if b.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("create budget id: %w", err)
	}
	return nil
}

func (t *sqliteTx) UpdateBudget(ctx context.Context, b core.Budget) error {
	return t.execOne(ctx, "budget", b.ID,
		"UPDATE budgets SET year = ?, month = ?, category_id = ?, amount = ? WHERE id = ?",
		b.Year, b.Month, b.CategoryID, b.Amount.String(), b.ID)
}

func (t *sqliteTx) DeleteBudget(ctx context.Context, id int64) error {
	return t.execOne(ctx, "budget", id, "DELETE FROM budgets WHERE id = ?", id)
}
