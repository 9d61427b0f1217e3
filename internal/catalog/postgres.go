// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// Postgres driver for database/sql
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nmarchetti/vetrina/internal/config"
	"github.com/nmarchetti/vetrina/internal/metrics"
)

// productColumns is the SELECT list shared by all product queries.
// Arrays come back as comma-joined strings so scanning stays on plain
// database/sql types.
const productColumns = `id, name, category_id, price, currency,
	array_to_string(images, ','), array_to_string(tags, ','),
	views_count, sales_count, rating, status, created_at`

const (
	getProductQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`
	getCategoryQuery = `
		SELECT id, name, status
		FROM categories
		WHERE id = $1
	`
	listActiveByCategoryQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE category_id = $1 AND status = 'active'
		ORDER BY sales_count DESC, rating DESC
		LIMIT $2
	`
	listPopularQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE status = 'active'
		ORDER BY sales_count DESC, rating DESC
		LIMIT $1
	`
	listRecentQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE status = 'active'
		ORDER BY created_at DESC
		LIMIT $1
	`
	listByIDsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY(string_to_array($1, ','))
	`
	getCartProductIDsQuery = `
		SELECT product_id
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at DESC
	`
	getCompletedOrderIDsQuery = `
		SELECT id
		FROM orders
		WHERE user_id = $1 AND status = 'completed'
		ORDER BY created_at DESC
	`
	getOrderProductIDsQuery = `
		SELECT DISTINCT product_id
		FROM order_items
		WHERE order_id = ANY(string_to_array($1, ','))
	`
	listCoPurchasedQuery = `
		SELECT oi2.product_id, COUNT(*) AS freq
		FROM order_items oi1
		JOIN order_items oi2 ON oi1.order_id = oi2.order_id
		WHERE oi1.product_id = ANY(string_to_array($1, ','))
		  AND NOT (oi2.product_id = ANY(string_to_array($1, ',')))
		GROUP BY oi2.product_id
		ORDER BY freq DESC, oi2.product_id
		LIMIT $2
	`
)

// Postgres implements Store against the storefront's Postgres schema.
type Postgres struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgres creates a Postgres store over an existing connection pool.
// queryTimeout bounds every query issued by the store.
func NewPostgres(db *sql.DB, queryTimeout time.Duration) *Postgres {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &Postgres{db: db, timeout: queryTimeout}
}

// OpenDB opens a Postgres connection pool with the configured limits and
// verifies connectivity.
func OpenDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// GetProduct returns a single product by ID.
func (s *Postgres) GetProduct(ctx context.Context, id string) (*Product, error) {
	start := time.Now()
	p, err := s.getProduct(ctx, id)
	observeQuery("get_product", start, err)
	return p, err
}

func (s *Postgres) getProduct(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, getProductQuery, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

// GetCategory returns a single category by ID.
func (s *Postgres) GetCategory(ctx context.Context, id string) (*Category, error) {
	start := time.Now()
	c, err := s.getCategory(ctx, id)
	observeQuery("get_category", start, err)
	return c, err
}

func (s *Postgres) getCategory(ctx context.Context, id string) (*Category, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var c Category
	err := s.db.QueryRowContext(ctx, getCategoryQuery, id).Scan(&c.ID, &c.Name, &c.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}
	return &c, nil
}

// ListActiveByCategory returns active products in a category ordered by
// sales then rating.
func (s *Postgres) ListActiveByCategory(ctx context.Context, categoryID string, limit int) ([]Product, error) {
	return s.listProducts(ctx, "list_active_by_category", listActiveByCategoryQuery, categoryID, limit)
}

// ListPopular returns active products ordered by sales count.
func (s *Postgres) ListPopular(ctx context.Context, limit int) ([]Product, error) {
	return s.listProducts(ctx, "list_popular", listPopularQuery, limit)
}

// ListRecent returns active products ordered by creation time.
func (s *Postgres) ListRecent(ctx context.Context, limit int) ([]Product, error) {
	return s.listProducts(ctx, "list_recent", listRecentQuery, limit)
}

// ListByIDs returns the products for the given IDs.
func (s *Postgres) ListByIDs(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return s.listProducts(ctx, "list_by_ids", listByIDsQuery, strings.Join(ids, ","))
}

// GetCartProductIDs returns the product IDs currently in a user's cart.
func (s *Postgres) GetCartProductIDs(ctx context.Context, userID string) ([]string, error) {
	return s.listIDs(ctx, "get_cart_product_ids", getCartProductIDsQuery, userID)
}

// GetCompletedOrderIDs returns the IDs of a user's completed orders.
func (s *Postgres) GetCompletedOrderIDs(ctx context.Context, userID string) ([]string, error) {
	return s.listIDs(ctx, "get_completed_order_ids", getCompletedOrderIDsQuery, userID)
}

// GetOrderProductIDs returns the distinct product IDs across the given orders.
func (s *Postgres) GetOrderProductIDs(ctx context.Context, orderIDs []string) ([]string, error) {
	if len(orderIDs) == 0 {
		return []string{}, nil
	}
	return s.listIDs(ctx, "get_order_product_ids", getOrderProductIDsQuery, strings.Join(orderIDs, ","))
}

// ListCoPurchased returns co-occurrence counts for products bought together
// with the seed products.
func (s *Postgres) ListCoPurchased(ctx context.Context, productIDs []string, limit int) ([]CoPurchase, error) {
	if len(productIDs) == 0 {
		return []CoPurchase{}, nil
	}

	start := time.Now()
	out, err := s.listCoPurchased(ctx, productIDs, limit)
	observeQuery("list_co_purchased", start, err)
	return out, err
}

func (s *Postgres) listCoPurchased(ctx context.Context, productIDs []string, limit int) ([]CoPurchase, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, listCoPurchasedQuery, strings.Join(productIDs, ","), limit)
	if err != nil {
		return nil, fmt.Errorf("list co-purchased: %w", err)
	}
	defer rows.Close()

	out := make([]CoPurchase, 0, limit)
	for rows.Next() {
		var cp CoPurchase
		if err := rows.Scan(&cp.ProductID, &cp.Count); err != nil {
			return nil, fmt.Errorf("scan co-purchase: %w", err)
		}
		out = append(out, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate co-purchases: %w", err)
	}
	return out, nil
}

// listProducts runs a product query under the given metric operation name
// and scans all rows.
func (s *Postgres) listProducts(ctx context.Context, op, query string, args ...interface{}) ([]Product, error) {
	start := time.Now()
	out, err := s.scanProducts(ctx, query, args...)
	observeQuery(op, start, err)
	return out, err
}

func (s *Postgres) scanProducts(ctx context.Context, query string, args ...interface{}) ([]Product, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

// listIDs runs a single-column string query under the given metric operation
// name and scans all rows.
func (s *Postgres) listIDs(ctx context.Context, op, query string, args ...interface{}) ([]string, error) {
	start := time.Now()
	out, err := s.scanIDs(ctx, query, args...)
	observeQuery(op, start, err)
	return out, err
}

func (s *Postgres) scanIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return out, nil
}

func (s *Postgres) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// observeQuery records the duration and error outcome of one store query.
// A missing row is a valid answer, not a query error.
func observeQuery(op string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordCatalogQuery(op, time.Since(start), err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanProduct scans one product row from the shared productColumns SELECT list.
func scanProduct(scanner rowScanner) (Product, error) {
	var (
		p      Product
		images sql.NullString
		tags   sql.NullString
	)

	if err := scanner.Scan(
		&p.ID,
		&p.Name,
		&p.CategoryID,
		&p.Price,
		&p.Currency,
		&images,
		&tags,
		&p.ViewsCount,
		&p.SalesCount,
		&p.Rating,
		&p.Status,
		&p.CreatedAt,
	); err != nil {
		return Product{}, err
	}

	p.Images = splitList(images)
	p.Tags = splitList(tags)
	return p, nil
}

// splitList converts a comma-joined array_to_string result back to a slice.
func splitList(v sql.NullString) []string {
	if !v.Valid || v.String == "" {
		return nil
	}
	return strings.Split(v.String, ",")
}
