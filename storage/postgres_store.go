package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"catalog-reconciler/models"
)

// PostgresStore persists canonical records to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id             SERIAL PRIMARY KEY,
			brand          VARCHAR(100) NOT NULL DEFAULT '',
			product_id     TEXT         NOT NULL,
			name           TEXT         NOT NULL,
			url            TEXT         UNIQUE NOT NULL,
			category       VARCHAR(100) NOT NULL DEFAULT '',
			gender         VARCHAR(20)  NOT NULL DEFAULT '',
			price          NUMERIC(10,2),
			sale_price     NUMERIC(10,2),
			currency       VARCHAR(10)  NOT NULL DEFAULT 'USD',
			description    TEXT         NOT NULL DEFAULT '',
			colors         JSONB        NOT NULL DEFAULT '[]',
			sizes          JSONB        NOT NULL DEFAULT '[]',
			fabrics        JSONB        NOT NULL DEFAULT '[]',
			images         JSONB        NOT NULL DEFAULT '[]',
			is_best_seller BOOLEAN      NOT NULL DEFAULT FALSE,
			availability   VARCHAR(50)  NOT NULL DEFAULT 'Unknown',
			scraped_at     TIMESTAMPTZ,
			created_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_products_brand    ON products(brand);
		CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
		CREATE INDEX IF NOT EXISTS idx_products_gender   ON products(gender);
		CREATE INDEX IF NOT EXISTS idx_products_price    ON products(price);
	`)
	return err
}

// InsertBatch inserts each record individually so one rejection never takes
// the rest of the batch down with it. The results slice is ordered like the
// input.
func (ps *PostgresStore) InsertBatch(records []models.Record) ([]InsertResult, error) {
	results := make([]InsertResult, len(records))
	for i, rec := range records {
		results[i] = ps.insertOne(rec)
	}
	return results, nil
}

func (ps *PostgresStore) insertOne(rec models.Record) InsertResult {
	colors, err := json.Marshal(rec.Strings("colors"))
	if err != nil {
		return InsertResult{Rejection: RejectionOther, Err: fmt.Errorf("postgres: marshal colors: %w", err)}
	}
	sizes, _ := json.Marshal(rec.Strings("sizes"))
	fabrics, _ := json.Marshal(rec.Strings("fabrics"))
	images, _ := json.Marshal(rec.Strings("images"))

	var id int64
	err = ps.db.QueryRow(`
		INSERT INTO products (
			brand, product_id, name, url, category, gender,
			price, sale_price, currency, description,
			colors, sizes, fabrics, images,
			is_best_seller, availability, scraped_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING id
	`,
		rec.String("brand"),
		rec.String("product_id"),
		rec.String("name"),
		rec.String("url"),
		rec.String("category"),
		rec.String("gender"),
		nullableFloat(rec, "price"),
		nullableFloat(rec, "sale_price"),
		rec.String("currency"),
		rec.String("description"),
		colors, sizes, fabrics, images,
		rec["is_best_seller"] == true,
		rec.String("availability"),
		nullableTime(rec.String("scraped_at")),
	).Scan(&id)

	if err != nil {
		return InsertResult{Rejection: classifyRejection(err), Err: err}
	}
	return InsertResult{ID: id}
}

// classifyRejection maps Postgres errors onto the store's rejection
// taxonomy: unique-constraint violations are duplicates, null-constraint
// violations are missing required fields, the rest is unexpected.
func classifyRejection(err error) Rejection {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return RejectionDuplicate
		case "23502": // not_null_violation
			return RejectionMissingField
		}
	}
	return RejectionOther
}

// Count returns the number of records currently stored.
func (ps *PostgresStore) Count() (int, error) {
	var n int
	if err := ps.db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count: %w", err)
	}
	return n, nil
}

// FetchAll retrieves all stored products — used by the stats report.
func (ps *PostgresStore) FetchAll() ([]models.Record, error) {
	rows, err := ps.db.Query(`
		SELECT brand, product_id, name, url, category, gender,
		       price, sale_price, currency,
		       colors, sizes, fabrics, images,
		       is_best_seller, availability
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var (
			brand, productID, name, url, category, gender string
			currency, availability                        string
			price, salePrice                              sql.NullFloat64
			colors, sizes, fabrics, images                []byte
			isBestSeller                                  bool
		)
		if err := rows.Scan(
			&brand, &productID, &name, &url, &category, &gender,
			&price, &salePrice, &currency,
			&colors, &sizes, &fabrics, &images,
			&isBestSeller, &availability,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		rec := models.Record{
			"brand":          brand,
			"product_id":     productID,
			"name":           name,
			"url":            url,
			"category":       category,
			"gender":         gender,
			"currency":       currency,
			"is_best_seller": isBestSeller,
			"availability":   availability,
			"colors":         decodeList(colors),
			"sizes":          decodeList(sizes),
			"fabrics":        decodeList(fabrics),
			"images":         decodeList(images),
		}
		if price.Valid {
			rec["price"] = price.Float64
		}
		if salePrice.Valid {
			rec["sale_price"] = salePrice.Float64
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteByBrand deletes all products for a brand; an empty brand deletes
// everything. Returns the number of rows removed.
func (ps *PostgresStore) DeleteByBrand(brand string) (int, error) {
	var (
		res sql.Result
		err error
	)
	if brand == "" {
		res, err = ps.db.Exec(`DELETE FROM products`)
	} else {
		res, err = ps.db.Exec(`DELETE FROM products WHERE brand = $1`, brand)
	}
	if err != nil {
		return 0, fmt.Errorf("postgres: delete brand %q: %w", brand, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

func nullableFloat(rec models.Record, key string) any {
	if v, ok := rec.Float(key); ok {
		return v
	}
	return nil
}

func nullableTime(s string) any {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return nil
}

func decodeList(raw []byte) []any {
	var out []any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []any{}
	}
	return out
}
