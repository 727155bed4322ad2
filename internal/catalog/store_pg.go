package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the Postgres-backed catalog.
type PGStore struct{ DB *pgxpool.Pool }

const productCols = `id, name, code, quantity, stock, supplier, image, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Quantity, &p.Stock, &p.Supplier, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PGStore) Create(ctx context.Context, np NewProduct) (Product, error) {
	// stock = quantity, exactly once, at creation
	row := s.DB.QueryRow(ctx, `
		INSERT INTO products(name, code, quantity, stock, supplier, image)
		VALUES ($1, $2, $3, $3, $4, $5)
		RETURNING `+productCols,
		np.Name, np.Code, np.Quantity, np.Supplier, np.Image)
	p, err := scanProduct(row)
	if isUniqueViolation(err) {
		return Product{}, ErrDuplicateCode
	}
	return p, err
}

func (s *PGStore) GetByID(ctx context.Context, id int64) (Product, error) {
	return scanProduct(s.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
}

func (s *PGStore) FindByNameAndCode(ctx context.Context, name, code string) (Product, error) {
	return scanProduct(s.DB.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE name=$1 AND code=$2`, name, code))
}

func (s *PGStore) List(ctx context.Context) ([]Product, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (s *PGStore) Search(ctx context.Context, field SearchField, term string) ([]Product, error) {
	col := "name"
	if field == SearchByCode {
		col = "code"
	}
	rows, err := s.DB.Query(ctx, `SELECT `+productCols+` FROM products
		WHERE `+col+` ILIKE '%' || $1 || '%' ORDER BY code LIMIT $2`, term, SearchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// ReserveStock locks the row, checks availability and decrements in one tx.
func (s *PGStore) ReserveStock(ctx context.Context, code string, qty int) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var stock int
	err = tx.QueryRow(ctx, `SELECT stock FROM products WHERE code=$1 FOR UPDATE`, code).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if stock < qty {
		return &InsufficientStockError{Available: stock}
	}
	if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE code=$1`, code, qty); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PGStore) Update(ctx context.Context, id int64, upd ProductUpdate) (Product, error) {
	row := s.DB.QueryRow(ctx, `
		UPDATE products
		SET name=$2, code=$3, quantity=$4, supplier=$5, image=$6, updated_at=now()
		WHERE id=$1
		RETURNING `+productCols,
		id, upd.Name, upd.Code, upd.Quantity, upd.Supplier, upd.Image)
	p, err := scanProduct(row)
	if isUniqueViolation(err) {
		return Product{}, ErrDuplicateCode
	}
	return p, err
}

func (s *PGStore) Delete(ctx context.Context, id int64) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.Quantity, &p.Stock, &p.Supplier, &p.Image, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
