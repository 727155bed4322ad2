package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the Postgres-backed order store. Ids come from the table's
// sequence, which is what the external "M-xxx" code is rendered from.
type PGStore struct{ DB *pgxpool.Pool }

const orderCols = `id, product_name, product_code, quantity, order_date, due_date, status,
	project_name, project_code, order_name, project_phase, project_consultant, project_location`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.ID, &o.ProductName, &o.ProductCode, &o.Quantity, &o.OrderDate, &o.DueDate, &status,
		&o.ProjectName, &o.ProjectCode, &o.OrderName, &o.ProjectPhase, &o.ProjectConsultant, &o.ProjectLocation)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	o.Status = Status(status)
	return o, err
}

func (s *PGStore) Create(ctx context.Context, o Order) (Order, error) {
	row := s.DB.QueryRow(ctx, `
		INSERT INTO orders(product_name, product_code, quantity, order_date, due_date, status,
			project_name, project_code, order_name, project_phase, project_consultant, project_location)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING `+orderCols,
		o.ProductName, o.ProductCode, o.Quantity, o.OrderDate, o.DueDate, string(o.Status),
		o.ProjectName, o.ProjectCode, o.OrderName, o.ProjectPhase, o.ProjectConsultant, o.ProjectLocation)
	return scanOrder(row)
}

func (s *PGStore) Get(ctx context.Context, id int64) (Order, error) {
	return scanOrder(s.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
}

func (s *PGStore) List(ctx context.Context) ([]Order, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+orderCols+` FROM orders ORDER BY order_date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var status string
		if err := rows.Scan(&o.ID, &o.ProductName, &o.ProductCode, &o.Quantity, &o.OrderDate, &o.DueDate, &status,
			&o.ProjectName, &o.ProjectCode, &o.OrderName, &o.ProjectPhase, &o.ProjectConsultant, &o.ProjectLocation); err != nil {
			return nil, err
		}
		o.Status = Status(status)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, o Order) (Order, error) {
	row := s.DB.QueryRow(ctx, `
		UPDATE orders
		SET product_name=$2, product_code=$3, quantity=$4, due_date=$5,
			project_name=$6, project_code=$7, order_name=$8, project_phase=$9,
			project_consultant=$10, project_location=$11
		WHERE id=$1
		RETURNING `+orderCols,
		o.ID, o.ProductName, o.ProductCode, o.Quantity, o.DueDate,
		o.ProjectName, o.ProjectCode, o.OrderName, o.ProjectPhase,
		o.ProjectConsultant, o.ProjectLocation)
	return scanOrder(row)
}

func (s *PGStore) SetStatus(ctx context.Context, id int64, status Status) (Order, error) {
	row := s.DB.QueryRow(ctx,
		`UPDATE orders SET status=$2 WHERE id=$1 RETURNING `+orderCols, id, string(status))
	return scanOrder(row)
}

func (s *PGStore) Delete(ctx context.Context, id int64) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
