package postgres

import (
	"context"
	"errors"
	"fmt"

	"ride-share/internal/domain/payment"
	"ride-share/internal/ports"

	"github.com/jackc/pgx/v5"
)

// PaymentRepo persists payment rows using pgx and plain SQL.
type PaymentRepo struct{}

// NewPaymentRepo constructs a new PaymentRepo.
func NewPaymentRepo() ports.PaymentRepository {
	return &PaymentRepo{}
}

const paymentColumns = `
	id, created_at, updated_at, ride_id, rider_id, driver_id, amount, method, status`

func scanPayment(row rowScanner) (*payment.Payment, error) {
	var out payment.Payment
	var method, status string

	err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.RideID, &out.RiderID, &out.DriverID,
		&out.Amount, &method, &status,
	)
	if err != nil {
		return nil, err
	}

	out.Method = payment.Method(method)
	out.Status = payment.Status(status)
	return &out, nil
}

// Create inserts a payment row, typically on the completed transition.
func (repo *PaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	return tx.QueryRow(ctx, `
		INSERT INTO payments (ride_id, rider_id, driver_id, amount, method, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`,
		p.RideID, p.RiderID, p.DriverID, p.Amount, p.Method.String(), p.Status.String(),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByRide fetches the payment row for a ride. Returns (nil, nil) when absent.
func (repo *PaymentRepo) GetByRide(ctx context.Context, rideID int64) (*payment.Payment, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	p, err := scanPayment(tx.QueryRow(ctx, `SELECT`+paymentColumns+` FROM payments WHERE ride_id = $1`, rideID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ListCompletedByDriver returns completed payments for earnings totals.
func (repo *PaymentRepo) ListCompletedByDriver(ctx context.Context, driverID int64) ([]*payment.Payment, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT`+paymentColumns+`
		FROM payments
		WHERE driver_id = $1
		  AND status = 'completed'
		ORDER BY created_at DESC
	`, driverID)
	if err != nil {
		return nil, fmt.Errorf("query payments by driver: %w", err)
	}
	defer rows.Close()

	var out []*payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

// UpdateStatus corrects a payment's settlement status.
func (repo *PaymentRepo) UpdateStatus(ctx context.Context, id int64, status payment.Status) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE payments
		SET status = $1, updated_at = now()
		WHERE id = $2
	`, status.String(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("payment not found")
	}
	return nil
}
