package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"kaupod/internal/domain/orders"
	"kaupod/internal/domain/status"
)

type KitOrdersRepo struct {
	db *sql.DB
}

func NewKitOrdersRepo(db *sql.DB) *KitOrdersRepo {
	return &KitOrdersRepo{db: db}
}

func (r *KitOrdersRepo) Create(ctx context.Context, o orders.KitOrder) error {
	history, err := json.Marshal(o.History)
	if err != nil {
		return err
	}
	details, err := marshalReturnDetails(o.ReturnDetails)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO kit_orders (
			id, user_id,
			kit_variant, quantity,
			phone, delivery_address, latitude, longitude, address_label,
			payment_method, payment_ref,
			status, history, return_details,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		o.ID,
		o.UserID,
		string(o.KitVariant),
		o.Quantity,
		o.Phone,
		o.DeliveryAddress,
		toNullFloat(o.Latitude),
		toNullFloat(o.Longitude),
		o.AddressLabel,
		string(o.PaymentMethod),
		o.PaymentRef,
		string(o.Status),
		history,
		details,
		o.CreatedAt,
		o.UpdatedAt,
	)
	return err
}

func (r *KitOrdersRepo) Update(ctx context.Context, o orders.KitOrder) error {
	history, err := json.Marshal(o.History)
	if err != nil {
		return err
	}
	details, err := marshalReturnDetails(o.ReturnDetails)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE kit_orders
		SET
			kit_variant = $2,
			quantity = $3,
			phone = $4,
			delivery_address = $5,
			latitude = $6,
			longitude = $7,
			address_label = $8,
			payment_method = $9,
			payment_ref = $10,
			status = $11,
			history = $12,
			return_details = $13,
			updated_at = $14
		WHERE id = $1
	`,
		o.ID,
		string(o.KitVariant),
		o.Quantity,
		o.Phone,
		o.DeliveryAddress,
		toNullFloat(o.Latitude),
		toNullFloat(o.Longitude),
		o.AddressLabel,
		string(o.PaymentMethod),
		o.PaymentRef,
		string(o.Status),
		history,
		details,
		o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *KitOrdersRepo) GetByID(ctx context.Context, id string) (orders.KitOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return orders.KitOrder{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, user_id,
			kit_variant, quantity,
			phone, delivery_address, latitude, longitude, address_label,
			payment_method, payment_ref,
			status, history, return_details,
			created_at, updated_at
		FROM kit_orders
		WHERE id = $1
	`, id)

	o, err := scanKitOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return orders.KitOrder{}, ErrNotFound
		}
		return orders.KitOrder{}, err
	}
	return o, nil
}

func (r *KitOrdersRepo) ListByUser(ctx context.Context, userID string) ([]orders.KitOrder, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, user_id,
			kit_variant, quantity,
			phone, delivery_address, latitude, longitude, address_label,
			payment_method, payment_ref,
			status, history, return_details,
			created_at, updated_at
		FROM kit_orders
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectKitOrders(rows)
}

func (r *KitOrdersRepo) ListAll(ctx context.Context) ([]orders.KitOrder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, user_id,
			kit_variant, quantity,
			phone, delivery_address, latitude, longitude, address_label,
			payment_method, payment_ref,
			status, history, return_details,
			created_at, updated_at
		FROM kit_orders
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectKitOrders(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKitOrder(row rowScanner) (orders.KitOrder, error) {
	var o orders.KitOrder
	var variant, payment, st string
	var lat, lon sql.NullFloat64
	var history, details []byte

	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&variant,
		&o.Quantity,
		&o.Phone,
		&o.DeliveryAddress,
		&lat,
		&lon,
		&o.AddressLabel,
		&payment,
		&o.PaymentRef,
		&st,
		&history,
		&details,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return orders.KitOrder{}, err
	}

	o.KitVariant = orders.KitVariant(variant)
	o.PaymentMethod = orders.PaymentMethod(payment)
	o.Status = status.Code(st)

	if lat.Valid {
		v := lat.Float64
		o.Latitude = &v
	}
	if lon.Valid {
		v := lon.Float64
		o.Longitude = &v
	}

	if len(history) > 0 {
		if err := json.Unmarshal(history, &o.History); err != nil {
			return orders.KitOrder{}, err
		}
	}
	if len(details) > 0 {
		var rd orders.ReturnDetails
		if err := json.Unmarshal(details, &rd); err != nil {
			return orders.KitOrder{}, err
		}
		o.ReturnDetails = &rd
	}

	return o, nil
}

func collectKitOrders(rows *sql.Rows) ([]orders.KitOrder, error) {
	out := make([]orders.KitOrder, 0)
	for rows.Next() {
		o, err := scanKitOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// return_details es JSONB nullable
func marshalReturnDetails(rd *orders.ReturnDetails) (any, error) {
	if rd == nil {
		return nil, nil
	}
	return json.Marshal(rd)
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
