package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"livecart/internal/core/apperror"
	"livecart/internal/core/id"
	"livecart/internal/domain/shipment"
)

const shipmentsTable = "shipments"

// ShipmentRepo implements shipment.Repository.
type ShipmentRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

var _ shipment.Repository = (*ShipmentRepo)(nil)

// NewShipmentRepo creates a shipment repository.
func NewShipmentRepo(txManager *TxManager) *ShipmentRepo {
	return &ShipmentRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   ExtractDBColumns[shipment.Shipment](),
	}
}

// Create inserts a shipment.
func (r *ShipmentRepo) Create(ctx context.Context, sh *shipment.Shipment) error {
	sql, args, err := r.builder.Insert(shipmentsTable).
		SetMap(StructToMap(sh)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

// GetByID retrieves a shipment by ID.
func (r *ShipmentRepo) GetByID(ctx context.Context, shipmentID id.ID) (*shipment.Shipment, error) {
	sql, args, err := r.builder.Select(r.columns...).
		From(shipmentsTable).
		Where(squirrel.Eq{"id": shipmentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var sh shipment.Shipment
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &sh, sql, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("shipment", shipmentID)
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	return &sh, nil
}

// FindByOrder returns the order's shipment, or nil when none exists.
func (r *ShipmentRepo) FindByOrder(ctx context.Context, orderID id.ID) (*shipment.Shipment, error) {
	sql, args, err := r.builder.Select(r.columns...).
		From(shipmentsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var sh shipment.Shipment
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &sh, sql, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find shipment: %w", err)
	}
	return &sh, nil
}

// Update persists shipment changes with optimistic locking.
func (r *ShipmentRepo) Update(ctx context.Context, sh *shipment.Shipment) error {
	currentVersion := sh.Version
	sh.Version++

	values := StructToMap(sh)
	delete(values, "id")
	delete(values, "created_at")

	sql, args, err := r.builder.Update(shipmentsTable).
		SetMap(values).
		Where(squirrel.Eq{"id": sh.ID, "version": currentVersion}).
		ToSql()
	if err != nil {
		sh.Version = currentVersion
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		sh.Version = currentVersion
		return fmt.Errorf("update shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		sh.Version = currentVersion
		return apperror.NewConcurrentModification("shipment", sh.ID)
	}
	return nil
}

// List returns shipments, newest first, optionally filtered by status.
func (r *ShipmentRepo) List(ctx context.Context, status *shipment.Status, limit, offset int) ([]shipment.Shipment, error) {
	q := r.builder.Select(r.columns...).
		From(shipmentsTable).
		OrderBy("created_at DESC")
	if status != nil {
		q = q.Where(squirrel.Eq{"status": *status})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var shipments []shipment.Shipment
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &shipments, sql, args...); err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	return shipments, nil
}
