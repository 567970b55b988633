package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/procure-rfq/internal/model"
	"github.com/nurpe/procure-rfq/internal/sequence"
	"github.com/nurpe/procure-rfq/internal/service"
)

type RFQRepository struct {
	db  *gorm.DB
	seq *sequence.Postgres
}

func NewRFQRepository(db *gorm.DB, seq *sequence.Postgres) *RFQRepository {
	return &RFQRepository{db: db, seq: seq}
}

// Create allocates the next RFQ number and inserts the RFQ with its items and
// quotes in one transaction. Any failure rolls the whole unit back, counter
// increment included, so no number is ever burned silently.
func (r *RFQRepository) Create(ctx context.Context, rfq model.RFQ) (*model.RFQ, error) {
	var saved model.RFQ
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := r.seq.AllocateTx(tx, rfq.SiteCode)
		if err != nil {
			return err
		}

		err = tx.Raw(`
			INSERT INTO rfq (
				rfq_number,
				title,
				description,
				commodity_type,
				status,
				total_value,
				currency,
				site_id,
				site_code,
				creator_id,
				user_comments
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING
				id,
				rfq_number,
				title,
				description,
				commodity_type,
				status,
				total_value,
				currency,
				site_id,
				site_code,
				creator_id,
				user_comments,
				decision_comments,
				decided_by_user_id,
				decided_at,
				created_at,
				updated_at
		`,
			number,
			rfq.Title,
			rfq.Description,
			rfq.CommodityType,
			rfq.Status,
			rfq.TotalValue,
			rfq.Currency,
			rfq.SiteID,
			rfq.SiteCode,
			rfq.CreatorID,
			rfq.UserComments,
		).Scan(&saved).Error
		if err != nil {
			return err
		}

		for _, item := range rfq.Items {
			if err := tx.Exec(`
				INSERT INTO rfq_items (
					id, rfq_id, line_no, name, description, specification,
					unit_of_measure, quantity, rate,
					from_location, to_location, vehicle_size, load, dimensions,
					frequency_per_month
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				item.ID,
				saved.ID,
				item.LineNo,
				item.Name,
				item.Description,
				item.Specification,
				item.UnitOfMeasure,
				item.Quantity,
				item.Rate,
				item.FromLocation,
				item.ToLocation,
				item.VehicleSize,
				item.Load,
				item.Dimensions,
				item.FrequencyPerMonth,
			).Error; err != nil {
				return err
			}
		}

		for _, quote := range rfq.Quotes {
			rates, err := json.Marshal(quote.Rates)
			if err != nil {
				return err
			}
			if err := tx.Exec(`
				INSERT INTO rfq_quotes (
					rfq_id, supplier_id, rates,
					freight, packing, lead_time, warranty, currency
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`,
				saved.ID,
				quote.SupplierID,
				string(rates),
				quote.Footer.Freight,
				quote.Footer.Packing,
				quote.Footer.LeadTime,
				quote.Footer.Warranty,
				quote.Footer.Currency,
			).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if isRetryable(err) {
			return nil, fmt.Errorf("%w: %v", sequence.ErrConflict, err)
		}
		return nil, err
	}

	saved.Items = rfq.Items
	for i := range saved.Items {
		saved.Items[i].RFQID = saved.ID
	}
	saved.Quotes = rfq.Quotes
	for i := range saved.Quotes {
		saved.Quotes[i].RFQID = saved.ID
	}
	return &saved, nil
}

func (r *RFQRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.RFQ, error) {
	var rfq model.RFQ
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			rfq_number,
			title,
			description,
			commodity_type,
			status,
			total_value,
			currency,
			site_id,
			site_code,
			creator_id,
			user_comments,
			decision_comments,
			decided_by_user_id,
			decided_at,
			created_at,
			updated_at
		FROM rfq
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&rfq).Error
	if err != nil {
		return nil, err
	}
	if rfq.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	rfq.Items = items

	quotes, err := r.listQuotes(ctx, id)
	if err != nil {
		return nil, err
	}
	rfq.Quotes = quotes

	return &rfq, nil
}

func (r *RFQRepository) List(ctx context.Context, filter service.ListFilter) ([]model.RFQ, error) {
	baseQuery := `
		SELECT
			id,
			rfq_number,
			title,
			description,
			commodity_type,
			status,
			total_value,
			currency,
			site_id,
			site_code,
			creator_id,
			user_comments,
			decision_comments,
			decided_by_user_id,
			decided_at,
			created_at,
			updated_at
		FROM rfq
	`
	var filters []string
	var args []interface{}
	if filter.Status != nil {
		filters = append(filters, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.SiteCode != nil {
		filters = append(filters, "site_code = ?")
		args = append(args, *filter.SiteCode)
	}
	if filter.CommodityType != nil {
		filters = append(filters, "commodity_type = ?")
		args = append(args, *filter.CommodityType)
	}
	if len(filters) > 0 {
		baseQuery += " WHERE " + strings.Join(filters, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"

	var rfqs []model.RFQ
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&rfqs).Error; err != nil {
		return nil, err
	}
	return rfqs, nil
}

func (r *RFQRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status model.RFQStatus,
	comments *string,
	decidedBy uuid.UUID,
	decidedAt time.Time,
) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE rfq
		SET
			status = ?,
			decision_comments = ?,
			decided_by_user_id = ?,
			decided_at = ?,
			updated_at = NOW()
		WHERE id = ?
	`, status, comments, decidedBy, decidedAt, id).Error
}

func (r *RFQRepository) listItems(ctx context.Context, rfqID uuid.UUID) ([]model.RFQItem, error) {
	var items []model.RFQItem
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id, rfq_id, line_no, name, description, specification,
			unit_of_measure, quantity, rate,
			from_location, to_location, vehicle_size, load, dimensions,
			frequency_per_month
		FROM rfq_items
		WHERE rfq_id = ?
		ORDER BY line_no ASC
	`, rfqID).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *RFQRepository) listQuotes(ctx context.Context, rfqID uuid.UUID) ([]model.Quote, error) {
	var rows []struct {
		ID           uuid.UUID
		RFQID        uuid.UUID
		SupplierID   uuid.UUID
		SupplierName string
		Rates        []byte
		Freight      string
		Packing      string
		LeadTime     string
		Warranty     string
		Currency     string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			q.id,
			q.rfq_id,
			q.supplier_id,
			s.name AS supplier_name,
			q.rates,
			q.freight,
			q.packing,
			q.lead_time,
			q.warranty,
			q.currency
		FROM rfq_quotes q
		JOIN suppliers s ON s.id = q.supplier_id
		WHERE q.rfq_id = ?
		ORDER BY q.id
	`, rfqID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	quotes := make([]model.Quote, 0, len(rows))
	for _, row := range rows {
		rates := map[uuid.UUID]decimal.Decimal{}
		if len(row.Rates) > 0 {
			if err := json.Unmarshal(row.Rates, &rates); err != nil {
				return nil, fmt.Errorf("decode quote rates: %w", err)
			}
		}
		quotes = append(quotes, model.Quote{
			ID:           row.ID,
			RFQID:        row.RFQID,
			SupplierID:   row.SupplierID,
			SupplierName: row.SupplierName,
			Rates:        rates,
			Footer: model.QuoteFooter{
				Freight:  row.Freight,
				Packing:  row.Packing,
				LeadTime: row.LeadTime,
				Warranty: row.Warranty,
				Currency: row.Currency,
			},
		})
	}
	return quotes, nil
}

// isRetryable recognizes the two transient creation failures: a unique
// violation on rfq_number and a serialization failure on the counter row.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" || pgErr.Code == "40001"
	}
	return false
}
