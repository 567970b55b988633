package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/procure-rfq/internal/model"
)

// SiteDirectory resolves site codes. Sites are owned by an external admin
// surface; this repository only reads them.
type SiteDirectory struct {
	db *gorm.DB
}

func NewSiteDirectory(db *gorm.DB) *SiteDirectory {
	return &SiteDirectory{db: db}
}

func (d *SiteDirectory) ResolveCode(ctx context.Context, code string) (*model.Site, error) {
	var site model.Site
	if err := d.db.WithContext(ctx).Raw(`
		SELECT id, code, name, active
		FROM sites
		WHERE code = ? AND active = TRUE
		LIMIT 1
	`, code).Scan(&site).Error; err != nil {
		return nil, err
	}
	if site.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &site, nil
}

type SupplierDirectory struct {
	db *gorm.DB
}

func NewSupplierDirectory(db *gorm.DB) *SupplierDirectory {
	return &SupplierDirectory{db: db}
}

func (d *SupplierDirectory) Resolve(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := d.db.WithContext(ctx).Raw(`
		SELECT id, name, active
		FROM suppliers
		WHERE id = ? AND active = TRUE
		LIMIT 1
	`, id).Scan(&supplier).Error; err != nil {
		return nil, err
	}
	if supplier.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &supplier, nil
}
