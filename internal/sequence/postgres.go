package sequence

import (
	"fmt"

	"gorm.io/gorm"
)

// Postgres bumps the single-row rfq_sequence table. The increment must run on
// the same transaction that inserts the RFQ: the row update serializes
// concurrent allocators, and a rollback returns the number instead of burning
// it. A separate "select max then insert" pass would race under load.
type Postgres struct {
	prefix string
}

func NewPostgres(prefix string) *Postgres {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Postgres{prefix: prefix}
}

// AllocateTx claims the next counter value on tx and returns the formatted
// number. The caller owns the transaction boundary.
func (p *Postgres) AllocateTx(tx *gorm.DB, siteCode string) (string, error) {
	var last int64
	err := tx.Raw(`
		UPDATE rfq_sequence
		SET last_value = last_value + 1, updated_at = NOW()
		WHERE id = 1
		RETURNING last_value
	`).Scan(&last).Error
	if err != nil {
		return "", fmt.Errorf("advance rfq sequence: %w", err)
	}
	if last == 0 {
		return "", fmt.Errorf("rfq sequence row is missing")
	}
	return Format(p.prefix, siteCode, last), nil
}
