// Package numbering assigns sequential invoice numbers per user and year.
package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lancekit/lancekit/internal/invoice/domain"
)

// Format renders an invoice number, e.g. INV-2025-0001.
func Format(prefix string, year int, value int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, value)
}

// Fallback is the number suggested when the sequence cannot be read. It
// always restarts at 0001 for the given year.
func Fallback(prefix string, year int) string {
	return Format(prefix, year, 1)
}

// Peek returns the next number without consuming it. Used for the compose
// default; the real claim happens at submit time.
func Peek(ctx context.Context, db *gorm.DB, userID snowflake.ID, prefix string, now time.Time) (string, error) {
	year := now.UTC().Year()

	var seq domain.NumberSequence
	err := db.WithContext(ctx).
		Where("user_id = ? AND year = ?", userID, year).
		First(&seq).Error
	if err == gorm.ErrRecordNotFound {
		return Format(prefix, year, 1), nil
	}
	if err != nil {
		return "", err
	}

	return Format(prefix, year, seq.LastValue+1), nil
}

// Claim consumes the next sequence value inside the caller's transaction.
// The upsert keeps concurrent claims from handing out the same number.
func Claim(ctx context.Context, tx *gorm.DB, userID snowflake.ID, prefix string, now time.Time) (string, error) {
	year := now.UTC().Year()

	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "year"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_value": gorm.Expr("last_value + 1"),
			"updated_at": now,
		}),
	}).Create(&domain.NumberSequence{
		UserID:    userID,
		Year:      year,
		LastValue: 1,
		UpdatedAt: now,
	}).Error
	if err != nil {
		return "", err
	}

	var seq domain.NumberSequence
	if err := tx.WithContext(ctx).
		Where("user_id = ? AND year = ?", userID, year).
		First(&seq).Error; err != nil {
		return "", err
	}

	return Format(prefix, year, seq.LastValue), nil
}
