package service

import (
	"errors"
	"fmt"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errUnknownArticle = errors.New("unknown article")

// stockLedger is the only writer of Article.OnHandQuantity
type stockLedger struct {
	articles  repository.ArticleRepository
	movements repository.StockMovementRepository
}

type stockRef struct {
	Type   model.ReferenceType
	ID     *uuid.UUID
	Number string
}

// apply locks the article, moves on-hand by delta floored at zero, and appends the movement
func (l stockLedger) apply(tx *gorm.DB, article *model.Article, delta decimal.Decimal, kind model.MovementKind, ref stockRef, note string, actor Actor) (*model.StockMovement, error) {
	before := article.OnHandQuantity
	after := before.Add(delta)
	if after.IsNegative() {
		after = decimal.Zero
	}

	if err := l.articles.UpdateStock(tx, article.ID, after, actor.Label()); err != nil {
		return nil, storageErr(err, "update stock of "+article.Code)
	}
	article.OnHandQuantity = after

	movement := &model.StockMovement{
		ArticleID:       article.ID,
		ArticleCode:     article.Code,
		Kind:            kind,
		Quantity:        delta,
		AppliedQuantity: after.Sub(before),
		BalanceAfter:    after,
		ReferenceType:   ref.Type,
		ReferenceID:     ref.ID,
		ReferenceNumber: ref.Number,
		Note:            note,
		CreatedBy:       actor.Label(),
		CreatedByUserID: actor.userID(),
	}
	if err := l.movements.Create(tx, movement); err != nil {
		return nil, storageErr(err, "append stock movement")
	}
	return movement, nil
}

// applyCode is apply for a line item; unknown codes return errUnknownArticle
func (l stockLedger) applyCode(tx *gorm.DB, code string, delta decimal.Decimal, kind model.MovementKind, ref stockRef, actor Actor) (*model.StockMovement, error) {
	article, err := l.articles.FindByCodeForUpdate(tx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errUnknownArticle
	}
	if err != nil {
		return nil, storageErr(err, "lock article "+code)
	}
	return l.apply(tx, article, delta, kind, ref, "", actor)
}

// applyItems books every line item with sign (+1 inbound, -1 outbound).
// Codes missing from the catalog are skipped and returned as warnings.
func (l stockLedger) applyItems(tx *gorm.DB, items model.LineItems, sign int64, kind model.MovementKind, ref stockRef, actor Actor) ([]model.StockMovement, []string, error) {
	var movements []model.StockMovement
	var warnings []string
	factor := decimal.NewFromInt(sign)

	for _, item := range items {
		m, err := l.applyCode(tx, item.Code, item.Quantity.Mul(factor), kind, ref, actor)
		if errors.Is(err, errUnknownArticle) {
			warnings = append(warnings, fmt.Sprintf("%s %s: article %q not in catalog, stock not changed", ref.Type, ref.Number, item.Code))
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		movements = append(movements, *m)
	}
	return movements, warnings, nil
}

// setQuantity books the difference between target and the current on-hand as an adjustment
func (l stockLedger) setQuantity(tx *gorm.DB, article *model.Article, target decimal.Decimal, note string, actor Actor) (*model.StockMovement, error) {
	delta := target.Sub(article.OnHandQuantity)
	if delta.IsZero() {
		return nil, nil
	}
	return l.apply(tx, article, delta, model.MoveAdjustment, stockRef{Type: model.RefArticle, ID: &article.ID, Number: article.Code}, note, actor)
}

func movementPayload(movements []model.StockMovement) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(movements))
	for _, m := range movements {
		out = append(out, map[string]interface{}{
			"article_id":   m.ArticleID,
			"article_code": m.ArticleCode,
			"kind":         m.Kind,
			"applied":      m.AppliedQuantity,
			"new_stock":    m.BalanceAfter,
		})
	}
	return out
}
