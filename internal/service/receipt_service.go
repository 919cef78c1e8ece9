package service

import (
	"context"
	"fmt"
	"time"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"
	"indrhi-inventory/pkg/lock"
	"indrhi-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const receiptModule = "receipt"

type ReceiptService interface {
	ReceiveMerchandise(ctx context.Context, actor Actor, input ReceiptInput) (*ReceiptResult, error)
	UpdateMerchandiseReceipt(ctx context.Context, actor Actor, id uuid.UUID, input ReceiptInput) (*ReceiptResult, error)
	DeleteMerchandiseReceipt(ctx context.Context, actor Actor, id uuid.UUID) (*ReceiptResult, error)
	ListReceipts(ctx context.Context, actor Actor) ([]model.MerchandiseReceipt, error)
	GetReceipt(ctx context.Context, actor Actor, id uuid.UUID) (*model.MerchandiseReceipt, error)
}

type ReceiptInput struct {
	PurchaseType  model.PurchaseType `json:"purchase_type" validate:"required,oneof=CD CM"`
	Supplier      string             `json:"supplier" validate:"required,max=200"`
	InvoiceNumber string             `json:"invoice_number" validate:"max=60"`
	Date          string             `json:"date"`
	Note          string             `json:"note"`
	LineItems     model.LineItems    `json:"line_items" validate:"required,min=1"`
}

type ReceiptResult struct {
	Receipt  *model.MerchandiseReceipt `json:"receipt"`
	Warnings []string                  `json:"warnings"`
}

type receiptService struct {
	db      *gorm.DB
	repos   *repository.Repositories
	ledger  stockLedger
	numbers numbering
	events  EventPublisher
	log     *logrus.Logger
	now     func() time.Time
}

func NewReceiptService(db *gorm.DB, repos *repository.Repositories, locker lock.Locker, events EventPublisher) ReceiptService {
	return &receiptService{
		db:      db,
		repos:   repos,
		ledger:  stockLedger{articles: repos.Articles, movements: repos.Movements},
		numbers: numbering{locker: locker},
		events:  publisherOrNop(events),
		log:     logger.Get(),
		now:     time.Now,
	}
}

func (s *receiptService) checkInput(input *ReceiptInput) (time.Time, error) {
	if err := validateInput(input); err != nil {
		return time.Time{}, err
	}
	if err := checkItems(input.LineItems); err != nil {
		return time.Time{}, err
	}
	return parseDocumentDate(input.Date, s.now())
}

// ReceiveMerchandise numbers the receipt and its purchase order, then books every item as inbound stock
func (s *receiptService) ReceiveMerchandise(ctx context.Context, actor Actor, input ReceiptInput) (*ReceiptResult, error) {
	if err := actor.require(model.CapReceiptManage); err != nil {
		return nil, err
	}
	date, err := s.checkInput(&input)
	if err != nil {
		return nil, err
	}

	receipt := &model.MerchandiseReceipt{
		PurchaseType:  input.PurchaseType,
		Supplier:      input.Supplier,
		InvoiceNumber: input.InvoiceNumber,
		Date:          date,
		LineItems:     input.LineItems,
		Note:          input.Note,
	}
	receipt.CreatedBy = actor.Label()
	receipt.UpdatedBy = actor.Label()

	result := &ReceiptResult{Receipt: receipt, Warnings: []string{}}
	var movements []model.StockMovement

	emPrefix := receiptPrefix(date.Year())
	dafPrefix := orderPrefix(input.PurchaseType, date.Year())
	err = s.numbers.withPrefixes(ctx, []string{emPrefix, dafPrefix}, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			if receipt.ReceiptNumber, err = nextNumber(tx, &model.MerchandiseReceipt{}, "receipt_number", emPrefix); err != nil {
				return err
			}
			if receipt.OrderNumber, err = nextNumber(tx, &model.MerchandiseReceipt{}, "order_number", dafPrefix); err != nil {
				return err
			}
			if err := s.repos.Receipts.Create(tx, receipt); err != nil {
				return storageErr(err, "create receipt "+receipt.ReceiptNumber)
			}

			ref := stockRef{Type: model.RefReceipt, ID: &receipt.ID, Number: receipt.ReceiptNumber}
			moved, warnings, err := s.ledger.applyItems(tx, receipt.LineItems, 1, model.MoveReceipt, ref, actor)
			if err != nil {
				return err
			}
			movements = moved
			result.Warnings = append(result.Warnings, warnings...)
			return nil
		})
	})
	if err != nil {
		return nil, logFailure(s.log, receiptModule, "ReceiveMerchandise", "create receipt", input, err)
	}

	s.afterCommit(EventReceiptCreated, receipt, actor, movements, result.Warnings)
	return result, nil
}

// UpdateMerchandiseReceipt reverses the stored items, saves the new fields, then books the new items.
// Receipt and order numbers never change, so the purchase type is fixed once issued.
func (s *receiptService) UpdateMerchandiseReceipt(ctx context.Context, actor Actor, id uuid.UUID, input ReceiptInput) (*ReceiptResult, error) {
	if err := actor.require(model.CapReceiptManage); err != nil {
		return nil, err
	}
	date, err := s.checkInput(&input)
	if err != nil {
		return nil, err
	}

	result := &ReceiptResult{Warnings: []string{}}
	var movements []model.StockMovement

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		receipt, err := s.repos.Receipts.FindByIDForUpdate(tx, id)
		if err != nil {
			return storageErr(err, "receipt "+id.String())
		}
		if receipt.PurchaseType != input.PurchaseType {
			return invalid("purchase_type of %s is %s and cannot change", receipt.OrderNumber, receipt.PurchaseType)
		}

		ref := stockRef{Type: model.RefReceipt, ID: &receipt.ID, Number: receipt.ReceiptNumber}
		reversed, warnings, err := s.ledger.applyItems(tx, receipt.LineItems, -1, model.MoveReceiptReversal, ref, actor)
		if err != nil {
			return err
		}
		movements = append(movements, reversed...)
		result.Warnings = append(result.Warnings, warnings...)

		receipt.Supplier = input.Supplier
		receipt.InvoiceNumber = input.InvoiceNumber
		receipt.Date = date
		receipt.Note = input.Note
		receipt.LineItems = input.LineItems
		receipt.UpdatedBy = actor.Label()
		if err := s.repos.Receipts.Save(tx, receipt); err != nil {
			return storageErr(err, "save receipt "+receipt.ReceiptNumber)
		}

		applied, warnings, err := s.ledger.applyItems(tx, receipt.LineItems, 1, model.MoveReceipt, ref, actor)
		if err != nil {
			return err
		}
		movements = append(movements, applied...)
		result.Warnings = append(result.Warnings, warnings...)
		result.Receipt = receipt
		return nil
	})
	if err != nil {
		return nil, logFailure(s.log, receiptModule, "UpdateMerchandiseReceipt", id.String(), input, err)
	}

	s.afterCommit(EventReceiptUpdated, result.Receipt, actor, movements, result.Warnings)
	return result, nil
}

// DeleteMerchandiseReceipt reverses every item, floored at zero, then soft-deletes the receipt
func (s *receiptService) DeleteMerchandiseReceipt(ctx context.Context, actor Actor, id uuid.UUID) (*ReceiptResult, error) {
	if err := actor.require(model.CapReceiptManage); err != nil {
		return nil, err
	}

	result := &ReceiptResult{Warnings: []string{}}
	var movements []model.StockMovement

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		receipt, err := s.repos.Receipts.FindByIDForUpdate(tx, id)
		if err != nil {
			return storageErr(err, "receipt "+id.String())
		}

		ref := stockRef{Type: model.RefReceipt, ID: &receipt.ID, Number: receipt.ReceiptNumber}
		reversed, warnings, err := s.ledger.applyItems(tx, receipt.LineItems, -1, model.MoveReceiptReversal, ref, actor)
		if err != nil {
			return err
		}
		movements = reversed
		result.Warnings = append(result.Warnings, warnings...)

		if err := s.repos.Receipts.SoftDelete(tx, receipt, actor.Label()); err != nil {
			return storageErr(err, "delete receipt "+receipt.ReceiptNumber)
		}
		result.Receipt = receipt
		return nil
	})
	if err != nil {
		return nil, logFailure(s.log, receiptModule, "DeleteMerchandiseReceipt", id.String(), nil, err)
	}

	s.afterCommit(EventReceiptDeleted, result.Receipt, actor, movements, result.Warnings)
	return result, nil
}

func (s *receiptService) ListReceipts(ctx context.Context, actor Actor) ([]model.MerchandiseReceipt, error) {
	if err := actor.require(model.CapReceiptManage); err != nil {
		return nil, err
	}
	receipts, err := s.repos.Receipts.FindAll(ctx)
	if err != nil {
		return nil, logFailure(s.log, receiptModule, "ListReceipts", "list", nil, storageErr(err, "list receipts"))
	}
	return receipts, nil
}

func (s *receiptService) GetReceipt(ctx context.Context, actor Actor, id uuid.UUID) (*model.MerchandiseReceipt, error) {
	if err := actor.require(model.CapReceiptManage); err != nil {
		return nil, err
	}
	receipt, err := s.repos.Receipts.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "receipt "+id.String())
	}
	return receipt, nil
}

func (s *receiptService) afterCommit(event string, receipt *model.MerchandiseReceipt, actor Actor, movements []model.StockMovement, warnings []string) {
	for _, w := range warnings {
		s.log.WithFields(logrus.Fields{"module": receiptModule, "event": event}).Warn(w)
	}

	s.events.Publish(event, map[string]interface{}{
		"receipt": map[string]interface{}{
			"id":             receipt.ID,
			"receipt_number": receipt.ReceiptNumber,
			"order_number":   receipt.OrderNumber,
			"supplier":       receipt.Supplier,
		},
		"user":    actor.logFields(),
		"message": fmt.Sprintf("%s: %s %s", actor.DisplayName(), event, receipt.ReceiptNumber),
	})
	if len(movements) > 0 {
		s.events.Publish(EventStockUpdate, map[string]interface{}{
			"action":    event,
			"movements": movementPayload(movements),
			"user":      actor.logFields(),
		})
	}
}
