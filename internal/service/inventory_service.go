package service

import (
	"context"
	"fmt"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"
	"indrhi-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const inventoryModule = "inventory"

type InventoryService interface {
	CreateArticle(ctx context.Context, actor Actor, input ArticleInput) (*model.Article, error)
	UpdateArticle(ctx context.Context, actor Actor, id uuid.UUID, input ArticleInput) (*model.Article, error)
	DeleteArticle(ctx context.Context, actor Actor, id uuid.UUID) error
	ListArticles(ctx context.Context, search string) ([]model.Article, error)
	GetArticle(ctx context.Context, id uuid.UUID) (*model.Article, error)
	AdjustStock(ctx context.Context, actor Actor, id uuid.UUID, quantity decimal.Decimal, note string) (*model.Article, error)
	Movements(ctx context.Context, actor Actor, code string) ([]model.StockMovement, error)
	Reconcile(ctx context.Context, actor Actor, code string) (*Reconciliation, error)
}

// ArticleInput is the article body. OnHandQuantity is only read on create, as opening stock.
type ArticleInput struct {
	Code            string              `json:"code" validate:"required,max=50"`
	Description     string              `json:"description" validate:"required,max=255"`
	OnHandQuantity  decimal.Decimal     `json:"on_hand_quantity" validate:"dec_gte0"`
	MinimumQuantity decimal.Decimal     `json:"minimum_quantity" validate:"dec_gte0"`
	UnitOfMeasure   model.UnitOfMeasure `json:"unit_of_measure" validate:"required"`
	UnitPrice       decimal.Decimal     `json:"unit_price" validate:"dec_gte0"`
}

// Reconciliation compares an article's on-hand quantity with the sum of its ledger
type Reconciliation struct {
	ArticleID  uuid.UUID       `json:"article_id"`
	Code       string          `json:"code"`
	OnHand     decimal.Decimal `json:"on_hand_quantity"`
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Difference decimal.Decimal `json:"difference"`
	Consistent bool            `json:"consistent"`
}

type inventoryService struct {
	db     *gorm.DB
	repos  *repository.Repositories
	ledger stockLedger
	events EventPublisher
	log    *logrus.Logger
}

func NewInventoryService(db *gorm.DB, repos *repository.Repositories, events EventPublisher) InventoryService {
	return &inventoryService{
		db:     db,
		repos:  repos,
		ledger: stockLedger{articles: repos.Articles, movements: repos.Movements},
		events: publisherOrNop(events),
		log:    logger.Get(),
	}
}

func (s *inventoryService) checkArticle(ctx context.Context, input *ArticleInput, excludeID uuid.UUID) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if !input.UnitOfMeasure.Valid() {
		return invalid("unknown unit_of_measure %q", input.UnitOfMeasure)
	}
	exists, err := s.repos.Articles.ExistsCode(ctx, input.Code, excludeID)
	if err != nil {
		return storageErr(err, "check article code")
	}
	if exists {
		return conflict("article code %s already exists", input.Code)
	}
	return nil
}

func (s *inventoryService) CreateArticle(ctx context.Context, actor Actor, input ArticleInput) (*model.Article, error) {
	if err := actor.require(model.CapArticleManage); err != nil {
		return nil, err
	}
	if err := s.checkArticle(ctx, &input, uuid.Nil); err != nil {
		return nil, err
	}

	article := &model.Article{
		Code:            input.Code,
		Description:     input.Description,
		OnHandQuantity:  decimal.Zero,
		MinimumQuantity: input.MinimumQuantity,
		UnitOfMeasure:   input.UnitOfMeasure,
		UnitPrice:       input.UnitPrice,
	}
	article.CreatedBy = actor.Label()
	article.UpdatedBy = actor.Label()

	var movement *model.StockMovement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repos.Articles.Create(tx, article); err != nil {
			return storageErr(err, "create article "+article.Code)
		}
		var err error
		movement, err = s.ledger.setQuantity(tx, article, input.OnHandQuantity, "opening stock", actor)
		return err
	})
	if err != nil {
		return nil, logFailure(s.log, inventoryModule, "CreateArticle", "create", input, err)
	}

	s.publishArticle("article_created", article, actor, movement)
	return article, nil
}

// UpdateArticle changes catalog fields only; stock moves through AdjustStock and the lifecycle
func (s *inventoryService) UpdateArticle(ctx context.Context, actor Actor, id uuid.UUID, input ArticleInput) (*model.Article, error) {
	if err := actor.require(model.CapArticleManage); err != nil {
		return nil, err
	}
	if err := s.checkArticle(ctx, &input, id); err != nil {
		return nil, err
	}

	article, err := s.repos.Articles.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "article "+id.String())
	}
	article.Code = input.Code
	article.Description = input.Description
	article.MinimumQuantity = input.MinimumQuantity
	article.UnitOfMeasure = input.UnitOfMeasure
	article.UnitPrice = input.UnitPrice
	article.UpdatedBy = actor.Label()

	if err := s.repos.Articles.Update(ctx, article); err != nil {
		return nil, logFailure(s.log, inventoryModule, "UpdateArticle", id.String(), input, storageErr(err, "update article"))
	}

	updated, err := s.repos.Articles.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "reload article")
	}
	s.publishArticle("article_updated", updated, actor, nil)
	return updated, nil
}

func (s *inventoryService) DeleteArticle(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := actor.require(model.CapArticleManage); err != nil {
		return err
	}
	if err := s.repos.Articles.Delete(ctx, id, actor.Label()); err != nil {
		return logFailure(s.log, inventoryModule, "DeleteArticle", id.String(), nil, storageErr(err, "article "+id.String()))
	}
	s.events.Publish(EventStockUpdate, map[string]interface{}{
		"action":  "article_deleted",
		"article": map[string]interface{}{"id": id},
		"user":    actor.logFields(),
	})
	return nil
}

func (s *inventoryService) ListArticles(ctx context.Context, search string) ([]model.Article, error) {
	articles, err := s.repos.Articles.FindAll(ctx, search)
	if err != nil {
		return nil, storageErr(err, "list articles")
	}
	return articles, nil
}

func (s *inventoryService) GetArticle(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	article, err := s.repos.Articles.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "article "+id.String())
	}
	return article, nil
}

// AdjustStock sets on-hand to quantity (a physical count) through an ADJUSTMENT movement
func (s *inventoryService) AdjustStock(ctx context.Context, actor Actor, id uuid.UUID, quantity decimal.Decimal, note string) (*model.Article, error) {
	if err := actor.require(model.CapArticleManage); err != nil {
		return nil, err
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("%w: quantity %s must not be negative", ErrInvalidQuantity, quantity)
	}

	var article *model.Article
	var movement *model.StockMovement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		article, err = s.repos.Articles.FindByIDForUpdate(tx, id)
		if err != nil {
			return storageErr(err, "article "+id.String())
		}
		movement, err = s.ledger.setQuantity(tx, article, quantity, note, actor)
		return err
	})
	if err != nil {
		return nil, logFailure(s.log, inventoryModule, "AdjustStock", id.String(), quantity, err)
	}

	s.publishArticle("stock_adjusted", article, actor, movement)
	return article, nil
}

func (s *inventoryService) Movements(ctx context.Context, actor Actor, code string) ([]model.StockMovement, error) {
	if err := actor.require(model.CapArticleManage); err != nil {
		return nil, err
	}
	article, err := s.repos.Articles.FindByCode(ctx, code)
	if err != nil {
		return nil, storageErr(err, "article "+code)
	}
	movements, err := s.repos.Movements.FindByArticleID(ctx, article.ID)
	if err != nil {
		return nil, storageErr(err, "movements of "+code)
	}
	return movements, nil
}

func (s *inventoryService) Reconcile(ctx context.Context, actor Actor, code string) (*Reconciliation, error) {
	if err := actor.require(model.CapArticleManage); err != nil {
		return nil, err
	}
	article, err := s.repos.Articles.FindByCode(ctx, code)
	if err != nil {
		return nil, storageErr(err, "article "+code)
	}
	sum, err := s.repos.Movements.SumApplied(ctx, article.ID)
	if err != nil {
		return nil, storageErr(err, "ledger sum of "+code)
	}

	diff := article.OnHandQuantity.Sub(sum)
	rec := &Reconciliation{
		ArticleID:  article.ID,
		Code:       article.Code,
		OnHand:     article.OnHandQuantity,
		LedgerSum:  sum,
		Difference: diff,
		Consistent: diff.IsZero(),
	}
	if !rec.Consistent {
		s.log.WithFields(logrus.Fields{
			"module":   inventoryModule,
			"funcName": "Reconcile",
			"data":     rec,
		}).Warn("on-hand quantity differs from stock ledger")
	}
	return rec, nil
}

func (s *inventoryService) publishArticle(action string, article *model.Article, actor Actor, movement *model.StockMovement) {
	payload := map[string]interface{}{
		"action": action,
		"article": map[string]interface{}{
			"id":               article.ID,
			"code":             article.Code,
			"description":      article.Description,
			"on_hand_quantity": article.OnHandQuantity,
			"unit_price":       article.UnitPrice,
		},
		"user":    actor.logFields(),
		"message": fmt.Sprintf("%s: %s %s", actor.DisplayName(), action, article.Code),
	}
	if movement != nil {
		payload["movements"] = movementPayload([]model.StockMovement{*movement})
	}
	s.events.Publish(EventStockUpdate, payload)
}
