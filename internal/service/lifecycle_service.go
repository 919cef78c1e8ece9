package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"indrhi-inventory/internal/model"
	"indrhi-inventory/internal/repository"
	"indrhi-inventory/pkg/lock"
	"indrhi-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const lifecycleModule = "lifecycle"

type LifecycleService interface {
	CreateRequest(ctx context.Context, actor Actor, input RequestInput) (*model.SupplyRequest, error)
	UpdateDraft(ctx context.Context, actor Actor, id uuid.UUID, input RequestInput) (*model.SupplyRequest, error)
	DeleteDraft(ctx context.Context, actor Actor, id uuid.UUID) error
	GetRequest(ctx context.Context, actor Actor, id uuid.UUID) (*model.SupplyRequest, error)
	ListRequests(ctx context.Context, actor Actor, filter repository.RequestFilter) ([]model.SupplyRequest, error)
	History(ctx context.Context, actor Actor, id uuid.UUID) ([]model.RequestTransition, error)
	Movements(ctx context.Context, actor Actor, id uuid.UUID) ([]model.StockMovement, error)

	SubmitRequest(ctx context.Context, actor Actor, id uuid.UUID) (*model.SupplyRequest, error)
	Authorize(ctx context.Context, actor Actor, ids []uuid.UUID, decision Decision, note string) (*AuthorizeResult, error)
	Manage(ctx context.Context, actor Actor, id uuid.UUID, items model.LineItems) (*model.SupplyRequest, error)
	Availability(ctx context.Context, actor Actor, id uuid.UUID) ([]ItemAvailability, error)
	Dispatch(ctx context.Context, actor Actor, ids []uuid.UUID, dispatcherID *uuid.UUID) (*DispatchResult, error)
}

// RequestInput is the body of create and draft update
type RequestInput struct {
	DepartmentID *uint           `json:"department_id"`
	Date         string          `json:"date"`
	Note         string          `json:"note"`
	LineItems    model.LineItems `json:"line_items" validate:"required,min=1"`
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type AuthorizeResult struct {
	Decision  Decision    `json:"decision"`
	Processed []uuid.UUID `json:"processed"`
	Unchanged []uuid.UUID `json:"unchanged"`
}

type DispatchResult struct {
	Dispatched   []model.SupplyRequest `json:"dispatched"`
	Unchanged    []uuid.UUID           `json:"unchanged"`
	DispatchedBy string                `json:"dispatched_by"`
	Warnings     []string              `json:"warnings"`
}

// ItemAvailability pairs a line item with the article's current on-hand quantity
type ItemAvailability struct {
	Item       model.LineItem  `json:"item"`
	InCatalog  bool            `json:"in_catalog"`
	OnHand     decimal.Decimal `json:"on_hand_quantity"`
	Sufficient bool            `json:"sufficient"`
}

type lifecycleService struct {
	db      *gorm.DB
	repos   *repository.Repositories
	ledger  stockLedger
	numbers numbering
	events  EventPublisher
	log     *logrus.Logger
	now     func() time.Time
}

func NewLifecycleService(db *gorm.DB, repos *repository.Repositories, locker lock.Locker, events EventPublisher) LifecycleService {
	return &lifecycleService{
		db:      db,
		repos:   repos,
		ledger:  stockLedger{articles: repos.Articles, movements: repos.Movements},
		numbers: numbering{locker: locker},
		events:  publisherOrNop(events),
		log:     logger.Get(),
		now:     time.Now,
	}
}

func (s *lifecycleService) CreateRequest(ctx context.Context, actor Actor, input RequestInput) (*model.SupplyRequest, error) {
	if err := actor.require(model.CapRequestCreate); err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if err := checkItems(input.LineItems); err != nil {
		return nil, err
	}

	deptID, err := s.requestDepartment(actor, input.DepartmentID)
	if err != nil {
		return nil, err
	}
	dept, err := s.repos.Departments.FindByID(ctx, deptID)
	if err != nil {
		return nil, storageErr(err, fmt.Sprintf("department %d", deptID))
	}
	date, err := parseDocumentDate(input.Date, s.now())
	if err != nil {
		return nil, err
	}
	items, err := s.fillFromCatalog(ctx, input.LineItems)
	if err != nil {
		return nil, err
	}

	req := &model.SupplyRequest{
		Date:         date,
		DepartmentID: dept.ID,
		Department:   dept.Name,
		Stage:        model.StageDraft,
		LineItems:    items,
		Note:         input.Note,
	}
	req.CreatedBy = actor.Label()
	req.UpdatedBy = actor.Label()

	prefix := requestPrefix(dept.ID, date.Year())
	err = s.numbers.withPrefixes(ctx, []string{prefix}, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := nextNumber(tx, &model.SupplyRequest{}, "request_number", prefix)
			if err != nil {
				return err
			}
			req.RequestNumber = number
			if err := s.repos.Requests.Create(tx, req); err != nil {
				return storageErr(err, "create request "+number)
			}
			return s.recordTransition(tx, req, "", model.StageDraft, actor, "")
		})
	})
	if err != nil {
		return nil, logFailure(s.log, lifecycleModule, "CreateRequest", "create draft", input, err)
	}

	s.publish(EventRequestCreated, req, actor)
	return req, nil
}

func (s *lifecycleService) UpdateDraft(ctx context.Context, actor Actor, id uuid.UUID, input RequestInput) (*model.SupplyRequest, error) {
	if err := actor.require(model.CapRequestCreate); err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if err := checkItems(input.LineItems); err != nil {
		return nil, err
	}
	items, err := s.fillFromCatalog(ctx, input.LineItems)
	if err != nil {
		return nil, err
	}

	var req *model.SupplyRequest
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		req, err = s.lockVisible(tx, actor, id)
		if err != nil {
			return err
		}
		if req.Stage != model.StageDraft {
			return fmt.Errorf("%w: %s is %s, only drafts can be edited", ErrInvalidTransition, req.RequestNumber, req.Stage)
		}

		if input.Date != "" {
			date, err := parseDocumentDate(input.Date, s.now())
			if err != nil {
				return err
			}
			// the year is part of the request number
			if date.Year() != req.Date.Year() {
				return invalid("date must stay within %d, the year of %s", req.Date.Year(), req.RequestNumber)
			}
			req.Date = date
		}
		req.LineItems = items
		req.Note = input.Note
		req.UpdatedBy = actor.Label()
		return storageErr(s.repos.Requests.Save(tx, req), "save request "+req.RequestNumber)
	})
	if err != nil {
		return nil, logFailure(s.log, lifecycleModule, "UpdateDraft", id.String(), input, err)
	}

	s.publish(EventRequestUpdated, req, actor)
	return req, nil
}

func (s *lifecycleService) DeleteDraft(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := actor.require(model.CapRequestCreate); err != nil {
		return err
	}

	var req *model.SupplyRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		req, err = s.lockVisible(tx, actor, id)
		if err != nil {
			return err
		}
		if req.Stage != model.StageDraft {
			return fmt.Errorf("%w: %s is %s, only drafts can be deleted", ErrInvalidTransition, req.RequestNumber, req.Stage)
		}
		return storageErr(s.repos.Requests.SoftDelete(tx, req, actor.Label()), "delete request "+req.RequestNumber)
	})
	if err != nil {
		return logFailure(s.log, lifecycleModule, "DeleteDraft", id.String(), nil, err)
	}

	s.publish(EventRequestDeleted, req, actor)
	return nil
}

func (s *lifecycleService) GetRequest(ctx context.Context, actor Actor, id uuid.UUID) (*model.SupplyRequest, error) {
	req, err := s.repos.Requests.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "request "+id.String())
	}
	if !actor.seesDepartment(req.DepartmentID) {
		return nil, notFound("request %s", id)
	}
	return req, nil
}

func (s *lifecycleService) ListRequests(ctx context.Context, actor Actor, filter repository.RequestFilter) ([]model.SupplyRequest, error) {
	if filter.Stage != "" && !filter.Stage.Valid() {
		return nil, invalid("unknown stage %q", filter.Stage)
	}
	if !actor.Can(model.CapRequestViewAll) {
		if actor.DepartmentID == nil {
			return []model.SupplyRequest{}, nil
		}
		filter.DepartmentID = actor.DepartmentID
	}

	reqs, err := s.repos.Requests.FindAll(ctx, filter)
	if err != nil {
		return nil, logFailure(s.log, lifecycleModule, "ListRequests", "list", filter, storageErr(err, "list requests"))
	}
	return reqs, nil
}

func (s *lifecycleService) History(ctx context.Context, actor Actor, id uuid.UUID) ([]model.RequestTransition, error) {
	if _, err := s.GetRequest(ctx, actor, id); err != nil {
		return nil, err
	}
	transitions, err := s.repos.Transitions.FindByRequest(ctx, id)
	if err != nil {
		return nil, storageErr(err, "request history")
	}
	return transitions, nil
}

// Movements lists the stock movements the request's dispatch booked
func (s *lifecycleService) Movements(ctx context.Context, actor Actor, id uuid.UUID) ([]model.StockMovement, error) {
	if _, err := s.GetRequest(ctx, actor, id); err != nil {
		return nil, err
	}
	movements, err := s.repos.Movements.FindByReference(ctx, model.RefRequest, id)
	if err != nil {
		return nil, storageErr(err, "request movements")
	}
	return movements, nil
}

// SubmitRequest moves a draft to SUBMITTED and snapshots the requested items
func (s *lifecycleService) SubmitRequest(ctx context.Context, actor Actor, id uuid.UUID) (*model.SupplyRequest, error) {
	if err := actor.require(model.CapRequestSubmit); err != nil {
		return nil, err
	}

	var req *model.SupplyRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		req, err = s.lockVisible(tx, actor, id)
		if err != nil {
			return err
		}
		if req.Submitted() {
			return fmt.Errorf("%w: %s is already %s", ErrDuplicateSubmission, req.RequestNumber, req.Stage)
		}
		if err := checkItems(req.LineItems); err != nil {
			return err
		}

		now := s.now()
		req.RequestedItems = req.LineItems.Clone()
		req.Stage = model.StageSubmitted
		req.SubmittedByID = actor.userID()
		req.SubmittedBy = actor.DisplayName()
		req.SubmittedAt = &now
		req.UpdatedBy = actor.Label()
		if err := s.repos.Requests.Save(tx, req); err != nil {
			return storageErr(err, "submit request "+req.RequestNumber)
		}
		return s.recordTransition(tx, req, model.StageDraft, model.StageSubmitted, actor, "")
	})
	if err != nil {
		return nil, logFailure(s.log, lifecycleModule, "SubmitRequest", id.String(), nil, err)
	}

	s.publish(EventRequestSubmitted, req, actor)
	return req, nil
}

// Authorize approves or rejects a batch of submitted requests in one transaction.
// Approving an APPROVED request and rejecting a rejected one are no-ops.
func (s *lifecycleService) Authorize(ctx context.Context, actor Actor, ids []uuid.UUID, decision Decision, note string) (*AuthorizeResult, error) {
	if err := actor.require(model.CapRequestAuthorize); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, invalid("ids are required")
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, invalid("decision must be approve or reject, got %q", decision)
	}

	result := &AuthorizeResult{Decision: decision, Processed: []uuid.UUID{}, Unchanged: []uuid.UUID{}}
	var changed []model.SupplyRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			req, err := s.repos.Requests.FindByIDForUpdate(tx, id)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if decision == DecisionReject {
					if _, derr := s.repos.Requests.FindDeletedByID(tx, id); derr == nil {
						result.Unchanged = append(result.Unchanged, id)
						continue
					}
				}
				return notFound("request %s", id)
			}
			if err != nil {
				return storageErr(err, "lock request "+id.String())
			}

			if decision == DecisionApprove && req.Stage == model.StageApproved {
				result.Unchanged = append(result.Unchanged, id)
				continue
			}
			// rejection leaves from the same stage approval does
			if err := checkAdvance(req, model.StageApproved); err != nil {
				return err
			}

			if decision == DecisionApprove {
				now := s.now()
				req.Stage = model.StageApproved
				req.AuthorizedByID = actor.userID()
				req.AuthorizedBy = actor.DisplayName()
				req.AuthorizedAt = &now
				req.UpdatedBy = actor.Label()
				if err := s.repos.Requests.Save(tx, req); err != nil {
					return storageErr(err, "approve request "+req.RequestNumber)
				}
				if err := s.recordTransition(tx, req, model.StageSubmitted, model.StageApproved, actor, note); err != nil {
					return err
				}
			} else {
				if err := s.recordTransition(tx, req, model.StageSubmitted, model.StageRejected, actor, note); err != nil {
					return err
				}
				if err := s.repos.Requests.SoftDelete(tx, req, actor.Label()); err != nil {
					return storageErr(err, "reject request "+req.RequestNumber)
				}
			}
			result.Processed = append(result.Processed, id)
			changed = append(changed, *req)
		}
		return nil
	})
	if err != nil {
		return nil, logFailure(s.log, lifecycleModule, "Authorize", string(decision), ids, err)
	}

	event := EventRequestApproved
	if decision == DecisionReject {
		event = EventRequestRejected
	}
	for i := range changed {
		s.publish(event, &changed[i], actor)
	}
	return result, nil
}

// Manage sets the quantities warehouse will deliver. Stock is not touched here.
func (s *lifecycleService) Manage(ctx context.Context, actor Actor, id uuid.UUID, items model.LineItems) (*model.SupplyRequest, error) {
	if err := actor.require(model.CapRequestManage); err != nil {
		return nil, err
	}
	if err := checkItems(items); err != nil {
		return nil, err
	}
	items, err := s.fillFromCatalog(ctx, items)
	if err != nil {
		return nil, err
	}

	var req *model.SupplyRequest
	unchanged := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		req, err = s.repos.Requests.FindByIDForUpdate(tx, id)
		if err != nil {
			return storageErr(err, "request "+id.String())
		}
		if req.Stage == model.StageManaged {
			unchanged = true
			return nil
		}
		if err := checkAdvance(req, model.StageManaged); err != nil {
			return err
		}

		now := s.now()
		req.LineItems = items
		req.Stage = model.StageManaged
		req.ManagedByID = actor.userID()
		req.ManagedBy = actor.DisplayName()
		req.ManagedAt = &now
		req.UpdatedBy = actor.Label()
		if err := s.repos.Requests.Save(tx, req); err != nil {
			return storageErr(err, "manage request "+req.RequestNumber)
		}
		return s.recordTransition(tx, req, model.StageApproved, model.StageManaged, actor, "")
	})
	if err != nil {
		return nil, logFailure(s.log, lifecycleModule, "Manage", id.String(), items, err)
	}

	if !unchanged {
		s.publish(EventRequestManaged, req, actor)
	}
	return req, nil
}

func (s *lifecycleService) Availability(ctx context.Context, actor Actor, id uuid.UUID) ([]ItemAvailability, error) {
	if err := actor.require(model.CapRequestManage); err != nil {
		return nil, err
	}
	req, err := s.repos.Requests.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "request "+id.String())
	}
	articles, err := s.repos.Articles.FindByCodes(ctx, req.LineItems.Codes())
	if err != nil {
		return nil, storageErr(err, "load articles")
	}

	byCode := make(map[string]model.Article, len(articles))
	for _, a := range articles {
		byCode[a.Code] = a
	}

	out := make([]ItemAvailability, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		a, ok := byCode[item.Code]
		av := ItemAvailability{Item: item, InCatalog: ok, OnHand: decimal.Zero}
		if ok {
			av.OnHand = a.OnHandQuantity
			av.Sufficient = a.OnHandQuantity.GreaterThanOrEqual(item.Quantity)
		}
		out = append(out, av)
	}
	return out, nil
}

// Dispatch delivers managed requests in order, decrementing stock floored at zero.
// The whole batch commits or none of it does.
func (s *lifecycleService) Dispatch(ctx context.Context, actor Actor, ids []uuid.UUID, dispatcherID *uuid.UUID) (*DispatchResult, error) {
	if err := actor.require(model.CapRequestDispatch); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, invalid("ids are required")
	}

	result := &DispatchResult{Dispatched: []model.SupplyRequest{}, Unchanged: []uuid.UUID{}, Warnings: []string{}}
	var movements []model.StockMovement

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byID, byName, err := s.resolveDispatcher(tx, actor, dispatcherID)
		if err != nil {
			return err
		}
		result.DispatchedBy = byName

		for _, id := range ids {
			req, err := s.repos.Requests.FindByIDForUpdate(tx, id)
			if err != nil {
				return storageErr(err, "request "+id.String())
			}
			if req.Stage == model.StageDispatched {
				result.Unchanged = append(result.Unchanged, id)
				continue
			}
			if err := checkAdvance(req, model.StageDispatched); err != nil {
				return err
			}

			ref := stockRef{Type: model.RefRequest, ID: &req.ID, Number: req.RequestNumber}
			moved, warnings, err := s.ledger.applyItems(tx, req.LineItems, -1, model.MoveDispatch, ref, actor)
			if err != nil {
				return err
			}
			movements = append(movements, moved...)
			result.Warnings = append(result.Warnings, warnings...)

			now := s.now()
			req.Stage = model.StageDispatched
			req.DispatchedByUserID = byID
			req.DispatchedBy = byName
			req.DispatchedAt = &now
			req.UpdatedBy = actor.Label()
			if err := s.repos.Requests.Save(tx, req); err != nil {
				return storageErr(err, "dispatch request "+req.RequestNumber)
			}
			if err := s.recordTransition(tx, req, model.StageManaged, model.StageDispatched, actor, ""); err != nil {
				return err
			}
			result.Dispatched = append(result.Dispatched, *req)
		}
		return nil
	})
	if err != nil {
		return nil, logFailure(s.log, lifecycleModule, "Dispatch", "dispatch batch", ids, err)
	}

	for _, w := range result.Warnings {
		s.log.WithFields(logrus.Fields{"module": lifecycleModule, "funcName": "Dispatch"}).Warn(w)
	}
	for i := range result.Dispatched {
		s.publish(EventRequestDispatched, &result.Dispatched[i], actor)
	}
	if len(movements) > 0 {
		s.events.Publish(EventStockUpdate, map[string]interface{}{
			"action":    "dispatch",
			"movements": movementPayload(movements),
			"user":      actor.logFields(),
		})
	}
	return result, nil
}

// resolveDispatcher stamps the named user when it exists, else the acting user
func (s *lifecycleService) resolveDispatcher(tx *gorm.DB, actor Actor, userID *uuid.UUID) (*uuid.UUID, string, error) {
	if userID != nil && *userID != uuid.Nil {
		user, err := s.repos.Users.FindByIDTx(tx, *userID)
		if err == nil {
			id := user.ID
			return &id, user.DisplayName(), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", storageErr(err, "dispatching user")
		}
	}
	return actor.userID(), actor.Label(), nil
}

func (s *lifecycleService) requestDepartment(actor Actor, requested *uint) (uint, error) {
	if !actor.Can(model.CapRequestViewAll) {
		if actor.DepartmentID == nil {
			return 0, invalid("user %s has no department", actor.Label())
		}
		return *actor.DepartmentID, nil
	}
	if requested != nil {
		return *requested, nil
	}
	if actor.DepartmentID != nil {
		return *actor.DepartmentID, nil
	}
	return 0, invalid("department_id is required")
}

func (s *lifecycleService) lockVisible(tx *gorm.DB, actor Actor, id uuid.UUID) (*model.SupplyRequest, error) {
	req, err := s.repos.Requests.FindByIDForUpdate(tx, id)
	if err != nil {
		return nil, storageErr(err, "request "+id.String())
	}
	if !actor.seesDepartment(req.DepartmentID) {
		return nil, notFound("request %s", id)
	}
	return req, nil
}

// fillFromCatalog completes missing names and units from the article catalog
func (s *lifecycleService) fillFromCatalog(ctx context.Context, items model.LineItems) (model.LineItems, error) {
	articles, err := s.repos.Articles.FindByCodes(ctx, items.Codes())
	if err != nil {
		return nil, storageErr(err, "load articles")
	}
	byCode := make(map[string]model.Article, len(articles))
	for _, a := range articles {
		byCode[a.Code] = a
	}

	out := items.Clone()
	for i := range out {
		a, ok := byCode[out[i].Code]
		if !ok {
			continue
		}
		if out[i].Name == "" {
			out[i].Name = a.Description
		}
		if out[i].Unit == "" {
			out[i].Unit = string(a.UnitOfMeasure)
		}
	}
	return out, nil
}

// checkAdvance allows only the single forward step that lands on target
func checkAdvance(req *model.SupplyRequest, target model.RequestStage) error {
	if next, ok := req.Stage.Next(); ok && next == target {
		return nil
	}
	return fmt.Errorf("%w: %s is %s, cannot move to %s", ErrInvalidTransition, req.RequestNumber, req.Stage, target)
}

func (s *lifecycleService) recordTransition(tx *gorm.DB, req *model.SupplyRequest, from, to model.RequestStage, actor Actor, note string) error {
	t := &model.RequestTransition{
		RequestID:     req.ID,
		RequestNumber: req.RequestNumber,
		FromStage:     from,
		ToStage:       to,
		ActorUserID:   actor.userID(),
		Actor:         actor.DisplayName(),
		Note:          note,
	}
	return storageErr(s.repos.Transitions.Create(tx, t), "record transition")
}

func (s *lifecycleService) publish(event string, req *model.SupplyRequest, actor Actor) {
	payload := map[string]interface{}{
		"request": map[string]interface{}{
			"id":             req.ID,
			"request_number": req.RequestNumber,
			"stage":          req.Stage,
			"department_id":  req.DepartmentID,
			"department":     req.Department,
		},
		"user":    actor.logFields(),
		"message": fmt.Sprintf("%s: %s %s", actor.DisplayName(), event, req.RequestNumber),
	}
	s.events.Publish(event, payload)
}
