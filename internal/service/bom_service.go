package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-bom-graph/internal/bomgraph"
	"go-bom-graph/internal/model"
	"go-bom-graph/internal/repository"
	"go-bom-graph/internal/ws"
	"go-bom-graph/pkg/apperror"
	"go-bom-graph/pkg/logger"
	"go-bom-graph/pkg/metrics"
)

// DefaultQuantity applies when a caller creates a link without a quantity.
const DefaultQuantity = 1

type BomService interface {
	CreateLink(ctx context.Context, parentID, childID string, quantity int) (*model.BomLink, error)
	UpdateLink(ctx context.Context, parentID, childID string, quantity int) (*model.BomLink, error)
	RemoveLink(ctx context.Context, parentID, childID string) error
	GetChildLinks(ctx context.Context, parentID string) ([]model.BomLink, error)
	GetParentIDs(ctx context.Context, childID string) (map[string]struct{}, error)
}

type bomService struct {
	store   repository.Store
	audit   *AuditTrail
	events  EventPublisher
	metrics *metrics.BomMetrics
	log     *logger.Logger

	// serializes link mutations so the cycle check and the insert see the
	// same edge set
	mu sync.Mutex
}

func NewBomService(store repository.Store, audit *AuditTrail, events EventPublisher, m *metrics.BomMetrics, log *logger.Logger) BomService {
	if log == nil {
		log = logger.Nop()
	}
	return &bomService{
		store:   store,
		audit:   audit,
		events:  publisherOrNoop(events),
		metrics: m,
		log:     log,
	}
}

func validQuantity(quantity int) error {
	if quantity <= 0 {
		return apperror.Validation("Quantity must be a positive integer.")
	}
	return nil
}

func (s *bomService) requirePair(ctx context.Context, tx repository.Store, parentID, childID string) (*model.Part, *model.Part, error) {
	parent, err := requirePart(ctx, tx, parentID)
	if err != nil {
		return nil, nil, err
	}
	child, err := requirePart(ctx, tx, childID)
	if err != nil {
		return nil, nil, err
	}
	return parent, child, nil
}

func (s *bomService) CreateLink(ctx context.Context, parentID, childID string, quantity int) (*model.BomLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		link          *model.BomLink
		parent, child *model.Part
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		parent, child, err = s.requirePair(ctx, tx, parentID, childID)
		if err != nil {
			return err
		}
		if parentID == childID {
			return apperror.Validation("A part cannot be linked to itself.")
		}
		if err := validQuantity(quantity); err != nil {
			return err
		}

		_, err = tx.Links().Find(ctx, parentID, childID)
		if err == nil {
			return apperror.Conflict("BOM link between %s and %s already exists.", parent.PartNumber, child.PartNumber)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return apperror.Internal(err, "loading BOM link")
		}

		cycle, err := bomgraph.WouldCreateCycle(ctx, parentID, childID, tx.Links().ChildIDs)
		if err != nil {
			return apperror.Internal(err, "checking BOM reachability")
		}
		if cycle {
			return apperror.Cycle("BOM link creation failed because it would introduce a cycle.")
		}

		link = &model.BomLink{ParentID: parentID, ChildID: childID, Quantity: quantity}
		if err := tx.Links().Create(ctx, link); err != nil {
			return apperror.Internal(err, "saving BOM link")
		}

		meta := linkMetadata(parent, child, quantity)
		return s.recordPair(ctx, tx, parent, child, model.AuditLinkCreated,
			fmt.Sprintf("Added %s x%d to the BOM.", child.PartNumber, quantity),
			fmt.Sprintf("Added to the BOM of %s x%d.", parent.PartNumber, quantity),
			meta)
	})
	if err != nil {
		s.rejected(ctx, err, parentID, childID)
		return nil, err
	}

	s.committed(ctx, model.AuditLinkCreated, parent, child, quantity,
		fmt.Sprintf("Linked %s to %s x%d.", child.PartNumber, parent.PartNumber, quantity))
	return link, nil
}

func (s *bomService) UpdateLink(ctx context.Context, parentID, childID string, quantity int) (*model.BomLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		link          *model.BomLink
		parent, child *model.Part
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		parent, child, err = s.requirePair(ctx, tx, parentID, childID)
		if err != nil {
			return err
		}
		link, err = s.requireLink(ctx, tx, parent, child)
		if err != nil {
			return err
		}
		if err := validQuantity(quantity); err != nil {
			return err
		}

		previous := link.Quantity
		if err := tx.Links().UpdateQuantity(ctx, parentID, childID, quantity); err != nil {
			return apperror.Internal(err, "updating BOM link")
		}
		link.Quantity = quantity

		meta := linkMetadata(parent, child, quantity)
		meta["previousQuantity"] = previous
		return s.recordPair(ctx, tx, parent, child, model.AuditLinkUpdated,
			fmt.Sprintf("Changed quantity of %s from %d to %d.", child.PartNumber, previous, quantity),
			fmt.Sprintf("Quantity in the BOM of %s changed from %d to %d.", parent.PartNumber, previous, quantity),
			meta)
	})
	if err != nil {
		s.rejected(ctx, err, parentID, childID)
		return nil, err
	}

	s.committed(ctx, model.AuditLinkUpdated, parent, child, quantity,
		fmt.Sprintf("Updated %s under %s to x%d.", child.PartNumber, parent.PartNumber, quantity))
	return link, nil
}

func (s *bomService) RemoveLink(ctx context.Context, parentID, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		parent, child *model.Part
		quantity      int
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		parent, child, err = s.requirePair(ctx, tx, parentID, childID)
		if err != nil {
			return err
		}
		link, err := s.requireLink(ctx, tx, parent, child)
		if err != nil {
			return err
		}
		quantity = link.Quantity

		if err := tx.Links().Delete(ctx, parentID, childID); err != nil {
			return apperror.Internal(err, "removing BOM link")
		}

		return s.recordPair(ctx, tx, parent, child, model.AuditLinkRemoved,
			fmt.Sprintf("Removed %s from the BOM.", child.PartNumber),
			fmt.Sprintf("Removed from the BOM of %s.", parent.PartNumber),
			linkMetadata(parent, child, quantity))
	})
	if err != nil {
		s.rejected(ctx, err, parentID, childID)
		return err
	}

	s.committed(ctx, model.AuditLinkRemoved, parent, child, quantity,
		fmt.Sprintf("Removed %s from %s.", child.PartNumber, parent.PartNumber))
	return nil
}

func (s *bomService) requireLink(ctx context.Context, tx repository.Store, parent, child *model.Part) (*model.BomLink, error) {
	link, err := tx.Links().Find(ctx, parent.ID, child.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("No BOM link exists between %s and %s.", parent.PartNumber, child.PartNumber)
	}
	if err != nil {
		return nil, apperror.Internal(err, "loading BOM link")
	}
	return link, nil
}

// recordPair writes the parent-side and child-side audit entries.
func (s *bomService) recordPair(ctx context.Context, tx repository.Store, parent, child *model.Part, action model.AuditAction, parentMsg, childMsg string, meta map[string]any) error {
	if _, err := s.audit.Record(ctx, tx, parent.ID, action, parentMsg, meta); err != nil {
		return apperror.Internal(err, "recording audit")
	}
	if _, err := s.audit.Record(ctx, tx, child.ID, action, childMsg, meta); err != nil {
		return apperror.Internal(err, "recording audit")
	}
	return nil
}

func linkMetadata(parent, child *model.Part, quantity int) map[string]any {
	return map[string]any{
		"parentId":         parent.ID,
		"parentPartNumber": parent.PartNumber,
		"childId":          child.ID,
		"childPartNumber":  child.PartNumber,
		"quantity":         quantity,
	}
}

func (s *bomService) rejected(ctx context.Context, err error, parentID, childID string) {
	kind := apperror.KindOf(err)
	fields := s.log.WithFields(ctx, map[string]any{"parent_id": parentID, "child_id": childID})
	if kind == apperror.KindInternal {
		s.log.Error(fields, "BOM link mutation failed", err)
	} else {
		s.log.Debug(fields, err.Error())
	}
	s.metrics.IncRejection(string(kind))
}

func (s *bomService) committed(ctx context.Context, action model.AuditAction, parent, child *model.Part, quantity int, message string) {
	s.metrics.IncMutation(string(action))
	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"parent_id": parent.ID,
		"child_id":  child.ID,
		"action":    string(action),
	}), message)
	s.events.Publish(ws.Event{
		Type:     ws.EventBomChanged,
		Action:   string(action),
		ParentID: parent.ID,
		ChildID:  child.ID,
		Message:  message,
		Data:     map[string]any{"quantity": quantity},
	})
}

func (s *bomService) GetChildLinks(ctx context.Context, parentID string) ([]model.BomLink, error) {
	if _, err := requirePart(ctx, s.store, parentID); err != nil {
		return nil, err
	}
	links, err := s.store.Links().ChildLinks(ctx, parentID)
	if err != nil {
		return nil, apperror.Internal(err, "loading child links")
	}
	return links, nil
}

func (s *bomService) GetParentIDs(ctx context.Context, childID string) (map[string]struct{}, error) {
	if _, err := requirePart(ctx, s.store, childID); err != nil {
		return nil, err
	}
	ids, err := s.store.Links().ParentIDs(ctx, childID)
	if err != nil {
		return nil, apperror.Internal(err, "loading parent ids")
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
