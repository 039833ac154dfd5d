package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go-bom-graph/internal/model"
	"go-bom-graph/internal/repository"
	"go-bom-graph/internal/ws"
	"go-bom-graph/pkg/apperror"
	"go-bom-graph/pkg/logger"
	"go-bom-graph/pkg/metrics"
)

const defaultAuditLimit = 50

type CreatePartInput struct {
	Name        string
	PartNumber  *string
	Description *string
}

type UpdatePartInput struct {
	Name        *string
	Description *string
	PartNumber  *string
}

type PartService interface {
	CreatePart(ctx context.Context, in CreatePartInput) (*model.Part, error)
	UpdatePart(ctx context.Context, id string, in UpdatePartInput) (*model.Part, error)
	SearchParts(ctx context.Context, filter repository.PartFilter) ([]model.PartSummary, error)
	RequirePart(ctx context.Context, id string) (*model.Part, error)
	GetPartDetails(ctx context.Context, id string) (*model.PartDetails, error)
	ListAudit(ctx context.Context, id string, limit int) ([]model.AuditLog, error)
}

type partService struct {
	store       repository.Store
	audit       *AuditTrail
	partIDs     *Counter
	partNumbers *Counter
	events      EventPublisher
	metrics     *metrics.BomMetrics
	log         *logger.Logger
}

// NewPartService builds the part registry and seeds its id and part number
// counters from storage.
func NewPartService(ctx context.Context, store repository.Store, audit *AuditTrail, events EventPublisher, m *metrics.BomMetrics, log *logger.Logger) (PartService, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &partService{
		store:       store,
		audit:       audit,
		partIDs:     NewCounter("part_id", "PART-", 4, &model.Part{}, "id"),
		partNumbers: NewCounter("part_number", "PRT-", 6, &model.Part{}, "part_number"),
		events:      publisherOrNoop(events),
		metrics:     m,
		log:         log,
	}
	if err := s.partIDs.Load(ctx, store); err != nil {
		return nil, err
	}
	if err := s.partNumbers.Load(ctx, store); err != nil {
		return nil, err
	}
	return s, nil
}

// requirePart is the single existence check used by every component.
func requirePart(ctx context.Context, store repository.Store, id string) (*model.Part, error) {
	part, err := store.Parts().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("Part %s was not found.", id)
	}
	if err != nil {
		return nil, apperror.Internal(err, fmt.Sprintf("loading part %s", id))
	}
	return part, nil
}

func normalizePartNumber(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func (s *partService) RequirePart(ctx context.Context, id string) (*model.Part, error) {
	return requirePart(ctx, s.store, id)
}

func (s *partService) CreatePart(ctx context.Context, in CreatePartInput) (*model.Part, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("Part name is required.")
	}
	var description string
	if in.Description != nil {
		description = strings.TrimSpace(*in.Description)
	}
	var supplied string
	if in.PartNumber != nil {
		supplied = normalizePartNumber(*in.PartNumber)
	}

	var created *model.Part
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		partNumber, err := s.resolvePartNumber(ctx, tx, supplied, "")
		if err != nil {
			return err
		}

		id, idSeq, err := s.partIDs.Next()
		if err != nil {
			return apperror.Internal(err, "allocating part id")
		}
		part := &model.Part{
			BaseModel:   model.BaseModel{ID: id},
			PartNumber:  partNumber,
			Name:        name,
			Description: description,
		}
		if err := tx.Parts().Create(ctx, part); err != nil {
			return savePartError(err, part.PartNumber)
		}
		if err := s.partIDs.Persist(ctx, tx, idSeq); err != nil {
			return apperror.Internal(err, "saving part id sequence")
		}

		_, err = s.audit.Record(ctx, tx, part.ID, model.AuditPartCreated,
			fmt.Sprintf("Part %s created.", part.PartNumber),
			map[string]any{"partNumber": part.PartNumber, "name": part.Name})
		if err != nil {
			return apperror.Internal(err, "recording audit")
		}
		created = part
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, created, model.AuditPartCreated, fmt.Sprintf("Part %s created.", created.PartNumber))
	return created, nil
}

// resolvePartNumber allocates a number when supplied is empty, otherwise
// checks uniqueness (ignoring selfID) and advances the allocator past it.
func (s *partService) resolvePartNumber(ctx context.Context, tx repository.Store, supplied, selfID string) (string, error) {
	if supplied == "" {
		for {
			candidate, n, err := s.partNumbers.Next()
			if err != nil {
				return "", apperror.Internal(err, "allocating part number")
			}
			taken, err := partNumberTaken(ctx, tx, candidate, selfID)
			if err != nil {
				return "", err
			}
			if taken {
				continue
			}
			if err := s.partNumbers.Persist(ctx, tx, n); err != nil {
				return "", apperror.Internal(err, "saving part number sequence")
			}
			return candidate, nil
		}
	}

	taken, err := partNumberTaken(ctx, tx, supplied, selfID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperror.Conflict("Part number %s is already in use.", supplied)
	}
	if n, ok := s.partNumbers.Observe(supplied); ok {
		if err := s.partNumbers.Persist(ctx, tx, n); err != nil {
			return "", apperror.Internal(err, "saving part number sequence")
		}
	}
	return supplied, nil
}

// savePartError reports a unique index violation as the same conflict the
// pre-insert check returns; a concurrent writer can win between the two.
func savePartError(err error, partNumber string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperror.Conflict("Part number %s is already in use.", partNumber)
	}
	return apperror.Internal(err, "saving part")
}

func partNumberTaken(ctx context.Context, tx repository.Store, partNumber, selfID string) (bool, error) {
	existing, err := tx.Parts().FindByPartNumber(ctx, partNumber)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperror.Internal(err, "checking part number")
	}
	return existing.ID != selfID, nil
}

func (s *partService) UpdatePart(ctx context.Context, id string, in UpdatePartInput) (*model.Part, error) {
	var updated *model.Part
	var message string
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		part, err := requirePart(ctx, tx, id)
		if err != nil {
			return err
		}

		changes := map[string]any{}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperror.Validation("Part name is required.")
			}
			if name != part.Name {
				changes["name"] = map[string]any{"from": part.Name, "to": name}
				part.Name = name
			}
		}
		if in.Description != nil {
			description := strings.TrimSpace(*in.Description)
			if description != part.Description {
				changes["description"] = map[string]any{"from": part.Description, "to": description}
				part.Description = description
			}
		}
		if in.PartNumber != nil {
			partNumber := normalizePartNumber(*in.PartNumber)
			if partNumber == "" {
				return apperror.Validation("Part number cannot be empty.")
			}
			if partNumber != part.PartNumber {
				if _, err := s.resolvePartNumber(ctx, tx, partNumber, part.ID); err != nil {
					return err
				}
				changes["partNumber"] = map[string]any{"from": part.PartNumber, "to": partNumber}
				part.PartNumber = partNumber
			}
		}

		if err := tx.Parts().Update(ctx, part); err != nil {
			return savePartError(err, part.PartNumber)
		}

		message = fmt.Sprintf("Part %s updated.", part.PartNumber)
		if len(changes) > 0 {
			message = fmt.Sprintf("Part %s updated: %s.", part.PartNumber, strings.Join(sortedKeys(changes), ", "))
		}
		if _, err := s.audit.Record(ctx, tx, part.ID, model.AuditPartUpdated, message,
			map[string]any{"changes": changes}); err != nil {
			return apperror.Internal(err, "recording audit")
		}
		updated = part
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, updated, model.AuditPartUpdated, message)
	return updated, nil
}

func (s *partService) committed(ctx context.Context, part *model.Part, action model.AuditAction, message string) {
	s.metrics.IncMutation(string(action))
	logCtx := s.log.WithPartID(ctx, part.ID)
	s.log.Info(s.log.WithFields(logCtx, map[string]any{
		"part_number": part.PartNumber,
		"action":      string(action),
	}), message)
	s.events.Publish(ws.Event{
		Type:    ws.EventPartChanged,
		Action:  string(action),
		PartID:  part.ID,
		Message: message,
		Data:    map[string]any{"part": part.Summary()},
	})
}

func (s *partService) SearchParts(ctx context.Context, filter repository.PartFilter) ([]model.PartSummary, error) {
	parts, err := s.store.Parts().Search(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err, "searching parts")
	}
	summaries := make([]model.PartSummary, 0, len(parts))
	for i := range parts {
		summaries = append(summaries, parts[i].Summary())
	}
	return summaries, nil
}

func (s *partService) GetPartDetails(ctx context.Context, id string) (*model.PartDetails, error) {
	part, err := requirePart(ctx, s.store, id)
	if err != nil {
		return nil, err
	}

	parentLinks, err := s.store.Links().ParentLinks(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "loading parent links")
	}
	childLinks, err := s.store.Links().ChildLinks(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "loading child links")
	}

	details := &model.PartDetails{
		Part:        *part,
		ParentParts: make([]model.LinkedPart, 0, len(parentLinks)),
		ChildParts:  make([]model.LinkedPart, 0, len(childLinks)),
	}
	for _, link := range parentLinks {
		if link.Parent == nil {
			continue
		}
		details.ParentParts = append(details.ParentParts, model.LinkedPart{
			PartSummary: link.Parent.Summary(),
			Quantity:    link.Quantity,
		})
	}
	for _, link := range childLinks {
		if link.Child == nil {
			continue
		}
		details.ChildParts = append(details.ChildParts, model.LinkedPart{
			PartSummary: link.Child.Summary(),
			Quantity:    link.Quantity,
		})
	}
	details.ParentCount = len(details.ParentParts)
	details.ChildCount = len(details.ChildParts)
	return details, nil
}

func (s *partService) ListAudit(ctx context.Context, id string, limit int) ([]model.AuditLog, error) {
	if _, err := requirePart(ctx, s.store, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	entries, err := s.store.Audits().ListByPart(ctx, id, limit)
	if err != nil {
		return nil, apperror.Internal(err, "loading audit entries")
	}
	return entries, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
