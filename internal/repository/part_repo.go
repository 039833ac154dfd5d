package repository

import (
	"context"
	"strings"

	"go-bom-graph/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PartFilter struct {
	PartNumber string
	Name       string
	Q          string
}

type PartRepository interface {
	Create(ctx context.Context, part *model.Part) error
	Update(ctx context.Context, part *model.Part) error
	FindByID(ctx context.Context, id string) (*model.Part, error)
	FindByPartNumber(ctx context.Context, partNumber string) (*model.Part, error)
	Search(ctx context.Context, filter PartFilter) ([]model.Part, error)
}

type partRepo struct {
	db *gorm.DB
}

func NewPartRepo(db *gorm.DB) PartRepository {
	return &partRepo{db}
}

func (r *partRepo) Create(ctx context.Context, part *model.Part) error {
	return duplicate(r.db.WithContext(ctx).Create(part).Error)
}

func (r *partRepo) Update(ctx context.Context, part *model.Part) error {
	return duplicate(r.db.WithContext(ctx).Save(part).Error)
}

func (r *partRepo) FindByID(ctx context.Context, id string) (*model.Part, error) {
	var part model.Part
	if err := r.db.WithContext(ctx).First(&part, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &part, nil
}

func (r *partRepo) FindByPartNumber(ctx context.Context, partNumber string) (*model.Part, error) {
	var part model.Part
	if err := r.db.WithContext(ctx).First(&part, "part_number = ?", partNumber).Error; err != nil {
		return nil, notFound(err)
	}
	return &part, nil
}

// Search applies case-insensitive substring filters joined with AND; Q
// matches name or part number. Results are ordered by part number.
func (r *partRepo) Search(ctx context.Context, filter PartFilter) ([]model.Part, error) {
	query := r.db.WithContext(ctx).Model(&model.Part{})

	if pn := strings.TrimSpace(filter.PartNumber); pn != "" {
		query = query.Where("LOWER(part_number) LIKE ? ESCAPE '\\'", containsPattern(pn))
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(name))
	}
	if q := strings.TrimSpace(filter.Q); q != "" {
		pattern := containsPattern(q)
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(part_number) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	var parts []model.Part
	err := query.Order(partNumberOrder(r.db.Dialector.Name(), "")).Find(&parts).Error
	return parts, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// partNumberOrder sorts part numbers bytewise. Postgres locale collations
// skip punctuation, so the "C" collation is forced there; sqlite already
// compares with BINARY.
func partNumberOrder(dialect, table string) clause.OrderBy {
	column := clause.Column{Table: table, Name: "part_number"}
	if dialect == "postgres" {
		return clause.OrderBy{Expression: clause.Expr{SQL: `? COLLATE "C"`, Vars: []interface{}{column}}}
	}
	return clause.OrderBy{Columns: []clause.OrderByColumn{{Column: column}}}
}
