package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-bom-graph/internal/model"
	"go-bom-graph/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPart(t *testing.T, store Store, id, number, name string) *model.Part {
	t.Helper()
	part := &model.Part{BaseModel: model.BaseModel{ID: id}, PartNumber: number, Name: name}
	require.NoError(t, store.Parts().Create(context.Background(), part))
	return part
}

func TestPartCreateRequiresID(t *testing.T) {
	store := NewStore(testdb.New(t))

	err := store.Parts().Create(context.Background(), &model.Part{PartNumber: "PRT-000001", Name: "Bolt"})
	assert.ErrorIs(t, err, model.ErrMissingID)
}

func TestPartSearch(t *testing.T) {
	store := NewStore(testdb.New(t))
	ctx := context.Background()
	seedPart(t, store, "PART-0001", "PRT-000002", "Hex Bolt")
	seedPart(t, store, "PART-0002", "PRT-000001", "Washer")
	seedPart(t, store, "PART-0003", "BOLT-100", "Frame")
	seedPart(t, store, "PART-0004", "PCT_50", "Half bolt")

	all, err := store.Parts().Search(ctx, PartFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"BOLT-100", "PCT_50", "PRT-000001", "PRT-000002"},
		[]string{all[0].PartNumber, all[1].PartNumber, all[2].PartNumber, all[3].PartNumber})

	byQ, err := store.Parts().Search(ctx, PartFilter{Q: "bolt"})
	require.NoError(t, err)
	assert.Len(t, byQ, 3, "q matches name or part number")

	both, err := store.Parts().Search(ctx, PartFilter{PartNumber: "prt", Name: "BOLT"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "PART-0001", both[0].ID)

	literal, err := store.Parts().Search(ctx, PartFilter{PartNumber: "_"})
	require.NoError(t, err)
	require.Len(t, literal, 1, "underscore is matched literally")
	assert.Equal(t, "PCT_50", literal[0].PartNumber)
}

func TestFindReturnsErrNotFound(t *testing.T) {
	store := NewStore(testdb.New(t))
	ctx := context.Background()

	_, err := store.Parts().FindByID(ctx, "PART-9999")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Parts().FindByPartNumber(ctx, "PRT-999999")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Links().Find(ctx, "a", "b")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Links().Delete(ctx, "a", "b"), ErrNotFound)
	assert.ErrorIs(t, store.Links().UpdateQuantity(ctx, "a", "b", 3), ErrNotFound)
}

func TestLinksOrderedByPartNumber(t *testing.T) {
	store := NewStore(testdb.New(t))
	ctx := context.Background()
	seedPart(t, store, "PART-0001", "ASSY", "Assembly")
	seedPart(t, store, "PART-0002", "ZED", "Zed")
	seedPart(t, store, "PART-0003", "ALPHA", "Alpha")
	seedPart(t, store, "PART-0004", "MID", "Other assembly")

	links := store.Links()
	require.NoError(t, links.Create(ctx, &model.BomLink{ParentID: "PART-0001", ChildID: "PART-0002", Quantity: 1}))
	require.NoError(t, links.Create(ctx, &model.BomLink{ParentID: "PART-0001", ChildID: "PART-0003", Quantity: 4}))
	require.NoError(t, links.Create(ctx, &model.BomLink{ParentID: "PART-0004", ChildID: "PART-0003", Quantity: 2}))

	children, err := links.ChildLinks(ctx, "PART-0001")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "PART-0003", children[0].ChildID)
	require.NotNil(t, children[0].Child)
	assert.Equal(t, "ALPHA", children[0].Child.PartNumber)
	assert.Equal(t, "PART-0002", children[1].ChildID)

	parents, err := links.ParentLinks(ctx, "PART-0003")
	require.NoError(t, err)
	require.Len(t, parents, 2)
	assert.Equal(t, "ASSY", parents[0].Parent.PartNumber)
	assert.Equal(t, "MID", parents[1].Parent.PartNumber)

	ids, err := links.ParentIDs(ctx, "PART-0003")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"PART-0001", "PART-0004"}, ids)

	require.NoError(t, links.UpdateQuantity(ctx, "PART-0001", "PART-0002", 7))
	link, err := links.Find(ctx, "PART-0001", "PART-0002")
	require.NoError(t, err)
	assert.Equal(t, 7, link.Quantity)

	require.NoError(t, links.Delete(ctx, "PART-0001", "PART-0002"))
	childIDs, err := links.ChildIDs(ctx, "PART-0001")
	require.NoError(t, err)
	assert.Equal(t, []string{"PART-0003"}, childIDs)
}

func TestTransactionRollsBackEveryWrite(t *testing.T) {
	store := NewStore(testdb.New(t))
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(tx Store) error {
		seedPart(t, tx, "PART-0001", "PRT-000001", "Bolt")
		require.NoError(t, tx.Sequences().Advance(ctx, "part_id", 1))
		require.NoError(t, tx.Audits().Append(ctx, &model.AuditLog{
			ID: "AUD-000001", PartID: "PART-0001", Action: model.AuditPartCreated,
			Message: "created", Timestamp: time.Now(),
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Parts().FindByID(ctx, "PART-0001")
	assert.ErrorIs(t, err, ErrNotFound)
	current, err := store.Sequences().Current(ctx, "part_id")
	require.NoError(t, err)
	assert.Zero(t, current)
	entries, err := store.Audits().ListByPart(ctx, "PART-0001", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSequenceAdvanceNeverLowers(t *testing.T) {
	store := NewStore(testdb.New(t))
	ctx := context.Background()
	seqs := store.Sequences()

	require.NoError(t, seqs.Advance(ctx, "part_number", 5))
	require.NoError(t, seqs.Advance(ctx, "part_number", 3))
	current, err := seqs.Current(ctx, "part_number")
	require.NoError(t, err)
	assert.Equal(t, int64(5), current)

	require.NoError(t, seqs.Advance(ctx, "part_number", 9))
	current, err = seqs.Current(ctx, "part_number")
	require.NoError(t, err)
	assert.Equal(t, int64(9), current)
}

func TestSequenceObserved(t *testing.T) {
	store := NewStore(testdb.New(t))
	ctx := context.Background()
	seedPart(t, store, "PART-0001", "PRT-000010", "A")
	seedPart(t, store, "PART-0002", "CUSTOM-1", "B")

	values, err := store.Sequences().Observed(ctx, &model.Part{}, "part_number", "PRT-")
	require.NoError(t, err)
	assert.Equal(t, []string{"PRT-000010"}, values)
}

func TestAuditListByPartNewestFirst(t *testing.T) {
	store := NewStore(testdb.New(t))
	ctx := context.Background()
	seedPart(t, store, "PART-0001", "PRT-000001", "A")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"AUD-000001", "AUD-000002", "AUD-000003"} {
		require.NoError(t, store.Audits().Append(ctx, &model.AuditLog{
			ID: id, PartID: "PART-0001", Action: model.AuditPartUpdated,
			Message: id, Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := store.Audits().ListByPart(ctx, "PART-0001", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "AUD-000003", entries[0].ID)
	assert.Equal(t, "AUD-000002", entries[1].ID)

	since, err := store.Audits().ListSince(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, "AUD-000003", since[0].ID)
}

func TestGraphStats(t *testing.T) {
	store := NewStore(testdb.New(t))
	ctx := context.Background()
	seedPart(t, store, "PART-0001", "A", "A")
	seedPart(t, store, "PART-0002", "B", "B")
	seedPart(t, store, "PART-0003", "C", "C")
	require.NoError(t, store.Links().Create(ctx, &model.BomLink{ParentID: "PART-0001", ChildID: "PART-0002", Quantity: 1}))
	require.NoError(t, store.Links().Create(ctx, &model.BomLink{ParentID: "PART-0001", ChildID: "PART-0003", Quantity: 1}))
	require.NoError(t, store.Links().Create(ctx, &model.BomLink{ParentID: "PART-0002", ChildID: "PART-0003", Quantity: 1}))

	stats, err := store.Stats().GraphStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &GraphStats{TotalParts: 3, TotalLinks: 3, Assemblies: 2, TopLevelParts: 1, LeafParts: 1}, stats)
}

func TestPartCreateDuplicateNumber(t *testing.T) {
	store := NewStore(testdb.New(t))
	ctx := context.Background()
	seedPart(t, store, "PART-0001", "PRT-000001", "A")

	err := store.Parts().Create(ctx, &model.Part{BaseModel: model.BaseModel{ID: "PART-0002"}, PartNumber: "PRT-000001", Name: "B"})
	assert.ErrorIs(t, err, ErrDuplicate)

	b := seedPart(t, store, "PART-0003", "PRT-000003", "C")
	b.PartNumber = "PRT-000001"
	assert.ErrorIs(t, store.Parts().Update(ctx, b), ErrDuplicate)
}

func TestAuditListByPartTieBreakIsNumeric(t *testing.T) {
	store := NewStore(testdb.New(t))
	ctx := context.Background()
	seedPart(t, store, "PART-0001", "PRT-000001", "A")
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"AUD-999999", "AUD-1000000", "AUD-999998"} {
		require.NoError(t, store.Audits().Append(ctx, &model.AuditLog{
			ID: id, PartID: "PART-0001", Action: model.AuditPartUpdated, Message: id, Timestamp: at,
		}))
	}

	entries, err := store.Audits().ListByPart(ctx, "PART-0001", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"AUD-1000000", "AUD-999999", "AUD-999998"},
		[]string{entries[0].ID, entries[1].ID, entries[2].ID})
}

func TestPartNumberOrderForcesBytewiseCollationOnPostgres(t *testing.T) {
	db := testdb.New(t)

	render := func(dialect, table string) string {
		return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
			var parts []model.Part
			return tx.Model(&model.Part{}).Order(partNumberOrder(dialect, table)).Find(&parts)
		})
	}

	assert.Contains(t, render("postgres", ""), "ORDER BY `part_number` COLLATE \"C\"")
	assert.Contains(t, render("postgres", "Child"), "ORDER BY `Child`.`part_number` COLLATE \"C\"")
	sqliteSQL := render("sqlite", "")
	assert.Contains(t, sqliteSQL, "ORDER BY `part_number`")
	assert.NotContains(t, sqliteSQL, "COLLATE")
}
