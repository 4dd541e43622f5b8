package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shankarium/plm/internal/models"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	database, err := NewDatabaseWithRetry(Config{
		Driver: DialectSQLite,
		Path:   filepath.Join(t.TempDir(), "plm.db"),
	}, 1, time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.Migrate(context.Background()))
	return database
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int64) *int64     { return &v }

func TestRebind(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ? AND b = '?' AND c = ?"
	assert.Equal(t, q, DialectSQLite.Rebind(q))
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = '?' AND c = $2", DialectPostgres.Rebind(q))
}

func TestMigrateIsIdempotent(t *testing.T) {
	database := openTestDB(t)
	require.NoError(t, database.Migrate(context.Background()))
}

func TestBriefRoundTrip(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	b := &models.Brief{
		ProjectNo:        "MB-001",
		Season:           "SS25",
		TargetMRP:        ptrF(999.5),
		ExpectedSalesQty: ptrI(1200),
		Status:           models.BriefStatusDraft,
		CreatedBy:        "pm",
	}
	b.Kerala = ptrI(300)
	id, err := database.CreateBrief(ctx, b)
	require.NoError(t, err)

	got, err := database.GetBrief(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "MB-001", got.ProjectNo)
	assert.Equal(t, 999.5, *got.TargetMRP)
	assert.Equal(t, int64(300), *got.Kerala)
	assert.Nil(t, got.TN)
	assert.Nil(t, got.SampleAdaptationPct)
	assert.Equal(t, models.BriefStatusDraft, got.Status)
	assert.False(t, got.CreatedAt.IsZero())

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, database.SetBriefStatus(ctx, id, models.BriefStatusSubmitted))
	updated, err := database.GetBrief(ctx, id)
	require.NoError(t, err)
	assert.True(t, updated.CreatedAt.Equal(got.CreatedAt), "created_at is never rewritten")
	assert.True(t, updated.UpdatedAt.After(got.UpdatedAt), "status writes refresh updated_at")

	submitted := models.BriefStatusSubmitted
	list, err := database.ListBriefs(ctx, &submitted, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	_, err = database.GetBrief(ctx, id+100)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, database.SetBriefStatus(ctx, id+100, models.BriefStatusSubmitted), ErrNotFound)
}

func TestDeletedBriefOrphansConcept(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	briefID, err := database.CreateBrief(ctx, &models.Brief{ProjectNo: "MB-002", Status: models.BriefStatusSubmitted})
	require.NoError(t, err)
	conceptID, err := database.CreateConcept(ctx, &models.Concept{
		BriefID: briefID, NDNo: "ND-02", Status: models.ConceptStatusReadyForPM,
	})
	require.NoError(t, err)

	c, err := database.GetConcept(ctx, conceptID)
	require.NoError(t, err)
	require.NotNil(t, c.Brief)
	assert.Equal(t, "MB-002", c.Brief.ProjectNo)

	require.NoError(t, database.DeleteBrief(ctx, briefID))

	c, err = database.GetConcept(ctx, conceptID)
	require.NoError(t, err)
	assert.Nil(t, c.Brief)
	assert.Equal(t, briefID, c.BriefID)
}

func TestCatalogUsesLatestSalesInfo(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	briefID, err := database.CreateBrief(ctx, &models.Brief{ProjectNo: "MB-003", Status: models.BriefStatusSubmitted})
	require.NoError(t, err)
	ready, err := database.CreateConcept(ctx, &models.Concept{BriefID: briefID, NDNo: "ND-03", Status: models.ConceptStatusReadyForSales})
	require.NoError(t, err)
	_, err = database.CreateConcept(ctx, &models.Concept{BriefID: briefID, NDNo: "ND-04", Status: models.ConceptStatusReadyForPM})
	require.NoError(t, err)
	bare, err := database.CreateConcept(ctx, &models.Concept{BriefID: briefID, NDNo: "ND-05", Status: models.ConceptStatusReadyForSales})
	require.NoError(t, err)

	_, err = database.CreateSalesInfo(ctx, &models.SalesInfo{ConceptID: ready, MarginPct: ptrF(30)})
	require.NoError(t, err)
	latest, err := database.CreateSalesInfo(ctx, &models.SalesInfo{ConceptID: ready, MarginPct: ptrF(42)})
	require.NoError(t, err)

	items, err := database.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, bare, items[0].ID)
	assert.Nil(t, items[0].Sales)

	assert.Equal(t, ready, items[1].ID)
	require.NotNil(t, items[1].Sales)
	assert.Equal(t, latest, items[1].Sales.ID)
	assert.Equal(t, 42.0, *items[1].Sales.MarginPct)
	assert.Equal(t, models.SalesStatusPublished, items[1].Sales.Status)
	require.NotNil(t, items[1].Brief)
	assert.Equal(t, "MB-003", items[1].Brief.ProjectNo)

	s, err := database.LatestSalesInfo(ctx, ready)
	require.NoError(t, err)
	assert.Equal(t, latest, s.ID)

	_, err = database.LatestSalesInfo(ctx, bare)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	boom := errors.New("boom")
	err := database.WithTx(ctx, func(q *Queries) error {
		if _, err := q.CreateBrief(ctx, &models.Brief{ProjectNo: "MB-TX", Status: models.BriefStatusDraft}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	counts, err := database.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Briefs)
}

func TestSeedUsersOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	n, err := database.SeedUsers(ctx, []models.User{
		{Username: "admin", PasswordHash: "x", Role: models.RoleAdmin},
		{Username: "pm", PasswordHash: "x", Role: models.RolePM},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = database.SeedUsers(ctx, []models.User{{Username: "other", PasswordHash: "x", Role: models.RoleSales}})
	require.NoError(t, err)
	assert.Zero(t, n)

	u, err := database.GetUserByUsername(ctx, "pm")
	require.NoError(t, err)
	assert.Equal(t, models.RolePM, u.Role)

	_, err = database.GetUserByUsername(ctx, "other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearWorkflowKeepsUsers(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	_, err := database.CreateUser(ctx, &models.User{Username: "admin", PasswordHash: "x", Role: models.RoleAdmin})
	require.NoError(t, err)
	briefID, err := database.CreateBrief(ctx, &models.Brief{ProjectNo: "MB-004", Status: models.BriefStatusDraft})
	require.NoError(t, err)
	conceptID, err := database.CreateConcept(ctx, &models.Concept{BriefID: briefID, Status: models.ConceptStatusReadyForPM})
	require.NoError(t, err)
	_, err = database.CreateSalesInfo(ctx, &models.SalesInfo{ConceptID: conceptID})
	require.NoError(t, err)
	_, err = database.CreateComment(ctx, &models.Comment{EntityType: models.CommentTargetBrief, EntityID: briefID, Author: "admin", Body: "ok"})
	require.NoError(t, err)

	require.NoError(t, database.ClearWorkflow(ctx))

	counts, err := database.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TableCounts{Users: 1}, counts)
}

func TestCommentsOldestFirst(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	for _, body := range []string{"first", "second"} {
		_, err := database.CreateComment(ctx, &models.Comment{EntityType: models.CommentTargetConcept, EntityID: 7, Author: "npd", Body: body})
		require.NoError(t, err)
	}
	_, err := database.CreateComment(ctx, &models.Comment{EntityType: models.CommentTargetBrief, EntityID: 7, Author: "pm", Body: "elsewhere"})
	require.NoError(t, err)

	comments, err := database.ListComments(ctx, models.CommentTargetConcept, 7)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, "second", comments[1].Body)
}
