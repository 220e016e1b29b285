package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/metria/innovation-accounting/internal/engine"
	"github.com/metria/innovation-accounting/internal/project"
	"github.com/metria/innovation-accounting/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testProject(id, user string, created time.Time) *project.Project {
	return testutil.NewTestProject(id,
		testutil.WithUser(user),
		testutil.WithCreated(created),
		testutil.WithRisks(engine.Risk{Category: "IT dependency", Level: engine.RiskHigh}),
	)
}

func TestStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := testProject("p1", "ana", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, s.Save(ctx, p))

	got, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, p.Financials, got.Financials)
	assert.Equal(t, p.Risks, got.Risks)
}

func TestStore_GetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, project.ErrNotFound)
}

func TestStore_SaveReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := testProject("p1", "ana", time.Now().UTC())
	require.NoError(t, s.Save(ctx, p))

	p.Name = "Renamed"
	p.Score = 75
	require.NoError(t, s.Save(ctx, p))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	got := testutil.FindProject(all, "p1")
	require.NotNil(t, got)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 75.0, got.Score)
}

func TestStore_UpdateIfUnchanged(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2026, 2, 1, 9, 30, 0, 123456789, time.UTC)

	require.NoError(t, s.Save(ctx, testProject("p1", "ana", created)))
	read, err := s.Get(ctx, "p1")
	require.NoError(t, err)

	read.Analysis = &project.Analysis{Strategic: "fits"}
	require.NoError(t, s.Update(ctx, read, read.UpdatedAt))

	got, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, "fits", got.Analysis.Strategic)

	// A save lands after the read: the conditional write must not clobber it.
	resaved := testProject("p1", "ana", created)
	resaved.UpdatedAt = created.Add(time.Minute)
	resaved.Financials.CostOfProof = 90000
	require.NoError(t, s.Save(ctx, resaved))

	read.Financials.CostOfProof = 1000
	err = s.Update(ctx, read, read.UpdatedAt)
	assert.ErrorIs(t, err, project.ErrStale)

	got, err = s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 90000.0, got.Financials.CostOfProof)
	assert.Nil(t, got.Analysis)

	err = s.Update(ctx, testProject("missing", "ana", created), created)
	assert.ErrorIs(t, err, project.ErrStale)
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, testProject("old", "ana", base)))
	require.NoError(t, s.Save(ctx, testProject("new", "ana", base.Add(48*time.Hour))))
	require.NoError(t, s.Save(ctx, testProject("mid", "bruno", base.Add(24*time.Hour))))

	mine, err := s.ListByUser(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "new", mine[0].ID)
	assert.Equal(t, "old", mine[1].ID)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{all[0].ID, all[1].ID, all[2].ID})

	none, err := s.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testProject("p1", "ana", time.Now().UTC())))
	require.NoError(t, s.Delete(ctx, "p1"))
	_, err := s.Get(ctx, "p1")
	assert.ErrorIs(t, err, project.ErrNotFound)

	assert.NoError(t, s.Delete(ctx, "p1"))
}

func TestStore_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "metria.db")
	ctx := context.Background()

	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, testProject("p1", "ana", time.Now().UTC())))
	require.NoError(t, s.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Project p1", got.Name)
}

func TestStore_ServiceRoundTrip(t *testing.T) {
	s := newTestStore(t)
	svc := project.NewService(nil, s)
	ctx := context.Background()

	p, err := svc.Save(ctx, project.Draft{
		UserID:     "ana",
		Mode:       engine.ModePro,
		Financials: engine.FinancialInputs{StartupCost: 40000, MonthlySavings: 1500},
		Scenarios: &engine.ScenarioSet{
			Realistic: engine.Scenario{BaseCost: 10000, Volume: 100, UnitSavings: 5},
		},
		ICVAnswers: []engine.Response{1, 1, 0.5, 0.5, 0, 0, 1, 1},
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Financials, got.Financials)
	assert.Equal(t, p.ICVAnswers, got.ICVAnswers)
	assert.Equal(t, 62.5, got.ICVScore)
	require.NotNil(t, got.Scenarios)
	assert.Equal(t, *p.Scenarios, *got.Scenarios)
}
