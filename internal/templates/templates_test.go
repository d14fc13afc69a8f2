package templates

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/keepup/internal/calendar"
	apperrors "github.com/julianstephens/keepup/internal/errors"
	"github.com/julianstephens/keepup/internal/models"
	"github.com/julianstephens/keepup/internal/scheduler"
	"github.com/julianstephens/keepup/internal/storage/sqlite"
)

func setup(t *testing.T) (*Adapter, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "keepup.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })
	return New(store), store
}

func addSet(t *testing.T, store *sqlite.Store, name string) models.ActivitySet {
	t.Helper()
	set, err := store.AddActivitySet(models.ActivitySet{
		Name:  name,
		Items: []models.ActivityItem{{Name: name + " item", StartTime: "06:00", EndTime: "07:00"}},
	})
	require.NoError(t, err)
	return set
}

func TestReadsReturnNilWithoutRows(t *testing.T) {
	a, _ := setup(t)

	weekly, err := a.GetWeeklyAssignment(time.Tuesday)
	require.NoError(t, err)
	assert.Nil(t, weekly)

	parity, err := a.GetParityAssignment(time.Tuesday, calendar.Odd)
	require.NoError(t, err)
	assert.Nil(t, parity)
}

func TestAssignParityPreservesSibling(t *testing.T) {
	a, store := setup(t)
	odd := addSet(t, store, "odd")
	even := addSet(t, store, "even")

	require.NoError(t, a.AssignParity(time.Monday, calendar.Even, &even.ID))
	require.NoError(t, a.AssignParity(time.Monday, calendar.Odd, &odd.ID))

	gotOdd, err := a.GetParityAssignment(time.Monday, calendar.Odd)
	require.NoError(t, err)
	gotEven, err := a.GetParityAssignment(time.Monday, calendar.Even)
	require.NoError(t, err)

	require.NotNil(t, gotOdd)
	require.NotNil(t, gotEven)
	assert.Equal(t, odd.ID, *gotOdd)
	assert.Equal(t, even.ID, *gotEven, "odd write must not clobber the even slot")

	require.NoError(t, a.UnassignParity(time.Monday, calendar.Odd))
	gotOdd, _ = a.GetParityAssignment(time.Monday, calendar.Odd)
	gotEven, _ = a.GetParityAssignment(time.Monday, calendar.Even)
	assert.Nil(t, gotOdd)
	require.NotNil(t, gotEven)
	assert.Equal(t, even.ID, *gotEven)
}

func TestAssignWeeklyUpserts(t *testing.T) {
	a, store := setup(t)
	first := addSet(t, store, "first")
	second := addSet(t, store, "second")

	require.NoError(t, a.AssignWeekly(time.Friday, &first.ID))
	require.NoError(t, a.AssignWeekly(time.Friday, &second.ID))

	got, err := a.GetWeeklyAssignment(time.Friday)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, *got)

	require.NoError(t, a.UnassignWeekly(time.Friday))
	got, err = a.GetWeeklyAssignment(time.Friday)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAssignRejectsMissingSet(t *testing.T) {
	a, _ := setup(t)
	missing := int64(404)

	err := a.AssignWeekly(time.Monday, &missing)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAssignment)

	err = a.AssignParity(time.Monday, calendar.Odd, &missing)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAssignment)

	got, err := a.GetWeeklyAssignment(time.Monday)
	require.NoError(t, err)
	assert.Nil(t, got, "rejected write must not persist")
}

func TestDeleteActivitySetClearsBothSchemes(t *testing.T) {
	a, store := setup(t)
	shared := addSet(t, store, "shared")
	other := addSet(t, store, "other")

	require.NoError(t, a.AssignWeekly(time.Monday, &shared.ID))
	require.NoError(t, a.AssignParity(time.Monday, calendar.Odd, &shared.ID))
	require.NoError(t, a.AssignParity(time.Monday, calendar.Even, &other.ID))

	require.NoError(t, a.DeleteActivitySet(shared.ID))

	weekly, err := a.GetWeeklyAssignment(time.Monday)
	require.NoError(t, err)
	assert.Nil(t, weekly)
	odd, err := a.GetParityAssignment(time.Monday, calendar.Odd)
	require.NoError(t, err)
	assert.Nil(t, odd)
	even, err := a.GetParityAssignment(time.Monday, calendar.Even)
	require.NoError(t, err)
	require.NotNil(t, even)
	assert.Equal(t, other.ID, *even)

	// January 2024 is odd, so Monday the 8th used the deleted set twice
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	resolved, err := scheduler.New(a).ResolveDay(day, day)
	require.NoError(t, err)
	for _, inst := range resolved {
		assert.NotEqual(t, shared.ID, inst.SetID)
	}
	assert.Empty(t, resolved)
}

func TestDeleteMissingSet(t *testing.T) {
	a, _ := setup(t)
	assert.ErrorIs(t, a.DeleteActivitySet(999), apperrors.ErrNotFound)
}

func TestWeekListsAllDays(t *testing.T) {
	a, store := setup(t)
	set := addSet(t, store, "set")
	require.NoError(t, a.AssignWeekly(time.Wednesday, &set.ID))

	weekly, parity, err := a.Week()
	require.NoError(t, err)
	require.Len(t, weekly, 7)
	require.Len(t, parity, 7)
	assert.Equal(t, time.Wednesday, weekly[3].DayOfWeek)
	require.NotNil(t, weekly[3].ActivitySetID)
	assert.Equal(t, set.ID, *weekly[3].ActivitySetID)
	assert.Nil(t, weekly[0].ActivitySetID)
}
