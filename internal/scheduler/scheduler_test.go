package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/keepup/internal/calendar"
	apperrors "github.com/julianstephens/keepup/internal/errors"
	"github.com/julianstephens/keepup/internal/models"
)

type fakeSource struct {
	weekly map[time.Weekday]*int64
	parity map[time.Weekday][2]*int64 // odd, even
	sets   map[int64]models.ActivitySet
	err    error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		weekly: map[time.Weekday]*int64{},
		parity: map[time.Weekday][2]*int64{},
		sets:   map[int64]models.ActivitySet{},
	}
}

func (f *fakeSource) Rules(day time.Weekday) ([]models.RecurrenceRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := f.parity[day]
	return []models.RecurrenceRule{
		models.WeeklyRule{SetID: f.weekly[day]},
		models.ParityRule{OddSetID: p[0], EvenSetID: p[1]},
	}, nil
}

func (f *fakeSource) GetActivitySet(id int64) (models.ActivitySet, error) {
	set, ok := f.sets[id]
	if !ok {
		return set, apperrors.NotFoundf("activity set %d", id)
	}
	return set, nil
}

func (f *fakeSource) addSet(id int64, items ...models.ActivityItem) *int64 {
	for i := range items {
		items[i].SetID = id
	}
	f.sets[id] = models.ActivitySet{ID: id, Name: "set", Items: items}
	return &id
}

func item(id int64, start, end string) models.ActivityItem {
	return models.ActivityItem{ID: id, Name: "item", StartTime: start, EndTime: end, RewardValue: 1}
}

func TestResolveDay_RestDay(t *testing.T) {
	src := newFakeSource()
	src.addSet(1, item(1, "06:00", "07:00"))
	s := New(src)

	// Every weekday of one week with no assignment at all
	for d := 1; d <= 7; d++ {
		day := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
		got, err := s.ResolveDay(day, day)
		if err != nil {
			t.Fatalf("ResolveDay(%s) failed: %v", day.Weekday(), err)
		}
		if len(got) != 0 {
			t.Errorf("ResolveDay(%s) = %d instances, want 0", day.Weekday(), len(got))
		}
	}
}

func TestResolveDay_ParityByMonth(t *testing.T) {
	src := newFakeSource()
	odd := src.addSet(1, item(10, "06:00", "07:00"))
	even := src.addSet(2, item(20, "06:00", "07:00"))
	src.parity[time.Monday] = [2]*int64{odd, even}
	s := New(src)

	jan := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC) // Monday
	feb := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC) // Monday

	janItems, err := s.ResolveDay(jan, jan)
	if err != nil {
		t.Fatalf("ResolveDay(jan) failed: %v", err)
	}
	febItems, err := s.ResolveDay(feb, feb)
	if err != nil {
		t.Fatalf("ResolveDay(feb) failed: %v", err)
	}

	if len(janItems) != 1 || janItems[0].ItemID != 10 {
		t.Errorf("January should resolve the odd set, got %+v", janItems)
	}
	if len(febItems) != 1 || febItems[0].ItemID != 20 {
		t.Errorf("February should resolve the even set, got %+v", febItems)
	}
	if janItems[0].Scheme != models.SchemeParity {
		t.Errorf("Scheme = %s, want parity", janItems[0].Scheme)
	}
}

func TestResolveDay_Ordering(t *testing.T) {
	src := newFakeSource()
	src.weekly[time.Monday] = src.addSet(1,
		item(5, "09:00", "10:00"),
		item(3, "06:00", "07:00"),
	)
	src.parity[time.Monday] = [2]*int64{src.addSet(2,
		item(1, "06:00", "06:30"),
		item(2, "08:00", "08:30"),
	), nil}
	s := New(src)

	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	got, err := s.ResolveDay(day, day)
	if err != nil {
		t.Fatalf("ResolveDay failed: %v", err)
	}

	want := []struct {
		itemID int64
		scheme models.Scheme
	}{
		{3, models.SchemeWeekly}, // 06:00 weekly wins the tie
		{1, models.SchemeParity}, // 06:00 parity
		{2, models.SchemeParity}, // 08:00
		{5, models.SchemeWeekly}, // 09:00
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d instances, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].ItemID != w.itemID || got[i].Scheme != w.scheme {
			t.Errorf("Position %d = item %d (%s), want item %d (%s)", i, got[i].ItemID, got[i].Scheme, w.itemID, w.scheme)
		}
	}
}

func TestResolveDay_TieBreaksByItemID(t *testing.T) {
	src := newFakeSource()
	src.weekly[time.Monday] = src.addSet(1,
		item(9, "06:00", "07:00"),
		item(4, "06:00", "07:00"),
	)
	s := New(src)

	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	got, _ := s.ResolveDay(day, day)
	if len(got) != 2 || got[0].ItemID != 4 || got[1].ItemID != 9 {
		t.Errorf("Expected items ordered 4, 9; got %+v", got)
	}
}

func TestResolveDay_Idempotent(t *testing.T) {
	src := newFakeSource()
	src.weekly[time.Monday] = src.addSet(1, item(1, "06:00", "07:00"), item(2, "12:00", "13:00"))
	s := New(src)

	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	first, err := s.ResolveDay(day, day)
	if err != nil {
		t.Fatalf("ResolveDay failed: %v", err)
	}
	second, err := s.ResolveDay(day, day)
	if err != nil {
		t.Fatalf("ResolveDay failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || !first[i].WindowStart.Equal(second[i].WindowStart) {
			t.Errorf("Instance %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestResolveDay_WindowsUseDayLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	src := newFakeSource()
	src.weekly[time.Monday] = src.addSet(1, item(1, "06:00", "07:00"))
	s := New(src)

	// Sunday 22:00 UTC is Monday 07:00 in Tokyo
	day := time.Date(2024, 1, 7, 22, 0, 0, 0, time.UTC).In(tokyo)
	got, err := s.ResolveDay(day, day)
	if err != nil {
		t.Fatalf("ResolveDay failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected Monday's item in Tokyo, got %d instances", len(got))
	}
	if got[0].Date != "2024-01-08" {
		t.Errorf("Date = %s, want 2024-01-08", got[0].Date)
	}
	wantEnd := time.Date(2024, 1, 8, 7, 0, 0, 0, tokyo)
	if !got[0].WindowEnd.Equal(wantEnd) {
		t.Errorf("WindowEnd = %v, want %v", got[0].WindowEnd, wantEnd)
	}
}

func TestResolveDay_MissingSetIsNoObligation(t *testing.T) {
	src := newFakeSource()
	missing := int64(42)
	src.weekly[time.Monday] = &missing
	s := New(src)

	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	got, err := s.ResolveDay(day, day)
	if err != nil {
		t.Fatalf("ResolveDay failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no instances for a dangling set reference, got %d", len(got))
	}
}

func TestResolveDay_SourceError(t *testing.T) {
	src := newFakeSource()
	src.err = errors.New("disk on fire")
	s := New(src)

	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	if _, err := s.ResolveDay(day, day); err == nil {
		t.Error("Expected source error to surface")
	}
}

func TestResolveDay_SameSetThroughBothSchemes(t *testing.T) {
	src := newFakeSource()
	set := src.addSet(1,
		item(1, "06:00", "07:00"),
		item(2, "18:00", "19:00"),
	)
	src.weekly[time.Monday] = set
	src.parity[time.Monday] = [2]*int64{set, nil}
	s := New(src)

	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC) // January is odd
	got, err := s.ResolveDay(day, day)
	if err != nil {
		t.Fatalf("ResolveDay failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("Expected one instance per item, got %d", len(got))
	}
	ids := map[string]bool{}
	for _, inst := range got {
		if inst.Scheme != models.SchemeWeekly {
			t.Errorf("Item %d resolved under %s, want weekly", inst.ItemID, inst.Scheme)
		}
		ids[inst.ID] = true
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 distinct ids, got %d", len(ids))
	}
}

func TestMaterialize_DeterministicID(t *testing.T) {
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	keys := calendar.Derive(day)
	a, err := Materialize(day, keys.LocalDate, models.SchemeWeekly, item(1, "06:00", "07:00"), day)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	b, _ := Materialize(day, keys.LocalDate, models.SchemeWeekly, item(1, "06:00", "07:00"), day.Add(time.Hour))
	c, _ := Materialize(day, keys.LocalDate, models.SchemeParity, item(1, "06:00", "07:00"), day)
	d, _ := Materialize(day.AddDate(0, 0, 1), "2024-01-09", models.SchemeWeekly, item(1, "06:00", "07:00"), day)

	if a.ID != b.ID {
		t.Errorf("Same (date, item) produced different ids: %s vs %s", a.ID, b.ID)
	}
	if a.ID != c.ID {
		t.Error("The scheme must not change the id of a (date, item) pair")
	}
	if a.ID == d.ID {
		t.Error("Different dates must produce different ids")
	}
	if a.Status != models.StatusPending {
		t.Errorf("Status = %s, want pending", a.Status)
	}
}

func TestMaterialize_InvalidTime(t *testing.T) {
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	if _, err := Materialize(day, "2024-01-08", models.SchemeWeekly, item(1, "6am", "07:00"), day); err == nil {
		t.Error("Expected error for malformed start time")
	}
}
