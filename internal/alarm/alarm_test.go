package alarm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smokyabdulrahman/athan/internal/prayer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

func fixtureSchedule() *prayer.Schedule {
	at := func(day, h, m int) time.Time { return time.Date(2024, 1, day, h, m, 0, 0, time.UTC) }
	s := &prayer.Schedule{Date: at(1, 0, 0)}
	s.Times = [prayer.PeriodCount]time.Time{
		at(1, 5, 0), at(1, 6, 30), at(1, 12, 0), at(1, 15, 0), at(1, 17, 30), at(1, 19, 0), at(2, 5, 1),
	}
	s.Extremes[prayer.Asr] = true
	return s
}

func plannerAt(h, m int) *Planner {
	return &Planner{
		Labeler: EnglishLabeler{},
		Clock:   prayer.FixedClock(time.Date(2024, 1, 1, h, m, 0, 0, time.UTC)),
	}
}

func ids(events []Event) []int {
	out := make([]int, len(events))
	for i, ev := range events {
		out[i] = ev.ID
	}
	return out
}

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

func TestIDs(t *testing.T) {
	assert.Equal(t, 2, BaseID(prayer.Dhuhr))
	assert.Equal(t, 12, LeadID(prayer.Dhuhr))
	assert.Equal(t, []int{0, 2, 3, 4, 5, 10, 12, 13, 14, 15}, ReservedIDs())

	p, k, ok := Decode(13)
	assert.True(t, ok)
	assert.Equal(t, prayer.Asr, p)
	assert.Equal(t, Lead, k)

	_, _, ok = Decode(1)
	assert.False(t, ok, "sunrise has no alarm")
	_, _, ok = Decode(16)
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------
// Plan
// -----------------------------------------------------------------------------

func TestPlan_AllAhead(t *testing.T) {
	events := plannerAt(0, 30).Plan(fixtureSchedule(), 0)

	assert.Equal(t, []int{0, 2, 3, 4, 5}, ids(events))
	for _, ev := range events {
		assert.Equal(t, AtTime, ev.Kind)
		assert.Equal(t, ev.FireAt, ev.PrayerAt)
		assert.Equal(t, ev.Period.DisplayName(), ev.Label)
	}
}

func TestPlan_SkipsPastAndSunrise(t *testing.T) {
	events := plannerAt(8, 0).Plan(fixtureSchedule(), 0)
	assert.Equal(t, []int{2, 3, 4, 5}, ids(events))
}

func TestPlan_LeadEvents(t *testing.T) {
	s := fixtureSchedule()
	events := plannerAt(11, 50).Plan(s, 15)

	// Dhuhr's reminder at 11:45 has already passed; the prayer itself has not.
	assert.Equal(t, []int{2, 13, 3, 14, 4, 15, 5}, ids(events))

	lead := events[1]
	assert.Equal(t, Lead, lead.Kind)
	assert.Equal(t, prayer.Asr, lead.Period)
	assert.Equal(t, "Asr (in 15 minutes)", lead.Label)
	assert.Equal(t, s.Times[prayer.Asr].Add(-15*time.Minute), lead.FireAt)
	assert.Equal(t, s.Times[prayer.Asr], lead.PrayerAt)
}

func TestPlan_FireTimeEqualToNowIsDropped(t *testing.T) {
	events := plannerAt(12, 0).Plan(fixtureSchedule(), 0)
	assert.Equal(t, []int{3, 4, 5}, ids(events))
}

func TestPlan_LateEveningPlansNothingFromEarlier(t *testing.T) {
	events := plannerAt(23, 0).Plan(fixtureSchedule(), 30)
	assert.Empty(t, events)
}

func TestPlan_Idempotent(t *testing.T) {
	pl := plannerAt(9, 0)
	s := fixtureSchedule()
	assert.Equal(t, pl.Plan(s, 10), pl.Plan(s, 10))
}

func TestPlan_ExtremeFlagDoesNotMatter(t *testing.T) {
	s := fixtureSchedule()
	plain := *s
	plain.Extremes = [prayer.PeriodCount]bool{}

	pl := plannerAt(9, 0)
	assert.Equal(t, pl.Plan(&plain, 5), pl.Plan(s, 5))
}

func TestNewPlanner_DefaultsLabeler(t *testing.T) {
	pl := NewPlanner(nil)
	assert.IsType(t, EnglishLabeler{}, pl.Labeler)
	assert.IsType(t, prayer.RealClock{}, pl.Clock)
}

// -----------------------------------------------------------------------------
// OnDelivered
// -----------------------------------------------------------------------------

func TestOnDelivered(t *testing.T) {
	tests := []struct {
		id   int
		want []int
	}{
		{BaseID(prayer.Fajr), []int{10, 5}},
		{BaseID(prayer.Dhuhr), []int{12, 1}},
		{BaseID(prayer.Asr), []int{13, 2}},
		{BaseID(prayer.Maghrib), []int{14, 3}},
		{BaseID(prayer.Ishaa), []int{15, 4}},
		{LeadID(prayer.Asr), nil},
		{1, nil},
		{42, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OnDelivered(tt.id), "id %d", tt.id)
	}
}

// -----------------------------------------------------------------------------
// Apply
// -----------------------------------------------------------------------------

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) Register(ctx context.Context, ev Event) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *mockRegistry) Cancel(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func TestApply_CancelsThenRegisters(t *testing.T) {
	ctx := context.Background()
	events := plannerAt(13, 0).Plan(fixtureSchedule(), 0)

	reg := new(mockRegistry)
	for _, id := range ReservedIDs() {
		reg.On("Cancel", ctx, id).Return(nil).Once()
	}
	for _, ev := range events {
		reg.On("Register", ctx, ev).Return(nil).Once()
	}

	require.NoError(t, Apply(ctx, reg, events))
	reg.AssertExpectations(t)
	reg.AssertNumberOfCalls(t, "Cancel", 10)
	reg.AssertNumberOfCalls(t, "Register", len(events))
}

func TestApply_PropagatesErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("alarm service down")

	reg := new(mockRegistry)
	reg.On("Cancel", ctx, mock.Anything).Return(boom)

	err := Apply(ctx, reg, nil)
	assert.ErrorIs(t, err, boom)
}

// -----------------------------------------------------------------------------
// MemoryStore
// -----------------------------------------------------------------------------

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	events := plannerAt(0, 0).Plan(fixtureSchedule(), 10)

	require.NoError(t, Apply(ctx, store, events))
	require.NoError(t, Apply(ctx, store, events))

	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids(events), ids(pending), "reapplying must not duplicate")

	due, err := store.Due(ctx, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []int{10, 0, 12, 2}, ids(due))

	pending, _ = store.Pending(ctx)
	assert.Len(t, pending, len(events)-4)

	require.NoError(t, store.Cancel(ctx, 5))
	require.NoError(t, store.Cancel(ctx, 99))
	pending, _ = store.Pending(ctx)
	assert.NotContains(t, ids(pending), 5)
}
