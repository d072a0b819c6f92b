package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
)

// fakeClock pins emission timestamps.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time        { return f.now }
func (f *fakeClock) Sleep(d time.Duration) { f.now = f.now.Add(d) }

// memoryLog records journal appends in order.
type memoryLog struct {
	entries    []*events.Event
	recipients [][]string
}

func (l *memoryLog) Append(_ context.Context, event *events.Event, recipients []string) error {
	copied := *event
	l.entries = append(l.entries, &copied)
	l.recipients = append(l.recipients, recipients)
	return nil
}

func (l *memoryLog) ListByCharacter(context.Context, string, uint64, int) ([]*events.Event, error) {
	return nil, nil
}

func (l *memoryLog) Reset(context.Context) error {
	l.entries = nil
	l.recipients = nil
	return nil
}

type busFixture struct {
	bus    *appevents.Bus
	hub    *appevents.Hub
	index  *sector.Index
	roster *appevents.Roster
	log    *memoryLog
}

func newBusFixture() *busFixture {
	index := sector.NewIndex()
	roster := appevents.NewRoster(index)
	hub := appevents.NewHub()
	log := &memoryLog{}
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	return &busFixture{
		bus:    appevents.NewBus(clock, roster, hub, log, nil),
		hub:    hub,
		index:  index,
		roster: roster,
		log:    log,
	}
}

func drain(t *testing.T, sub *appevents.Subscription, n int) []*events.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	out := make([]*events.Event, 0, n)
	for i := 0; i < n; i++ {
		evt, err := sub.Next(ctx)
		require.NoError(t, err)
		out = append(out, evt)
	}
	return out
}

func TestEmit_SequenceMatchesEnqueueOrder(t *testing.T) {
	// Arrange
	f := newBusFixture()
	sub := f.hub.Subscribe("conn-1", "char-a", false)

	// Act
	for i := 0; i < 3; i++ {
		require.NoError(t, f.bus.Emit(context.Background(), events.Event{
			Name:   events.CreditsTransfer,
			Filter: events.ToCharacters("char-a"),
		}))
	}

	// Assert
	received := drain(t, sub, 3)
	assert.Equal(t, uint64(1), received[0].Sequence)
	assert.Equal(t, uint64(2), received[1].Sequence)
	assert.Equal(t, uint64(3), received[2].Sequence)
	assert.Equal(t, uint64(3), f.bus.Sequence())
}

func TestEmit_SectorFilterSkipsHyperspaceAndExcluded(t *testing.T) {
	// Arrange
	f := newBusFixture()
	f.index.SetCharacter("char-a", 7, false)
	f.index.SetCharacter("char-b", 7, false)
	f.index.SetCharacter("char-c", 7, true)
	f.index.SetCharacter("char-d", 8, false)

	subA := f.hub.Subscribe("conn-a", "char-a", false)
	subB := f.hub.Subscribe("conn-b", "char-b", false)
	subC := f.hub.Subscribe("conn-c", "char-c", false)
	subD := f.hub.Subscribe("conn-d", "char-d", false)

	// Act
	require.NoError(t, f.bus.Emit(context.Background(), events.Event{
		Name:   events.CharacterMoved,
		Filter: events.ToSector(7, "char-a"),
	}))

	// Assert
	assert.Equal(t, 0, subA.Depth())
	assert.Equal(t, 1, subB.Depth())
	assert.Equal(t, 0, subC.Depth())
	assert.Equal(t, 0, subD.Depth())
}

func TestEmit_CorporationFilterUsesRosterMembership(t *testing.T) {
	// Arrange
	f := newBusFixture()
	f.roster.SetMembership("corp-1", "char-a")
	f.roster.SetMembership("corp-1", "char-b")

	subA := f.hub.Subscribe("conn-a", "char-a", false)
	subB := f.hub.Subscribe("conn-b", "char-b", false)
	subC := f.hub.Subscribe("conn-c", "char-c", false)

	// Act
	require.NoError(t, f.bus.Emit(context.Background(), events.Event{
		Name:   events.ChatMessage,
		Filter: events.ToCorporation("corp-1"),
	}))

	// Assert
	assert.Equal(t, 1, subA.Depth())
	assert.Equal(t, 1, subB.Depth())
	assert.Equal(t, 0, subC.Depth())
}

func TestEmit_AdminOnlyReachesAdminConnections(t *testing.T) {
	// Arrange
	f := newBusFixture()
	admin := f.hub.Subscribe("conn-admin", "", true)
	player := f.hub.Subscribe("conn-player", "char-a", false)

	// Act
	require.NoError(t, f.bus.Emit(context.Background(), events.Event{
		Name:   events.Error,
		Filter: events.ToAdmins(),
	}))

	// Assert
	assert.Equal(t, 1, admin.Depth())
	assert.Equal(t, 0, player.Depth())
}

func TestEmit_RejectsMissingFilter(t *testing.T) {
	f := newBusFixture()

	err := f.bus.Emit(context.Background(), events.Event{Name: events.CreditsTransfer})

	require.Error(t, err)
}

func TestEmit_JournalsEveryEventWithRecipients(t *testing.T) {
	// Arrange
	f := newBusFixture()
	f.index.SetCharacter("char-a", 7, false)

	// Act
	require.NoError(t, f.bus.Emit(context.Background(), events.Event{
		Name:   events.CharacterMoved,
		Filter: events.ToSector(7, ""),
	}))

	// Assert
	require.Len(t, f.log.entries, 1)
	entry := f.log.entries[0]
	assert.Equal(t, events.CharacterMoved, entry.Name)
	assert.Equal(t, uint64(1), entry.Sequence)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), entry.Timestamp)
	assert.Equal(t, []string{"char-a"}, f.log.recipients[0])
}
