package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"waypost/internal/domain/content"
	"waypost/internal/domain/geo"
	geoservice "waypost/internal/service/geo"
)

func update(id string, category content.Category, coord geo.Coordinate, radius float64) content.LocalUpdate {
	return content.LocalUpdate{
		ID:           id,
		Category:     category,
		Body:         "test update " + id,
		Coordinate:   coord,
		RadiusMeters: radius,
		CreatedAt:    time.Now(),
	}
}

func newDispatcher() *Dispatcher {
	return NewDispatcher(geoservice.NewGeoService(), zap.NewNop())
}

var (
	origin = geo.Coordinate{Latitude: 0, Longitude: 0}
	// ~490 m east of the origin, inside a 500 m radius.
	nearOrigin = geo.Coordinate{Latitude: 0, Longitude: 0.0044}
	// ~11 km east, outside any update radius.
	farAway = geo.Coordinate{Latitude: 0, Longitude: 0.1}
)

func TestProcessTickEmitsOnRelevantTransition(t *testing.T) {
	d := newDispatcher()

	updates := []content.LocalUpdate{update("u1", content.CategoryTraffic, nearOrigin, 500)}

	requests := d.ProcessTick(updates, &origin, content.MuteSet{})
	require.Len(t, requests, 1)
	assert.Equal(t, "u1", requests[0].UpdateID)
	assert.Equal(t, content.CategoryTraffic, requests[0].Category)
	assert.Equal(t, "update-u1", requests[0].Tag)
	assert.Equal(t, "Traffic nearby", requests[0].Title)
}

func TestProcessTickAtMostOnce(t *testing.T) {
	d := newDispatcher()

	updates := []content.LocalUpdate{update("u1", content.CategoryTraffic, nearOrigin, 500)}

	first := d.ProcessTick(updates, &origin, content.MuteSet{})
	second := d.ProcessTick(updates, &origin, content.MuteSet{})

	assert.Len(t, first, 1)
	assert.Empty(t, second)
}

func TestProcessTickDoesNotRearmAfterReentry(t *testing.T) {
	d := newDispatcher()

	updates := []content.LocalUpdate{update("u1", content.CategoryPower, nearOrigin, 500)}

	// Relevant, then the viewer walks away, then returns. The ledger
	// keeps the update suppressed for the life of the process.
	relevant := d.ProcessTick(updates, &origin, content.MuteSet{})
	gone := d.ProcessTick(updates, &farAway, content.MuteSet{})
	back := d.ProcessTick(updates, &origin, content.MuteSet{})

	assert.Len(t, relevant, 1)
	assert.Empty(t, gone)
	assert.Empty(t, back)
}

func TestProcessTickMuteSuppression(t *testing.T) {
	d := newDispatcher()

	updates := []content.LocalUpdate{
		update("muted", content.CategoryTraffic, nearOrigin, 500),
		update("open", content.CategorySafety, nearOrigin, 500),
	}
	muted := content.MuteSet{content.CategoryTraffic: true}

	for i := 0; i < 3; i++ {
		requests := d.ProcessTick(updates, &origin, muted)
		for _, req := range requests {
			assert.NotEqual(t, "muted", req.UpdateID)
		}
	}
}

func TestProcessTickNilLocation(t *testing.T) {
	d := newDispatcher()

	updates := []content.LocalUpdate{update("u1", content.CategoryTraffic, nearOrigin, 500)}

	assert.Empty(t, d.ProcessTick(updates, nil, content.MuteSet{}))
	assert.Empty(t, d.ProcessTick(nil, &origin, content.MuteSet{}))
}

func TestProcessTickOrderIndependent(t *testing.T) {
	a := newDispatcher()
	b := newDispatcher()

	u1 := update("u1", content.CategoryTraffic, nearOrigin, 500)
	u2 := update("u2", content.CategoryEvent, nearOrigin, 600)

	fromA := a.ProcessTick([]content.LocalUpdate{u1, u2}, &origin, content.MuteSet{})
	fromB := b.ProcessTick([]content.LocalUpdate{u2, u1}, &origin, content.MuteSet{})

	idsA := map[string]bool{}
	for _, req := range fromA {
		idsA[req.UpdateID] = true
	}
	idsB := map[string]bool{}
	for _, req := range fromB {
		idsB[req.UpdateID] = true
	}

	assert.Equal(t, idsA, idsB)
	assert.Len(t, idsA, 2)
}

func TestProcessTickOutOfRangeNeverFires(t *testing.T) {
	d := newDispatcher()

	// ~1.1 km away with a 500 m radius.
	updates := []content.LocalUpdate{update("u1", content.CategoryTraffic, geo.Coordinate{Latitude: 0, Longitude: 0.01}, 500)}

	assert.Empty(t, d.ProcessTick(updates, &origin, content.MuteSet{}))
}

// recordingNotifier records deliveries and can be told to fail.
type recordingNotifier struct {
	fail      bool
	delivered []NotificationRequest
}

func (r *recordingNotifier) Notify(ctx context.Context, req NotificationRequest) error {
	if r.fail {
		return errors.New("channel unavailable")
	}
	r.delivered = append(r.delivered, req)
	return nil
}

func TestDeliverFallsBackToNextChannel(t *testing.T) {
	d := newDispatcher()

	native := &recordingNotifier{fail: true}
	inApp := &recordingNotifier{}

	requests := []NotificationRequest{{UpdateID: "u1", Body: "b", Tag: "update-u1"}}
	d.Deliver(context.Background(), []Notifier{native, inApp}, requests)

	assert.Empty(t, native.delivered)
	require.Len(t, inApp.delivered, 1)
	assert.Equal(t, "u1", inApp.delivered[0].UpdateID)
}

func TestDeliverStopsAtFirstSuccess(t *testing.T) {
	d := newDispatcher()

	native := &recordingNotifier{}
	inApp := &recordingNotifier{}

	requests := []NotificationRequest{{UpdateID: "u1"}}
	d.Deliver(context.Background(), []Notifier{native, inApp}, requests)

	assert.Len(t, native.delivered, 1)
	assert.Empty(t, inApp.delivered)
}

func TestDeliverAllChannelsFailKeepsLedger(t *testing.T) {
	d := newDispatcher()

	updates := []content.LocalUpdate{update("u1", content.CategoryTraffic, nearOrigin, 500)}
	requests := d.ProcessTick(updates, &origin, content.MuteSet{})
	require.Len(t, requests, 1)

	failing := &recordingNotifier{fail: true}
	d.Deliver(context.Background(), []Notifier{failing}, requests)

	// Even a total delivery failure does not re-arm the update.
	assert.Empty(t, d.ProcessTick(updates, &origin, content.MuteSet{}))
}
