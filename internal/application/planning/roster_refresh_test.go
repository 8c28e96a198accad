package planning_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altruan/pulpobot/internal/application/planning"
	"github.com/altruan/pulpobot/internal/domain/picking"
	"github.com/altruan/pulpobot/test/helpers"
)

func TestRosterRefresher_Refresh_ResolvesAndPersists(t *testing.T) {
	// Arrange: two maintained usernames resolve, one is unknown to the WMS
	wms := helpers.NewFakeWMS()
	wms.Users["anna"] = &picking.User{ID: 21, Username: "anna"}
	wms.Users["ben"] = &picking.User{ID: 11, Username: "ben"}

	source := &helpers.FakeRosterSource{Names: map[string][]string{
		picking.RosterPalette:      {"anna"},
		picking.RosterPartnerkunde: {"ben", "ghost"},
	}}
	store := &helpers.FakeRosterStore{}
	refresher := planning.NewRosterRefresher(wms, source, store, nil)

	// Act
	roster := refresher.Refresh(context.Background(), picking.DefaultRoster())

	// Assert
	assert.Equal(t, []int64{21}, roster.Pickers(picking.RosterPalette))
	assert.Equal(t, []int64{11}, roster.Pickers(picking.RosterPartnerkunde))
	require.Len(t, store.Saved, 1)
	assert.Equal(t, roster, store.Saved[0])
}

func TestRosterRefresher_Refresh_SourceFailureKeepsCurrentRoster(t *testing.T) {
	wms := helpers.NewFakeWMS()
	source := &helpers.FakeRosterSource{Err: errors.New("sheet unavailable")}
	store := &helpers.FakeRosterStore{}
	refresher := planning.NewRosterRefresher(wms, source, store, nil)

	current := picking.Roster{picking.RosterPalette: {42}}
	roster := refresher.Refresh(context.Background(), current)

	assert.Equal(t, current, roster)
	assert.Empty(t, store.Saved)
}

func TestRosterRefresher_Refresh_SaveFailureStillReturnsTheRefresh(t *testing.T) {
	wms := helpers.NewFakeWMS()
	wms.Users["anna"] = &picking.User{ID: 21, Username: "anna"}
	source := &helpers.FakeRosterSource{Names: map[string][]string{
		picking.RosterPalette: {"anna"},
	}}
	store := &helpers.FakeRosterStore{SaveErr: errors.New("blob unavailable")}
	refresher := planning.NewRosterRefresher(wms, source, store, nil)

	roster := refresher.Refresh(context.Background(), picking.DefaultRoster())

	assert.Equal(t, []int64{21}, roster.Pickers(picking.RosterPalette))
}
