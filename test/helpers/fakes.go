package helpers

import (
	"context"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// FakeArticles serves pallet capacities from a map keyed by product id
type FakeArticles struct {
	Units map[int64]int
	Err   error
	Calls []int64
}

func NewFakeArticles() *FakeArticles {
	return &FakeArticles{Units: make(map[int64]int)}
}

func (a *FakeArticles) UnitsPerPallet(ctx context.Context, product *picking.Product) (int, bool, error) {
	a.Calls = append(a.Calls, product.ID)
	if a.Err != nil {
		return 0, false, a.Err
	}
	units, ok := a.Units[product.ID]
	return units, ok, nil
}

// FakeNotifier records every alert message
type FakeNotifier struct {
	Messages []string
	Err      error
}

func (n *FakeNotifier) Notify(ctx context.Context, message string) error {
	if n.Err != nil {
		return n.Err
	}
	n.Messages = append(n.Messages, message)
	return nil
}

// FakeRosterStore keeps the roster in memory
type FakeRosterStore struct {
	Roster  picking.Roster
	LoadErr error
	SaveErr error
	Saved   []picking.Roster
}

func (s *FakeRosterStore) Load(ctx context.Context) (picking.Roster, error) {
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.Roster == nil {
		return picking.DefaultRoster(), nil
	}
	return s.Roster, nil
}

func (s *FakeRosterStore) Save(ctx context.Context, roster picking.Roster) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Saved = append(s.Saved, roster)
	s.Roster = roster
	return nil
}

// FakeRosterSource serves spreadsheet usernames from a map
type FakeRosterSource struct {
	Names map[string][]string
	Err   error
}

func (s *FakeRosterSource) Usernames(ctx context.Context) (map[string][]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Names, nil
}
