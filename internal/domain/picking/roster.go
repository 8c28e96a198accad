package picking

import "sort"

// Roster categories. The JSON keys match the blob layout the warehouse has
// always used.
const (
	RosterPalette      = "Palettenversand"
	RosterPartnerkunde = "Partnerkunden"
)

// Roster holds the picker user ids per assignment category. It persists in
// blob storage across runs and is refreshed from the spreadsheet source.
type Roster map[string][]int64

// DefaultRoster returns an empty roster with both categories present
func DefaultRoster() Roster {
	return Roster{
		RosterPalette:      {},
		RosterPartnerkunde: {},
	}
}

// Pickers returns the user ids of a category, nil when unknown
func (r Roster) Pickers(category string) []int64 {
	return r[category]
}

// PickDistribution tracks outstanding picks per user within a run
type PickDistribution map[int64]int

// ChoosePicker returns the picker list for a new pick. Rosters of zero or one
// user are used as-is; larger rosters yield the single user with the fewest
// outstanding picks, ties broken by user id.
func ChoosePicker(distribution PickDistribution) []int64 {
	users := make([]int64, 0, len(distribution))
	for id := range distribution {
		users = append(users, id)
	}
	if len(users) <= 1 {
		return users
	}
	sort.Slice(users, func(i, j int) bool {
		if distribution[users[i]] != distribution[users[j]] {
			return distribution[users[i]] < distribution[users[j]]
		}
		return users[i] < users[j]
	})
	return users[:1]
}
