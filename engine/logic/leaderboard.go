/* leaderboard.go
 * Contains the logic for ordering team members by readiness and annotating medal tiers
 */

package logic

import "sort"

// Medal tiers assigned by rank index. Index 0 is gold, 1 silver, 2 bronze, everything after that none.
const (
	MedalGold   = "gold"
	MedalSilver = "silver"
	MedalBronze = "bronze"
	MedalNone   = "none"
)

// MemberReadiness is one team member's computed overall readiness, the input to ranking.
type MemberReadiness struct {
	UserID   string
	FullName string
	Overall  float64
}

// RankedMember is one row of the leaderboard ordering.
type RankedMember struct {
	UserID   string
	FullName string
	Overall  float64
	Rank     int
	Medal    string
}

// Rank orders members by overall readiness descending and assigns medal tiers. Equal scores are broken by
// user id ascending so the ordering is deterministic and reproducible across runs.
// Preconditions: Receives slice of MemberReadiness in any order
// Postconditions: Returns slice of RankedMember of the same length, sorted, with 0-based Rank and Medal set
func Rank(members []MemberReadiness) []RankedMember {
	ordered := make([]MemberReadiness, len(members))
	copy(ordered, members)

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Overall != ordered[j].Overall {
			return ordered[i].Overall > ordered[j].Overall
		}
		return ordered[i].UserID < ordered[j].UserID
	})

	ranked := make([]RankedMember, 0, len(ordered))
	for i, m := range ordered {
		ranked = append(ranked, RankedMember{
			UserID:   m.UserID,
			FullName: m.FullName,
			Overall:  m.Overall,
			Rank:     i,
			Medal:    medalForRank(i),
		})
	}
	return ranked
}

// TopThree returns the podium view of a ranked sequence: the first three entries, or fewer when the team
// is smaller than three. It is the same ordering as Rank, not a re-sort.
func TopThree(ranked []RankedMember) []RankedMember {
	if len(ranked) <= 3 {
		return ranked
	}
	return ranked[:3]
}

// medalForRank maps a 0-based rank index to its medal tier
func medalForRank(index int) string {
	switch index {
	case 0:
		return MedalGold
	case 1:
		return MedalSilver
	case 2:
		return MedalBronze
	default:
		return MedalNone
	}
}
