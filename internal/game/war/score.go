package war

import (
	"context"
	"fmt"
	"math"
)

// Category is one scored dimension of a war.
type Category string

const (
	CategoryEconomy Category = "economy"
	CategoryOffense Category = "offense"
	CategoryDefense Category = "defense"
	CategorySpy     Category = "spy"
)

// Categories lists the scored categories in display order.
var Categories = []Category{CategoryEconomy, CategoryOffense, CategoryDefense, CategorySpy}

// Side holds the raw metrics of one alliance.
type Side struct {
	AllianceID    int64
	Plunder       int64
	AttackWins    int64
	AttackLosses  int64
	DefenseWins   int64
	DefenseLosses int64
	SpyWins       int64
	SpyLosses     int64
}

// Tally holds both sides' metrics.
type Tally struct {
	A Side
	B Side
}

// TallyLogs partitions logs by side. Entries involving neither side are ignored.
// Stalemates count as neither a win nor a loss.
func TallyLogs(w *War, logs []LogEntry) Tally {
	t := Tally{A: Side{AllianceID: w.AllianceA}, B: Side{AllianceID: w.AllianceB}}
	for _, e := range logs {
		var atk, def *Side
		switch {
		case e.AttackerAllianceID == w.AllianceA && e.DefenderAllianceID == w.AllianceB:
			atk, def = &t.A, &t.B
		case e.AttackerAllianceID == w.AllianceB && e.DefenderAllianceID == w.AllianceA:
			atk, def = &t.B, &t.A
		default:
			continue
		}
		switch e.Kind {
		case LogBattle:
			switch e.Result {
			case "victory":
				atk.AttackWins++
				def.DefenseLosses++
				atk.Plunder += e.Plunder
			case "defeat":
				atk.AttackLosses++
				def.DefenseWins++
			}
		case LogSpy:
			if e.Result == SpySuccess {
				atk.SpyWins++
			} else {
				atk.SpyLosses++
			}
		}
	}
	return t
}

// Proportional splits maxPoints by share of a + b, evenly when both are zero.
//
// Postcondition: pointsA + pointsB == maxPoints.
func Proportional(a, b int64, maxPoints int) (int, int) {
	if a+b <= 0 {
		return split(0.5, maxPoints)
	}
	return split(float64(a)/float64(a+b), maxPoints)
}

// WinRate splits maxPoints by each side's win percentage, evenly when both are zero.
//
// Postcondition: pointsA + pointsB == maxPoints.
func WinRate(winsA, lossesA, winsB, lossesB int64, maxPoints int) (int, int) {
	pa, pb := rate(winsA, lossesA), rate(winsB, lossesB)
	if pa+pb == 0 {
		return split(0.5, maxPoints)
	}
	return split(pa/(pa+pb), maxPoints)
}

func rate(wins, losses int64) float64 {
	if wins+losses == 0 {
		return 0
	}
	return float64(wins) / float64(wins+losses)
}

// split rounds side A's share and gives side B the remainder.
func split(ratio float64, maxPoints int) (int, int) {
	a := int(math.Round(ratio * float64(maxPoints)))
	return a, maxPoints - a
}

// CategoryScore is the point split of one category.
type CategoryScore struct {
	Category Category
	PointsA  int
	PointsB  int
}

// ScoreCard is the scored state of a war.
type ScoreCard struct {
	WarID      int64
	AllianceA  int64
	AllianceB  int64
	Tally      Tally
	Categories []CategoryScore
	TotalA     int
	TotalB     int
}

// Leader returns the alliance with more points, or 0 on a tie.
func (s ScoreCard) Leader() int64 {
	switch {
	case s.TotalA > s.TotalB:
		return s.AllianceA
	case s.TotalB > s.TotalA:
		return s.AllianceB
	}
	return 0
}

// Score converts a tally into a score card.
func Score(w *War, t Tally, maxPoints int) ScoreCard {
	card := ScoreCard{WarID: w.ID, AllianceA: w.AllianceA, AllianceB: w.AllianceB, Tally: t}
	add := func(c Category, a, b int) {
		card.Categories = append(card.Categories, CategoryScore{Category: c, PointsA: a, PointsB: b})
		card.TotalA += a
		card.TotalB += b
	}
	ea, eb := Proportional(t.A.Plunder, t.B.Plunder, maxPoints)
	add(CategoryEconomy, ea, eb)
	oa, ob := WinRate(t.A.AttackWins, t.A.AttackLosses, t.B.AttackWins, t.B.AttackLosses, maxPoints)
	add(CategoryOffense, oa, ob)
	da, db := WinRate(t.A.DefenseWins, t.A.DefenseLosses, t.B.DefenseWins, t.B.DefenseLosses, maxPoints)
	add(CategoryDefense, da, db)
	sa, sb := WinRate(t.A.SpyWins, t.A.SpyLosses, t.B.SpyWins, t.B.SpyLosses, maxPoints)
	add(CategorySpy, sa, sb)
	return card
}

// Scorer reads war logs and scores them.
type Scorer struct {
	store     Store
	maxPoints int
}

// NewScorer creates a Scorer.
//
// Precondition: maxPoints > 0.
func NewScorer(store Store, maxPoints int) *Scorer {
	return &Scorer{store: store, maxPoints: maxPoints}
}

// Score returns the current score card of w. It performs no writes.
func (s *Scorer) Score(ctx context.Context, w *War) (ScoreCard, error) {
	logs, err := s.store.WarLogs(ctx, w.ID)
	if err != nil {
		return ScoreCard{}, fmt.Errorf("loading logs of war %d: %w", w.ID, err)
	}
	return Score(w, TallyLogs(w, logs), s.maxPoints), nil
}
