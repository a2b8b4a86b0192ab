package model

// Rank is a named tier derived from the score percentage of a puzzle.
type Rank string

// Rank tiers, lowest to highest.
const (
	RankBeginner  Rank = "Beginner"
	RankGoodStart Rank = "Good Start"
	RankMovingUp  Rank = "Moving Up"
	RankGood      Rank = "Good"
	RankSolid     Rank = "Solid"
	RankNice      Rank = "Nice"
	RankGreat     Rank = "Great"
	RankAmazing   Rank = "Amazing"
	RankGenius    Rank = "Genius"
	RankQueenBee  Rank = "Queen Bee"
	RankPerfect   Rank = "Perfect!"
)

var rankOrder = []Rank{
	RankBeginner,
	RankGoodStart,
	RankMovingUp,
	RankGood,
	RankSolid,
	RankNice,
	RankGreat,
	RankAmazing,
	RankGenius,
	RankQueenBee,
	RankPerfect,
}

// Position returns the rank's index in the fixed rank order, or -1 for an
// unknown rank.
func (r Rank) Position() int {
	for i, candidate := range rankOrder {
		if candidate == r {
			return i
		}
	}
	return -1
}

// Above reports whether r outranks other. Unknown ranks order below Beginner.
func (r Rank) Above(other Rank) bool {
	return r.Position() > other.Position()
}

// MaxRank returns the higher of two ranks.
func MaxRank(a, b Rank) Rank {
	if b.Above(a) {
		return b
	}
	return a
}

// RankForScore maps a score against the puzzle maximum to a rank tier.
// The percentage can exceed 100 (a record saved under a forced puzzle can
// outgrow a smaller descriptor); anything at or above the maximum is
// Perfect!.
func RankForScore(score, maxScore int) Rank {
	if maxScore <= 0 || score <= 0 {
		return RankBeginner
	}
	percentage := float64(score) / float64(maxScore) * 100
	switch {
	case percentage < 5:
		return RankGoodStart
	case percentage < 10:
		return RankMovingUp
	case percentage < 20:
		return RankGood
	case percentage < 30:
		return RankSolid
	case percentage < 40:
		return RankNice
	case percentage < 50:
		return RankGreat
	case percentage < 60:
		return RankAmazing
	case percentage < 70:
		return RankGenius
	case percentage < 100:
		return RankQueenBee
	default:
		return RankPerfect
	}
}
