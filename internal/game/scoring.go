package game

import "sort"

// Creator-score weights: each use of an authored card by another player
// is worth more than a use by the author.
const (
	creatorPointsOtherUse = 10
	creatorPointsOwnUse   = 5
)

// ScoreEntry is one player's final scoring breakdown.
// totalScore = gameScore + creatorScore; gameScore = victory points
// times the session multiplier; creatorScore rewards authorship of
// cards other players actually used.
type ScoreEntry struct {
	PlayerID      string  `json:"playerId"`
	Rank          int     `json:"rank"`
	VictoryPoints int     `json:"victoryPoints"`
	GameScore     float64 `json:"gameScore"`
	CreatorScore  float64 `json:"creatorScore"`
	TotalScore    float64 `json:"totalScore"`
}

// computeScores builds the scoring breakdown for every player in join
// order and assigns ranks. Callers hold the room lock.
func computeScores(s *gameSession, usage map[string]CardUsageStat) []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(s.order))
	for _, playerID := range s.order {
		deck := s.players[playerID]
		vp := deck.victoryPoints()
		entry := ScoreEntry{
			PlayerID:      playerID,
			VictoryPoints: vp,
			GameScore:     float64(vp) * s.multiplier,
			CreatorScore:  creatorScore(s, playerID, usage),
		}
		entry.TotalScore = entry.GameScore + entry.CreatorScore
		entries = append(entries, entry)
	}
	rankScores(entries)
	return entries
}

// creatorScore sums the authorship bonus over every catalog card the
// player created, using the session's per-player usage breakdown.
func creatorScore(s *gameSession, playerID string, usage map[string]CardUsageStat) float64 {
	score := 0.0
	for cardID, card := range s.catalog {
		if card.CreatedBy != playerID {
			continue
		}
		stat, ok := usage[cardID]
		if !ok {
			continue
		}
		own := stat.PerPlayer[playerID]
		others := stat.Total - own
		score += float64(others*creatorPointsOtherUse + own*creatorPointsOwnUse)
	}
	return score
}

// rankScores orders entries by total score descending, breaking ties by
// game score, then creator score, then join order (the entries arrive
// in join order and the sort is stable). Ranks are strict and gapless:
// equal totals never share a rank.
func rankScores(entries []ScoreEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		if entries[i].GameScore != entries[j].GameScore {
			return entries[i].GameScore > entries[j].GameScore
		}
		return entries[i].CreatorScore > entries[j].CreatorScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
