package i

import "context"

// LeaderboardEntry is a ranked run: one maze of one simulation.
type LeaderboardEntry struct {
	RunID       string `json:"run_id"`
	Generations int    `json:"generations"`
}

// Leaderboard ranks runs per maze shape by the generation that first reached the goal.
type Leaderboard interface {
	// Record stores generation for the run unless a lower one is already stored.
	Record(ctx context.Context, rows, cols int, runID string, generation int) error

	// Top returns up to n runs with the fewest generations.
	Top(ctx context.Context, rows, cols int, n int64) ([]LeaderboardEntry, error)
}
