package leaderboard

// Entry is one ranked row of a per-sport leaderboard.
type Entry struct {
	Rank          int
	PlayerID      string
	PlayerName    string
	Rating        float64
	SetsWon       int
	SetsLost      int
	MatchesPlayed int
}
