//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// Badge represents an achievement granted once a user's lifetime XP
// reaches the badge threshold.
type Badge struct {
	ID          string `json:"id"          db:"id"`
	Name        string `json:"name"        db:"name"`
	Description string `json:"description" db:"description"`
	XPRequired  int    `json:"xpRequired"  db:"xp_required"`
}

// LeaderboardEntry is a public leaderboard row. Rank is assigned by the
// service after sorting by lifetime XP.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	TotalXP  int    `json:"totalXP"`
}
