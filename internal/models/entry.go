package models

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusPaused  Status = "paused"
)

// Entry is one registry record for one tracked member. Removal is
// represented by entry absence, there is no terminal status value.
type Entry struct {
	ChannelID     string `json:"channel_id"`
	Username      string `json:"username"`
	RepliesPerDay int    `json:"replies_per_day"`
	StartDate     string `json:"start_date"`
	Status        Status `json:"status"`
}

// EntryPatch carries the optional fields of a merge update. Nil fields
// are left untouched.
type EntryPatch struct {
	ChannelID     *string
	Username      *string
	RepliesPerDay *int
	StartDate     *string
	Status        *Status
}

// UserRow pairs a member id with its entry for listing.
type UserRow struct {
	ID    string
	Entry Entry
}

type UserCount struct {
	Username string `json:"username"`
	Links    int    `json:"links"`
}

type DashboardStats struct {
	TotalUsers int         `json:"total_users"`
	TotalLinks int         `json:"total_links"`
	AvgLinks   float64     `json:"avg_links"`
	Top        []UserCount `json:"top"`
}
