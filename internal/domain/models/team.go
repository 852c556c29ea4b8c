package models

type Team struct {
	ID    int    `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Ping  string `db:"ping" json:"ping"`
	Label string `db:"label" json:"label"`
}

type TeamWithMembers struct {
	Team    Team   `json:"team"`
	Members []User `json:"members"`
}

type Membership struct {
	ID       int   `db:"id"`
	MemberID int64 `db:"fk_member"`
	TeamID   int   `db:"fk_team"`
}

// Matches reports whether token names this team by ping, name or label.
func (t Team) Matches(token string) bool {
	return token == t.Ping || token == t.Name || token == t.Label
}
