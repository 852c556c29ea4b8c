package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

type Poll struct {
	ID                   int       `db:"id" json:"id"`
	IssueID              int64     `db:"fk_issue" json:"issue_id"`
	InitiatorID          int64     `db:"fk_initiator" json:"initiator_id"`
	InitiatingCommentID  int64     `db:"fk_initiating_comment" json:"initiating_comment_id"`
	BotTrackingCommentID int64     `db:"fk_bot_tracking_comment" json:"bot_tracking_comment_id"`
	Question             string    `db:"poll_question" json:"question"`
	CreatedAt            time.Time `db:"poll_created_at" json:"created_at"`
	Closed               bool      `db:"poll_closed" json:"closed"`
	Teams                TeamList  `db:"poll_teams" json:"teams"`
}

type PollResponseRequest struct {
	ID           int   `db:"id" json:"id"`
	PollID       int   `db:"fk_poll" json:"poll_id"`
	RespondentID int64 `db:"fk_respondent" json:"respondent_id"`
	Responded    bool  `db:"responded" json:"responded"`
}

// Respondent is a response request joined with the requested user.
type Respondent struct {
	User      User `db:"githubuser" json:"user"`
	Responded bool `db:"responded" json:"responded"`
}

type PollStatus struct {
	Poll        Poll         `json:"poll"`
	Issue       Issue        `json:"issue"`
	Initiator   User         `json:"initiator"`
	Respondents []Respondent `json:"respondents"`
}

// Pending reports the respondents that have not answered yet.
func (s PollStatus) Pending() []Respondent {
	var pending []Respondent
	for _, r := range s.Respondents {
		if !r.Responded {
			pending = append(pending, r)
		}
	}
	return pending
}

// PendingPoll is an open poll waiting on a single user.
type PendingPoll struct {
	PollID     int       `db:"poll_id" json:"poll_id"`
	Question   string    `db:"poll_question" json:"question"`
	Repository string    `db:"repository" json:"repository"`
	Number     int       `db:"number" json:"number"`
	Title      string    `db:"title" json:"title"`
	CreatedAt  time.Time `db:"poll_created_at" json:"created_at"`
}

// TeamList is stored in poll_teams as comma-joined team pings.
type TeamList []string

func (l TeamList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

func (l *TeamList) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("models.TeamList: unsupported source %T", src)
	}

	*l = ParseTeamList(raw)
	return nil
}

func ParseTeamList(raw string) TeamList {
	var list TeamList
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}
