package models

import (
	"database/sql"
	"fmt"
	"time"
)

type Issue struct {
	ID            int64        `db:"id" json:"id"`
	Number        int          `db:"number" json:"number"`
	UserID        int64        `db:"fk_user" json:"user_id"`
	Open          bool         `db:"open" json:"open"`
	IsPullRequest bool         `db:"is_pull_request" json:"is_pull_request"`
	Title         string       `db:"title" json:"title"`
	Body          string       `db:"body" json:"-"`
	Locked        bool         `db:"locked" json:"locked"`
	Labels        Labels       `db:"labels" json:"labels"`
	Repository    string       `db:"repository" json:"repository"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
	ClosedAt      sql.NullTime `db:"closed_at" json:"-"`
}

// CommentURL links to a comment on this issue.
func (i Issue) CommentURL(commentID int64) string {
	return fmt.Sprintf("https://github.com/%s/issues/%d#issuecomment-%d", i.Repository, i.Number, commentID)
}

type IssueComment struct {
	ID         int64     `db:"id" json:"id"`
	IssueID    int64     `db:"fk_issue" json:"issue_id"`
	UserID     int64     `db:"fk_user" json:"user_id"`
	Body       string    `db:"body" json:"body"`
	Repository string    `db:"repository" json:"repository"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
