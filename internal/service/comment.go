package service

import (
	"fmt"
	"pollbot/internal/domain/models"
	"strings"
)

func RenderPollComment(initiator models.User, question string, teams []models.Team, respondents []models.Respondent) string {
	var b strings.Builder

	b.WriteString("Team member @")
	b.WriteString(initiator.Login)
	b.WriteString(" has asked teams: ")
	for _, t := range teams {
		b.WriteString(t.Name)
		b.WriteString(", ")
	}
	b.WriteString("for consensus on:\n\n")

	for _, line := range strings.Split(question, "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, r := range respondents {
		if r.Responded {
			b.WriteString("* [x] @")
		} else {
			b.WriteString("* [ ] @")
		}
		b.WriteString(r.User.Login)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return b.String()
}

func RenderPollCompleted(statusCommentURL string) string {
	return fmt.Sprintf(":bell: **All relevant subteam members have responded**, as per the [poll above](%s). :bell:",
		statusCommentURL)
}

func RenderPollCancelled(author models.User) string {
	return fmt.Sprintf("@%s poll cancelled.", author.Login)
}

// ParseCheckedLogins returns the logins ticked in a rendered checklist.
func ParseCheckedLogins(body string) []string {
	var logins []string

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		rest, ok := strings.CutPrefix(line, "* [")
		if !ok || rest == "" {
			continue
		}
		if rest[0] != 'x' && rest[0] != 'X' {
			continue
		}

		rest, ok = strings.CutPrefix(rest[1:], "] @")
		if !ok {
			continue
		}

		if fields := strings.Fields(rest); len(fields) > 0 {
			logins = append(logins, fields[0])
		}
	}

	return logins
}
