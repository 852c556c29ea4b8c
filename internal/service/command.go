package service

import (
	"fmt"
	"pollbot/internal/apperrors"
	"strings"
)

type CommandKind int

const (
	CommandStartPoll CommandKind = iota + 1
	CommandRespond
	CommandCancelPoll
)

func (k CommandKind) String() string {
	switch k {
	case CommandStartPoll:
		return "poll"
	case CommandRespond:
		return "respond"
	case CommandCancelPoll:
		return "cancel"
	default:
		return "unknown"
	}
}

type Command struct {
	Kind CommandKind
	// Teams holds the raw team tokens of "poll [..]"; empty means the
	// issue's labelled teams.
	Teams    []string
	Question string
}

// ParseCommand reads the first line of body that starts with mention.
func ParseCommand(mention, body string) (Command, error) {
	const op = "service.ParseCommand"

	var line string
	found := false
	for _, l := range strings.Split(body, "\n") {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, mention) {
			line, found = l, true
			break
		}
	}
	if !found {
		return Command{}, apperrors.ErrNoCommand
	}

	line = strings.TrimPrefix(line, mention)
	line = strings.TrimSpace(strings.TrimLeft(line, ":"))

	invocation, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(invocation) {
	case "poll", "ask":
		if strings.EqualFold(rest, "cancel") {
			return Command{Kind: CommandCancelPoll}, nil
		}
		return parseStartPoll(op, rest)
	case "cancel":
		if strings.EqualFold(rest, "poll") {
			return Command{Kind: CommandCancelPoll}, nil
		}
	case "reviewed", "gotit", "responded":
		return Command{Kind: CommandRespond}, nil
	}

	return Command{}, fmt.Errorf("%s: %q: %w", op, invocation, apperrors.ErrUnknownCommand)
}

func parseStartPoll(op, rest string) (Command, error) {
	cmd := Command{Kind: CommandStartPoll}

	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return Command{}, fmt.Errorf("%s: unterminated team list: %w", op, apperrors.ErrUnknownCommand)
		}

		for _, team := range strings.Split(rest[1:end], ",") {
			if team = strings.TrimSpace(team); team != "" {
				cmd.Teams = append(cmd.Teams, team)
			}
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	if rest == "" {
		return Command{}, fmt.Errorf("%s: %w", op, apperrors.ErrEmptyQuestion)
	}
	cmd.Question = rest

	return cmd, nil
}
