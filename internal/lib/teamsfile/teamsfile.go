// Package teamsfile reads the TOML team roster used to reconcile memberships.
package teamsfile

import (
	"fmt"
	"github.com/BurntSushi/toml"
	"io"
	"os"
	"sort"
	"strings"
)

type Team struct {
	Key     string   `toml:"-"`
	Name    string   `toml:"name"`
	Ping    string   `toml:"ping"`
	Label   string   `toml:"label"`
	Members []string `toml:"members"`
}

func Load(path string) ([]Team, error) {
	const op = "teamsfile.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	teams, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}

	return teams, nil
}

// Parse decodes one table per team, keyed by a short team name, and returns
// the teams sorted by key.
func Parse(r io.Reader) ([]Team, error) {
	var raw map[string]Team

	md, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys: %v", undecoded)
	}

	teams := make([]Team, 0, len(raw))
	for key, team := range raw {
		team.Key = key
		if team.Ping == "" {
			return nil, fmt.Errorf("team %q: ping is required", key)
		}
		if team.Name == "" {
			team.Name = key
		}
		if team.Label == "" {
			team.Label = team.Name
		}

		members := make([]string, 0, len(team.Members))
		seen := make(map[string]struct{}, len(team.Members))
		for _, login := range team.Members {
			login = strings.TrimPrefix(strings.TrimSpace(login), "@")
			if login == "" {
				continue
			}
			if _, ok := seen[login]; ok {
				continue
			}
			seen[login] = struct{}{}
			members = append(members, login)
		}
		team.Members = members

		teams = append(teams, team)
	}

	sort.Slice(teams, func(i, j int) bool { return teams[i].Key < teams[j].Key })

	return teams, nil
}
