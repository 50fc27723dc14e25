package alpm

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Repo is one configured sync repository. Priority is the position in the
// system configuration, lower is preferred.
type Repo struct {
	Name     string
	Priority int
	SigLevel []string
}

// Conf is the subset of the system pacman configuration the orchestrator
// needs: where the databases live, which repositories exist and in what
// order, the target architecture and the signature policy.
type Conf struct {
	RootDir      string
	DBPath       string
	Architecture string
	SigLevel     []string
	Repos        []Repo
}

// RepoPriority returns the configured priority of a repository, or the
// lowest priority when the repository is unknown.
func (c *Conf) RepoPriority(name string) int {
	for _, r := range c.Repos {
		if r.Name == name {
			return r.Priority
		}
	}
	return len(c.Repos)
}

// LoadConf reads the system configuration through pacman-conf so that
// Include directives, defaults and overrides are resolved exactly the way
// pacman itself resolves them.
func LoadConf(ctx context.Context) (*Conf, error) {
	out, err := pacmanConf(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading pacman configuration: %w", err)
	}

	repoList, err := pacmanConf(ctx, "--repo-list")
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}

	conf := parseConf(out)
	for i, name := range parseRepoList(repoList) {
		repo := Repo{Name: name, Priority: i}
		if repoOut, err := pacmanConf(ctx, "--repo", name, "SigLevel"); err == nil {
			repoOut = strings.TrimSpace(repoOut)
			if repoOut != "" {
				repo.SigLevel = strings.Fields(repoOut)
			}
		}
		conf.Repos = append(conf.Repos, repo)
	}

	return conf, nil
}

func pacmanConf(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "pacman-conf", args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

// parseConf parses the "Key = Value" directive dump emitted by pacman-conf.
func parseConf(out string) *Conf {
	conf := &Conf{RootDir: "/", DBPath: "/var/lib/pacman/"}

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "RootDir":
			conf.RootDir = value
		case "DBPath":
			conf.DBPath = value
		case "Architecture":
			if value != "" && conf.Architecture == "" {
				conf.Architecture = value
			}
		case "SigLevel":
			conf.SigLevel = append(conf.SigLevel, value)
		}
	}

	return conf
}

// parseRepoList parses the one-name-per-line output of
// pacman-conf --repo-list, preserving the configured order.
func parseRepoList(out string) []string {
	var repos []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			repos = append(repos, line)
		}
	}
	return repos
}
