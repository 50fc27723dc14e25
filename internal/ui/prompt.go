package ui

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/hbacelar8/tecarius/pkg/alpm"
)

// Confirm prompts the user for yes/no confirmation.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	label := prompt
	if defaultYes {
		label += " [Y/n]"
	} else {
		label += " [y/N]"
	}

	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Default:   "",
	}

	if defaultYes {
		p.Default = "y"
	}

	result, err := p.Run()
	if err != nil {
		if err == promptui.ErrAbort {
			return false, nil
		}
		return defaultYes, nil // Return default on error
	}

	result = strings.ToLower(strings.TrimSpace(result))
	if result == "" {
		return defaultYes, nil
	}

	return result == "y" || result == "yes", nil
}

// SelectRecord prompts the user to select a package from a list of
// candidates, e.g. when several repositories carry the same name.
func SelectRecord(records []*alpm.PackageRecord, prompt string) (*alpm.PackageRecord, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no packages to select from")
	}

	if len(records) == 1 {
		return records[0], nil
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ .Name | cyan }} {{ .Version | green }} [{{ .Source }}]",
		Inactive: "  {{ .Name }} {{ .Version | faint }} [{{ .Source }}]",
		Selected: "✓ {{ .Name | cyan }} {{ .Version | green }} [{{ .Source }}]",
		Details: `
--------- Package ----------
{{ "Name:" | faint }}	{{ .Name }}
{{ "Version:" | faint }}	{{ .Version }}
{{ "Repository:" | faint }}	{{ .Source }}
{{ "Description:" | faint }}	{{ .Description }}`,
	}

	searcher := func(input string, index int) bool {
		name := strings.ToLower(records[index].Name)
		return strings.Contains(name, strings.ToLower(input))
	}

	p := promptui.Select{
		Label:     prompt,
		Items:     records,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	index, _, err := p.Run()
	if err != nil {
		return nil, err
	}

	return records[index], nil
}
