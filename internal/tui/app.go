package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hbacelar8/tecarius/internal/bridge"
	"github.com/hbacelar8/tecarius/internal/config"
	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/plan"
	"github.com/hbacelar8/tecarius/pkg/search"
	"github.com/hbacelar8/tecarius/pkg/staging"
)

type (
	// bridgeEventMsg wraps one bridge event for the update loop.
	bridgeEventMsg struct {
		event bridge.Event
	}

	// eventsClosedMsg arrives when the bridge shuts down.
	eventsClosedMsg struct{}
)

// listen waits for the next bridge event. The returned command is
// re-issued after every received event so the pump never stalls.
func listen(events <-chan bridge.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return bridgeEventMsg{event: ev}
	}
}

// App is the bubbletea model wrapping the TUI state.
type App struct {
	*Model
	spinner spinner.Model
	input   textinput.Model
}

// NewApp creates the TUI application over a started bridge.
func NewApp(b *bridge.Bridge, cfg *config.Config) *App {
	styles := NewStyles(cfg.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	ti := textinput.New()
	ti.Placeholder = "type to search"
	ti.CharLimit = 100
	ti.Prompt = ""

	return &App{
		Model:   NewModel(b, styles),
		spinner: sp,
		input:   ti,
	}
}

// Init implements tea.Model. The first snapshot load is requested here so
// the UI comes up over a loading screen instead of an empty one.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		listen(a.bridge.Events()),
		func() tea.Msg {
			a.bridge.Send(bridge.RefreshSnapshot{})
			return nil
		},
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = msg.Width / 2
		a.ready = true
		return a, nil

	case bridgeEventMsg:
		a.applyEvent(msg.event)
		return a, listen(a.bridge.Events())

	case eventsClosedMsg:
		return a, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Overlays swallow input before the listing sees it.
	if a.showExec {
		return a.handleExecKey(msg)
	}
	if a.state == bridge.StatePlanAvailable && a.plan != nil {
		return a.handlePlanKey(msg)
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}
	if a.showDetails {
		return a.handleDetailKey(msg)
	}
	if a.searching {
		return a.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(msg, a.keys.JumpUp):
		a.moveCursor(-jumpDistance)
	case key.Matches(msg, a.keys.JumpDown):
		a.moveCursor(jumpDistance)
	case key.Matches(msg, a.keys.Top):
		a.cursorToTop()
	case key.Matches(msg, a.keys.Bottom):
		a.cursorToBottom()

	case key.Matches(msg, a.keys.Search):
		a.searching = true
		a.input.SetValue(a.query)
		a.input.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.FilterUpgradable):
		a.upgradableOnly = !a.upgradableOnly
		a.rebuildRows()

	case key.Matches(msg, a.keys.Toggle):
		if rec := a.selected(); rec != nil {
			a.toggleStage(rec)
		}
	case key.Matches(msg, a.keys.Remove):
		if rec := a.selected(); rec != nil {
			a.bridge.Send(bridge.Stage{Identity: identityFor(a, rec), Intent: staging.IntentRemove})
		}
	case key.Matches(msg, a.keys.MarkExplicit):
		if rec := a.selected(); rec != nil {
			a.bridge.Send(bridge.Stage{Identity: identityFor(a, rec), Intent: staging.IntentMarkExplicit})
		}
	case key.Matches(msg, a.keys.StageUpgrades):
		a.stageAllUpgrades()

	case key.Matches(msg, a.keys.Plan):
		a.bridge.Send(bridge.RequestPlan{})
	case key.Matches(msg, a.keys.Refresh):
		a.bridge.Send(bridge.RefreshSnapshot{})
	case key.Matches(msg, a.keys.Sync):
		a.bridge.Send(bridge.RefreshSnapshot{Sync: true})

	case key.Matches(msg, a.keys.Details), key.Matches(msg, a.keys.Confirm):
		if a.selected() != nil {
			a.showDetails = true
			a.detail = tabDepends
		}

	case key.Matches(msg, a.keys.Back):
		switch {
		case a.state == bridge.StateLoading, a.state == bridge.StateSearching, a.state == bridge.StatePlanning:
			a.bridge.Send(bridge.Cancel{})
		case a.query != "":
			a.query = ""
			a.matches = nil
			a.rebuildRows()
		case a.upgradableOnly:
			a.upgradableOnly = false
			a.rebuildRows()
		}
	}

	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.searching = false
		a.input.Blur()
		return a, nil
	case "esc":
		a.searching = false
		a.input.Blur()
		if a.input.Value() == "" {
			a.query = ""
			a.matches = nil
			a.rebuildRows()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)

	// Every keystroke restarts the search unit; the bridge discards the
	// superseded one.
	if value := a.input.Value(); value != a.query {
		a.query = value
		a.cursorToTop()
		a.bridge.Send(bridge.SetSearchQuery{
			Query: value,
			Scope: search.ScopeNameAndDescription,
		})
	}
	return a, cmd
}

func (a *App) handlePlanKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Confirm):
		if a.plan.Executable() {
			a.bridge.Send(bridge.ConfirmExecute{})
		}
	case key.Matches(msg, a.keys.Back):
		a.plan = nil
		a.bridge.Send(bridge.Cancel{})
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleExecKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !a.execDone {
		// Execution is never preempted; nothing to do but watch.
		return a, nil
	}
	switch {
	case key.Matches(msg, a.keys.Confirm), key.Matches(msg, a.keys.Back):
		a.showExec = false
		a.plan = nil
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.NextTab):
		a.detail = (a.detail + 1) % tabCount
	case key.Matches(msg, a.keys.PrevTab):
		a.detail = (a.detail + tabCount - 1) % tabCount
	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Details):
		a.showDetails = false
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	}
	return a, nil
}

// identityFor resolves the identity to stage: removals and marks target
// the installed record even when the cursor sits on a sync one.
func identityFor(a *App, rec *alpm.PackageRecord) alpm.PackageIdentity {
	if a.snap != nil {
		if local := a.snap.Local(rec.Name); local != nil {
			return local.Identity()
		}
	}
	return rec.Identity()
}

func (a *App) toggleStage(rec *alpm.PackageRecord) {
	id := rec.Identity()
	intent := a.naturalIntent(rec)
	if intent != staging.IntentInstall {
		id = identityFor(a, rec)
	}
	if _, ok := a.staged[id]; ok {
		a.bridge.Send(bridge.Unstage{Identity: id})
		return
	}
	a.bridge.Send(bridge.Stage{Identity: id, Intent: intent})
}

func (a *App) stageAllUpgrades() {
	if a.snap == nil {
		return
	}
	upgradable := a.snap.Upgradable()
	if len(upgradable) == 0 {
		a.setNotice(bridge.NoticeInfo, "everything is up to date")
		return
	}
	for _, rec := range upgradable {
		if best := a.snap.UpdateFor(rec); best != nil {
			a.bridge.Send(bridge.Stage{Identity: best.Identity(), Intent: staging.IntentInstall})
		}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "starting..."
	}

	if a.showExec {
		return a.overlay(a.renderExecution())
	}
	if a.state == bridge.StatePlanAvailable && a.plan != nil {
		return a.overlay(a.renderPlan())
	}
	if a.showHelp {
		return a.overlay(a.renderHelp())
	}

	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	b.WriteString(a.renderSearchBar())
	b.WriteString("\n")

	if a.showDetails {
		b.WriteString(a.renderDetails())
	} else {
		b.WriteString(a.renderListing())
	}

	b.WriteString(a.renderStatus())
	b.WriteString("\n")
	b.WriteString(a.renderFooter())
	return b.String()
}

func (a *App) overlay(dialog string) string {
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, dialog)
}

func (a *App) renderHeader() string {
	title := a.styles.Header.Render(" tecarius ")

	var right string
	switch a.state {
	case bridge.StateLoading:
		right = a.spinner.View() + " loading databases"
	case bridge.StateSearching:
		right = a.spinner.View() + " searching"
	case bridge.StatePlanning:
		right = a.spinner.View() + " resolving"
	default:
		right = a.styles.PackageDesc.Render(a.state.String())
	}

	staged := ""
	if n := len(a.staged); n > 0 {
		staged = a.styles.MarkKeep.Render(fmt.Sprintf("staged: %d", n)) + "  "
	}

	padding := a.width - lipgloss.Width(title) - lipgloss.Width(staged) - lipgloss.Width(right) - 2
	if padding < 0 {
		padding = 0
	}
	return title + strings.Repeat(" ", padding) + staged + right
}

func (a *App) renderSearchBar() string {
	if a.searching {
		return " " + a.styles.InputPrompt.Render("/") + a.input.View()
	}
	if a.query != "" {
		return " " + a.styles.InputPrompt.Render("/") + a.query
	}
	hint := "press / to search"
	if a.upgradableOnly {
		hint = "showing upgradable packages"
	}
	return " " + a.styles.PackageDesc.Render(hint)
}

func (a *App) renderListing() string {
	var b strings.Builder

	if len(a.rows) == 0 {
		b.WriteString(a.styles.PackageDesc.Render("  no packages"))
		b.WriteString("\n")
	}

	visible := a.visibleHeight()
	end := a.scroll + visible
	if end > len(a.rows) {
		end = len(a.rows)
	}

	for i := a.scroll; i < end; i++ {
		b.WriteString(a.renderRow(a.rows[i], i == a.cursor))
		b.WriteString("\n")
	}
	for i := end - a.scroll; i < visible; i++ {
		b.WriteString("\n")
	}

	return b.String()
}

func (a *App) renderRow(rec *alpm.PackageRecord, selected bool) string {
	cursor := "  "
	if selected {
		cursor = a.styles.Cursor.Render("> ")
	}

	mark := " "
	if intent, ok := a.stagedIntent(rec); ok {
		switch intent {
		case staging.IntentRemove:
			mark = a.styles.MarkRemove.Render("-")
		case staging.IntentMarkExplicit:
			mark = a.styles.MarkKeep.Render("~")
		default:
			mark = a.styles.MarkInstall.Render("+")
		}
	}

	name := a.styles.PackageName.Render(rec.Name)
	if selected {
		name = a.styles.ListItemSelected.Render(rec.Name)
	}

	version := a.styles.PackageVersion.Render(rec.Version)
	if a.snap != nil {
		local := rec
		if !rec.Source.IsLocal() {
			local = a.snap.Local(rec.Name)
		}
		if local != nil {
			if best := a.snap.UpdateFor(local); best != nil {
				version = a.styles.PackageVersion.Render(local.Version) +
					a.styles.Upgrade.Render(" -> "+best.Version)
			}
		}
	}

	repo := a.styles.PackageRepo.Render("[" + rec.Source.String() + "]")

	installed := ""
	if a.snap != nil && !rec.Source.IsLocal() && a.snap.Local(rec.Name) != nil {
		installed = " " + a.styles.Installed.Render("[installed]")
	}

	left := fmt.Sprintf("%s%s %s %-30s %s%s", cursor, mark, repo, name, version, installed)

	desc := rec.Description
	room := a.width - lipgloss.Width(left) - 3
	if room < 0 {
		room = 0
	}
	if len(desc) > room {
		if room > 3 {
			desc = desc[:room-3] + "..."
		} else {
			desc = ""
		}
	}

	return left + "  " + a.styles.PackageDesc.Render(desc)
}

// stagedIntent looks up the staging mark for a record, checking both the
// record's own identity and its installed counterpart.
func (a *App) stagedIntent(rec *alpm.PackageRecord) (staging.Intent, bool) {
	if intent, ok := a.staged[rec.Identity()]; ok {
		return intent, true
	}
	if a.snap != nil {
		if local := a.snap.Local(rec.Name); local != nil {
			if intent, ok := a.staged[local.Identity()]; ok {
				return intent, true
			}
		}
		if best := a.snap.BestCandidate(rec.Name); best != nil {
			if intent, ok := a.staged[best.Identity()]; ok {
				return intent, true
			}
		}
	}
	return 0, false
}

func (a *App) renderDetails() string {
	rec := a.selected()
	if rec == nil {
		a.showDetails = false
		return a.renderListing()
	}

	var b strings.Builder
	label := a.styles.DetailLabel

	b.WriteString("  " + a.styles.Title.Render(rec.Name) + " " +
		a.styles.PackageVersion.Render(rec.Version) + " " +
		a.styles.PackageRepo.Render("["+rec.Source.String()+"]"))
	b.WriteString("\n\n")

	if rec.Description != "" {
		b.WriteString("  " + rec.Description + "\n\n")
	}
	if rec.URL != "" {
		b.WriteString("  " + label.Render("URL") + "  " + rec.URL + "\n")
	}
	if len(rec.Licenses) > 0 {
		b.WriteString("  " + label.Render("Licenses") + "  " + strings.Join(rec.Licenses, ", ") + "\n")
	}
	if rec.InstalledSize > 0 {
		b.WriteString("  " + label.Render("Installed Size") + "  " + alpm.HumanSize(rec.InstalledSize) + "\n")
	}
	if rec.DownloadSize > 0 {
		b.WriteString("  " + label.Render("Download Size") + "  " + alpm.HumanSize(rec.DownloadSize) + "\n")
	}
	if rec.Source.IsLocal() {
		b.WriteString("  " + label.Render("Reason") + "  " + rec.Reason.String() + "\n")
		if a.snap != nil {
			if required := a.snap.RequiredBy(rec.Name); len(required) > 0 {
				b.WriteString("  " + label.Render("Required By") + "  " + strings.Join(required, ", ") + "\n")
			}
		}
	}
	b.WriteString("\n")

	// Dependency tabs.
	var tabs []string
	for t := detailTab(0); t < tabCount; t++ {
		style := a.styles.TabInactive
		if t == a.detail {
			style = a.styles.TabActive
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	b.WriteString("  " + strings.Join(tabs, " ") + "\n\n")

	var deps []alpm.DepSpec
	switch a.detail {
	case tabOptional:
		deps = rec.OptDepends
	case tabConflicts:
		deps = rec.Conflicts
	case tabReplaces:
		deps = rec.Replaces
	default:
		deps = rec.Depends
	}

	if len(deps) == 0 {
		b.WriteString(a.styles.PackageDesc.Render("  none"))
		b.WriteString("\n")
	}
	for _, dep := range deps {
		line := "  " + dep.String()
		if a.snap != nil && len(a.snap.LocalProviders(dep)) > 0 {
			line += " " + a.styles.Installed.Render("[installed]")
		}
		b.WriteString(line + "\n")
	}

	// Pad out to the listing height so the footer stays put.
	content := b.String()
	lines := strings.Count(content, "\n")
	for ; lines < a.visibleHeight(); lines++ {
		content += "\n"
	}
	return content
}

func (a *App) renderPlan() string {
	p := a.plan
	var b strings.Builder

	b.WriteString(a.styles.DialogTitle.Render("Transaction Plan"))
	b.WriteString("\n\n")

	const maxLines = 10

	if removals := p.Removals(); len(removals) > 0 {
		b.WriteString(a.styles.Title.Render(fmt.Sprintf("Remove (%d)", len(removals))))
		b.WriteString("\n")
		for i, op := range removals {
			if i == maxLines {
				b.WriteString(a.styles.PackageDesc.Render(fmt.Sprintf("  ... %d more", len(removals)-maxLines)))
				b.WriteString("\n")
				break
			}
			b.WriteString("  " + a.styles.MarkRemove.Render("-") + " " + op.Record.Name + " " +
				a.styles.PackageDesc.Render(op.Record.Version) + "\n")
		}
		b.WriteString("\n")
	}

	if additions := p.Additions(); len(additions) > 0 {
		b.WriteString(a.styles.Title.Render(fmt.Sprintf("Install (%d)", len(additions))))
		b.WriteString("\n")
		for i, op := range additions {
			if i == maxLines {
				b.WriteString(a.styles.PackageDesc.Render(fmt.Sprintf("  ... %d more", len(additions)-maxLines)))
				b.WriteString("\n")
				break
			}
			suffix := ""
			if op.Reason == plan.ReasonDependency {
				suffix = a.styles.PackageDesc.Render(" (dependency)")
			}
			b.WriteString("  " + a.styles.MarkInstall.Render("+") + " " + op.Record.Name + " " +
				a.styles.PackageVersion.Render(op.Record.Version) + suffix + "\n")
		}
		b.WriteString("\n")
	}

	if len(p.Explicit) > 0 {
		b.WriteString(a.styles.Title.Render(fmt.Sprintf("Mark explicit (%d)", len(p.Explicit))))
		b.WriteString("\n")
		for _, id := range p.Explicit {
			b.WriteString("  " + a.styles.MarkKeep.Render("~") + " " + id.Name + "\n")
		}
		b.WriteString("\n")
	}

	if len(p.Problems) > 0 {
		b.WriteString(a.styles.Error.Render("Problems"))
		b.WriteString("\n")
		for _, problem := range p.Problems {
			b.WriteString("  " + a.styles.Error.Render("!") + " " + problem.String() + "\n")
		}
		b.WriteString("\n")
		b.WriteString(a.styles.HelpDesc.Render("esc: discard"))
		return a.styles.Dialog.Render(b.String())
	}

	if size := p.DownloadSize(); size > 0 {
		b.WriteString("  download: " + alpm.HumanSize(size) + "\n")
	}
	switch delta := p.InstalledDelta(); {
	case delta > 0:
		b.WriteString("  net growth: " + alpm.HumanSize(delta) + "\n")
	case delta < 0:
		b.WriteString("  freed: " + alpm.HumanSize(-delta) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(a.styles.HelpKey.Render("enter") + a.styles.HelpDesc.Render(" execute  ") +
		a.styles.HelpKey.Render("esc") + a.styles.HelpDesc.Render(" discard"))

	return a.styles.Dialog.Render(b.String())
}

func (a *App) renderExecution() string {
	var b strings.Builder

	title := "Executing Transaction"
	if a.execDone && a.execFailed {
		title = "Transaction Failed"
	} else if a.execDone {
		title = "Transaction Complete"
	}
	b.WriteString(a.styles.DialogTitle.Render(title))
	b.WriteString("\n\n")

	if a.execTotal > 0 {
		b.WriteString(fmt.Sprintf("  %d / %d operations\n\n", a.execCount, a.execTotal))
	}

	const maxLines = 12
	lines := a.execLines
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	for _, line := range lines {
		style := a.styles.StatusBar
		if strings.HasPrefix(line, "failed") {
			style = a.styles.Error
		} else if strings.HasPrefix(line, "warning") {
			style = a.styles.Warning
		}
		b.WriteString("  " + style.Render(line) + "\n")
	}
	b.WriteString("\n")

	if a.execDone {
		b.WriteString(a.styles.HelpKey.Render("enter") + a.styles.HelpDesc.Render(" close"))
	} else {
		b.WriteString("  " + a.spinner.View())
	}

	return a.styles.Dialog.Render(b.String())
}

func (a *App) renderHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.DialogTitle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, group := range a.keys.FullHelp() {
		for _, binding := range group {
			help := binding.Help()
			b.WriteString(fmt.Sprintf("  %s %s\n",
				a.styles.HelpKey.Render(fmt.Sprintf("%-10s", help.Key)),
				a.styles.HelpDesc.Render(help.Desc)))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.HelpDesc.Render("press any key to close"))

	return a.styles.Dialog.Render(b.String())
}

func (a *App) renderStatus() string {
	if a.notice.text == "" {
		return ""
	}
	style := a.styles.Info
	switch a.notice.level {
	case bridge.NoticeWarning:
		style = a.styles.Warning
	case bridge.NoticeError:
		style = a.styles.Error
	}
	return " " + style.Render(a.notice.text)
}

func (a *App) renderFooter() string {
	var hints []string
	for _, binding := range a.keys.ShortHelp() {
		help := binding.Help()
		hints = append(hints, a.styles.HelpKey.Render(help.Key)+" "+a.styles.HelpDesc.Render(help.Desc))
	}
	return a.styles.Footer.Render(strings.Join(hints, "  "))
}

// Run starts the TUI over a started bridge and blocks until the user
// quits.
func Run(b *bridge.Bridge, cfg *config.Config) error {
	app := NewApp(b, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
