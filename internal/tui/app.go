package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/jaskgrid/internal/config"
	"github.com/jask/jaskgrid/internal/database/repository"
	"github.com/jask/jaskgrid/internal/export"
	"github.com/jask/jaskgrid/internal/grid"
	"github.com/jask/jaskgrid/internal/prefs"
)

// Options configures the ledger browser.
type Options struct {
	Config     config.Config
	ConfigPath string
	ExportDir  string
	// PrefsPath holds column visibility and sort between sessions; empty
	// disables persistence.
	PrefsPath string
	Location  *time.Location
	// Scheduler overrides the debounce scheduler; tests pass a manual one.
	Scheduler grid.Scheduler
}

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeColumns
)

// App is the ledger browser model.
type App struct {
	ctx       context.Context
	repos     Repos
	cfg       config.Config
	cfgPath   string
	prefsPath string
	exportDir string
	tz        *time.Location
	keys      keyMap

	view    *grid.View[Row]
	applied chan struct{}
	search  textinput.Model

	mode       mode
	cursor     int
	categories []string
	filterIdx  int // index into categories; -1 = unfiltered
	status     string
	failed     bool
	loaded     bool
}

// New builds the browser over an empty ledger; Init loads the data.
func New(ctx context.Context, repos Repos, opts Options) (*App, error) {
	reg, err := Columns()
	if err != nil {
		return nil, err
	}
	tz := opts.Location
	if tz == nil {
		tz = time.Local
	}
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search"

	a := &App{
		ctx:       ctx,
		repos:     repos,
		cfg:       opts.Config,
		cfgPath:   opts.ConfigPath,
		prefsPath: opts.PrefsPath,
		exportDir: opts.ExportDir,
		tz:        tz,
		keys:      newKeyMap(),
		applied:   make(chan struct{}, 1),
		search:    ti,
		filterIdx: -1,
	}
	a.view = grid.New(reg, grid.Options{
		PageSize:        opts.Config.Grid.PageSize,
		SearchDebounce:  opts.Config.Grid.SearchDebounce,
		Scheduler:       opts.Scheduler,
		OnSearchApplied: a.notifySearch,
	})
	if err := a.restorePrefs(); err != nil {
		a.setError(fmt.Errorf("prefs: %w", err))
	}
	return a, nil
}

// restorePrefs applies saved column visibility and sort. Columns that no
// longer exist are skipped.
func (a *App) restorePrefs() error {
	if a.prefsPath == "" {
		return nil
	}
	p, err := prefs.LoadView(a.prefsPath)
	if err != nil {
		return err
	}
	for k, visible := range p.Columns {
		if _, ok := a.view.Registry().Column(k); ok {
			_ = a.view.SetColumnVisible(k, visible)
		}
	}
	spec, err := ParseSort(p.Sort)
	if err != nil {
		return err
	}
	return a.view.SetSort(spec)
}

// notifySearch runs on the debounce timer goroutine.
func (a *App) notifySearch() {
	select {
	case a.applied <- struct{}{}:
	default:
	}
}

func (a *App) waitForSearch() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-a.applied:
			return searchAppliedMsg{}
		case <-a.ctx.Done():
			return nil
		}
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadLedger(), a.waitForSearch())
}

func (a *App) loadLedger() tea.Cmd {
	return func() tea.Msg {
		rows, err := LoadLedger(a.ctx, a.repos)
		if err != nil {
			return errMsg{err}
		}
		return ledgerMsg(rows)
	}
}

type ledgerMsg []Row

type searchAppliedMsg struct{}

type statusMsg string

type errMsg struct{ error }

type reviewedMsg struct{ changed int64 }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		switch a.mode {
		case modeSearch:
			return a.handleSearchKey(m)
		case modeColumns:
			return a.handleColumnKey(m)
		}
		return a.handleBrowseKey(m)
	case ledgerMsg:
		a.view.SetData([]Row(m))
		a.categories = categoryOptions(m)
		if a.filterIdx >= len(a.categories) {
			a.filterIdx = -1
			a.view.SetFilter(ColCategory, nil)
		}
		a.loaded = true
		a.clampCursor()
	case searchAppliedMsg:
		a.clampCursor()
		return a, a.waitForSearch()
	case reviewedMsg:
		a.setStatus(fmt.Sprintf("marked %d reviewed", m.changed))
		return a, a.loadLedger()
	case statusMsg:
		a.setStatus(string(m))
	case errMsg:
		a.setError(m.error)
	}
	return a, nil
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.String() == "ctrl+c":
		return a, tea.Quit
	case key.Matches(m, a.keys.Apply):
		a.view.FlushSearch()
		a.endSearch()
		return a, nil
	case key.Matches(m, a.keys.Cancel):
		a.search.SetValue("")
		a.view.SetSearch("")
		a.view.FlushSearch()
		a.endSearch()
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(m)
	a.view.SetSearch(a.search.Value())
	if !a.view.SearchPending() {
		a.clampCursor()
	}
	return a, cmd
}

func (a *App) endSearch() {
	a.search.Blur()
	a.mode = modeBrowse
	a.cursor = 0
}

func (a *App) handleColumnKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.mode = modeBrowse
	n, ok := digit(m.String())
	if !ok {
		return a, nil
	}
	cols := a.view.Registry().Columns()
	if n > len(cols) {
		a.setStatus(fmt.Sprintf("no column %d", n))
		return a, nil
	}
	k := cols[n-1].Key
	if err := a.view.SetColumnVisible(k, !a.view.IsColumnVisible(k)); err != nil {
		a.setError(err)
		return a, nil
	}
	state := "hidden"
	if a.view.IsColumnVisible(k) {
		state = "shown"
	}
	a.setStatus(fmt.Sprintf("%s %s", cols[n-1].Label(), state))
	return a, nil
}

func (a *App) handleBrowseKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Search):
		a.mode = modeSearch
		a.search.SetValue(a.view.SearchInput())
		a.search.CursorEnd()
		return a, a.search.Focus()
	case key.Matches(m, a.keys.Sort):
		n, _ := digit(m.String())
		a.requestSort(n)
	case key.Matches(m, a.keys.Filter):
		a.cycleCategory()
	case key.Matches(m, a.keys.ClearFilter):
		a.view.ClearFilters()
		a.filterIdx = -1
		a.cursor = 0
	case key.Matches(m, a.keys.PrevPage):
		a.movePage(-1)
	case key.Matches(m, a.keys.NextPage):
		a.movePage(1)
	case key.Matches(m, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(m, a.keys.Down):
		a.cursor++
		a.clampCursor()
	case key.Matches(m, a.keys.Grow):
		a.stepPageSize(1)
	case key.Matches(m, a.keys.Shrink):
		a.stepPageSize(-1)
	case key.Matches(m, a.keys.Toggle):
		a.toggleCursorRow()
	case key.Matches(m, a.keys.ToggleAll):
		if err := a.view.ToggleSelectAllOnPage(); err != nil {
			a.setError(err)
		}
	case key.Matches(m, a.keys.Columns):
		a.mode = modeColumns
	case key.Matches(m, a.keys.ExportCSV):
		return a, a.exportCmd("csv")
	case key.Matches(m, a.keys.ExportYAML):
		return a, a.exportCmd("yaml")
	case key.Matches(m, a.keys.Review):
		if a.view.SelectedCount() == 0 {
			a.setStatus("nothing selected")
			return a, nil
		}
		return a, a.reviewSelectedCmd()
	case key.Matches(m, a.keys.Prune):
		n, err := a.view.PruneSelection()
		if err != nil {
			a.setError(err)
			return a, nil
		}
		a.setStatus(fmt.Sprintf("dropped %d stale selections", n))
	case key.Matches(m, a.keys.SavePrefs):
		return a, a.savePrefsCmd()
	case key.Matches(m, a.keys.Reload):
		return a, a.loadLedger()
	}
	return a, nil
}

func (a *App) requestSort(n int) {
	cols := a.view.DisplayedColumns()
	if n < 1 || n > len(cols) {
		a.setStatus(fmt.Sprintf("no column %d", n))
		return
	}
	if err := a.view.RequestSort(cols[n-1].Key); err != nil {
		a.setError(err)
		return
	}
	a.cursor = 0
	a.setStatus("sort: " + a.view.SortSpec().String())
}

func (a *App) cycleCategory() {
	if len(a.categories) == 0 {
		a.setStatus("no categories")
		return
	}
	a.filterIdx++
	if a.filterIdx >= len(a.categories) {
		a.filterIdx = -1
		a.view.SetFilter(ColCategory, nil)
		a.setStatus("category: all")
	} else {
		a.view.SetFilter(ColCategory, a.categories[a.filterIdx])
		a.setStatus("category: " + a.categories[a.filterIdx])
	}
	a.cursor = 0
}

func (a *App) movePage(delta int) {
	dv, err := a.view.Derive()
	if err != nil {
		a.setError(err)
		return
	}
	next := dv.CurrentPage + delta
	if next < 1 || next > dv.TotalPages {
		return
	}
	a.view.SetPage(next)
	a.cursor = 0
}

func (a *App) stepPageSize(dir int) {
	cur := a.view.Pagination().PageSize
	sizes := slices.Clone(a.cfg.Grid.PageSizes)
	if !slices.Contains(sizes, cur) {
		sizes = append(sizes, cur)
	}
	slices.Sort(sizes)
	i := slices.Index(sizes, cur) + dir
	if i < 0 || i >= len(sizes) {
		return
	}
	if err := a.view.SetPageSize(sizes[i]); err != nil {
		a.setError(err)
		return
	}
	a.clampCursor()
	a.setStatus(fmt.Sprintf("%d rows per page", sizes[i]))
}

func (a *App) toggleCursorRow() {
	dv, err := a.view.Derive()
	if err != nil {
		a.setError(err)
		return
	}
	if a.cursor >= len(dv.PageIDs) {
		return
	}
	a.view.ToggleRowSelection(dv.PageIDs[a.cursor])
}

func (a *App) clampCursor() {
	dv, err := a.view.Derive()
	if err != nil {
		a.setError(err)
		return
	}
	if a.cursor >= len(dv.PageRows) {
		a.cursor = max(len(dv.PageRows)-1, 0)
	}
}

func (a *App) setStatus(s string) {
	a.status = s
	a.failed = false
}

func (a *App) setError(err error) {
	a.status = "error: " + err.Error()
	a.failed = true
}

// exportCmd snapshots the filtered, sorted rows and displayed columns now and
// writes them off the update loop.
func (a *App) exportCmd(format string) tea.Cmd {
	dv, err := a.view.Derive()
	if err != nil {
		a.setError(err)
		return nil
	}
	rows, cols := dv.FilteredSorted, dv.Columns
	path := filepath.Join(a.exportDir, fmt.Sprintf("ledger-%s.%s", time.Now().Format("20060102-150405"), format))
	return func() tea.Msg {
		if err := writeExport(path, format, cols, rows); err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("exported %d rows to %s", len(rows), path))
	}
}

func writeExport(path, format string, cols []grid.Column[Row], rows []Row) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	switch format {
	case "csv":
		return export.CSV(f, cols, rows)
	case "yaml":
		return export.YAML(f, cols, rows)
	}
	return fmt.Errorf("unknown export format %q", format)
}

func (a *App) reviewSelectedCmd() tea.Cmd {
	return func() tea.Msg {
		var changed int64
		err := a.view.ApplyToSelected(func(rows []Row) error {
			ids := make([]string, len(rows))
			for i, r := range rows {
				ids[i] = r.ID
			}
			n, err := a.repos.Transactions.UpdateStatusMany(a.ctx, ids, repository.StatusReviewed)
			changed = n
			return err
		})
		if err != nil {
			return errMsg{err}
		}
		return reviewedMsg{changed: changed}
	}
}

// savePrefsCmd persists the page size to the config file and column
// visibility and sort to the prefs file.
func (a *App) savePrefsCmd() tea.Cmd {
	a.cfg.Grid.PageSize = a.view.Pagination().PageSize
	cfg, cfgPath, prefsPath := a.cfg, a.cfgPath, a.prefsPath
	view := prefs.View{Columns: a.view.ColumnVisibility()}
	if spec := a.view.SortSpec(); spec.IsSorted() {
		view.Sort = spec.Key + ":" + spec.Direction.String()
	}
	return func() tea.Msg {
		if err := config.Save(cfgPath, cfg); err != nil {
			return errMsg{err}
		}
		if prefsPath != "" {
			if err := prefs.SaveView(prefsPath, view); err != nil {
				return errMsg{fmt.Errorf("save prefs: %w", err)}
			}
		}
		return statusMsg(fmt.Sprintf("saved %d rows per page", cfg.Grid.PageSize))
	}
}

func (a *App) View() string {
	title := titleStyle.Render("Ledger")
	if !a.loaded {
		if a.failed {
			return title + "\n" + errorStyle.Render(a.status)
		}
		return title + "\nloading..."
	}
	dv, err := a.view.Derive()
	if err != nil {
		return title + "\n" + errorStyle.Render("error: "+err.Error())
	}

	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(a.renderQuery() + "\n\n")
	b.WriteString(a.renderHeader(dv.Columns) + "\n")
	if len(dv.PageRows) == 0 {
		b.WriteString(dimStyle.Render("  no matching transactions") + "\n")
	}
	for i, r := range dv.PageRows {
		b.WriteString(a.renderRow(i, dv.PageIDs[i], r, dv.Columns) + "\n")
	}
	b.WriteString("\n" + a.renderPager(dv) + "\n")
	switch a.mode {
	case modeSearch:
		b.WriteString(renderHelp(a.keys.SearchHelp()))
	case modeColumns:
		b.WriteString(a.renderColumnPicker())
	default:
		b.WriteString(renderHelp(a.keys.ShortHelp()))
	}
	if a.status != "" {
		style := dimStyle
		if a.failed {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(a.status))
	}
	return b.String()
}

func (a *App) renderQuery() string {
	var parts []string
	if a.mode == modeSearch {
		parts = append(parts, a.search.View())
	} else if q := a.view.SearchInput(); q != "" {
		parts = append(parts, "/"+q)
	}
	if a.view.SearchPending() {
		parts = append(parts, dimStyle.Render("(searching)"))
	}
	if a.filterIdx >= 0 {
		parts = append(parts, "category="+a.categories[a.filterIdx])
	}
	if spec := a.view.SortSpec(); spec.IsSorted() {
		parts = append(parts, "sort="+spec.String())
	}
	if len(parts) == 0 {
		return dimStyle.Render("all transactions")
	}
	return strings.Join(parts, "  ")
}

func (a *App) renderHeader(cols []grid.Column[Row]) string {
	state, err := a.view.HeaderCheckState()
	if err != nil {
		state = grid.Unchecked
	}
	spec := a.view.SortSpec()
	cells := []string{"  " + checkbox(state)}
	for i, c := range cols {
		label := c.Label()
		if i < 9 {
			label = fmt.Sprintf("%d %s", i+1, label)
		}
		if spec.Key == c.Key {
			if spec.Direction == grid.Desc {
				label += "▼"
			} else {
				label += "▲"
			}
		}
		cells = append(cells, cell(label, c.Width, c.Align))
	}
	return headerStyle.Render(strings.Join(cells, " "))
}

func (a *App) renderRow(i int, id any, r Row, cols []grid.Column[Row]) string {
	state := grid.Unchecked
	if a.view.IsRowSelected(id) {
		state = grid.Checked
	}
	cells := []string{"  " + checkbox(state)}
	for _, c := range cols {
		cells = append(cells, cell(a.display(c, r), c.Width, c.Align))
	}
	line := strings.Join(cells, " ")
	switch {
	case i == a.cursor:
		return cursorStyle.Render(line)
	case state == grid.Checked:
		return selectedStyle.Render(line)
	}
	return line
}

func (a *App) display(c grid.Column[Row], r Row) string {
	switch c.Key {
	case ColDate:
		return r.Date.In(a.tz).Format(a.cfg.UI.DateFormat)
	case ColAmount:
		m := Money(r.AmountCents)
		if m < 0 {
			return "-" + a.cfg.UI.CurrencySymbol + (-m).String()
		}
		return a.cfg.UI.CurrencySymbol + m.String()
	}
	v, err := c.Value(r)
	if err != nil {
		return "!"
	}
	return grid.Format(v)
}

func (a *App) renderPager(dv grid.DerivedView[Row]) string {
	labels := make([]string, 0, len(dv.Pages))
	for _, p := range dv.Pages {
		if !p.Ellipsis && p.Number == dv.CurrentPage {
			labels = append(labels, currentPage.Render(fmt.Sprintf("[%d]", p.Number)))
			continue
		}
		labels = append(labels, p.String())
	}
	pager := strings.Join(labels, " ")
	if pager == "" {
		pager = "-"
	}
	return fmt.Sprintf("Page %d/%d  %s  %d rows  %d per page  %d selected",
		dv.CurrentPage, max(dv.TotalPages, 1), pager, dv.TotalFiltered, dv.PageSize, a.view.SelectedCount())
}

func (a *App) renderColumnPicker() string {
	cols := a.view.Registry().Columns()
	parts := make([]string, 0, len(cols))
	for i, c := range cols {
		mark := " "
		if a.view.IsColumnVisible(c.Key) {
			mark = "x"
		}
		parts = append(parts, fmt.Sprintf("%d [%s] %s", i+1, mark, c.Label()))
	}
	return "toggle column: " + strings.Join(parts, "  ")
}

func checkbox(s grid.CheckState) string {
	switch s {
	case grid.Checked:
		return "[x]"
	case grid.Indeterminate:
		return "[-]"
	}
	return "[ ]"
}

func digit(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '0'), true
}

// ErrNoRepos is returned by Run when the browser has nothing to read from.
var ErrNoRepos = errors.New("tui: repositories not configured")

// Run starts the program and blocks until it exits.
func Run(ctx context.Context, repos Repos, opts Options) error {
	if repos.Transactions == nil || repos.Categories == nil || repos.Accounts == nil {
		return ErrNoRepos
	}
	app, err := New(ctx, repos, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
