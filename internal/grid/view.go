package grid

import (
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Options configures a View.
type Options struct {
	// PageSize is the initial page size. Defaults to DefaultPageSize.
	PageSize int
	// SearchDebounce is the quiet period after SetSearch before the query is
	// applied. Zero applies every query synchronously.
	SearchDebounce time.Duration
	// Scheduler defers debounced searches. Defaults to TimerScheduler.
	Scheduler Scheduler
	// OnSearchApplied is called, without locks held, after a debounced query
	// changed the applied search.
	OnSearchApplied func()
}

// DefaultPageSize is used when Options.PageSize is not positive.
const DefaultPageSize = 10

// State is the query state owned by a View.
type State struct {
	Search     string
	Filters    FilterState
	Sort       SortSpec
	Pagination PaginationState
}

// DerivedView is the result of running the pipeline over the current inputs.
// Its slices are shared with the View's cache and must not be modified.
type DerivedView[R any] struct {
	FilteredSorted []R
	PageRows       []R
	PageIDs        []any
	TotalFiltered  int
	TotalPages     int
	CurrentPage    int
	PageSize       int
	Pages          []PageItem
	Columns        []Column[R]
}

type stageKey struct {
	dataRev   uint64
	filterRev uint64
	search    string
	sort      SortSpec
}

type viewKey struct {
	stageKey
	pageSize int
	page     int
}

// View composes the search, filter, sort and pagination stages over a
// dataset and tracks selection and column visibility alongside. It is safe
// for concurrent use; debounced searches are applied from a timer goroutine.
type View[R any] struct {
	mu sync.Mutex

	reg      *Registry[R]
	identity IdentityFunc[R]

	data    []R
	dataRev uint64
	index   *rowIndex
	posReg  *Registry[int]

	searchInput string
	searchGen   uint64
	state       State
	filterRev   uint64

	selection  *Selection
	visibility *Visibility

	debounce *Debouncer
	notify   func()

	stageCached bool
	stageKey    stageKey
	stageRows   []int

	viewCached bool
	viewKey    viewKey
	view       DerivedView[R]
}

// New returns a View over reg with an empty dataset.
func New[R any](reg *Registry[R], opts Options) *View[R] {
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	v := &View[R]{
		reg:        reg,
		identity:   DefaultIdentity[R],
		selection:  NewSelection(),
		visibility: NewVisibility(reg),
		notify:     opts.OnSearchApplied,
		state: State{
			Filters:    FilterState{},
			Pagination: PaginationState{PageSize: size, CurrentPage: 1},
		},
	}
	if opts.SearchDebounce > 0 {
		v.debounce = NewDebouncer(opts.Scheduler, opts.SearchDebounce)
	}
	return v
}

// Registry returns the column registry.
func (v *View[R]) Registry() *Registry[R] { return v.reg }

// SetData replaces the dataset. The slice must not be modified afterwards.
// Selections survive; ids no longer present are simply unresolvable.
func (v *View[R]) SetData(rows []R) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data = rows
	v.invalidateData()
}

// SetIdentity overrides the row identity resolver. Nil restores DefaultIdentity.
func (v *View[R]) SetIdentity(fn IdentityFunc[R]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if fn == nil {
		fn = DefaultIdentity[R]
	}
	v.identity = fn
	v.invalidateData()
}

func (v *View[R]) invalidateData() {
	v.dataRev++
	v.index = nil
	v.posReg = nil
}

// SetSearch records the raw search input and schedules it to be applied
// once the debounce period has elapsed. A newer input supersedes a pending one.
func (v *View[R]) SetSearch(text string) {
	v.mu.Lock()
	gen := v.recordSearch(text)
	if v.debounce == nil {
		v.applySearch(text)
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()

	v.debounce.Trigger(func() {
		v.mu.Lock()
		// A later SetSearch or FlushSearch owns the applied query now.
		if gen != v.searchGen {
			v.mu.Unlock()
			return
		}
		changed := v.applySearch(v.searchInput)
		notify := v.notify
		v.mu.Unlock()
		if changed && notify != nil {
			notify()
		}
	})
}

// FlushSearch applies a pending search immediately and reports whether the
// applied query changed.
func (v *View[R]) FlushSearch() bool {
	if v.debounce != nil {
		v.debounce.Stop()
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.flushSearch()
}

func (v *View[R]) flushSearch() bool {
	v.searchGen++
	return v.applySearch(v.searchInput)
}

func (v *View[R]) recordSearch(text string) uint64 {
	v.searchInput = text
	v.searchGen++
	return v.searchGen
}

// SearchPending reports whether a debounced search has not been applied yet.
func (v *View[R]) SearchPending() bool {
	return v.debounce != nil && v.debounce.Pending()
}

// SearchInput returns the latest raw search input.
func (v *View[R]) SearchInput() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.searchInput
}

// Search returns the query currently applied to the pipeline.
func (v *View[R]) Search() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Search
}

func (v *View[R]) applySearch(q string) bool {
	if q == v.state.Search {
		return false
	}
	v.state.Search = q
	v.resetPage()
	return true
}

// SetFilter sets the filter for key. Inert values (nil, "", empty slices)
// remove it. Keys without a column are kept but never restrict rows.
func (v *View[R]) SetFilter(key string, value any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	old, had := v.state.Filters[key]
	if !Active(value) {
		if !had {
			return
		}
		delete(v.state.Filters, key)
	} else {
		value = ownOperand(value)
		if had && reflect.DeepEqual(old, value) {
			return
		}
		v.state.Filters[key] = value
	}
	v.filterRev++
	v.resetPage()
}

// ClearFilters removes every filter.
func (v *View[R]) ClearFilters() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.state.Filters) == 0 {
		return
	}
	v.state.Filters = FilterState{}
	v.filterRev++
	v.resetPage()
}

// Filters returns a copy of the active filters.
func (v *View[R]) Filters() FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Filters.Clone()
}

// RequestSort advances the sort toggle for key.
func (v *View[R]) RequestSort(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.checkSortable(key); err != nil {
		return err
	}
	v.state.Sort = NextSort(v.state.Sort, key)
	v.resetPage()
	return nil
}

// SetSort replaces the sort outright. The zero SortSpec clears it.
func (v *View[R]) SetSort(spec SortSpec) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if spec.IsSorted() {
		if err := v.checkSortable(spec.Key); err != nil {
			return err
		}
	}
	if spec == v.state.Sort {
		return nil
	}
	v.state.Sort = spec
	v.resetPage()
	return nil
}

func (v *View[R]) checkSortable(key string) error {
	col, ok := v.reg.Column(key)
	if !ok {
		return unknownColumn(v.reg, key)
	}
	if !col.Sortable() {
		return fmt.Errorf("%w: %q", ErrNotSortable, key)
	}
	return nil
}

// SortSpec returns the active sort.
func (v *View[R]) SortSpec() SortSpec {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Sort
}

// SetPageSize changes the page size and returns to the first page.
func (v *View[R]) SetPageSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if n == v.state.Pagination.PageSize {
		return nil
	}
	v.state.Pagination.PageSize = n
	v.resetPage()
	return nil
}

// SetPage moves to page n. When the filtered row count is known for the
// current inputs the page is clamped immediately; otherwise it is clamped
// by the next Derive.
func (v *View[R]) SetPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	n = max(n, 1)
	if v.stageCached && v.stageKey == v.currentStageKey() {
		n = ClampPage(n, TotalPages(len(v.stageRows), v.state.Pagination.PageSize))
	}
	v.state.Pagination.CurrentPage = n
}

// Pagination returns the page size and current page. The page may still
// be out of range if no Derive ran since the dataset or query changed;
// DerivedView.CurrentPage is always clamped.
func (v *View[R]) Pagination() PaginationState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Pagination
}

// State returns a snapshot of the query state.
func (v *View[R]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Filters = v.state.Filters.Clone()
	return s
}

func (v *View[R]) resetPage() {
	v.state.Pagination.CurrentPage = 1
}

// SetColumnVisible shows or hides a column.
func (v *View[R]) SetColumnVisible(key string, visible bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.visibility.SetVisible(key, visible) {
		return unknownColumn(v.reg, key)
	}
	return nil
}

// IsColumnVisible reports whether key is displayed.
func (v *View[R]) IsColumnVisible(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visibility.Visible(key)
}

// ColumnVisibility returns the visibility of every column.
func (v *View[R]) ColumnVisibility() map[string]bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visibility.State()
}

// DisplayedColumns returns the visible columns in registry order.
func (v *View[R]) DisplayedColumns() []Column[R] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.displayedColumns()
}

func (v *View[R]) displayedColumns() []Column[R] {
	keys := v.visibility.VisibleKeys()
	out := make([]Column[R], 0, len(keys))
	for _, k := range keys {
		if c, ok := v.reg.Column(k); ok {
			out = append(out, c)
		}
	}
	return out
}

// Derive returns the current view, recomputing only when an input changed.
// Errors from identity resolution or column accessors are returned as is.
func (v *View[R]) Derive() (DerivedView[R], error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.derive()
}

func (v *View[R]) derive() (DerivedView[R], error) {
	idx, err := v.rowIndex()
	if err != nil {
		return DerivedView[R]{}, err
	}
	sk := v.currentStageKey()
	key := viewKey{stageKey: sk, pageSize: v.state.Pagination.PageSize, page: v.state.Pagination.CurrentPage}
	if v.viewCached && v.viewKey == key {
		out := v.view
		out.Columns = v.displayedColumns()
		return out, nil
	}

	positions, err := v.stage(sk)
	if err != nil {
		return DerivedView[R]{}, err
	}

	size := v.state.Pagination.PageSize
	total := TotalPages(len(positions), size)
	page := ClampPage(v.state.Pagination.CurrentPage, total)
	v.state.Pagination.CurrentPage = page
	key.page = page

	filtered := make([]R, len(positions))
	for i, p := range positions {
		filtered[i] = v.data[p]
	}
	pagePos := Paginate(positions, size, page).Rows
	pageIDs := make([]any, len(pagePos))
	for i, p := range pagePos {
		pageIDs[i] = idx.ids[p]
	}
	start := (page - 1) * size
	dv := DerivedView[R]{
		FilteredSorted: filtered,
		PageRows:       filtered[start : start+len(pagePos) : start+len(pagePos)],
		PageIDs:        pageIDs,
		TotalFiltered:  len(positions),
		TotalPages:     total,
		CurrentPage:    page,
		PageSize:       size,
		Pages:          PageNumbers(total, page),
	}
	v.view, v.viewKey, v.viewCached = dv, key, true

	dv.Columns = v.displayedColumns()
	return dv, nil
}

// stage runs search, filters and sort over dataset positions.
func (v *View[R]) currentStageKey() stageKey {
	return stageKey{
		dataRev:   v.dataRev,
		filterRev: v.filterRev,
		search:    v.state.Search,
		sort:      v.state.Sort,
	}
}

func (v *View[R]) stage(sk stageKey) ([]int, error) {
	if v.stageCached && v.stageKey == sk {
		return v.stageRows, nil
	}
	reg := v.positional()
	positions := make([]int, len(v.data))
	for i := range positions {
		positions[i] = i
	}
	rows, err := ApplySearch(positions, sk.search, reg)
	if err != nil {
		return nil, err
	}
	if rows, err = ApplyFilters(rows, v.state.Filters, reg); err != nil {
		return nil, err
	}
	if rows, err = ApplySort(rows, sk.sort, reg); err != nil {
		return nil, err
	}
	v.stageRows, v.stageKey, v.stageCached = rows, sk, true
	return rows, nil
}

// positional mirrors the registry with accessors reading v.data by position.
func (v *View[R]) positional() *Registry[int] {
	if v.posReg != nil {
		return v.posReg
	}
	data := v.data
	cols := make([]Column[int], 0, v.reg.Len())
	for _, c := range v.reg.Columns() {
		get := c.Value
		cols = append(cols, Column[int]{
			Key:      c.Key,
			Header:   c.Header,
			Value:    func(i int) (any, error) { return get(data[i]) },
			NoSort:   c.NoSort,
			NoSearch: c.NoSearch,
			Hidden:   c.Hidden,
			Align:    c.Align,
			Width:    c.Width,
			Natural:  c.Natural,
			Compare:  c.Compare,
		})
	}
	v.posReg = MustRegistry(cols...)
	return v.posReg
}

func (v *View[R]) rowIndex() (*rowIndex, error) {
	if v.index != nil {
		return v.index, nil
	}
	idx, err := buildIndex(v.data, v.identity)
	if err != nil {
		return nil, err
	}
	v.index = idx
	return idx, nil
}

// RowID returns the identity of the dataset row at position i.
func (v *View[R]) RowID(i int) (any, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	idx, err := v.rowIndex()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(idx.ids) {
		return nil, fmt.Errorf("row position %d out of range", i)
	}
	return idx.ids[i], nil
}

// ToggleRowSelection flips the selection of id.
func (v *View[R]) ToggleRowSelection(id any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.Toggle(id)
}

// IsRowSelected reports whether id is selected.
func (v *View[R]) IsRowSelected(id any) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selection.Contains(id)
}

// SelectedCount returns the number of selected ids, resolvable or not.
func (v *View[R]) SelectedCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selection.Len()
}

// SelectedIDs returns the selected ids in selection order.
func (v *View[R]) SelectedIDs() []any {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selection.IDs()
}

// ClearSelection deselects everything.
func (v *View[R]) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.Clear()
}

// ToggleSelectAllOnPage selects every row on the current page, or deselects
// them when they are all selected already. Rows on other pages are untouched.
func (v *View[R]) ToggleSelectAllOnPage() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	dv, err := v.derive()
	if err != nil {
		return err
	}
	v.selection.ToggleAll(dv.PageIDs)
	return nil
}

// IsAllOnPageSelected reports whether the current page is non-empty and fully selected.
func (v *View[R]) IsAllOnPageSelected() (bool, error) {
	state, err := v.HeaderCheckState()
	return state == Checked, err
}

// IsSomeOnPageSelected reports whether any row of the current page is selected.
func (v *View[R]) IsSomeOnPageSelected() (bool, error) {
	state, err := v.HeaderCheckState()
	return state != Unchecked, err
}

// HeaderCheckState returns the state of a "select all on page" control.
func (v *View[R]) HeaderCheckState() (CheckState, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	dv, err := v.derive()
	if err != nil {
		return Unchecked, err
	}
	return v.selection.State(dv.PageIDs), nil
}

// SelectedRecords resolves the selection against the dataset, in dataset
// order. Ids without a matching row are skipped.
func (v *View[R]) SelectedRecords() ([]R, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	idx, err := v.rowIndex()
	if err != nil {
		return nil, err
	}
	out := make([]R, 0, v.selection.Len())
	for i, id := range idx.ids {
		if v.selection.Contains(id) {
			out = append(out, v.data[i])
		}
	}
	return out, nil
}

// ApplyToSelected calls fn with the selected records.
func (v *View[R]) ApplyToSelected(fn func([]R) error) error {
	recs, err := v.SelectedRecords()
	if err != nil {
		return err
	}
	return fn(recs)
}

// PruneSelection drops selected ids that no longer resolve to a row and
// returns how many were dropped.
func (v *View[R]) PruneSelection() (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	idx, err := v.rowIndex()
	if err != nil {
		return 0, err
	}
	return v.selection.Retain(func(id any) bool {
		_, ok := idx.byID[id]
		return ok
	}), nil
}
