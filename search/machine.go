package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/Deborah-9/PaperPilot/taxonomy"
)

// State names where the advanced-search flow currently is.
type State int

const (
	ChoosingFilter State = iota
	EnteringDateFrom
	EnteringDateTo
	EnteringAuthor
	EnteringMinCitations
	Terminal
)

func (s State) String() string {
	switch s {
	case ChoosingFilter:
		return "choosing_filter"
	case EnteringDateFrom:
		return "entering_date_from"
	case EnteringDateTo:
		return "entering_date_to"
	case EnteringAuthor:
		return "entering_author"
	case EnteringMinCitations:
		return "entering_min_citations"
	case Terminal:
		return "terminal"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome records how a terminal machine finished.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeExecuted
	OutcomeCancelled
)

// AuthorMode is how the author filter matches names.
type AuthorMode string

const (
	AuthorExact    AuthorMode = "exact"
	AuthorLastName AuthorMode = "last_name"
)

// Validation errors surfaced to the user as corrective prompts. The
// machine stays in (or returns to) a stable state after each of them.
var (
	ErrBadDate         = errors.New("search: date must be YYYY-MM-DD")
	ErrDateOrder       = errors.New("search: start date is after end date")
	ErrEmptyAuthor     = errors.New("search: author must not be empty")
	ErrBadCitations    = errors.New("search: minimum citations must be a non-negative number")
	ErrUnknownCategory = errors.New("search: unknown category")
	ErrNoFilters       = errors.New("search: set at least one filter before searching")
	ErrTerminalState   = errors.New("search: flow already finished")
)

const dateLayout = "2006-01-02"

// Machine drives one user's advanced-search flow. It owns the filter
// set being built and performs no I/O; handler code renders menus from
// its state and feeds user input back in. Not safe for concurrent use.
type Machine struct {
	state   State
	outcome Outcome
	filters FilterSet

	tax        *taxonomy.Taxonomy
	authorMode AuthorMode

	// pendingFrom holds a start date until its end date arrives, so a
	// failed or abandoned entry never leaves the filter set half
	// written.
	pendingFrom time.Time

	now func() time.Time
}

// NewMachine starts a flow in ChoosingFilter with empty filters.
func NewMachine(tax *taxonomy.Taxonomy) *Machine {
	return &Machine{
		state:      ChoosingFilter,
		tax:        tax,
		authorMode: AuthorExact,
		now:        time.Now,
	}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Outcome is meaningful only once State is Terminal.
func (m *Machine) Outcome() Outcome { return m.outcome }

// Filters exposes the set built so far, for summary rendering.
func (m *Machine) Filters() *FilterSet { return &m.filters }

// AuthorMode returns the selected author match mode.
func (m *Machine) AuthorMode() AuthorMode { return m.authorMode }

func (m *Machine) guard() error {
	if m.state == Terminal {
		return ErrTerminalState
	}
	return nil
}

// ChooseDate moves to manual date entry.
func (m *Machine) ChooseDate() error {
	if err := m.guard(); err != nil {
		return err
	}
	m.pendingFrom = time.Time{}
	m.state = EnteringDateFrom
	return nil
}

// ChoosePredefinedRange writes both date bounds at once and stays in
// the filter menu.
func (m *Machine) ChoosePredefinedRange(span time.Duration) error {
	if err := m.guard(); err != nil {
		return err
	}
	m.filters.Dates = RangeEndingNow(span, m.now())
	m.state = ChoosingFilter
	return nil
}

// EnterDate consumes a free-text date in the current date-entry state.
func (m *Machine) EnterDate(text string) error {
	if err := m.guard(); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, text)
	if err != nil {
		return ErrBadDate
	}
	switch m.state {
	case EnteringDateFrom:
		m.pendingFrom = t
		m.state = EnteringDateTo
		return nil
	case EnteringDateTo:
		if t.Before(m.pendingFrom) {
			return ErrDateOrder
		}
		m.filters.Dates = DateRange{From: m.pendingFrom, To: t}
		m.pendingFrom = time.Time{}
		m.state = ChoosingFilter
		return nil
	default:
		return fmt.Errorf("search: date input not expected in state %s", m.state)
	}
}

// ChooseAuthor moves to author entry.
func (m *Machine) ChooseAuthor() error {
	if err := m.guard(); err != nil {
		return err
	}
	m.state = EnteringAuthor
	return nil
}

// SetAuthorMode records the match mode chosen from the author menu.
func (m *Machine) SetAuthorMode(mode AuthorMode) error {
	if err := m.guard(); err != nil {
		return err
	}
	m.authorMode = mode
	return nil
}

// EnterAuthor stores the author filter and returns to the menu. Empty
// input is rejected in place.
func (m *Machine) EnterAuthor(text string) error {
	if err := m.guard(); err != nil {
		return err
	}
	if m.state != EnteringAuthor {
		return fmt.Errorf("search: author input not expected in state %s", m.state)
	}
	if text == "" {
		return ErrEmptyAuthor
	}
	m.filters.Author = text
	m.state = ChoosingFilter
	return nil
}

// ChooseCitations moves to the numeric citation threshold step.
func (m *Machine) ChooseCitations() error {
	if err := m.guard(); err != nil {
		return err
	}
	m.state = EnteringMinCitations
	return nil
}

// SetMinCitations stores the threshold and returns to the menu.
func (m *Machine) SetMinCitations(n int) error {
	if err := m.guard(); err != nil {
		return err
	}
	if n < 0 {
		return ErrBadCitations
	}
	m.filters.MinCitations = n
	m.state = ChoosingFilter
	return nil
}

// ToggleCategory flips membership of a leaf category, validating the
// token against the taxonomy. The machine stays in the menu; toggling
// the same id twice restores the prior selection.
func (m *Machine) ToggleCategory(id string) error {
	if err := m.guard(); err != nil {
		return err
	}
	if m.tax != nil && !m.tax.Valid(id) {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, id)
	}
	m.filters.ToggleCategory(id)
	return nil
}

// Back returns to the filter menu from any state, discarding partial
// input.
func (m *Machine) Back() error {
	if err := m.guard(); err != nil {
		return err
	}
	m.pendingFrom = time.Time{}
	m.state = ChoosingFilter
	return nil
}

// Cancel finishes the flow, discarding the filter set.
func (m *Machine) Cancel() error {
	if err := m.guard(); err != nil {
		return err
	}
	m.filters.Reset()
	m.state = Terminal
	m.outcome = OutcomeCancelled
	return nil
}

// Execute compiles the filter set and finishes the flow. With nothing
// set, the machine stays in the menu and reports ErrNoFilters.
func (m *Machine) Execute() (string, error) {
	if err := m.guard(); err != nil {
		return "", err
	}
	if m.filters.IsEmpty() {
		return "", ErrNoFilters
	}
	query, err := Compile(&m.filters)
	if err != nil {
		return "", err
	}
	m.state = Terminal
	m.outcome = OutcomeExecuted
	return query, nil
}
