package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"ShortageWatcher/internal/domain"
)

// Columns is the result shape every shortage statement must produce, in order.
var Columns = []string{
	"RDATE",
	"LINE",
	"SERNO",
	"WRKSTS",
	"PARENT_ITMNO",
	"ITMNO",
	"ITM_NM",
	"REQUIRED_QTY",
	"USED_QTY",
	"ONHAND_QTY",
	"STANDBY_QTY",
	"LOTIN_QTY",
}

// WatchedLines are the production lines covered by both reports.
var WatchedLines = []string{"F01", "R01", "C01", "F31"}

// Messages holds the fixed notification texts of one report.
type Messages struct {
	Started       string
	CheckStarting string
	Header        string
	AllSufficient string
	Failed        string
	Completed     string // formatted with the next run time (HH:MM)
	Stopping      string
}

// CompletedAt renders the completion message announcing the next run.
func (m Messages) CompletedAt(next time.Time) string {
	return fmt.Sprintf(m.Completed, next.Format("15:04"))
}

// Section is a titled group of rows inside a message. An empty title emits no sub-header.
type Section struct {
	Title string
	Rows  []domain.ShortageRow
}

// Report ties a shortage statement to the message layout used to present its rows.
type Report struct {
	Name      string
	Messages  Messages
	Statement sq.Sqlizer
	Group     func(rows []domain.ShortageRow) []Section
	Block     func(row domain.ShortageRow) string
}

// Query renders the statement and its bound arguments.
func (r Report) Query() (string, []interface{}, error) {
	if r.Statement == nil {
		return "", nil, fmt.Errorf("report %s has no statement", r.Name)
	}
	return r.Statement.ToSql()
}

// Format turns query rows into the alert text. No rows yields the all-sufficient message only.
func (r Report) Format(rows []domain.ShortageRow) string {
	if len(rows) == 0 {
		return r.Messages.AllSufficient
	}

	sections := []Section{{Rows: rows}}
	if r.Group != nil {
		sections = r.Group(rows)
	}

	var b strings.Builder
	b.WriteString(r.Messages.Header)
	b.WriteString("\n")
	for _, section := range sections {
		if len(section.Rows) == 0 {
			continue
		}
		if section.Title != "" {
			b.WriteString(section.Title)
			b.WriteString("\n")
		}
		for _, row := range section.Rows {
			b.WriteString(r.Block(row))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Registry keeps a mapping from report names to their definitions.
type Registry struct {
	reports map[string]Report
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{reports: map[string]Report{}}
}

// DefaultRegistry holds the line-inventory and lot-in reports.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(Line())
	reg.Register(LotIn())
	return reg
}

// Register adds or replaces a report definition.
func (r *Registry) Register(rep Report) {
	if r.reports == nil {
		r.reports = map[string]Report{}
	}
	r.reports[rep.Name] = rep
}

// Resolve returns a report by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Report, error) {
	if rep, ok := r.reports[name]; ok {
		return rep, nil
	}
	return Report{}, fmt.Errorf("report %s is not registered (known: %s)", name, strings.Join(r.Names(), ", "))
}

// Names lists registered reports alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.reports))
	for name := range r.reports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lineFilter(column string) (string, []interface{}) {
	placeholders := sq.Placeholders(len(WatchedLines))
	args := make([]interface{}, len(WatchedLines))
	for i, line := range WatchedLines {
		args[i] = line
	}
	return fmt.Sprintf("%s IN (%s)", column, placeholders), args
}
