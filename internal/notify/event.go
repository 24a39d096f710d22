package notify

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/backoffice/internal/archive"
)

// ArchiveEvent is the message published for each archival pass.
type ArchiveEvent struct {
	Month          int              `json:"month"`
	Year           int              `json:"year"`
	Status         archive.Status   `json:"status"`
	Step           archive.Step     `json:"step"`
	ArchiveID      string           `json:"archive_id,omitempty"`
	TotalRevenue   *decimal.Decimal `json:"total_revenue,omitempty"`
	TotalExpenses  *decimal.Decimal `json:"total_expenses,omitempty"`
	NetProfit      *decimal.Decimal `json:"net_profit,omitempty"`
	ExpenseCount   int              `json:"expense_count"`
	InvoiceCount   int              `json:"invoice_count"`
	ExpensesPruned int64            `json:"expenses_pruned"`
	InvoicesPruned int64            `json:"invoices_pruned"`
	Errors         []string         `json:"errors,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
}

// NewArchiveEvent builds an event from a pass result.
func NewArchiveEvent(r *archive.Result, now time.Time) *ArchiveEvent {
	ev := &ArchiveEvent{
		Month:          int(r.Period.Month),
		Year:           r.Period.Year,
		Status:         r.Status,
		Step:           r.Step,
		ExpensesPruned: r.ExpensesPruned,
		InvoicesPruned: r.InvoicesPruned,
		Timestamp:      now,
	}
	if a := r.Archive; a != nil {
		ev.ArchiveID = a.ID
		ev.TotalRevenue = &a.TotalRevenue
		ev.TotalExpenses = &a.TotalExpenses
		ev.NetProfit = &a.NetProfit
		ev.ExpenseCount = len(a.Expenses)
		ev.InvoiceCount = len(a.Invoices)
	}
	if r.Err != nil {
		ev.Errors = append(ev.Errors, r.Err.Error())
	}
	for _, err := range r.PruneErrors {
		ev.Errors = append(ev.Errors, err.Error())
	}
	return ev
}

// ToJSON converts the event to JSON bytes.
func (e *ArchiveEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ArchiveEventFromJSON decodes an event.
func ArchiveEventFromJSON(data []byte) (*ArchiveEvent, error) {
	var ev ArchiveEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
