package archive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/yelinaung/backoffice/internal/logger"
	"gitlab.com/yelinaung/backoffice/internal/models"
	"gitlab.com/yelinaung/backoffice/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "gitlab.com/yelinaung/backoffice/internal/archive"

const (
	// DefaultCheckInterval is how often the loop re-evaluates the schedule.
	DefaultCheckInterval = time.Hour
	// CheckTimeout bounds a single archival pass.
	CheckTimeout = 5 * time.Minute
)

// ArchiveStore persists monthly archives.
type ArchiveStore interface {
	ExistsForPeriod(ctx context.Context, month, year int) (bool, error)
	Create(ctx context.Context, archive *models.MonthlyArchive) error
}

// ExpenseStore reads and prunes live expenses.
type ExpenseStore interface {
	ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Expense, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// InvoiceStore reads and prunes live invoices.
type InvoiceStore interface {
	ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Invoice, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// ActivityRecorder writes to the activity log.
type ActivityRecorder interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
}

// Notifier is told about every archival pass that did work or failed.
type Notifier interface {
	NotifyArchive(ctx context.Context, result *Result) error
}

// Status is the outcome of one archival pass.
type Status string

const (
	StatusArchived        Status = "archived"
	StatusPartial         Status = "partial"
	StatusAlreadyArchived Status = "already_archived"
	StatusFailed          Status = "failed"
)

// Step names the pipeline stage a Result stopped at.
type Step string

const (
	StepGuard     Step = "guard"
	StepAggregate Step = "aggregate"
	StepWrite     Step = "write"
	StepPrune     Step = "prune"
)

// Result describes one archival pass. Err is set only for StatusFailed;
// delete failures after a successful write land in PruneErrors.
type Result struct {
	Period         Period
	Status         Status
	Step           Step
	Err            error
	Archive        *models.MonthlyArchive
	ExpensesPruned int64
	InvoicesPruned int64
	PruneErrors    []error
}

// Archiver runs the monthly archival pipeline.
type Archiver struct {
	archives ArchiveStore
	expenses ExpenseStore
	invoices InvoiceStore
	activity ActivityRecorder
	notifier Notifier

	interval time.Duration
	loc      *time.Location
	now      func() time.Time

	tracer trace.Tracer
	runs   metric.Int64Counter
	pruned metric.Int64Counter

	log zerolog.Logger
	mu  sync.Mutex
}

// Option configures an Archiver.
type Option func(*Archiver)

// WithActivityLog records each written archive in the activity log.
func WithActivityLog(r ActivityRecorder) Option {
	return func(a *Archiver) { a.activity = r }
}

// WithNotifier sets the notifier called after each pass.
func WithNotifier(n Notifier) Option {
	return func(a *Archiver) { a.notifier = n }
}

// WithInterval sets how often Start re-checks the schedule.
func WithInterval(d time.Duration) Option {
	return func(a *Archiver) {
		if d > 0 {
			a.interval = d
		}
	}
}

// WithLocation sets the timezone the day-1 rule is evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(a *Archiver) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithClock replaces time.Now for the scheduling loop.
func WithClock(now func() time.Time) Option {
	return func(a *Archiver) {
		if now != nil {
			a.now = now
		}
	}
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(a *Archiver) { a.initMetrics(mp.Meter(instrumentationName)) }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *Archiver) { a.tracer = tp.Tracer(instrumentationName) }
}

// New creates an Archiver over the given stores.
func New(archives ArchiveStore, expenses ExpenseStore, invoices InvoiceStore, opts ...Option) *Archiver {
	a := &Archiver{
		archives: archives,
		expenses: expenses,
		invoices: invoices,
		interval: DefaultCheckInterval,
		loc:      time.UTC,
		now:      time.Now,
		tracer:   otel.Tracer(instrumentationName),
		log:      logger.Component("archive"),
	}
	a.initMetrics(otel.Meter(instrumentationName))
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Archiver) initMetrics(meter metric.Meter) {
	runs, err := meter.Int64Counter("archive.runs",
		metric.WithDescription("Archival passes by outcome status"))
	if err != nil {
		a.log.Warn().Err(err).Msg("Failed to create archive.runs counter")
	}
	pruned, err := meter.Int64Counter("archive.rows_pruned",
		metric.WithDescription("Live rows deleted after archival"))
	if err != nil {
		a.log.Warn().Err(err).Msg("Failed to create archive.rows_pruned counter")
	}
	a.runs = runs
	a.pruned = pruned
}

// Tick applies the schedule: on day 1 it archives the previous month, on any
// other day it returns (nil, nil) without touching the stores.
func (a *Archiver) Tick(ctx context.Context, now time.Time) (*Result, error) {
	if !ShouldRun(now) {
		return nil, nil
	}
	return a.RunForPeriod(ctx, PreviousPeriod(now))
}

// RunForPeriod archives an explicit period. The returned error is the
// Result's Err when the pass failed, or a validation error for a bad period.
func (a *Archiver) RunForPeriod(ctx context.Context, p Period) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, span := a.tracer.Start(ctx, "archive.run", trace.WithAttributes(
		attribute.Int("archive.month", int(p.Month)),
		attribute.Int("archive.year", p.Year),
	))
	defer span.End()

	result := a.run(ctx, p)

	span.SetAttributes(
		attribute.String("archive.status", string(result.Status)),
		attribute.String("archive.step", string(result.Step)),
	)
	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
	}
	if a.runs != nil {
		a.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(result.Status))))
	}

	if result.Status != StatusAlreadyArchived {
		a.notify(ctx, result)
	}

	if result.Status == StatusFailed {
		return result, result.Err
	}
	return result, nil
}

func (a *Archiver) run(ctx context.Context, p Period) *Result {
	result := &Result{Period: p}
	log := a.log.With().Str("period", p.String()).Logger()
	month, year := int(p.Month), p.Year

	exists, err := a.guard(ctx, month, year)
	if err != nil {
		log.Warn().Err(err).Msg("Archive lookup failed, continuing")
	}
	if exists {
		log.Info().Msg("Period already archived")
		result.Status = StatusAlreadyArchived
		result.Step = StepGuard
		return result
	}

	start, end := p.DateRange()
	expenses, invoices, err := a.collect(ctx, start, end)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read period rows")
		result.Status = StatusFailed
		result.Step = StepAggregate
		result.Err = err
		return result
	}

	warnZeroValues(log, expenses, invoices)
	totals := Aggregate(expenses, invoices)
	archive := &models.MonthlyArchive{
		Month:         month,
		Year:          year,
		TotalRevenue:  totals.Revenue,
		TotalExpenses: totals.Expenses,
		NetProfit:     totals.NetProfit,
		Expenses:      expenses,
		Invoices:      invoices,
	}

	if err := a.write(ctx, archive); err != nil {
		if errors.Is(err, repository.ErrArchiveExists) {
			log.Info().Msg("Period archived concurrently, skipping")
			result.Status = StatusAlreadyArchived
			result.Step = StepWrite
			return result
		}
		log.Error().Err(err).Msg("Failed to write archive")
		result.Status = StatusFailed
		result.Step = StepWrite
		result.Err = err
		return result
	}
	result.Archive = archive

	log.Info().
		Int("expenses", len(expenses)).
		Int("invoices", len(invoices)).
		Str("revenue", totals.Revenue.StringFixed(2)).
		Str("expenses_total", totals.Expenses.StringFixed(2)).
		Str("net_profit", totals.NetProfit.StringFixed(2)).
		Msg("Monthly archive written")

	a.prune(ctx, archive, result, log)
	a.recordActivity(ctx, result, log)

	result.Step = StepPrune
	result.Status = StatusArchived
	if len(result.PruneErrors) > 0 {
		result.Status = StatusPartial
	}
	return result
}

func (a *Archiver) guard(ctx context.Context, month, year int) (bool, error) {
	ctx, span := a.tracer.Start(ctx, "archive.guard")
	defer span.End()

	exists, err := a.archives.ExistsForPeriod(ctx, month, year)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check existing archive: %w", err)
	}
	return exists, nil
}

func (a *Archiver) collect(ctx context.Context, start, end time.Time) ([]models.Expense, []models.Invoice, error) {
	ctx, span := a.tracer.Start(ctx, "archive.aggregate")
	defer span.End()

	expenses, err := a.expenses.ListByDateRange(ctx, start, end)
	if err != nil {
		span.RecordError(err)
		return nil, nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	invoices, err := a.invoices.ListByDateRange(ctx, start, end)
	if err != nil {
		span.RecordError(err)
		return nil, nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	span.SetAttributes(
		attribute.Int("archive.expenses", len(expenses)),
		attribute.Int("archive.invoices", len(invoices)),
	)
	return expenses, invoices, nil
}

// warnZeroValues flags rows that add nothing to the totals. Missing or
// unreadable stored values arrive here as zero.
func warnZeroValues(log zerolog.Logger, expenses []models.Expense, invoices []models.Invoice) {
	for i := range expenses {
		if expenses[i].Value.IsZero() {
			log.Warn().
				Str("expense_id", expenses[i].ID).
				Str("title", logger.SanitizeText(expenses[i].Title)).
				Msg("Expense has no value, counted as zero")
		}
	}
	for i := range invoices {
		if invoices[i].Value.IsZero() {
			log.Warn().
				Str("invoice_id", invoices[i].ID).
				Str("title", logger.SanitizeText(invoices[i].Title)).
				Str("client", logger.SanitizeText(invoices[i].ClientName)).
				Msg("Invoice has no value, counted as zero")
		}
	}
}

func (a *Archiver) write(ctx context.Context, archive *models.MonthlyArchive) error {
	ctx, span := a.tracer.Start(ctx, "archive.write")
	defer span.End()

	if err := a.archives.Create(ctx, archive); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}

// prune deletes exactly the rows captured in the archive. A failure on one
// table does not stop the other.
func (a *Archiver) prune(ctx context.Context, archive *models.MonthlyArchive, result *Result, log zerolog.Logger) {
	ctx, span := a.tracer.Start(ctx, "archive.prune")
	defer span.End()

	if ids := archive.ExpenseIDs(); len(ids) > 0 {
		n, err := a.expenses.DeleteByIDs(ctx, ids)
		if err != nil {
			err = fmt.Errorf("failed to prune expenses: %w", err)
			span.RecordError(err)
			log.Error().Err(err).Int("ids", len(ids)).Msg("Archived expenses left in live table")
			result.PruneErrors = append(result.PruneErrors, err)
		} else {
			result.ExpensesPruned = n
			a.countPruned(ctx, "expenses", n)
		}
	}

	if ids := archive.InvoiceIDs(); len(ids) > 0 {
		n, err := a.invoices.DeleteByIDs(ctx, ids)
		if err != nil {
			err = fmt.Errorf("failed to prune invoices: %w", err)
			span.RecordError(err)
			log.Error().Err(err).Int("ids", len(ids)).Msg("Archived invoices left in live table")
			result.PruneErrors = append(result.PruneErrors, err)
		} else {
			result.InvoicesPruned = n
			a.countPruned(ctx, "invoices", n)
		}
	}
}

func (a *Archiver) countPruned(ctx context.Context, table string, n int64) {
	if a.pruned == nil || n == 0 {
		return
	}
	a.pruned.Add(ctx, n, metric.WithAttributes(attribute.String("table", table)))
}

func (a *Archiver) recordActivity(ctx context.Context, result *Result, log zerolog.Logger) {
	if a.activity == nil {
		return
	}
	entry := &models.ActivityLog{
		Action:     models.ActionArchive,
		EntityType: models.EntityArchive,
		EntityID:   result.Archive.ID,
		EntityName: result.Period.String(),
		Description: fmt.Sprintf("%d despesas, %d faturas arquivadas",
			len(result.Archive.Expenses), len(result.Archive.Invoices)),
		UserName: "sistema",
	}
	if err := a.activity.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Msg("Failed to record archive activity")
	}
}

func (a *Archiver) notify(ctx context.Context, result *Result) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.NotifyArchive(ctx, result); err != nil {
		a.log.Warn().Err(err).Str("period", result.Period.String()).Msg("Failed to send archive notification")
	}
}

// Start runs the schedule until ctx is cancelled. It checks once immediately
// so a process started on day 1 does not wait a full interval.
func (a *Archiver) Start(ctx context.Context) {
	a.log.Info().
		Dur("interval", a.interval).
		Str("timezone", a.loc.String()).
		Msg("Archive loop started")

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("Archive loop stopped")
		return
	default:
	}

	done := make(map[Period]bool)
	a.check(ctx, done, a.now().In(a.loc))

	for {
		select {
		case <-ctx.Done():
			a.log.Info().Msg("Archive loop stopped")
			return
		case <-ticker.C:
			a.check(ctx, done, a.now().In(a.loc))
		}
	}
}

// check runs one scheduled pass. The done map remembers periods already
// settled by this process so later ticks on the same day skip the stores.
func (a *Archiver) check(ctx context.Context, done map[Period]bool, now time.Time) *Result {
	if !ShouldRun(now) {
		return nil
	}
	p := PreviousPeriod(now)
	if done[p] {
		return nil
	}

	checkCtx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	result, err := a.Tick(checkCtx, now)
	if err != nil {
		a.log.Error().Err(err).Str("period", p.String()).Msg("Scheduled archive failed, will retry next tick")
		return result
	}
	if result != nil {
		done[p] = true
	}
	return result
}
