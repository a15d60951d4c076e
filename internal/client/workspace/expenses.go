package workspace

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/studenthub/internal/client/datefilter"
	"github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

// AddExpense records an expense. synced is false when the expense is only
// stored locally because the service could not be reached.
func (w *Workspace) AddExpense(ctx context.Context, title string, amount float64, date string) (e models.Expense, synced bool, err error) {
	t, err := w.ticket()
	if err != nil {
		return e, false, err
	}
	if date == "" {
		date = w.today()
	}

	e = models.Expense{
		Ref:    models.Ref{LocalID: models.NextLocalID()},
		UserID: t.Identity,
		Title:  strings.TrimSpace(title),
		Amount: amount,
		Date:   date,
	}
	if err := validate.Struct(e); err != nil {
		return e, false, err
	}
	return w.Expenses.Submit(ctx, t, e)
}

func (w *Workspace) DeleteExpense(ctx context.Context, id string) error {
	return remove(ctx, w, w.Expenses, id)
}

// ExpenseList returns the cached expenses matching opts.
func (w *Workspace) ExpenseList(opts datefilter.Options) []models.Expense {
	return datefilter.Filter(w.Expenses.Cache().Items(), expenseDate, w.withNow(opts))
}

// ExpenseChart sums the expenses matching opts per day.
func (w *Workspace) ExpenseChart(opts datefilter.Options) []datefilter.DayTotal {
	return datefilter.DailyTotals(w.ExpenseList(opts), expenseDate, func(e models.Expense) float64 { return e.Amount })
}

func ExpenseTotal(items []models.Expense) float64 {
	var sum float64
	for _, e := range items {
		sum += e.Amount
	}
	return sum
}

func expenseDate(e models.Expense) string { return e.Date }

func (w *Workspace) withNow(opts datefilter.Options) datefilter.Options {
	if opts.Now.IsZero() {
		opts.Now = w.now()
	}
	return opts
}
