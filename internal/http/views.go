// This file holds the JSON view types returned by the API handlers.
package http

import (
	"bilancio/internal/core"
	"bilancio/internal/finance"
)

type bucketsView struct {
	Needs   float64 `json:"needs"`
	Wants   float64 `json:"wants"`
	Savings float64 `json:"savings"`
}

func newBucketsView(b core.BudgetBuckets) bucketsView {
	return bucketsView{Needs: b.Needs, Wants: b.Wants, Savings: b.Savings}
}

type bucketStatusView struct {
	Allocated        float64 `json:"allocated"`
	Spent            float64 `json:"spent"`
	Remaining        float64 `json:"remaining"`
	ReservedForGoals float64 `json:"reservedForGoals"`
	SafeToSpend      float64 `json:"safeToSpend"`
}

func newBucketStatusView(s core.BucketStatus) bucketStatusView {
	return bucketStatusView{
		Allocated:        s.Allocated,
		Spent:            s.Spent,
		Remaining:        s.Remaining,
		ReservedForGoals: s.ReservedForGoals,
		SafeToSpend:      s.SafeToSpend,
	}
}

type overviewView struct {
	TotalIncome float64          `json:"totalIncome"`
	Needs       bucketStatusView `json:"needs"`
	Wants       bucketStatusView `json:"wants"`
	Savings     bucketStatusView `json:"savings"`
}

func newOverviewView(o core.FinanceOverview) overviewView {
	return overviewView{
		TotalIncome: o.TotalIncome,
		Needs:       newBucketStatusView(o.Needs),
		Wants:       newBucketStatusView(o.Wants),
		Savings:     newBucketStatusView(o.Savings),
	}
}

type transactionView struct {
	ID                string         `json:"id"`
	Amount            float64        `json:"amount"`
	Category          string         `json:"category"`
	Date              string         `json:"date"`
	Description       string         `json:"description"`
	IsRecurring       bool           `json:"isRecurring"`
	RecurringEndDate  string         `json:"recurringEndDate,omitempty"`
	RecurringSourceID string         `json:"recurringSourceId,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	IsVirtual         bool           `json:"isVirtual"`
}

func newTransactionView(tx core.Transaction) transactionView {
	view := transactionView{
		ID:                tx.ID,
		Amount:            tx.Amount,
		Category:          string(tx.Category),
		Date:              core.FormatDate(tx.Date),
		Description:       tx.Description,
		IsRecurring:       tx.IsRecurring,
		RecurringSourceID: tx.RecurringSourceID,
		Metadata:          tx.Metadata,
		IsVirtual:         finance.IsVirtualID(tx.ID),
	}
	if !tx.RecurringEndDate.IsZero() {
		view.RecurringEndDate = core.FormatDate(tx.RecurringEndDate)
	}
	return view
}

func newTransactionViews(txs []core.Transaction) []transactionView {
	views := make([]transactionView, len(txs))
	for i, tx := range txs {
		views[i] = newTransactionView(tx)
	}
	return views
}

type extraIncomeView struct {
	Description  string      `json:"description"`
	Contribution bucketsView `json:"contribution"`
}

type incomeDetailsView struct {
	Buckets     bucketsView       `json:"buckets"`
	BaseBuckets bucketsView       `json:"baseBuckets"`
	ExtraIncome []extraIncomeView `json:"extraIncome"`
}

func newIncomeDetailsView(d core.MonthlyIncomeDetails) incomeDetailsView {
	view := incomeDetailsView{
		Buckets:     newBucketsView(d.Buckets),
		BaseBuckets: newBucketsView(d.BaseBuckets),
		ExtraIncome: []extraIncomeView{},
	}
	for _, extra := range d.ExtraIncome {
		view.ExtraIncome = append(view.ExtraIncome, extraIncomeView{
			Description:  extra.Description,
			Contribution: newBucketsView(extra.Contribution),
		})
	}
	return view
}

type solvencyView struct {
	HasAlert          bool     `json:"hasAlert"`
	FirstFailingMonth string   `json:"firstFailingMonth,omitempty"`
	FailingMonths     []string `json:"failingMonths"`
	HorizonMonths     int      `json:"horizonMonths"`
}

func newSolvencyView(r core.SolvencyReport, horizon int) solvencyView {
	view := solvencyView{
		HasAlert:      r.HasAlert,
		FailingMonths: []string{},
		HorizonMonths: horizon,
	}
	if r.HasAlert {
		view.FirstFailingMonth = core.MonthKey(r.FirstFailingMonth)
	}
	for _, m := range r.FailingMonths {
		view.FailingMonths = append(view.FailingMonths, core.MonthKey(m))
	}
	return view
}

type allowanceView struct {
	Month          string  `json:"month"`
	DailyAllowance float64 `json:"dailyAllowance"`
	RemainingWants float64 `json:"remainingWants"`
	RemainingDays  int     `json:"remainingDays"`
}

type incomeConfigView struct {
	Mode         string             `json:"mode"`
	Amount       *float64           `json:"amount,omitempty"`
	HourlyRate   *float64           `json:"hourlyRate,omitempty"`
	HoursPerWeek *float64           `json:"hoursPerWeek,omitempty"`
	Tax          *float64           `json:"tax,omitempty"`
	PaymentDelay *bool              `json:"paymentDelay,omitempty"`
	Adjustments  map[string]float64 `json:"adjustments,omitempty"`
}

func newIncomeConfigView(cfg core.IncomeConfig) incomeConfigView {
	view := incomeConfigView{Mode: string(cfg.Mode)}
	switch cfg.Mode {
	case core.IncomeFixed, core.IncomeManual:
		if cfg.Fixed != nil {
			view.Amount = &cfg.Fixed.Amount
		}
	case core.IncomeHourly:
		h := cfg.Hourly
		if h == nil {
			break
		}
		view.HourlyRate = &h.HourlyRate
		view.HoursPerWeek = &h.HoursPerWeek
		view.Tax = &h.Tax
		view.PaymentDelay = &h.PaymentDelay
		view.Adjustments = h.Adjustments
	}
	return view
}

type goalView struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	TargetAmount   float64        `json:"targetAmount"`
	CurrentAmount  float64        `json:"currentAmount"`
	Remaining      float64        `json:"remaining"`
	Type           string         `json:"type"`
	TargetDate     string         `json:"targetDate,omitempty"`
	SavingStrategy string         `json:"savingStrategy,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

func newGoalView(g core.FinancialGoal) goalView {
	view := goalView{
		ID:             g.ID,
		Name:           g.Name,
		TargetAmount:   g.TargetAmount,
		CurrentAmount:  g.CurrentAmount,
		Remaining:      g.Remaining(),
		Type:           string(g.Type),
		SavingStrategy: string(g.SavingStrategy),
		Metadata:       g.Metadata,
	}
	if !g.TargetDate.IsZero() {
		view.TargetDate = core.FormatDate(g.TargetDate)
	}
	return view
}

type timelineView struct {
	Months              int     `json:"months"`
	MonthlyContribution float64 `json:"monthlyContribution"`
	Achievable          bool    `json:"achievable"`
}
