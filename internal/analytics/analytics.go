// Package analytics строит производные представления над уже отфильтрованным
// набором подписок: ближайшие продления, сводку расходов и рекомендации.
// Функции детерминированы и не зависят от текущего времени: дата «сегодня» передаётся явно.
package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// RenewalWindowDays длина окна ближайших продлений, границы включительно.
const RenewalWindowDays = 7

var (
	costReviewThreshold    = decimal.NewFromInt(50)
	yearlyBillingThreshold = decimal.NewFromInt(100)
	overallThreshold       = decimal.NewFromInt(200)
	savingsRate            = decimal.RequireFromString("0.2")
)

// UpcomingRenewals отбирает подписки с датой продления в интервале [today, today+7 дней]
// в порядке входных данных.
func UpcomingRenewals(subs []*models.Subscription, today models.Date) []models.Renewal {
	from := models.NewDate(today.Time)
	to := from.AddDays(RenewalWindowDays)

	renewals := make([]models.Renewal, 0)
	for _, sub := range subs {
		date := models.NewDate(sub.RenewalDate.Time)
		if date.Before(from.Time) || date.After(to.Time) {
			continue
		}
		renewals = append(renewals, models.Renewal{
			ServiceName: sub.ServiceName,
			RenewalDate: date,
		})
	}
	return renewals
}

// Summary считает количество подписок и точную сумму их стоимости.
func Summary(subs []*models.Subscription) models.SpendSummary {
	return models.SpendSummary{
		Count:     len(subs),
		TotalCost: totalCost(subs),
	}
}

// Suggestions применяет к каждой подписке первое подходящее правило, затем добавляет
// общую рекомендацию, если суммарная стоимость превышает порог.
func Suggestions(subs []*models.Subscription) models.SuggestionReport {
	if len(subs) == 0 {
		return models.SuggestionReport{Empty: true}
	}

	items := make([]models.Suggestion, 0)
	for _, sub := range subs {
		if item, ok := suggestFor(sub); ok {
			items = append(items, item)
		}
	}

	total := totalCost(subs)
	if total.GreaterThan(overallThreshold) {
		savings := total.Mul(savingsRate)
		items = append(items, models.Suggestion{
			Type:             models.SuggestionOverall,
			Message:          fmt.Sprintf("Total monthly spending: $%s. Consider canceling underused services.", formatCost(total)),
			PotentialSavings: &savings,
		})
	}

	return models.SuggestionReport{Items: items}
}

func suggestFor(sub *models.Subscription) (models.Suggestion, bool) {
	switch {
	case sub.Cost.GreaterThan(costReviewThreshold):
		return models.Suggestion{
			Subscription:   sub.ServiceName,
			Type:           models.SuggestionCostReview,
			Message:        fmt.Sprintf("High cost subscription (%s). Consider reviewing necessity.", formatCost(sub.Cost)),
			Classification: models.ClassificationOptional,
		}, true
	// недостижимо при текущих порогах: cost > 100 уже попадает под cost_review
	case sub.BillingCycle == models.BillingYearly && sub.Cost.GreaterThan(yearlyBillingThreshold):
		return models.Suggestion{
			Subscription:   sub.ServiceName,
			Type:           models.SuggestionBillingOptimization,
			Message:        "Consider switching to monthly billing for better cash flow.",
			Classification: models.ClassificationNecessary,
		}, true
	}
	return models.Suggestion{}, false
}

func totalCost(subs []*models.Subscription) decimal.Decimal {
	total := decimal.Zero
	for _, sub := range subs {
		total = total.Add(sub.Cost)
	}
	return total
}

// formatCost печатает целые суммы без дробной части, остальные с двумя знаками,
// как они хранятся в NUMERIC(10,2).
func formatCost(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.String()
	}
	return d.StringFixed(2)
}
