package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// NoSubscriptionsMessage ответ вместо списка рекомендаций, когда подписок нет.
const NoSubscriptionsMessage = "No subscriptions found."

// Renewal подписка, продление которой ожидается в ближайшие дни.
type Renewal struct {
	ServiceName string `json:"service"`
	RenewalDate Date   `json:"renewal_date"`
}

// SpendSummary сводка по количеству подписок и их суммарной стоимости.
type SpendSummary struct {
	Count     int             `json:"total_subscriptions"`
	TotalCost decimal.Decimal `json:"total_spent"`
}

// SuggestionType вид рекомендации.
type SuggestionType string

const (
	SuggestionCostReview          SuggestionType = "cost_review"
	SuggestionBillingOptimization SuggestionType = "billing_optimization"
	SuggestionOverall             SuggestionType = "overall"
)

// Classification оценка необходимости подписки.
type Classification string

const (
	ClassificationOptional  Classification = "optional"
	ClassificationNecessary Classification = "necessary"
)

// Suggestion рекомендация по одной подписке или по всем подпискам сразу.
// Для общей рекомендации Subscription и Classification пустые, а PotentialSavings заполнено.
type Suggestion struct {
	Subscription     string           `json:"subscription,omitempty"`
	Type             SuggestionType   `json:"type"`
	Message          string           `json:"message"`
	Classification   Classification   `json:"classification,omitempty"`
	PotentialSavings *decimal.Decimal `json:"potential_savings,omitempty"`
}

// SuggestionReport результат построения рекомендаций. Если на вход не пришло ни одной
// подписки, в JSON он выводится строкой NoSubscriptionsMessage, иначе списком.
type SuggestionReport struct {
	Items []Suggestion
	Empty bool
}

// MarshalJSON реализует json.Marshaler.
func (r SuggestionReport) MarshalJSON() ([]byte, error) {
	if r.Empty {
		return json.Marshal(NoSubscriptionsMessage)
	}
	items := r.Items
	if items == nil {
		items = []Suggestion{}
	}
	return json.Marshal(items)
}
