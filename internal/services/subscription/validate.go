package services

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

const maxServiceNameLen = 100

// maxCost граница NUMERIC(10,2): восемь цифр до запятой.
var maxCost = decimal.NewFromInt(100_000_000)

func validateServiceName(errs *fieldErrors, name string) {
	switch {
	case strings.TrimSpace(name) == "":
		errs.add("service_name", "must not be empty")
	case utf8.RuneCountInString(name) > maxServiceNameLen:
		errs.add("service_name", "must be at most 100 characters")
	}
}

func validateCost(errs *fieldErrors, cost decimal.Decimal) {
	switch {
	case cost.IsNegative():
		errs.add("cost", "must not be negative")
	case !cost.Equal(cost.Round(2)):
		errs.add("cost", "must have at most 2 decimal places")
	case cost.GreaterThanOrEqual(maxCost):
		errs.add("cost", "is too large")
	}
}

func parseBillingCycle(errs *fieldErrors, raw string) models.BillingCycle {
	if raw == "" {
		return models.BillingMonthly
	}
	cycle := models.BillingCycle(raw)
	if !cycle.Valid() {
		errs.add("billing_cycle", "must be one of weekly, monthly, yearly")
	}
	return cycle
}

func rejectNull(errs *fieldErrors, field string, isNull bool) {
	if isNull {
		errs.add(field, "may not be null")
	}
}

func parseRenewalDate(errs *fieldErrors, raw string) models.Date {
	date, err := models.ParseDate(raw)
	if err != nil {
		errs.add("renewal_date", "must be a date in format 2006-01-02")
	}
	return date
}

// newSubscription проверяет данные создания и собирает из них подписку без владельца.
func newSubscription(req models.DummySubscription) (models.Subscription, error) {
	var errs fieldErrors

	validateServiceName(&errs, req.ServiceName)

	var cost decimal.Decimal
	if req.Cost == nil {
		errs.add("cost", "is a required field")
	} else {
		cost = *req.Cost
		validateCost(&errs, cost)
	}

	cycle := parseBillingCycle(&errs, req.BillingCycle)

	var renewal models.Date
	if req.RenewalDate == "" {
		errs.add("renewal_date", "is a required field")
	} else {
		renewal = parseRenewalDate(&errs, req.RenewalDate)
	}

	if err := errs.err(); err != nil {
		return models.Subscription{}, err
	}
	return models.Subscription{
		ServiceName:  req.ServiceName,
		Cost:         cost,
		BillingCycle: cycle,
		RenewalDate:  renewal,
		Notes:        req.Notes,
	}, nil
}

// newPatch проверяет присланные поля частичного обновления.
// Явный null допустим только для notes и очищает заметку.
func newPatch(req models.DummySubscriptionPatch) (models.SubscriptionPatch, error) {
	var (
		errs  fieldErrors
		patch models.SubscriptionPatch
	)

	rejectNull(&errs, "service_name", req.ServiceName.Set && req.ServiceName.Null)
	rejectNull(&errs, "cost", req.Cost.Set && req.Cost.Null)
	rejectNull(&errs, "billing_cycle", req.BillingCycle.Set && req.BillingCycle.Null)
	rejectNull(&errs, "renewal_date", req.RenewalDate.Set && req.RenewalDate.Null)
	rejectNull(&errs, "is_shared", req.IsShared.Set && req.IsShared.Null)

	if req.ServiceName.Present() {
		validateServiceName(&errs, req.ServiceName.Value)
		patch.ServiceName = &req.ServiceName.Value
	}
	if req.Cost.Present() {
		validateCost(&errs, req.Cost.Value)
		patch.Cost = &req.Cost.Value
	}
	if req.BillingCycle.Present() {
		if req.BillingCycle.Value == "" {
			errs.add("billing_cycle", "must be one of weekly, monthly, yearly")
		} else {
			cycle := parseBillingCycle(&errs, req.BillingCycle.Value)
			patch.BillingCycle = &cycle
		}
	}
	if req.RenewalDate.Present() {
		date := parseRenewalDate(&errs, req.RenewalDate.Value)
		patch.RenewalDate = &date
	}
	switch {
	case req.Notes.Present():
		patch.Notes = &req.Notes.Value
	case req.Notes.Set:
		patch.ClearNotes = true
	}
	if req.IsShared.Present() {
		patch.IsShared = &req.IsShared.Value
	}

	if err := errs.err(); err != nil {
		return models.SubscriptionPatch{}, err
	}
	return patch, nil
}
