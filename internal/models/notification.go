package models

import "github.com/shopspring/decimal"

// RenewalNotice сообщение-напоминание о продлении, которое уходит в очередь уведомлений.
type RenewalNotice struct {
	SubscriptionID int             `json:"subscription_id"`
	Email          string          `json:"email"`
	Username       string          `json:"username"`
	ServiceName    string          `json:"service_name"`
	RenewalDate    Date            `json:"renewal_date"`
	Cost           decimal.Decimal `json:"cost"`
	BillingCycle   BillingCycle    `json:"billing_cycle"`
}

// NewRenewalNotice собирает напоминание по подписке с заполненными данными владельца.
func NewRenewalNotice(sub *Subscription) RenewalNotice {
	return RenewalNotice{
		SubscriptionID: sub.ID,
		Email:          sub.OwnerEmail,
		Username:       sub.OwnerName,
		ServiceName:    sub.ServiceName,
		RenewalDate:    sub.RenewalDate,
		Cost:           sub.Cost,
		BillingCycle:   sub.BillingCycle,
	}
}
