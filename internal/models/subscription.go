package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout формат календарных дат в API и в хранилище.
const DateLayout = "2006-01-02"

// Date календарная дата без времени суток, всегда в UTC.
type Date struct {
	time.Time
}

// NewDate отбрасывает время суток и приводит момент t к дате.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate разбирает дату в формате DateLayout.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t), nil
}

// AddDays возвращает дату, сдвинутую на n дней.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Time.AddDate(0, 0, n))
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON сериализует дату строкой вида 2024-01-31.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON разбирает дату из строки вида 2024-01-31.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// BillingCycle периодичность списания за подписку.
type BillingCycle string

const (
	// BillingWeekly еженедельное списание.
	BillingWeekly BillingCycle = "weekly"
	// BillingMonthly ежемесячное списание, значение по умолчанию.
	BillingMonthly BillingCycle = "monthly"
	// BillingYearly ежегодное списание.
	BillingYearly BillingCycle = "yearly"
)

// Valid сообщает, является ли значение одной из поддерживаемых периодичностей.
func (c BillingCycle) Valid() bool {
	switch c {
	case BillingWeekly, BillingMonthly, BillingYearly:
		return true
	}
	return false
}

// Subscription основная модель подписки, используемая в бизнес-логике и хранилище.
// Владелец задаётся один раз при создании и дальше не меняется.
type Subscription struct {
	ID           int             `json:"id"`
	OwnerID      string          `json:"user"`               // UUID владельца
	OwnerName    string          `json:"username,omitempty"` // Имя владельца, заполняется при чтении
	OwnerEmail   string          `json:"-"`                  // Почта владельца, только для уведомлений
	ServiceName  string          `json:"service_name"`
	Cost         decimal.Decimal `json:"cost"` // Неотрицательная стоимость за период
	BillingCycle BillingCycle    `json:"billing_cycle"`
	RenewalDate  Date            `json:"renewal_date"`
	Notes        *string         `json:"notes"`
	IsShared     bool            `json:"is_shared"` // Отметить может только администратор
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SubscriptionPatch набор полей частичного обновления; nil означает «не менять».
// ClearNotes сбрасывает заметку в NULL и имеет приоритет над Notes.
type SubscriptionPatch struct {
	ServiceName  *string
	Cost         *decimal.Decimal
	BillingCycle *BillingCycle
	RenewalDate  *Date
	Notes        *string
	ClearNotes   bool
	IsShared     *bool
}

// Apply возвращает копию подписки с применёнными изменениями.
func (p SubscriptionPatch) Apply(sub Subscription) Subscription {
	if p.ServiceName != nil {
		sub.ServiceName = *p.ServiceName
	}
	if p.Cost != nil {
		sub.Cost = *p.Cost
	}
	if p.BillingCycle != nil {
		sub.BillingCycle = *p.BillingCycle
	}
	if p.RenewalDate != nil {
		sub.RenewalDate = *p.RenewalDate
	}
	switch {
	case p.ClearNotes:
		sub.Notes = nil
	case p.Notes != nil:
		notes := *p.Notes
		sub.Notes = &notes
	}
	if p.IsShared != nil {
		sub.IsShared = *p.IsShared
	}
	return sub
}

// DummySubscription используется для приёма данных новой подписки из JSON-запроса,
// прежде чем конвертировать их в Subscription. Дата приходит строкой.
type DummySubscription struct {
	ServiceName  string           `json:"service_name" validate:"required,max=100"`
	Cost         *decimal.Decimal `json:"cost" validate:"required"`
	BillingCycle string           `json:"billing_cycle" validate:"omitempty,oneof=weekly monthly yearly"`
	RenewalDate  string           `json:"renewal_date" validate:"required"` // Формат 2006-01-02
	Notes        *string          `json:"notes"`
	IsShared     bool             `json:"is_shared"` // Игнорируется при создании
}

// DummySubscriptionPatch используется для приёма частичного обновления из JSON-запроса.
// Все проверки значений выполняет сервис после проверки прав.
type DummySubscriptionPatch struct {
	ServiceName  Field[string]          `json:"service_name" swaggertype:"string"`
	Cost         Field[decimal.Decimal] `json:"cost" swaggertype:"string"`
	BillingCycle Field[string]          `json:"billing_cycle" swaggertype:"string"`
	RenewalDate  Field[string]          `json:"renewal_date" swaggertype:"string"`
	Notes        Field[string]          `json:"notes" swaggertype:"string"`
	IsShared     Field[bool]            `json:"is_shared" swaggertype:"boolean"`
}

func (s Subscription) String() string {
	return fmt.Sprintf("%s (%s, %s)", s.ServiceName, s.Cost.String(), s.BillingCycle)
}
