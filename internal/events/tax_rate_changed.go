package events

import "time"

const TaxRatesChangedTopic = "payroll.tax.rates.changed.v1"

type TaxRateChangedEvent struct {
	EventType     string    `json:"event_type"`
	RateID        string    `json:"rate_id"`
	Category      string    `json:"category"`
	EffectiveFrom string    `json:"effective_from"`
	ChangedBy     string    `json:"changed_by,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
