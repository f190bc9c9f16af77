package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryKindTime    EntryKind = "time"
	EntryKindTrip    EntryKind = "trip"
	EntryKindExpense EntryKind = "expense"
)

func (k EntryKind) Valid() bool {
	switch k {
	case EntryKindTime, EntryKindTrip, EntryKindExpense:
		return true
	}
	return false
}

// ApprovableEntry 统一表示工时、出行和报销记录
// 三者只有数量字段不同：工时用 DurationMinutes，出行用 DistanceKm，报销用 Amount
type ApprovableEntry struct {
	ID              int64            `json:"id"`
	Kind            EntryKind        `json:"kind"`
	UserID          int64            `json:"userID"`
	OrganizationID  int64            `json:"organizationID"`
	Date            time.Time        `json:"date"`
	DurationMinutes *int32           `json:"durationMinutes,omitempty"`
	DistanceKm      *decimal.Decimal `json:"distanceKm,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Description     string           `json:"description"`
	Approved        bool             `json:"approved"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Version         int32            `json:"-"`
}

// Quantity 返回记录的数量，单位由 Kind 决定
func (e *ApprovableEntry) Quantity() decimal.Decimal {
	switch e.Kind {
	case EntryKindTime:
		if e.DurationMinutes != nil {
			return decimal.NewFromInt32(*e.DurationMinutes)
		}
	case EntryKindTrip:
		if e.DistanceKm != nil {
			return *e.DistanceKm
		}
	case EntryKindExpense:
		if e.Amount != nil {
			return *e.Amount
		}
	}
	return decimal.Zero
}

// SetQuantity 按 Kind 把数量写入对应的字段
func (e *ApprovableEntry) SetQuantity(q decimal.Decimal) {
	e.DurationMinutes, e.DistanceKm, e.Amount = nil, nil, nil
	switch e.Kind {
	case EntryKindTime:
		minutes := int32(q.IntPart())
		e.DurationMinutes = &minutes
	case EntryKindTrip:
		e.DistanceKm = &q
	case EntryKindExpense:
		e.Amount = &q
	}
}

type EntryFilter struct {
	Kind           EntryKind
	OrganizationID int64
	UserID         *int64
	Approved       *bool
}

type EntryTotals struct {
	Kind          EntryKind       `json:"kind"`
	Count         int             `json:"count"`
	ApprovedCount int             `json:"approvedCount"`
	Total         decimal.Decimal `json:"total"`
	ApprovedTotal decimal.Decimal `json:"approvedTotal"`
}
