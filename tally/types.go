// Package tally talks to a running Tally ERP instance over its
// XML-over-HTTP interface and renders ledger snapshots for prompting.
package tally

import "time"

type Direction int

const (
	DirectionUnchanged Direction = iota
	DirectionIncrease
	DirectionDecrease
)

func (d Direction) String() string {
	switch d {
	case DirectionIncrease:
		return "increase"
	case DirectionDecrease:
		return "decrease"
	default:
		return "unchanged"
	}
}

// Ledger is one account as reported by Tally.
type Ledger struct {
	Name           string
	Parent         string
	OpeningBalance float64
	ClosingBalance float64
}

func (l Ledger) NetChange() float64 {
	return l.ClosingBalance - l.OpeningBalance
}

// PercentChange is the net change relative to the opening balance.
// A zero opening balance yields 0 rather than a division blowup.
func (l Ledger) PercentChange() float64 {
	if l.OpeningBalance == 0 {
		return 0
	}
	opening := l.OpeningBalance
	if opening < 0 {
		opening = -opening
	}
	return l.NetChange() / opening * 100
}

func (l Ledger) Direction() Direction {
	switch net := l.NetChange(); {
	case net > 0:
		return DirectionIncrease
	case net < 0:
		return DirectionDecrease
	default:
		return DirectionUnchanged
	}
}

// Snapshot is one point-in-time export of every ledger.
type Snapshot struct {
	Company   string
	FetchedAt time.Time
	Ledgers   []Ledger
}
