package models

import "time"

// OperationalStatus is the date-derived lifecycle state of a trip.
type OperationalStatus string

const (
	StatusPrevio     OperationalStatus = "PREVIO"
	StatusEnCurso    OperationalStatus = "EN_CURSO"
	StatusFinalizado OperationalStatus = "FINALIZADO"
)

func (s OperationalStatus) String() string { return string(s) }

// ClassifyStatus maps a date range onto the trip lifecycle at day
// granularity: the start counts from 00:00:00 and the end through 23:59:59
// of its calendar day, so a trip is EN_CURSO on both boundary days. Pure and
// total; time-of-day and time zone offsets inside a day never change the
// answer.
func ClassifyStatus(start, end, today time.Time) OperationalStatus {
	t := dateOnly(today)
	s := dateOnly(start)
	e := dateOnly(end)

	switch {
	case t.Before(s):
		return StatusPrevio
	case t.After(e):
		return StatusFinalizado
	default:
		return StatusEnCurso
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
