package models

import (
	"sort"
	"time"
)

// SelectPrimary picks the trip the passenger dashboard leads with:
//
//  1. a trip currently EN_CURSO
//  2. the PREVIO trip with the closest future start date
//  3. the FINALIZADO trip with the most recent end date
//  4. the first trip, as a fallback for degenerate data
//
// Returns nil when the passenger has no trips.
func SelectPrimary(trips []*Trip, today time.Time) *Trip {
	if len(trips) == 0 {
		return nil
	}

	for _, t := range trips {
		if t.OperationalStatus(today) == StatusEnCurso {
			return t
		}
	}

	day := dateOnly(today)

	var previos []*Trip
	for _, t := range trips {
		if t.OperationalStatus(today) == StatusPrevio && t.StartDate != nil && !dateOnly(*t.StartDate).Before(day) {
			previos = append(previos, t)
		}
	}
	if len(previos) > 0 {
		sort.Slice(previos, func(i, j int) bool {
			return previos[i].StartDate.Before(*previos[j].StartDate)
		})
		return previos[0]
	}

	var finalizados []*Trip
	for _, t := range trips {
		if t.OperationalStatus(today) == StatusFinalizado {
			finalizados = append(finalizados, t)
		}
	}
	if len(finalizados) > 0 {
		sort.Slice(finalizados, func(i, j int) bool {
			return finalizados[i].EndDate.After(*finalizados[j].EndDate)
		})
		return finalizados[0]
	}

	return trips[0]
}
