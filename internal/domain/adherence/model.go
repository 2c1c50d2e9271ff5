package adherence

import "time"

// TreatmentSummary es la adherencia de por vida de un tratamiento.
type TreatmentSummary struct {
	Percentage float64
	Taken      int
	Total      int
}

// DailyPoint es la adherencia de un día calendario con al menos un log.
// Los días sin dosis programadas no se sintetizan: un hueco en la serie
// significa ausencia de dosis, no adherencia cero.
type DailyPoint struct {
	Date           string // "2006-01-02"
	TotalScheduled int
	TotalTaken     int
	Percentage     float64
}

// MonthlyPoint agrupa por año-mes.
type MonthlyPoint struct {
	Month          string // "2006-01"
	TotalScheduled int
	TotalTaken     int
	Percentage     float64
}

// DayCount / MonthCount son los buckets crudos que entrega el repositorio,
// siempre ordenados ascendente.
type DayCount struct {
	Day   time.Time // truncado a medianoche local
	Taken int
	Total int
}

type MonthCount struct {
	Year  int
	Month time.Month
	Taken int
	Total int
}
