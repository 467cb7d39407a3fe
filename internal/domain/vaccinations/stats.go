package vaccinations

import (
	"math"
	"sort"
	"time"
)

// Stats son las estadísticas de vacunación de un usuario.
type Stats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Overdue        int     `json:"overdue"`
	Upcoming       int     `json:"upcoming"`
	Pending        int     `json:"pending"`
	Required       int     `json:"required"`
	Optional       int     `json:"optional"`
	CompletionRate float64 `json:"completion_rate"`
}

// ComputeStats es una función pura sobre el set recuperado: mismo resultado
// sin importar el backend, y testeable sin base de datos.
func ComputeStats(items []Vaccination) Stats {
	st := Stats{Total: len(items)}

	for _, v := range items {
		switch v.Status {
		case StatusCompleted:
			st.Completed++
		case StatusOverdue:
			st.Overdue++
		case StatusUpcoming:
			st.Upcoming++
		case StatusPending:
			st.Pending++
		}
		if v.Required {
			st.Required++
		}
	}

	st.Optional = st.Total - st.Required
	if st.Total > 0 {
		st.CompletionRate = round2(float64(st.Completed) / float64(st.Total) * 100)
	}
	return st
}

// FilterUpcoming filtra a la ventana [today, today+days] y calcula
// days_until_due. El orden es due_date ascendente.
func FilterUpcoming(items []Vaccination, today time.Time, days int) []Upcoming {
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	limit := todayDate.AddDate(0, 0, days)

	out := make([]Upcoming, 0)
	for _, v := range items {
		due, err := time.Parse(DateLayout, v.DueDate)
		if err != nil {
			continue // fechas inválidas se excluyen, no se reportan
		}
		if due.Before(todayDate) || due.After(limit) {
			continue
		}
		out = append(out, Upcoming{
			Vaccination:  v,
			DaysUntilDue: int(due.Sub(todayDate).Hours() / 24),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate < out[j].DueDate
	})
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
