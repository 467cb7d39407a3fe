package feedback

import "math"

// Stats son las estadísticas globales de feedback. Las claves de by_type y
// by_status son fijas: siempre presentes, aunque valgan cero.
type Stats struct {
	Total              int            `json:"total"`
	ByType             map[string]int `json:"by_type"`
	ByStatus           map[string]int `json:"by_status"`
	AverageRating      float64        `json:"average_rating"`
	TotalRatings       int            `json:"total_ratings"`
	PredictionAccuracy float64        `json:"prediction_accuracy"`
	PublicFeedback     int            `json:"public_feedback"`
	PrivateFeedback    int            `json:"private_feedback"`
}

// ComputeStats es una función pura sobre el set recuperado: mismo resultado
// sin importar el backend. Ratings ausentes no cuentan para el promedio;
// prediction_accuracy se calcula solo sobre los dos tipos de predicción y
// vale 0 con denominador 0, nunca una división inválida.
func ComputeStats(items []Feedback) Stats {
	st := Stats{
		Total: len(items),
		ByType: map[string]int{
			string(TypePredictionCorrect): 0,
			string(TypePredictionWrong):   0,
			string(TypeFeature):           0,
			string(TypeBug):               0,
			string(TypeGeneral):           0,
		},
		ByStatus: map[string]int{
			string(StatusPending):  0,
			string(StatusReviewed): 0,
			string(StatusResolved): 0,
		},
	}

	ratingSum := 0
	correct := 0
	wrong := 0

	for _, f := range items {
		if f.IsPrivate {
			st.PrivateFeedback++
		} else {
			st.PublicFeedback++
		}

		if _, ok := st.ByType[string(f.Type)]; ok {
			st.ByType[string(f.Type)]++
		}
		if _, ok := st.ByStatus[string(f.Status)]; ok {
			st.ByStatus[string(f.Status)]++
		}

		switch f.Type {
		case TypePredictionCorrect:
			correct++
		case TypePredictionWrong:
			wrong++
		}

		if f.Rating != nil {
			ratingSum += *f.Rating
			st.TotalRatings++
		}
	}

	if st.TotalRatings > 0 {
		st.AverageRating = round2(float64(ratingSum) / float64(st.TotalRatings))
	}
	if correct+wrong > 0 {
		st.PredictionAccuracy = round2(float64(correct) / float64(correct+wrong) * 100)
	}
	return st
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
