package domain

import "sort"

// TopByEdge devuelve los n records con mayor BestEdge en orden
// descendente. El sort es estable: a igualdad de edge se preserva el
// orden de entrada. Con input vacío devuelve vacío (no es un error); el
// caller debe reportar "nada evaluado" en vez de pintar una tabla.
func TopByEdge(records []EvaluationRecord, n int) []EvaluationRecord {
	out := make([]EvaluationRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BestEdge > out[j].BestEdge
	})

	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
