package domain

import "time"

// OptionSurfacePoint es un punto (strike, OI, IV) de la superficie de
// opciones de un expiry. Solo lo consume el agregador de GEX; nunca se muta.
type OptionSurfacePoint struct {
	Strike       float64
	OpenInterest float64
	ImpliedVol   float64 // anualizada decimal; <= 0 significa desconocida
}

// ExpirySurface es la superficie completa (calls y puts) de un expiry.
type ExpirySurface struct {
	Expiry time.Time
	Calls  []OptionSurfacePoint
	Puts   []OptionSurfacePoint
}
