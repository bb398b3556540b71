package scanner

// session.go — calendario de la sesión de trading. Los targets de Kalshi
// son horas de pared en Eastern ("14:00", "15:00", "16:00") y los expiries
// de opciones liquidan al cierre de la sesión (16:00 ET).

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	secondsPerYear   = 365.0 * 24.0 * 3600.0
	sessionCloseHour = 16
)

// SessionLocation devuelve la zona horaria de la sesión (Eastern).
func SessionLocation() (*time.Location, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("scanner: load session timezone: %w", err)
	}
	return loc, nil
}

// yearsBetween devuelve T en años entre now y future. Negativo → 0.
func yearsBetween(now, future time.Time) float64 {
	secs := future.Sub(now).Seconds()
	if secs < 0 {
		return 0
	}
	return secs / secondsPerYear
}

// timeToTargetYears calcula T en años desde now hasta la hora objetivo de
// hoy (HH:MM en la zona de sesión). Si el target ya pasó devuelve 0.
func timeToTargetYears(now time.Time, targetHHMM string, loc *time.Location) (float64, error) {
	hh, mm, err := parseHHMM(targetHHMM)
	if err != nil {
		return 0, err
	}

	n := now.In(loc)
	target := time.Date(n.Year(), n.Month(), n.Day(), hh, mm, 0, 0, loc)
	if !target.After(n) {
		return 0, nil
	}
	return yearsBetween(n, target), nil
}

// expiryClose devuelve el instante de cierre de sesión (16:00 ET) del día
// del expiry dado.
func expiryClose(expiry time.Time, loc *time.Location) time.Time {
	d := expiry.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), sessionCloseHour, 0, 0, 0, loc)
}

// parseHHMM parsea una hora "HH:MM" de 24 horas.
func parseHHMM(s string) (hh, mm int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("scanner: target time %q no es HH:MM", s)
	}
	hh, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("scanner: target time %q: %w", s, err)
	}
	mm, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("scanner: target time %q: %w", s, err)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, 0, fmt.Errorf("scanner: target time %q fuera de rango", s)
	}
	return hh, mm, nil
}
