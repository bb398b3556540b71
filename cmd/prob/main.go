// prob es la calculadora one-shot de probabilidad digital: P(S_T > K)
// bajo Black–Scholes (N(d2)), con tilt de gamma opcional. Útil para
// sanity-checks manuales contra el mid de un contrato binario.
//
// Ejemplos:
//
//	prob -spot 695 -strike 700 -expiry "2026-02-11 16:00" -iv 0.18
//	prob -spot 695 -strike 700 -minutes 45 -iv 0.20 -tilt -0.03
//	prob -auto -strike 700 -expiry 2026-02-11
//	prob -auto -index SPX -strike 7000 -expiry 2026-02-11
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/gexscan/internal/adapters/yahoo"
	"github.com/alejandrodnm/gexscan/internal/domain"
	"github.com/alejandrodnm/gexscan/internal/scanner"
)

const secondsPerYear = 365.0 * 24.0 * 3600.0

func main() {
	auto := flag.Bool("auto", false, "fetch spot and IV from the quote API (SPY proxy)")
	index := flag.String("index", "SPY", "index units for spot/strike: SPY|SPX")
	spot := flag.Float64("spot", 0, "current spot price (omit with -auto)")
	strike := flag.Float64("strike", 0, "strike price, same units as spot (required)")
	expiry := flag.String("expiry", "", `expiry in ET: "2006-01-02 15:04" or "2006-01-02" (assumes 16:00 ET)`)
	minutes := flag.Float64("minutes", 0, "minutes from now to expiry (overrides -expiry)")
	iv := flag.Float64("iv", 0, "implied vol, annual decimal e.g. 0.18 (omit with -auto)")
	tilt := flag.Float64("tilt", 0, "relative gamma tilt, e.g. -0.03 cuts prob by 3%")
	ratio := flag.Float64("ratio", 10.0, "SPX->SPY mapping ratio")
	base := flag.String("base", "https://query2.finance.yahoo.com", "quote API base URL for -auto")
	flag.Parse()

	if *strike <= 0 {
		fatal("usage: -strike is required and must be positive")
	}
	if *index != "SPY" && *index != "SPX" {
		fatal("usage: -index must be SPY or SPX")
	}

	loc, err := scanner.SessionLocation()
	if err != nil {
		fatal(err.Error())
	}
	now := time.Now().In(loc)

	tYears, expiryDT, err := resolveExpiry(now, *expiry, *minutes, loc)
	if err != nil {
		fatal(err.Error())
	}
	if tYears <= 0 {
		fmt.Println("Target time is in the past or too near; set a future expiry/minutes.")
		return
	}

	// Pasar a unidades SPY si el usuario trabaja en SPX
	strikeCalc := *strike
	spotCalc := *spot
	if *index == "SPX" {
		strikeCalc = *strike / *ratio
		if *spot > 0 {
			spotCalc = *spot / *ratio
		}
	}

	ivCalc := *iv
	if *auto {
		spotCalc, ivCalc = autoFetch(*base, loc, strikeCalc, expiryDT, spotCalc, ivCalc)
	}
	if spotCalc <= 0 {
		fatal("spot not provided and auto-fetch failed; pass -spot")
	}
	if ivCalc <= 0 {
		fatal("IV not provided and auto-fetch failed; pass -iv (annual decimal, e.g. 0.18)")
	}

	res := domain.DigitalProb(spotCalc, strikeCalc, ivCalc, tYears, 0)
	if !res.Valid {
		fatal(fmt.Sprintf("invalid model inputs: spot=%v strike=%v iv=%v t=%v", spotCalc, strikeCalc, ivCalc, tYears))
	}
	d1 := res.D2 + ivCalc*math.Sqrt(tYears)
	pAdj := domain.Clamp(res.P*(1.0+*tilt), 0.0001, 0.9999)

	fmt.Println("=== Digital Probability Calculator ===")
	fmt.Printf("Run time (ET):        %s\n", now.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Index mode:           %s (SPX->SPY ratio: %g)\n", *index, *ratio)
	fmt.Printf("Spot (calc units):    %.6g\n", spotCalc)
	fmt.Printf("Strike (calc units):  %.6g\n", strikeCalc)
	fmt.Printf("Time to expiry (yrs): %.8f\n", tYears)
	fmt.Printf("Implied vol (ann):    %.4f\n", ivCalc)
	fmt.Printf("d1: %.4f   d2: %.4f\n", d1, res.D2)
	fmt.Printf("Raw model prob P(S_T>K):      %.4f%%\n", res.P*100)
	if *tilt != 0 {
		fmt.Printf("Applied relative tilt: %+.2f%% -> Adjusted prob: %.4f%%\n", *tilt*100, pAdj*100)
	} else {
		fmt.Println("No tilt applied.")
	}
	fmt.Println("\nCompare the adjusted prob to the contract's YES mid; the gap is gross edge before fees.")
}

// resolveExpiry calcula T en años desde -minutes o -expiry (ET).
func resolveExpiry(now time.Time, expiry string, minutes float64, loc *time.Location) (float64, time.Time, error) {
	if minutes > 0 {
		dt := now.Add(time.Duration(minutes * float64(time.Minute)))
		return minutes * 60.0 / secondsPerYear, dt, nil
	}
	if expiry == "" {
		return 0, time.Time{}, fmt.Errorf("either -minutes or -expiry must be provided")
	}

	dt, err := parseExpiryET(expiry, loc)
	if err != nil {
		return 0, time.Time{}, err
	}
	secs := dt.Sub(now).Seconds()
	if secs < 0 {
		secs = 0
	}
	return secs / secondsPerYear, dt, nil
}

// parseExpiryET parsea "2006-01-02 15:04[:05]" o "2006-01-02" (cierre
// de sesión, 16:00 ET) en la zona de sesión.
func parseExpiryET(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) == len("2006-01-02") {
		d, err := time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse expiry %q: %w", s, err)
		}
		return time.Date(d.Year(), d.Month(), d.Day(), 16, 0, 0, 0, loc), nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 15:04:05"} {
		if dt, err := time.ParseInLocation(layout, s, loc); err == nil {
			return dt, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse expiry %q: expected \"2006-01-02 15:04\" or \"2006-01-02\"", s)
}

// autoFetch completa spot e IV desde la API de quotes (best-effort):
// los valores pasados a mano tienen prioridad y los fallos solo avisan.
func autoFetch(base string, loc *time.Location, strike float64, expiry time.Time, spot, iv float64) (float64, float64) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := yahoo.NewClient(base, "SPY", loc)

	if spot <= 0 {
		fetched, err := client.Spot(ctx)
		if err != nil {
			slog.Warn("auto-fetch spot failed", "err", err)
		} else {
			spot = fetched
		}
	}
	if iv <= 0 {
		fetched, err := client.NearestImpliedVol(ctx, expiry, strike)
		if err != nil {
			slog.Warn("auto-fetch IV failed", "err", err)
		} else {
			iv = fetched
		}
	}
	return spot, iv
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
