package dashboard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/crystaldash/crystaldash/internal/common"
)

var (
	accumRangeRe  = regexp.MustCompile(`(\d+)\s+to\s+(\d+)\s+inch`)
	accumSingleRe = regexp.MustCompile(`around\s+(\d+)\s+inch`)
)

// DeriveSnow estimates the next 24 hours of snow accumulation from the
// paired daily forecast text. It is a text heuristic only: the first two
// periods are scanned for snow wording and any accumulation phrases are
// summed. Returns nil when nothing mentions snow.
func DeriveSnow(daily []DailyForecast) *SnowEstimate {
	window := daily
	if len(window) > 2 {
		window = window[:2]
	}

	var minIn, maxIn float64
	var mentions []string
	snowy := false

	for _, d := range window {
		if !d.IsSnow && !common.HasAny(d.DetailedForecast, "snow") {
			continue
		}
		snowy = true
		mentions = append(mentions, d.Name)

		lo, hi, ok := parseAccumulation(d.DetailedForecast)
		if ok {
			minIn += lo
			maxIn += hi
		}
	}

	if !snowy {
		return nil
	}

	return &SnowEstimate{
		Next24hMinIn: minIn,
		Next24hMaxIn: maxIn,
		Source:       fmt.Sprintf("forecast text (%s)", strings.Join(mentions, ", ")),
		DerivedAt:    time.Now().UTC(),
	}
}

// parseAccumulation extracts an accumulation range from phrases like
// "new snow accumulation of 1 to 3 inches possible", "around 1 inch", or
// "less than half an inch".
func parseAccumulation(text string) (lo, hi float64, ok bool) {
	t := strings.ToLower(text)

	if m := accumRangeRe.FindStringSubmatch(t); m != nil {
		lo, _ = strconv.ParseFloat(m[1], 64)
		hi, _ = strconv.ParseFloat(m[2], 64)
		return lo, hi, true
	}
	if m := accumSingleRe.FindStringSubmatch(t); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v, v, true
	}
	if strings.Contains(t, "less than half an inch") {
		return 0, 0.5, true
	}
	if strings.Contains(t, "less than one inch") || strings.Contains(t, "less than an inch") {
		return 0, 1, true
	}
	return 0, 0, false
}
