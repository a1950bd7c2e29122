package wayback

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/aleister1102/adstrace/internal/models"
)

// Index is the discovered observation list for one domain, after dedup and
// the optional daily reduction. Coverage statistics are computed before the
// reduction so high-frequency domains keep their true counts.
type Index struct {
	// Observations is the full reduced list, ascending by timestamp.
	Observations []models.Observation
	// RawCount is the observation count before reduction.
	RawCount int
	// PerYearCounts maps calendar year to pre-reduction observation count.
	PerYearCounts map[int]int
	// LongestGapDays is the widest gap between consecutive pre-reduction observations.
	LongestGapDays int
	// UsedWildcardMode is set when the widened query pattern produced the index.
	UsedWildcardMode bool
}

// ListObservations discovers the ordered observation list for a domain's
// declarations file between fromTS and toTS (YYYYMMDD bounds). The canonical
// path is queried first; when it yields nothing the query widens once to a
// domain-relative wildcard, which covers domains that only ever served the
// file under a different host variant. Results exceeding the reduction cap
// collapse to one observation per calendar day, latest wins.
func (c *Client) ListObservations(ctx context.Context, domain, fromTS, toTS string) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := strings.TrimRight(domain, "/")
	observations := c.queryIndex(ctx, base+"/ads.txt", fromTS, toTS)

	usedWildcard := false
	if len(observations) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		observations = c.queryIndex(ctx, base+"/*ads.txt", fromTS, toTS)
		usedWildcard = true
	}

	observations = dedupSort(observations)

	index := &Index{
		RawCount:         len(observations),
		PerYearCounts:    perYearCounts(observations, fromTS, toTS),
		LongestGapDays:   longestGapDays(observations),
		UsedWildcardMode: usedWildcard,
	}

	if len(observations) > c.cfg.ReductionCap {
		c.logger.Debug().
			Str("domain", domain).
			Int("raw_count", len(observations)).
			Int("cap", c.cfg.ReductionCap).
			Msg("Reducing index to daily resolution")
		observations = ReduceDaily(observations)
	}
	index.Observations = observations

	return index, nil
}

// perYearCounts tallies observations per calendar year. Years inside the
// queried range with no observations are kept as explicit zeros so coverage
// gaps stay visible in the summary.
func perYearCounts(observations []models.Observation, fromTS, toTS string) map[int]int {
	counts := make(map[int]int)
	minYear, maxYear := 0, 0
	for _, obs := range observations {
		year, err := strconv.Atoi(obs.Year())
		if err != nil {
			continue
		}
		counts[year]++
		if minYear == 0 || year < minYear {
			minYear = year
		}
		if year > maxYear {
			maxYear = year
		}
	}
	if year, ok := timestampYear(fromTS); ok && (minYear == 0 || year < minYear) {
		minYear = year
	}
	if year, ok := timestampYear(toTS); ok && year > maxYear {
		maxYear = year
	}
	for year := minYear; year > 0 && year <= maxYear; year++ {
		if _, ok := counts[year]; !ok {
			counts[year] = 0
		}
	}
	return counts
}

func timestampYear(ts string) (int, bool) {
	if len(ts) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(ts[:4])
	return year, err == nil && year > 0
}

func longestGapDays(observations []models.Observation) int {
	maxGap := 0
	for i := 1; i < len(observations); i++ {
		prev := observations[i-1].Time()
		cur := observations[i].Time()
		if prev.IsZero() || cur.IsZero() {
			continue
		}
		if gap := int(cur.Sub(prev).Hours() / 24); gap > maxGap {
			maxGap = gap
		}
	}
	return maxGap
}

// dedupSort orders observations ascending by timestamp and collapses entries
// sharing (timestamp, digest). The index does not guarantee uniqueness.
func dedupSort(observations []models.Observation) []models.Observation {
	if len(observations) == 0 {
		return nil
	}
	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].Timestamp < observations[j].Timestamp
	})

	seen := make(map[models.Key]struct{}, len(observations))
	out := observations[:0]
	for _, obs := range observations {
		key := obs.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, obs)
	}
	return out
}

// ReduceDaily keeps one observation per calendar day, the latest within each
// day, preserving ascending order.
func ReduceDaily(observations []models.Observation) []models.Observation {
	perDay := make(map[string]models.Observation, len(observations))
	for _, obs := range observations {
		day := obs.Day()
		if prev, ok := perDay[day]; !ok || obs.Timestamp > prev.Timestamp {
			perDay[day] = obs
		}
	}

	out := make([]models.Observation, 0, len(perDay))
	for _, obs := range perDay {
		out = append(out, obs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// SampleIndices picks the candidate window set: per calendar year an evenly
// spaced subset of at most perYear positions, with the first and last position
// of the whole list always force-included. The result is a strictly increasing
// list of indices into the input, so bisection can always walk back into
// unsampled territory.
func SampleIndices(observations []models.Observation, perYear int) []int {
	if len(observations) == 0 {
		return nil
	}
	if perYear < 1 {
		perYear = 1
	}

	yearPositions := make(map[string][]int)
	var years []string
	for i, obs := range observations {
		year := obs.Year()
		if _, ok := yearPositions[year]; !ok {
			years = append(years, year)
		}
		yearPositions[year] = append(yearPositions[year], i)
	}
	sort.Strings(years)

	picked := make(map[int]struct{})
	for _, year := range years {
		positions := yearPositions[year]
		n := len(positions)
		if n <= perYear {
			for _, pos := range positions {
				picked[pos] = struct{}{}
			}
			continue
		}
		for i := 0; i < perYear; i++ {
			var offset int
			if perYear > 1 {
				offset = int(float64(i)*float64(n-1)/float64(perYear-1) + 0.5)
			}
			picked[positions[offset]] = struct{}{}
		}
	}

	picked[0] = struct{}{}
	picked[len(observations)-1] = struct{}{}

	indices := make([]int, 0, len(picked))
	for idx := range picked {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}
