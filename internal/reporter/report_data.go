package reporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aleister1102/adstrace/internal/models"
)

// ReportPageData is the template input: one table per logical sheet.
type ReportPageData struct {
	ReportTitle  string
	GeneratedAt  string
	Summary      []SummaryRow
	Timeline     []TimelineRow
	Snapshots    []SnapshotRow
	ProviderIDs  []ProviderIDRow
	Participants []ParticipantRow
	Managers     []ManagerRow
	HumanSummary []HumanSummaryRow
	Scores       []ScoreRow
}

// SummaryRow summarizes one domain's coverage and event counts.
type SummaryRow struct {
	Domain           string
	From             string
	To               string
	SnapshotsCount   int
	PerYearCounts    string
	LongestGapDays   int
	UsedWildcardMode bool
	EventCount       int
	SuspectCount     int
}

// TimelineRow is one detected event.
type TimelineRow struct {
	Domain         string
	Provider       string
	EventType      string
	WindowFrom     string
	WindowTo       string
	ConsecutiveRun int
}

// SnapshotRow is one event bracket pair with its content diff stats.
type SnapshotRow struct {
	Domain       string
	TimestampLo  string
	TimestampHi  string
	DigestLo     string
	DigestHi     string
	LengthLo     string
	LengthHi     string
	SuspectLo    bool
	SuspectHi    bool
	LinesAdded   int
	LinesDeleted int
}

// ProviderIDRow is one provider's ID rollup for one domain.
type ProviderIDRow struct {
	Domain          string
	Provider        string
	TotalUniqueIDs  int
	DirectIDCount   int
	ResellerIDCount int
	DirectIDs       string
	ResellerIDs     string
	LastSeenTS      string
}

// ParticipantRow is one participant ID in one snapshot.
type ParticipantRow struct {
	Domain        string
	SnapshotTS    string
	Provider      string
	Role          string
	ParticipantID string
}

// ManagerRow lists the ads-manager tokens found for one domain.
type ManagerRow struct {
	Domain   string
	Managers string
}

// HumanSummaryRow is one narrative sentence for one domain.
type HumanSummaryRow struct {
	Domain   string
	Sentence string
}

// ScoreRow is the focus-provider score for one domain.
type ScoreRow struct {
	Domain     string
	Provider   string
	FocusScore string
}

// BuildPageData flattens per-domain results into sheet rows. Row order follows
// the input result order; within a domain, rows keep the order the analyzer
// produced them in.
func BuildPageData(results []models.DomainResult, focusProvider string) ReportPageData {
	var data ReportPageData

	for _, res := range results {
		data.Summary = append(data.Summary, SummaryRow{
			Domain:           res.Domain,
			From:             res.From,
			To:               res.To,
			SnapshotsCount:   res.SnapshotsCount,
			PerYearCounts:    formatPerYearCounts(res.PerYearCounts),
			LongestGapDays:   res.LongestGapDays,
			UsedWildcardMode: res.UsedWildcardMode,
			EventCount:       len(res.Events),
			SuspectCount:     len(res.SuspectTimestamps),
		})

		for _, ev := range res.Events {
			data.Timeline = append(data.Timeline, TimelineRow{
				Domain:         ev.Domain,
				Provider:       ev.Provider,
				EventType:      string(ev.Type),
				WindowFrom:     ev.WindowFrom,
				WindowTo:       ev.WindowTo,
				ConsecutiveRun: ev.ConsecutiveRun,
			})
		}

		for _, pair := range res.SnapshotPairs {
			data.Snapshots = append(data.Snapshots, SnapshotRow{
				Domain:       pair.Domain,
				TimestampLo:  pair.TimestampLo,
				TimestampHi:  pair.TimestampHi,
				DigestLo:     pair.DigestLo,
				DigestHi:     pair.DigestHi,
				LengthLo:     formatLength(pair.LengthLo),
				LengthHi:     formatLength(pair.LengthHi),
				SuspectLo:    pair.SuspectLo,
				SuspectHi:    pair.SuspectHi,
				LinesAdded:   pair.LinesAdded,
				LinesDeleted: pair.LinesDeleted,
			})
		}

		for _, rollup := range res.ProviderRollups {
			data.ProviderIDs = append(data.ProviderIDs, ProviderIDRow{
				Domain:          rollup.Domain,
				Provider:        rollup.Provider,
				TotalUniqueIDs:  rollup.TotalUniqueIDs,
				DirectIDCount:   rollup.DirectIDCount,
				ResellerIDCount: rollup.ResellerIDCount,
				DirectIDs:       strings.Join(rollup.DirectIDs, ", "),
				ResellerIDs:     strings.Join(rollup.ResellerIDs, ", "),
				LastSeenTS:      rollup.LastSeenTS,
			})
		}

		for _, row := range res.ParticipantRows {
			data.Participants = append(data.Participants, ParticipantRow{
				Domain:        row.Domain,
				SnapshotTS:    row.SnapshotTS,
				Provider:      row.Provider,
				Role:          string(row.Role),
				ParticipantID: row.ParticipantID,
			})
		}

		if len(res.Managers) > 0 {
			data.Managers = append(data.Managers, ManagerRow{
				Domain:   res.Domain,
				Managers: strings.Join(res.Managers, ", "),
			})
		}

		for _, sentence := range res.HumanSummary {
			data.HumanSummary = append(data.HumanSummary, HumanSummaryRow{
				Domain:   res.Domain,
				Sentence: sentence,
			})
		}

		data.Scores = append(data.Scores, ScoreRow{
			Domain:     res.Domain,
			Provider:   focusProvider,
			FocusScore: fmt.Sprintf("%.1f", res.FocusScore),
		})
	}

	return data
}

func formatPerYearCounts(counts map[int]int) string {
	if len(counts) == 0 {
		return ""
	}
	years := make([]int, 0, len(counts))
	for year := range counts {
		years = append(years, year)
	}
	sort.Ints(years)

	parts := make([]string, 0, len(years))
	for _, year := range years {
		parts = append(parts, fmt.Sprintf("%d:%d", year, counts[year]))
	}
	return strings.Join(parts, " ")
}

func formatLength(length *int64) string {
	if length == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *length)
}
