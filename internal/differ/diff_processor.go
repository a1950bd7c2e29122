package differ

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffProcessor computes content differences between the two observations
// bracketing a localized event.
type DiffProcessor struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewDiffProcessor creates a new diff processor
func NewDiffProcessor() *DiffProcessor {
	return &DiffProcessor{
		dmp: diffmatchpatch.New(),
	}
}

// DiffStatistics holds diff calculation results for one bracket pair.
type DiffStatistics struct {
	LinesAdded   int
	LinesDeleted int
	IsIdentical  bool
}

// CompareLines diffs two raw contents line-wise and counts inserted and
// deleted lines. Empty inputs are valid and count against the other side.
func (dp *DiffProcessor) CompareLines(before, after string) DiffStatistics {
	if before == after {
		return DiffStatistics{IsIdentical: true}
	}

	beforeRunes, afterRunes, lineArray := dp.dmp.DiffLinesToRunes(before, after)
	diffs := dp.dmp.DiffMainRunes(beforeRunes, afterRunes, false)
	diffs = dp.dmp.DiffCharsToLines(diffs, lineArray)

	stats := DiffStatistics{}
	for _, diff := range diffs {
		lines := countLines(diff.Text)
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			stats.LinesAdded += lines
		case diffmatchpatch.DiffDelete:
			stats.LinesDeleted += lines
		}
	}
	return stats
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
