package models

// EventType classifies a detected timeline event.
type EventType string

const (
	EventAdded                EventType = "added"
	EventRemoved              EventType = "removed"
	EventChanged              EventType = "changed"
	EventPotentialExclusivity EventType = "potential_exclusivity"
)

// Event is one detected change for one provider. WindowFrom/WindowTo are
// adjacent entries of the full reduced observation sequence, i.e. the
// narrowest resolution the archive offers for that change.
type Event struct {
	Domain     string
	Provider   string
	Type       EventType
	WindowFrom string // YYYY-MM-DD
	WindowTo   string // YYYY-MM-DD
	// SigLo/SigHi are the supporting signatures on either side of the window;
	// nil for exclusivity events.
	SigLo *Signature
	SigHi *Signature
	// ConsecutiveRun is set for potential_exclusivity events.
	ConsecutiveRun int
}

// SnapshotPairRecord records the raw observation pair bracketing one or more
// localized events, including content diff statistics for the pair.
type SnapshotPairRecord struct {
	Domain       string
	PosLo        int
	PosHi        int
	TimestampLo  string
	TimestampHi  string
	DigestLo     string
	DigestHi     string
	LengthLo     *int64
	LengthHi     *int64
	SuspectLo    bool
	SuspectHi    bool
	LinesAdded   int
	LinesDeleted int
}

// ParticipantRow is one discovered participant ID in one observation.
type ParticipantRow struct {
	Domain        string
	SnapshotTS    string
	Provider      string
	Role          RelationshipRole
	ParticipantID string
}

// ProviderRollup aggregates the participant IDs discovered for one provider
// across a domain's whole analysis window.
type ProviderRollup struct {
	Domain          string
	Provider        string
	TotalUniqueIDs  int
	DirectIDCount   int
	ResellerIDCount int
	DirectIDs       []string
	ResellerIDs     []string
	LastSeenTS      string
}

// DomainResult aggregates one domain's full analysis output for one run.
type DomainResult struct {
	Domain           string
	From             string
	To               string
	SnapshotsCount   int
	PerYearCounts    map[int]int
	LongestGapDays   int
	UsedWildcardMode bool
	Events           []Event
	SnapshotPairs    []SnapshotPairRecord
	ParticipantRows  []ParticipantRow
	ProviderRollups  []ProviderRollup
	// Managers holds anomaly-manager tokens found in raw observation content.
	Managers []string
	// SuspectTimestamps lists observations flagged as likely truncated or unusable.
	SuspectTimestamps []string
	HumanSummary      []string
	// FocusScore is the 0-100 heuristic score for the configured focus provider.
	FocusScore float64
}
