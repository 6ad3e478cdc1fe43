package combat

// LogKind distinguishes the record types in the combat log.
type LogKind int

const (
	LogAction LogKind = iota
	LogSkip
	LogRoundTick
	LogTerminal
)

// String returns the record type label.
func (k LogKind) String() string {
	switch k {
	case LogAction:
		return "action"
	case LogSkip:
		return "skip"
	case LogRoundTick:
		return "round_tick"
	case LogTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// EffectChange records one effect tick applied during end-of-round
// processing.
type EffectChange struct {
	ParticipantID string
	EffectID      string
	// Damage, Healing, and CorruptionDelta are the amounts the tick applied.
	Damage          int
	Healing         int
	CorruptionDelta int
	Expired         bool
}

// LogEntry is one record in the append-only combat log.
type LogEntry struct {
	Seq   int
	Round int
	Kind  LogKind

	// ActorID/ActorName and the action fields are set for LogAction and
	// LogSkip records.
	ActorID    string
	ActorName  string
	ActionType ActionType
	AbilityID  string
	Targets    []TargetOutcome

	// EffectChanges is set for LogRoundTick records.
	EffectChanges []EffectChange

	// Outcome is set for LogTerminal records.
	Outcome Outcome
}

// appendLog appends a record to the combat log, assigning its sequence
// number. The log is append-only; entries are never mutated after this.
func (e *Encounter) appendLog(entry LogEntry) {
	entry.Seq = len(e.log)
	entry.Round = e.Round
	e.log = append(e.log, entry)
}

// Log returns a copy of the combat log slice. The entries themselves are
// value types; mutating the returned slice does not affect the encounter.
func (e *Encounter) Log() []LogEntry {
	out := make([]LogEntry, len(e.log))
	copy(out, e.log)
	return out
}
