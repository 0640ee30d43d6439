package handlers

// Severity classifies a single violation. It is supplied by the lexicon
// checker or the content classifier, never decided here.
type Severity string

const (
	SeverityNone   Severity = ""
	SeverityNormal Severity = "normal"
	SeverityHeavy  Severity = "heavy"
)

const (
	ReasonTwoHeavy    = "two heavy violations"
	ReasonThreeNormal = "three normal violations"
	ReasonCombined    = "combined: one heavy + two normal"
)

// PunishmentsBeforeBan is the number of punishment episodes after which the
// next verdict becomes a permanent ban. The counter is lifetime and is only
// cleared by an explicit pardon.
const PunishmentsBeforeBan = 3

type Verdict struct {
	WarnsNormal int
	WarnsHeavy  int
	Punish      bool
	Reason      string
}

// Evaluate applies a new violation to the current warning counters and decides
// whether a punishment is due. The thresholds are checked in a fixed priority
// order and the first match wins; reordering them changes observable
// punishment reasons.
func Evaluate(warnsNormal, warnsHeavy int, severity Severity) Verdict {
	if severity == SeverityHeavy {
		warnsHeavy++
	} else {
		warnsNormal++
	}

	verdict := Verdict{
		WarnsNormal: warnsNormal,
		WarnsHeavy:  warnsHeavy,
	}

	switch {
	case warnsHeavy >= 2:
		verdict.Punish, verdict.Reason = true, ReasonTwoHeavy
	case warnsNormal >= 3:
		verdict.Punish, verdict.Reason = true, ReasonThreeNormal
	case warnsHeavy >= 1 && warnsNormal >= 2:
		verdict.Punish, verdict.Reason = true, ReasonCombined
	}

	return verdict
}
