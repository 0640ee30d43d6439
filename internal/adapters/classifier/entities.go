package classifier

type Verdict string

const (
	VerdictClean Verdict = "clean"
	VerdictHeavy Verdict = "heavy"
)

// Scores are the raw model probabilities for a single image.
type Scores struct {
	NudityRaw     float64
	NudityPartial float64
	NuditySafe    float64
	Weapon        float64
	Gore          float64
}

const (
	nudityRawThreshold     = 0.05
	nudityPartialThreshold = 0.15
	nuditySafeThreshold    = 0.90
	weaponThreshold        = 0.8
	goreThreshold          = 0.8
)

// Verdict collapses the scores into a moderation verdict. The raw nudity
// threshold is intentionally tight, explicit content has to be caught on the
// first frame.
func (s Scores) Verdict() Verdict {
	switch {
	case s.NudityRaw > nudityRawThreshold:
		return VerdictHeavy
	case s.NudityPartial > nudityPartialThreshold:
		return VerdictHeavy
	case s.NuditySafe < nuditySafeThreshold:
		return VerdictHeavy
	case s.Weapon > weaponThreshold:
		return VerdictHeavy
	case s.Gore > goreThreshold:
		return VerdictHeavy
	}
	return VerdictClean
}
