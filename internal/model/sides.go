package model

// Side is the geometric half of the goal a shot was classified into.
type Side int

const (
	SideNone  Side = 0
	SideLeft  Side = 1
	SideRight Side = 2
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "-"
	}
}

// Anatomical is the goalie-relative label for a side.
type Anatomical int

const (
	AnatomicalNone Anatomical = 0
	Glove          Anatomical = 1
	Stick          Anatomical = 2
)

func (a Anatomical) String() string {
	switch a {
	case Glove:
		return "glove"
	case Stick:
		return "stick"
	default:
		return "-"
	}
}

// SideRecord holds the shot and goal counts for one side.
type SideRecord struct {
	Side  Side
	Label Anatomical
	Shots int
	Goals int
}

// SavePercentage returns (shots-goals)/shots*100. ok is false when no shots
// were classified to this side.
func (r SideRecord) SavePercentage() (pct float64, ok bool) {
	if r.Shots == 0 {
		return 0, false
	}
	return float64(r.Shots-r.Goals) / float64(r.Shots) * 100, true
}

// SideAnalysis is the positional breakdown for one goalie and season.
type SideAnalysis struct {
	GoalieID   string
	Name       string
	Season     string
	Handedness Handedness
	// HandednessAssumed is set when handedness is unknown and the right-handed
	// mapping was applied.
	HandednessAssumed bool

	Left  SideRecord
	Right SideRecord
	// Weaker is SideNone when no side has a strictly lower defined save percentage.
	Weaker Side

	Total        int // all events for the season
	Unclassified int // shots, blocks and goals without coordinates
	Missed       int // missed shots, never classified
}

// Record returns the record for s.
func (a *SideAnalysis) Record(s Side) (SideRecord, bool) {
	switch s {
	case SideLeft:
		return a.Left, true
	case SideRight:
		return a.Right, true
	default:
		return SideRecord{}, false
	}
}

// WeakerLabel returns the anatomical label of the weaker side, if any.
func (a *SideAnalysis) WeakerLabel() (Anatomical, bool) {
	r, ok := a.Record(a.Weaker)
	if !ok {
		return AnatomicalNone, false
	}
	return r.Label, true
}
