package engine

// GroupKey identifies one of the four fixed age brackets. Each group key
// selects its own content pool and its own rotation state.
type GroupKey string

const (
	Group4to6   GroupKey = "4-6"
	Group7to10  GroupKey = "7-10"
	Group11to13 GroupKey = "11-13"
	Group14to17 GroupKey = "14-17"
)

// AllGroups lists the four group keys in ascending age order.
var AllGroups = []GroupKey{Group4to6, Group7to10, Group11to13, Group14to17}

// AgeToGroupKey maps an integer age to its bracket. The brackets are
// closed, contiguous intervals covering exactly ages 4 through 17.
//
// Any age outside [4,17] returns ok=false. There is deliberately no
// default group: silently guessing a bracket for an out-of-range user
// would serve them the wrong pool, so callers must surface this as a
// terminal InvalidAge error instead.
func AgeToGroupKey(age int) (GroupKey, bool) {
	switch {
	case age >= 4 && age <= 6:
		return Group4to6, true
	case age >= 7 && age <= 10:
		return Group7to10, true
	case age >= 11 && age <= 13:
		return Group11to13, true
	case age >= 14 && age <= 17:
		return Group14to17, true
	default:
		return "", false
	}
}

// ValidGroupKey reports whether s is one of the four bracket keys.
func ValidGroupKey(s string) bool {
	switch GroupKey(s) {
	case Group4to6, Group7to10, Group11to13, Group14to17:
		return true
	}
	return false
}
