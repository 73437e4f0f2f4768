package targeting

// Segment is a single targeting rule. Empty fields are wildcards; set fields
// must equal the corresponding user attribute exactly.
type Segment struct {
	UserType      string `json:"userType,omitempty"`
	Location      string `json:"location,omitempty"`
	AccountAge    string `json:"accountAge,omitempty"`
	ActivityLevel string `json:"activityLevel,omitempty"`
	PlanTier      string `json:"planTier,omitempty"`
	TargetPage    string `json:"targetPage,omitempty"`
}

// UserContext carries the request-time attributes of the user being evaluated.
// A nil *UserContext means the request carried no user context at all.
type UserContext struct {
	UserID        string `json:"userId,omitempty" form:"userId"`
	UserType      string `json:"userType,omitempty" form:"userType"`
	Location      string `json:"location,omitempty" form:"location"`
	AccountAge    string `json:"accountAge,omitempty" form:"accountAge"`
	ActivityLevel string `json:"activityLevel,omitempty" form:"activityLevel"`
	PlanTier      string `json:"planTier,omitempty" form:"planTier"`
	CurrentPage   string `json:"currentPage,omitempty" form:"currentPage"`
	Environment   string `json:"environment,omitempty" form:"environment"`
}

// HasSegmentAttributes reports whether any attribute a segment can constrain is set.
func (u UserContext) HasSegmentAttributes() bool {
	return u.UserType != "" ||
		u.Location != "" ||
		u.AccountAge != "" ||
		u.ActivityLevel != "" ||
		u.PlanTier != "" ||
		u.CurrentPage != ""
}

// IsWildcard reports whether the segment constrains nothing.
func (s Segment) IsWildcard() bool {
	return s == Segment{}
}

// Matches reports whether user satisfies every field set on segment.
func Matches(user UserContext, segment Segment) bool {
	constraints := [...]struct{ want, got string }{
		{segment.UserType, user.UserType},
		{segment.Location, user.Location},
		{segment.AccountAge, user.AccountAge},
		{segment.ActivityLevel, user.ActivityLevel},
		{segment.PlanTier, user.PlanTier},
		{segment.TargetPage, user.CurrentPage},
	}

	for _, c := range constraints {
		if c.want != "" && c.want != c.got {
			return false
		}
	}
	return true
}

// MatchesAny reports whether user matches at least one segment. An empty list
// matches everyone.
func MatchesAny(user UserContext, segments []Segment) bool {
	if len(segments) == 0 {
		return true
	}
	for _, segment := range segments {
		if Matches(user, segment) {
			return true
		}
	}
	return false
}
