package profile

import "time"

// Profile is the last known set of segment attributes for a user.
type Profile struct {
	UserID        string    `bson:"user_id" json:"userId"`
	UserType      string    `bson:"user_type,omitempty" json:"userType,omitempty"`
	Location      string    `bson:"location,omitempty" json:"location,omitempty"`
	AccountAge    string    `bson:"account_age,omitempty" json:"accountAge,omitempty"`
	ActivityLevel string    `bson:"activity_level,omitempty" json:"activityLevel,omitempty"`
	PlanTier      string    `bson:"plan_tier,omitempty" json:"planTier,omitempty"`
	LastSeen      time.Time `bson:"last_seen" json:"lastSeen"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
}

type UpsertProfileRequest struct {
	UserID        string `json:"userId" binding:"required"`
	UserType      string `json:"userType"`
	Location      string `json:"location"`
	AccountAge    string `json:"accountAge"`
	ActivityLevel string `json:"activityLevel"`
	PlanTier      string `json:"planTier"`
}
