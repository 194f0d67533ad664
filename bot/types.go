package bot

import "time"

// RequestStatus is the lifecycle state of a verification request.
// A request transitions from Submitted to exactly one terminal state.
type RequestStatus string

const (
	StatusSubmitted RequestStatus = "SUBMITTED"
	StatusApproved  RequestStatus = "APPROVED"
	StatusRejected  RequestStatus = "REJECTED"
)

// RiskTier classifies an account by age-based heuristics.
type RiskTier string

const (
	RiskLow     RiskTier = "LOW"
	RiskMed     RiskTier = "MED"
	RiskHigh    RiskTier = "HIGH"
	RiskUnknown RiskTier = "UNKNOWN"
)

// RoleBucket names one target role. Buckets on the same axis are mutually
// exclusive: a member holds at most one gender bucket and one age bucket.
type RoleBucket string

const (
	BucketVerified RoleBucket = "verified"

	BucketMale              RoleBucket = "gender:male"
	BucketFemale            RoleBucket = "gender:female"
	BucketLGBT              RoleBucket = "gender:lgbt"
	BucketGenderUndisclosed RoleBucket = "gender:undisclosed"

	BucketAge0To12       RoleBucket = "age:0-12"
	BucketAge13To15      RoleBucket = "age:13-15"
	BucketAge16To18      RoleBucket = "age:16-18"
	BucketAge19To21      RoleBucket = "age:19-21"
	BucketAge22To24      RoleBucket = "age:22-24"
	BucketAge25To29      RoleBucket = "age:25-29"
	BucketAge30To34      RoleBucket = "age:30-34"
	BucketAge35To39      RoleBucket = "age:35-39"
	BucketAge40To44      RoleBucket = "age:40-44"
	BucketAge45To49      RoleBucket = "age:45-49"
	BucketAge50To54      RoleBucket = "age:50-54"
	BucketAge55To59      RoleBucket = "age:55-59"
	BucketAge60To64      RoleBucket = "age:60-64"
	BucketAge65Up        RoleBucket = "age:65-up"
	BucketAgeUndisclosed RoleBucket = "age:undisclosed"
)

// GenderBuckets lists every bucket on the gender axis.
func GenderBuckets() []RoleBucket {
	return []RoleBucket{BucketMale, BucketFemale, BucketLGBT, BucketGenderUndisclosed}
}

// AgeBuckets lists every bucket on the age axis.
func AgeBuckets() []RoleBucket {
	return []RoleBucket{
		BucketAge0To12, BucketAge13To15, BucketAge16To18, BucketAge19To21,
		BucketAge22To24, BucketAge25To29, BucketAge30To34, BucketAge35To39,
		BucketAge40To44, BucketAge45To49, BucketAge50To54, BucketAge55To59,
		BucketAge60To64, BucketAge65Up, BucketAgeUndisclosed,
	}
}

// IsGenderBucket reports whether b lies on the gender axis.
func IsGenderBucket(b RoleBucket) bool {
	for _, g := range GenderBuckets() {
		if b == g {
			return true
		}
	}
	return false
}

// IsAgeBucket reports whether b lies on the age axis.
func IsAgeBucket(b RoleBucket) bool {
	for _, a := range AgeBuckets() {
		if b == a {
			return true
		}
	}
	return false
}

// VerificationRequest is one pending identity claim.
type VerificationRequest struct {
	ID             uint
	CreatedAt      time.Time
	UpdatedAt      time.Time
	GuildID        int64
	UserID         int64
	ChannelID      int64
	MessageID      int64 // approval card carrying the decision buttons
	Nickname       string
	AgeText        string
	GenderText     string
	BirthdayText   string
	AccountAgeDays *int
	RiskTier       RiskTier
	Status         RequestStatus
	DecidedBy      int64
}

// MemberProfile holds the latest submitted identity fields for a member.
type MemberProfile struct {
	ID           uint
	CreatedAt    time.Time
	UpdatedAt    time.Time
	GuildID      int64
	UserID       int64
	Nickname     string
	AgeText      string
	GenderText   string
	BirthdayText string
}

// ApprovalPointer records the latest approval card posted for a member.
type ApprovalPointer struct {
	GuildID   int64
	UserID    int64
	ChannelID int64
	MessageID int64
}
