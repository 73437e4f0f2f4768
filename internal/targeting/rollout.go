package targeting

import "unicode/utf16"

// AnonymousUserID is the bucketing identity used when a request has no user id.
const AnonymousUserID = "anonymous"

// FullRollout is the rollout percentage at which the rollout gate is skipped.
const FullRollout = 100

// Bucket assigns userID to a stable bucket in [0, 99] for featureName.
//
// The hash is a 32-bit rolling hash (h = h*31 + c) over the UTF-16 code units
// of "<userID>:<featureName>", with two's-complement wraparound. Existing
// rollout assignments depend on this being reproduced bit for bit.
//
// Go strings cannot hold an unpaired UTF-16 surrogate: JSON decoding turns
// one into U+FFFD before it gets here. User ids containing lone surrogates
// therefore hash differently from a UTF-16 implementation and may land in
// another bucket.
func Bucket(userID, featureName string) int {
	if userID == "" {
		userID = AnonymousUserID
	}
	return bucketOf(rollingHash(userID + ":" + featureName))
}

// InRollout reports whether userID falls inside a rollout of percentage.
func InRollout(userID, featureName string, percentage int) bool {
	return Bucket(userID, featureName) < percentage
}

func rollingHash(s string) int32 {
	var hash int32
	for _, unit := range utf16.Encode([]rune(s)) {
		hash = hash*31 + int32(unit)
	}
	return hash
}

// bucketOf widens before taking the absolute value so math.MinInt32 maps to
// 2147483648 % 100 rather than overflowing.
func bucketOf(hash int32) int {
	h := int64(hash)
	if h < 0 {
		h = -h
	}
	return int(h % 100)
}
