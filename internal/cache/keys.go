package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"flagpost/internal/constants"
	"flagpost/internal/targeting"
)

const fieldSep = "\x1f"

// FeatureKey derives the cache key of a check-features call. Every user
// attribute and the de-duplicated, sorted feature set feed the hash, so
// different contexts never share an entry. A nil user hashes differently
// from an empty one. The cache generation is part of the key, so entries
// written before an invalidation can never be read after it.
func FeatureKey(generation int64, user *targeting.UserContext, features []string) string {
	var b strings.Builder

	if user == nil {
		b.WriteString("nouser")
	} else {
		for _, v := range []string{
			user.UserID,
			user.UserType,
			user.Location,
			user.AccountAge,
			user.ActivityLevel,
			user.PlanTier,
			user.CurrentPage,
			user.Environment,
		} {
			b.WriteString(v)
			b.WriteString(fieldSep)
		}
	}
	b.WriteString("|")
	b.WriteString(strings.Join(uniqueSorted(features), fieldSep))

	sum := sha256.Sum256([]byte(b.String()))
	return constants.CacheKeyPrefixFeatures + strconv.FormatInt(generation, 10) + ":" + hex.EncodeToString(sum[:])
}

func uniqueSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
