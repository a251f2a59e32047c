package plan

import (
	"errors"
	"strings"
)

var ErrUnknownPlan = errors.New("unknown_plan")

// Plan is a named entitlement tier.
type Plan string

const (
	Free      Plan = "Free"
	Pro       Plan = "Pro"
	Diamond   Plan = "Diamond"
	Cinematic Plan = "Cinematic"
	Lifetime  Plan = "Lifetime"
)

// Entitlements is one row of the plan catalog. MaxSeconds is nil when
// the plan has no clip length cap. VideoQuota is -1 for unlimited.
type Entitlements struct {
	Plan           Plan
	MaxSeconds     *int
	DefaultSeconds int
	VideoQuota     int
	DownloadQuota  int
	Premium        bool
}

func intPtr(v int) *int { return &v }

var catalog = map[Plan]Entitlements{
	Free:      {Plan: Free, MaxSeconds: intPtr(6), DefaultSeconds: 6, VideoQuota: 1, DownloadQuota: 1, Premium: false},
	Pro:       {Plan: Pro, MaxSeconds: intPtr(60), DefaultSeconds: 30, VideoQuota: -1, DownloadQuota: -1, Premium: false},
	Diamond:   {Plan: Diamond, MaxSeconds: intPtr(180), DefaultSeconds: 90, VideoQuota: -1, DownloadQuota: -1, Premium: true},
	Cinematic: {Plan: Cinematic, MaxSeconds: intPtr(300), DefaultSeconds: 180, VideoQuota: -1, DownloadQuota: -1, Premium: true},
	Lifetime:  {Plan: Lifetime, MaxSeconds: nil, DefaultSeconds: 60, VideoQuota: -1, DownloadQuota: -1, Premium: true},
}

// Lookup resolves a plan name case-insensitively.
func Lookup(name string) (Entitlements, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for p, ent := range catalog {
		if strings.ToLower(string(p)) == normalized {
			return ent, nil
		}
	}
	return Entitlements{}, ErrUnknownPlan
}

// Get returns the catalog entry for a known plan.
func Get(p Plan) (Entitlements, error) {
	ent, ok := catalog[p]
	if !ok {
		return Entitlements{}, ErrUnknownPlan
	}
	return ent, nil
}

// IsValid reports whether the plan name resolves to a catalog entry.
func IsValid(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// All returns every catalog entry, useful for exports.
func All() []Entitlements {
	out := make([]Entitlements, 0, len(catalog))
	for _, p := range []Plan{Free, Pro, Diamond, Cinematic, Lifetime} {
		out = append(out, catalog[p])
	}
	return out
}

var rank = map[Plan]int{
	Free:      0,
	Pro:       1,
	Diamond:   2,
	Cinematic: 3,
	Lifetime:  4,
}

// Rank orders plans from Free upward, used by the optional
// downgrade-prevention policy.
func Rank(p Plan) int {
	r, ok := rank[p]
	if !ok {
		return -1
	}
	return r
}

// Unlimited reports whether the quota value means no cap.
func Unlimited(quota int) bool {
	return quota < 0
}
