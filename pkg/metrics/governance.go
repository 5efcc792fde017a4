package metrics

import (
	"github.com/fireboltd/fireboltd/pkg/manifest"
	"github.com/fireboltd/fireboltd/pkg/privacy"
)

// Data event types declared by the device manifest's governance policies.
const (
	EventBusinessIntelligence = "businessIntelligence"
	EventWatched              = "watched"
)

// Storage property names matched against policy setting-tags.
const (
	propBusinessAnalytics = "allowBusinessAnalytics"
	propWatchHistory      = "allowWatchHistory"
	propPersonalization   = "allowPersonalization"
	propProductAnalytics  = "allowProductAnalytics"
)

// UpdateDataGovernanceTags recomputes the context's governance tags from the
// current privacy settings. For each allowed setting the configured policy is
// looked up by event type and the matching setting-tag's tags are unioned in.
// No allowed settings leaves the tag list empty.
func (s *State) UpdateDataGovernanceTags(cfg manifest.DataGovernanceConfig, settings privacy.Settings) {
	var tags []string

	appendTags := func(allowed bool, eventType, property string) {
		if !allowed {
			return
		}
		policy := cfg.Policy(eventType)
		if policy == nil {
			return
		}
		for _, st := range policy.SettingTags {
			if st.Setting == property {
				tags = append(tags, st.Tags...)
			}
		}
	}

	appendTags(settings.AllowBusinessAnalytics, EventBusinessIntelligence, propBusinessAnalytics)
	appendTags(settings.AllowResumePoints, EventWatched, propWatchHistory)
	appendTags(settings.AllowPersonalization, EventBusinessIntelligence, propPersonalization)
	appendTags(settings.AllowProductAnalytics, EventBusinessIntelligence, propProductAnalytics)

	s.mu.Lock()
	s.context.DataGovernanceTags = tags
	s.mu.Unlock()
}
