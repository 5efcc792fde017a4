package metrics

import (
	"reflect"
	"testing"

	"github.com/fireboltd/fireboltd/pkg/manifest"
	"github.com/fireboltd/fireboltd/pkg/privacy"
)

func governanceConfig() manifest.DataGovernanceConfig {
	return manifest.DataGovernanceConfig{Policies: []manifest.DataGovernancePolicy{
		{
			DataEventType: EventBusinessIntelligence,
			SettingTags: []manifest.SettingTag{
				{Setting: "allowBusinessAnalytics", Tags: []string{"bi", "analytics"}},
				{Setting: "allowPersonalization", Tags: []string{"personalization"}},
				{Setting: "allowProductAnalytics", Tags: []string{"product"}},
			},
		},
		{
			DataEventType: EventWatched,
			SettingTags: []manifest.SettingTag{
				{Setting: "allowWatchHistory", Tags: []string{"watched"}},
			},
		},
	}}
}

func TestUpdateDataGovernanceTags(t *testing.T) {
	s := NewState()

	s.UpdateDataGovernanceTags(governanceConfig(), privacy.Settings{
		AllowBusinessAnalytics: true,
		AllowResumePoints:      true,
	})

	got := s.GetContext().DataGovernanceTags
	want := []string{"bi", "analytics", "watched"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}

func TestUpdateDataGovernanceTagsNothingAllowed(t *testing.T) {
	s := NewState()

	// Seed with tags, then recompute with everything off.
	s.UpdateDataGovernanceTags(governanceConfig(), privacy.Settings{AllowProductAnalytics: true})
	s.UpdateDataGovernanceTags(governanceConfig(), privacy.Settings{})

	if got := s.GetContext().DataGovernanceTags; len(got) != 0 {
		t.Errorf("tags = %v, want empty", got)
	}
}

func TestUpdateDataGovernanceTagsNoPolicy(t *testing.T) {
	s := NewState()

	s.UpdateDataGovernanceTags(manifest.DataGovernanceConfig{}, privacy.Settings{
		AllowBusinessAnalytics: true,
	})

	if got := s.GetContext().DataGovernanceTags; len(got) != 0 {
		t.Errorf("tags = %v, want empty without policies", got)
	}
}
