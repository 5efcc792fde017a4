package privacy

import (
	"testing"
)

func TestStoreSetGet(t *testing.T) {
	s, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if s.Get(SettingWatchHistory) {
		t.Error("settings default to false")
	}

	if err := s.Set(SettingWatchHistory, true); err != nil {
		t.Fatal(err)
	}
	if !s.Get(SettingWatchHistory) {
		t.Error("setting not persisted in memory")
	}
	if s.Get(SettingPersonalization) {
		t.Error("other settings untouched")
	}
}

func TestStoreReloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(SettingProductAnalytics, true); err != nil {
		t.Fatal(err)
	}
	if err := s.SetAppDataCollection("com.x.y", true); err != nil {
		t.Fatal(err)
	}

	// A second store over the same directory sees the persisted state.
	s2, err := OpenStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !s2.Get(SettingProductAnalytics) {
		t.Error("persisted setting lost across reload")
	}
	if !s2.GetAppDataCollection("com.x.y") {
		t.Error("persisted app consent lost across reload")
	}
	if s2.GetAppDataCollection("com.unknown") {
		t.Error("unknown apps default to false")
	}
}

func TestSettingsSnapshot(t *testing.T) {
	s, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(SettingBusinessAnalytics, true); err != nil {
		t.Fatal(err)
	}

	snap := s.Settings()
	if !snap.AllowBusinessAnalytics {
		t.Error("snapshot missing updated setting")
	}

	// The snapshot is a copy; mutating it does not touch the store.
	snap.AllowBusinessAnalytics = false
	if !s.Get(SettingBusinessAnalytics) {
		t.Error("snapshot mutation leaked into store")
	}
}
