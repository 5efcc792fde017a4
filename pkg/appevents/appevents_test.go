package appevents

import "testing"

func TestSubscribeAndListeners(t *testing.T) {
	r := NewRegistry()
	r.Subscribe("device.onNameChanged", "s1")
	r.Subscribe("device.onNameChanged", "s2")
	r.Subscribe("account.onChanged", "s1")

	if got := r.Listeners("device.onNameChanged"); len(got) != 2 {
		t.Errorf("listeners = %v, want 2", got)
	}
	if got := r.Listeners("never.subscribed"); len(got) != 0 {
		t.Errorf("listeners = %v, want none", got)
	}
}

func TestRemoveSessionDropsAllSubscriptions(t *testing.T) {
	r := NewRegistry()
	r.Subscribe("device.onNameChanged", "s1")
	r.Subscribe("account.onChanged", "s1")
	r.Subscribe("account.onChanged", "s2")

	r.RemoveSession("s1")

	if got := r.Listeners("device.onNameChanged"); len(got) != 0 {
		t.Errorf("s1 subscriptions survived: %v", got)
	}
	if got := r.Listeners("account.onChanged"); len(got) != 1 || got[0] != "s2" {
		t.Errorf("unexpected listeners: %v", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	r := NewRegistry()
	r.Subscribe("device.onNameChanged", "s1")
	r.Unsubscribe("device.onNameChanged", "s1")
	r.Unsubscribe("device.onNameChanged", "never-there")

	if got := r.Listeners("device.onNameChanged"); len(got) != 0 {
		t.Errorf("listeners = %v, want none", got)
	}
}
