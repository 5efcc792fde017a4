package extn

import "testing"

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"fb:channel:device:thunder", false},
		{"fb:extn:distributor:general", false},
		{"fb:channel:launcher:main", false},
		{"ripple:channel:device:thunder", true}, // wrong scheme
		{"fb:plugin:device:thunder", true},      // unknown kind
		{"fb:channel:device", true},             // too few segments
		{"fb:channel::thunder", true},           // empty class
		{"fb:channel:device:", true},            // empty service
		{"", true},
	}

	for _, tc := range tests {
		_, err := ParseID(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseID(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
	}
}

func TestIDIsDeviceChannel(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"fb:channel:device:thunder", true},
		{"fb:channel:launcher:main", false},
		{"fb:extn:device:info", false},
	}

	for _, tc := range tests {
		id, err := ParseID(tc.in)
		if err != nil {
			t.Fatalf("ParseID(%q): %v", tc.in, err)
		}
		if got := id.IsDeviceChannel(); got != tc.want {
			t.Errorf("%s.IsDeviceChannel() = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIDRoundTrip(t *testing.T) {
	in := "fb:channel:device:thunder"
	id, err := ParseID(in)
	if err != nil {
		t.Fatal(err)
	}
	if id.String() != in {
		t.Errorf("String() = %q, want %q", id.String(), in)
	}
	if id.Class() != "device" || id.Service() != "thunder" || id.Kind() != KindChannel {
		t.Errorf("unexpected parts: %s %s %s", id.Kind(), id.Class(), id.Service())
	}
}
