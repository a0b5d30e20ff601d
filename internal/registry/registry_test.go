package registry

import (
	"errors"
	"testing"

	"github.com/Ionic/audacious/internal/plugin"
	tu "github.com/Ionic/audacious/internal/testing"
)

func playlistWith(h plugin.Header) *tu.FakePlaylist {
	return &tu.FakePlaylist{Base: tu.Base{Hdr: h}}
}

func TestAdmitValidation(t *testing.T) {
	tc := []struct {
		name   string
		header plugin.Header
		want   bool
	}{
		{
			name:   "valid header",
			header: tu.NewHeader(plugin.Playlist, "ok", 5),
			want:   true,
		},
		{
			name: "bad magic",
			header: plugin.Header{
				Magic: 0xDEADBEEF, Version: plugin.Version, Type: plugin.Playlist, Name: "bad-magic",
			},
			want: false,
		},
		{
			name: "version below window",
			header: plugin.Header{
				Magic: plugin.Magic, Version: plugin.VersionMin - 1, Type: plugin.Playlist, Name: "too-old",
			},
			want: false,
		},
		{
			name: "version above window",
			header: plugin.Header{
				Magic: plugin.Magic, Version: plugin.Version + 1, Type: plugin.Playlist, Name: "too-new",
			},
			want: false,
		},
		{
			name: "version at lower bound",
			header: plugin.Header{
				Magic: plugin.Magic, Version: plugin.VersionMin, Type: plugin.Playlist, Name: "oldest-ok",
			},
			want: true,
		},
		{
			name: "version at upper bound",
			header: plugin.Header{
				Magic: plugin.Magic, Version: plugin.Version, Type: plugin.Playlist, Name: "newest-ok",
			},
			want: true,
		},
		{
			name: "unknown capability type",
			header: plugin.Header{
				Magic: plugin.Magic, Version: plugin.Version, Type: plugin.Type(99), Name: "weird",
			},
			want: false,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			r := New(nil)
			got := r.Admit(playlistWith(tt.header))
			if got != tt.want {
				t.Errorf("Admit() = %v, want %v", got, tt.want)
			}
			if tt.want && len(r.ProvidersOf(tt.header.Type)) != 1 {
				t.Error("admitted provider missing from ProvidersOf")
			}
			if !tt.want && len(r.ProvidersOf(tt.header.Type)) != 0 {
				t.Error("rejected provider visible in ProvidersOf")
			}
		})
	}
}

func TestAdmitDeduplicatesByIdentity(t *testing.T) {
	r := New(nil)
	p := playlistWith(tu.NewHeader(plugin.Playlist, "dup", 5))

	if !r.Admit(p) {
		t.Fatal("first admission failed")
	}
	if r.Admit(p) {
		t.Error("second admission of same instance succeeded")
	}
	if got := len(r.ProvidersOf(plugin.Playlist)); got != 1 {
		t.Errorf("expected 1 descriptor, got %d", got)
	}
}

func TestProvidersOfOrdering(t *testing.T) {
	r := New(nil)
	// Admit out of priority order; equal priorities must keep admission order.
	for _, tc := range []struct {
		name     string
		priority int
	}{
		{"p5-first", 5},
		{"p2", 2},
		{"p5-second", 5},
		{"p0", 0},
	} {
		if !r.Admit(playlistWith(tu.NewHeader(plugin.Playlist, tc.name, tc.priority))) {
			t.Fatalf("admission of %s failed", tc.name)
		}
	}

	want := []string{"p0", "p2", "p5-first", "p5-second"}
	got := r.ProvidersOf(plugin.Playlist)
	if len(got) != len(want) {
		t.Fatalf("expected %d descriptors, got %d", len(want), len(got))
	}
	for i, d := range got {
		if d.Name() != want[i] {
			t.Errorf("position %d: got %s, want %s", i, d.Name(), want[i])
		}
	}
}

func TestSetEnabledHidesFromDispatchOnly(t *testing.T) {
	r := New(nil)
	p := playlistWith(tu.NewHeader(plugin.Playlist, "toggled", 5))
	r.Admit(p)

	d := r.Find(plugin.Playlist, "toggled")
	if d == nil {
		t.Fatal("Find returned nil for admitted provider")
	}

	r.SetEnabled(d, false)
	if len(r.ProvidersOf(plugin.Playlist)) != 0 {
		t.Error("disabled provider still visible in ProvidersOf")
	}
	if len(r.AllOf(plugin.Playlist)) != 1 {
		t.Error("disabled provider missing from AllOf")
	}

	r.SetEnabled(d, true)
	if len(r.ProvidersOf(plugin.Playlist)) != 1 {
		t.Error("re-enabled provider not visible in ProvidersOf")
	}
}

func TestInitAllDisablesFailedProviders(t *testing.T) {
	r := New(nil)
	good := playlistWith(tu.NewHeader(plugin.Playlist, "good", 1))
	bad := playlistWith(tu.NewHeader(plugin.Playlist, "bad", 0))
	bad.InitErr = errors.New("no backend")

	r.Admit(good)
	r.Admit(bad)
	r.InitAll()

	if good.InitCalls != 1 || bad.InitCalls != 1 {
		t.Errorf("Init call counts: good=%d bad=%d, want 1 each", good.InitCalls, bad.InitCalls)
	}

	list := r.ProvidersOf(plugin.Playlist)
	if len(list) != 1 || list[0].Name() != "good" {
		t.Errorf("expected only the good provider after InitAll, got %d entries", len(list))
	}

	r.CleanupAll()
	if good.CleanupCalls != 1 || bad.CleanupCalls != 1 {
		t.Error("CleanupAll must reach every admitted provider")
	}
}
