package pls

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Ionic/audacious/internal/plugin"
)

func TestLoadOrdersByNumericSuffix(t *testing.T) {
	doc := `[playlist]
File2=/music/second.wav
Title2=Second
File1=/music/first.wav
Title1=First
Length1=120
NumberOfEntries=2
Version=2
`
	p := New()
	title, entries, err := p.Load("radio.pls", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if title != "" {
		t.Errorf("title = %q, PLS carries no title", title)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].URI != "/music/first.wav" || entries[1].URI != "/music/second.wav" {
		t.Errorf("entries out of order: %+v", entries)
	}
	if entries[0].Tuple.Title != "First" || entries[0].Tuple.LengthMS != 120000 {
		t.Errorf("entry 1 tuple = %+v", entries[0].Tuple)
	}
}

func TestLoadCaseInsensitiveKeys(t *testing.T) {
	doc := "[playlist]\nFILE1=/a.wav\ntitle1=A\nLENGTH1=-1\n"
	p := New()
	_, entries, err := p.Load("radio.pls", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(entries) != 1 || entries[0].Tuple.Title != "A" {
		t.Errorf("entries = %+v", entries)
	}
	if entries[0].Tuple.LengthMS != 0 {
		t.Errorf("negative length must stay 0, got %d", entries[0].Tuple.LengthMS)
	}
}

func TestLoadNoEntriesFails(t *testing.T) {
	p := New()
	if _, _, err := p.Load("radio.pls", strings.NewReader("[playlist]\nVersion=2\n")); err == nil {
		t.Error("expected error for document without File entries")
	}
}

func TestRoundTrip(t *testing.T) {
	in := []plugin.Entry{
		{URI: "http://example.com/stream", Tuple: plugin.Tuple{Title: "Stream"}},
		{URI: "/music/song.wav", Tuple: plugin.Tuple{Title: "Song", LengthMS: 95000}},
	}

	p := New()
	var buf bytes.Buffer
	if err := p.Save("out.pls", &buf, "ignored", in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if !strings.Contains(buf.String(), "NumberOfEntries=2") {
		t.Errorf("saved document missing entry count:\n%s", buf.String())
	}

	_, out, err := p.Load("out.pls", &buf)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("entries = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].URI != in[i].URI || out[i].Tuple.Title != in[i].Tuple.Title {
			t.Errorf("entry %d = %+v, want %+v", i, out[i], in[i])
		}
	}
	if out[1].Tuple.LengthMS != 95000 {
		t.Errorf("entry 2 length = %d, want 95000", out[1].Tuple.LengthMS)
	}
}
