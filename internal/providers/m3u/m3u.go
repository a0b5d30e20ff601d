// package m3u implements the built-in M3U/M3U8 playlist codec provider.
package m3u

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Ionic/audacious/internal/plugin"
)

// Provider reads and writes extended M3U playlists.
type Provider struct{}

var header = plugin.Header{
	Magic:      plugin.Magic,
	Version:    plugin.Version,
	Type:       plugin.Playlist,
	Name:       "m3u",
	About:      "M3U playlist reader/writer",
	Priority:   3,
	Extensions: []string{"m3u", "m3u8"},
	Mimes:      []string{"audio/x-mpegurl", "application/vnd.apple.mpegurl"},
}

// New creates the provider.
func New() *Provider { return &Provider{} }

func (p *Provider) Header() *plugin.Header { return &header }

func (p *Provider) Init() error { return nil }

func (p *Provider) Cleanup() {}

// Load parses an extended M3U document. #EXTINF metadata applies to the
// next URI line; bare URI lines become entries without metadata. A
// #PLAYLIST directive sets the title.
func (p *Provider) Load(uri string, r io.Reader) (string, []plugin.Entry, error) {
	var title string
	var entries []plugin.Entry
	var pending plugin.Tuple
	hasPending := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			switch {
			case strings.HasPrefix(line, "#EXTINF:"):
				pending = parseExtinf(line[len("#EXTINF:"):])
				hasPending = true
			case strings.HasPrefix(line, "#PLAYLIST:"):
				title = strings.TrimSpace(line[len("#PLAYLIST:"):])
			}
			// #EXTM3U and unknown directives are skipped.
			continue
		}

		entry := plugin.Entry{URI: line}
		if hasPending {
			entry.Tuple = pending
			pending = plugin.Tuple{}
			hasPending = false
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return "", nil, fmt.Errorf("reading m3u: %w", err)
	}

	if len(entries) == 0 {
		return "", nil, fmt.Errorf("no entries in %s", uri)
	}
	return title, entries, nil
}

// parseExtinf handles "length,Artist - Title" with length in seconds,
// -1 when unknown.
func parseExtinf(s string) plugin.Tuple {
	var t plugin.Tuple

	length := s
	display := ""
	if comma := strings.IndexByte(s, ','); comma >= 0 {
		length = s[:comma]
		display = strings.TrimSpace(s[comma+1:])
	}

	if secs, err := strconv.ParseFloat(strings.TrimSpace(length), 64); err == nil && secs > 0 {
		t.LengthMS = int(secs * 1000)
	}

	if dash := strings.Index(display, " - "); dash >= 0 {
		t.Artist = display[:dash]
		t.Title = display[dash+3:]
	} else {
		t.Title = display
	}
	return t
}

// Save writes an extended M3U document.
func (p *Provider) Save(uri string, w io.Writer, title string, entries []plugin.Entry) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("#EXTM3U\n"); err != nil {
		return err
	}
	if title != "" {
		if _, err := fmt.Fprintf(bw, "#PLAYLIST:%s\n", title); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if e.Tuple.Title != "" || e.Tuple.LengthMS > 0 {
			secs := -1
			if e.Tuple.LengthMS > 0 {
				secs = (e.Tuple.LengthMS + 500) / 1000
			}
			display := e.Tuple.Title
			if e.Tuple.Artist != "" {
				display = e.Tuple.Artist + " - " + e.Tuple.Title
			}
			if _, err := fmt.Fprintf(bw, "#EXTINF:%d,%s\n", secs, display); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw, e.URI); err != nil {
			return err
		}
	}

	return bw.Flush()
}
