// package pls implements the built-in PLS playlist codec provider.
package pls

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/Ionic/audacious/internal/plugin"
)

// Provider reads and writes PLS playlists.
type Provider struct{}

var header = plugin.Header{
	Magic:      plugin.Magic,
	Version:    plugin.Version,
	Type:       plugin.Playlist,
	Name:       "pls",
	About:      "PLS playlist reader/writer",
	Priority:   3,
	Extensions: []string{"pls"},
	Mimes:      []string{"audio/x-scpls"},
}

// New creates the provider.
func New() *Provider { return &Provider{} }

func (p *Provider) Header() *plugin.Header { return &header }

func (p *Provider) Init() error { return nil }

func (p *Provider) Cleanup() {}

// Load parses a PLS document. Keys are matched case-insensitively and
// entries are ordered by their numeric suffix regardless of line order.
// PLS carries no playlist title, so the returned title is always empty.
func (p *Provider) Load(uri string, r io.Reader) (string, []plugin.Entry, error) {
	files := make(map[int]string)
	titles := make(map[int]string)
	lengths := make(map[int]int)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, ";") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:eq]))
		value := strings.TrimSpace(line[eq+1:])

		switch {
		case strings.HasPrefix(key, "file"):
			if n, err := strconv.Atoi(key[len("file"):]); err == nil {
				files[n] = value
			}
		case strings.HasPrefix(key, "title"):
			if n, err := strconv.Atoi(key[len("title"):]); err == nil {
				titles[n] = value
			}
		case strings.HasPrefix(key, "length"):
			if n, err := strconv.Atoi(key[len("length"):]); err == nil {
				if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
					lengths[n] = secs * 1000
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return "", nil, fmt.Errorf("reading pls: %w", err)
	}

	if len(files) == 0 {
		return "", nil, fmt.Errorf("no entries in %s", uri)
	}

	nums := make([]int, 0, len(files))
	for n := range files {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	entries := make([]plugin.Entry, 0, len(nums))
	for _, n := range nums {
		entries = append(entries, plugin.Entry{
			URI: files[n],
			Tuple: plugin.Tuple{
				Title:    titles[n],
				LengthMS: lengths[n],
			},
		})
	}
	return "", entries, nil
}

// Save writes a version 2 PLS document. The title parameter has no PLS
// representation and is dropped.
func (p *Provider) Save(uri string, w io.Writer, title string, entries []plugin.Entry) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("[playlist]\n"); err != nil {
		return err
	}
	for i, e := range entries {
		n := i + 1
		if _, err := fmt.Fprintf(bw, "File%d=%s\n", n, e.URI); err != nil {
			return err
		}
		if e.Tuple.Title != "" {
			if _, err := fmt.Fprintf(bw, "Title%d=%s\n", n, e.Tuple.Title); err != nil {
				return err
			}
		}
		secs := -1
		if e.Tuple.LengthMS > 0 {
			secs = (e.Tuple.LengthMS + 500) / 1000
		}
		if _, err := fmt.Fprintf(bw, "Length%d=%d\n", n, secs); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "NumberOfEntries=%d\nVersion=2\n", len(entries)); err != nil {
		return err
	}

	return bw.Flush()
}
