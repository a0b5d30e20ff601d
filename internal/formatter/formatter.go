// package formatter renders playlist listings to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/Ionic/audacious/internal/models"
	"github.com/Ionic/audacious/internal/shared"
)

// Listing is a playlist ready for rendering: its display title, the URI it
// came from, and its entries in playlist order.
type Listing struct {
	Title   string         `json:"title"`
	URI     string         `json:"uri"`
	Entries []models.Entry `json:"entries"`
}

// ToCSV converts a listing to CSV format with columns: Position, Title, Artist, Album, Length, URI
func ToCSV(listing *Listing) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist", "Album", "Length", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, entry := range listing.Entries {
		record := []string{
			strconv.Itoa(i + 1),
			entry.Title,
			entry.Artist,
			entry.Album,
			shared.FormatDuration(entry.LengthMS),
			entry.URI,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown converts a listing to Markdown format
func ToMarkdown(listing *Listing) ([]byte, error) {
	var buf bytes.Buffer

	title := listing.Title
	if title == "" {
		title = "Untitled playlist"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	if listing.URI != "" {
		buf.WriteString(fmt.Sprintf("**Source**: %s\n", listing.URI))
	}
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(listing.Entries)))

	buf.WriteString("## Entries\n\n")
	for i, entry := range listing.Entries {
		label := entryLabel(entry)
		albumPart := ""
		if entry.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", entry.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s [%s]\n", i+1, label, albumPart, shared.FormatDuration(entry.LengthMS)))
	}

	return buf.Bytes(), nil
}

// ToText converts a listing to plain text format
func ToText(listing *Listing) ([]byte, error) {
	var buf bytes.Buffer

	title := listing.Title
	if title == "" {
		title = "Untitled playlist"
	}
	buf.WriteString(fmt.Sprintf("Playlist: %s\n", title))
	buf.WriteString(fmt.Sprintf("Entries: %d\n\n", len(listing.Entries)))

	for i, entry := range listing.Entries {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, entryLabel(entry)))
	}

	return buf.Bytes(), nil
}

// entryLabel renders "Artist - Title", degrading to whichever parts exist
// and falling back to the URI for untagged entries.
func entryLabel(entry models.Entry) string {
	switch {
	case entry.Artist != "" && entry.Title != "":
		return fmt.Sprintf("%s - %s", entry.Artist, entry.Title)
	case entry.Title != "":
		return entry.Title
	default:
		return entry.URI
	}
}

// ToJSON generates a JSON representation of the listing.
func ToJSON(listing *Listing) ([]byte, error) {
	return shared.MarshalJSON(listing, true)
}

// Render dispatches on format name: "csv", "markdown", "json", or "text"
// (the default).
func Render(listing *Listing, format string) ([]byte, error) {
	switch format {
	case "csv":
		return ToCSV(listing)
	case "markdown", "md":
		return ToMarkdown(listing)
	case "json":
		return ToJSON(listing)
	case "text", "txt", "":
		return ToText(listing)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteListing renders a listing and writes it to path.
func WriteListing(listing *Listing, format, path string) (string, error) {
	data, err := Render(listing, format)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// WriteManifest serializes a bulk conversion summary next to its outputs.
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to generate manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
