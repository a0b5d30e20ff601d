package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadSource Phase = iota
	LoadDest
	Compare
	WriteDest
	StoreLibrary
	ConvertPlaylist
)

func (p Phase) String() string {
	switch p {
	case LoadSource:
		return "load_source"
	case LoadDest:
		return "load_dest"
	case Compare:
		return "compare"
	case WriteDest:
		return "write_dest"
	case StoreLibrary:
		return "store_library"
	case ConvertPlaylist:
		return "convert_playlist"
	default:
		return ""
	}
}

func loadSourceUpdate(step, total int, uri string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loading playlist %s...", uri),
	}
}

func loadedPlaylistUpdate(step, total int, title string, entries int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loaded playlist: %s (%d entries)", title, entries),
	}
}

func loadDestUpdate(step, total int, uri string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadDest,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loading playlist %s...", uri),
	}
}

func compareUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Compare,
		Step:    step,
		Total:   total,
		Message: "Comparing entries...",
	}
}

func writeDestUpdate(step, total int, uri string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteDest,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Writing playlist %s...", uri),
	}
}

func storeLibraryUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StoreLibrary,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Recording %s in the library...", title),
	}
}

func convertingUpdate(step, total int, uri string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ConvertPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Converting: %s...", step, total, uri),
	}
}

func convertCompletedUpdate(step, total int, uri, output string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ConvertPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s -> %s", step, total, uri, output),
	}
}

func convertFailedUpdate(step, total int, uri string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ConvertPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, uri, err),
	}
}
