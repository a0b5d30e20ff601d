package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Ionic/audacious/internal/formatter"
	"github.com/Ionic/audacious/internal/shared"
	"golang.org/x/time/rate"
)

// BulkConvertOpts contains configuration for bulk playlist conversions.
type BulkConvertOpts struct {
	TargetExt  string  // Output playlist extension: m3u, m3u8, pls (default: m3u)
	OutputDir  string  // Base output directory (default: playlist_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5)
	RateLimit  float64 // Conversions started per second (default: 5)
}

// BulkConvertJob is one unit of work for the conversion pool.
type BulkConvertJob struct {
	SourceURI string
	DestURI   string
}

// PlaylistConvertResult records the outcome for one source playlist.
type PlaylistConvertResult struct {
	SourceURI string `json:"source_uri"`
	DestURI   string `json:"dest_uri"`
	Title     string `json:"title,omitempty"`
	Entries   int    `json:"entries"`
	Success   bool   `json:"success"`
	Error     error  `json:"-"`
	ErrorText string `json:"error,omitempty"`
}

// BulkConvertResult summarizes a bulk conversion run.
type BulkConvertResult struct {
	TotalPlaylists  int                     `json:"total_playlists"`
	Successful      int                     `json:"successful"`
	Failed          int                     `json:"failed"`
	OutputDirectory string                  `json:"output_directory"`
	ManifestPath    string                  `json:"manifest_path,omitempty"`
	Results         []PlaylistConvertResult `json:"results"`
}

// BulkConvert converts multiple playlists concurrently with rate limiting
// and progress tracking.
//
// This method implements a worker pool pattern: a rate-limited feeder fills
// the jobs channel, workers run conversions, and results are folded into a
// summary plus a manifest file in the output directory. Partial failures do
// not abort the run.
func (e *ConvertEngine) BulkConvert(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	uris []string,
	opts BulkConvertOpts,
) (*BulkConvertResult, error) {
	if e.io == nil {
		return nil, fmt.Errorf("%w: playlist coordinator not initialized", shared.ErrInvalidInput)
	}

	if opts.TargetExt == "" {
		opts.TargetExt = "m3u"
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("playlist_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkConvertResult{
		TotalPlaylists:  len(uris),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistConvertResult, 0, len(uris)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan BulkConvertJob, len(uris))
	results := make(chan PlaylistConvertResult, len(uris))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.convertWorker(ctx, &wg, jobs, results)
	}

	go func() {
		for i, uri := range uris {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				close(jobs)
				return
			}

			e.sendProgress(prog, convertingUpdate(i+1, len(uris), uri))
			jobs <- BulkConvertJob{
				SourceURI: uri,
				DestURI:   destURIFor(uri, opts),
			}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.Successful++
			e.sendProgress(prog, convertCompletedUpdate(completed, len(uris), res.SourceURI, res.DestURI))
		} else {
			result.Failed++
			e.sendProgress(prog, convertFailedUpdate(completed, len(uris), res.SourceURI, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "convert_manifest.json")
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("conversion completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// convertWorker is a worker goroutine that converts playlists from the jobs channel.
func (e *ConvertEngine) convertWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan BulkConvertJob,
	results chan<- PlaylistConvertResult,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := PlaylistConvertResult{
			SourceURI: job.SourceURI,
			DestURI:   job.DestURI,
		}

		converted, err := e.Convert(ctx, nil, job.SourceURI, job.DestURI)
		if err != nil {
			res.Error = err
			res.ErrorText = err.Error()
		} else {
			res.Title = converted.Title
			res.Entries = len(converted.Entries)
			res.Success = true
		}
		results <- res
	}
}

// destURIFor places the converted playlist in the output directory with the
// target extension.
func destURIFor(uri string, opts BulkConvertOpts) string {
	name := titleFromURI(uri)
	if name == "" {
		name = shared.GenerateID()
	}
	return filepath.Join(opts.OutputDir, name+"."+opts.TargetExt)
}
