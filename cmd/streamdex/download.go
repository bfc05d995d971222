package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v6"
	"github.com/vbauerster/mpb/v6/decor"

	"github.com/streamdex/streamdex/internal/events"
	"github.com/streamdex/streamdex/internal/jobs"
)

var downloadCmd = &cobra.Command{
	Use:   "download [flags] <url>",
	Short: "Download a stream to the configured directory",
	Long: `Download a stream to the configured directory.

Direct files and HLS playlists are supported; --hls selects playlist
mode (segments are fetched in parallel and stitched together).

Examples:
  streamdex download --name "movie1" https://cdn.example.com/movie.mp4
  streamdex download --hls --name "show-s01e01" --type ts https://cdn.example.com/master.m3u8
  streamdex download --name clip --header "Referer: https://example.com" https://cdn.example.com/clip.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: runDownloadCmd,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().String("name", "", "Output file name (without extension)")
	downloadCmd.Flags().String("type", "", "File extension (default mp4)")
	downloadCmd.Flags().Bool("hls", false, "Treat the URL as an HLS playlist")
	downloadCmd.Flags().StringArray("header", nil, "Request header, \"Name: value\" (repeatable)")
}

func runDownloadCmd(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	fileType, _ := cmd.Flags().GetString("type")
	hls, _ := cmd.Flags().GetBool("hls")
	headerFlags, _ := cmd.Flags().GetStringArray("header")

	headers, err := parseHeaders(headerFlags)
	if err != nil {
		return err
	}

	kind := jobs.KindFile
	if hls {
		kind = jobs.KindHLS
		if fileType == "" {
			fileType = "ts"
		}
	}

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	// Subscribe before starting so early progress is not missed.
	progressCh := a.bus.Subscribe(events.EventDownloadProgressed, 64)

	id, err := a.manager.Start(jobs.Request{
		URL:      args[0],
		FileName: name,
		FileType: fileType,
		Headers:  headers,
		Kind:     kind,
	})
	if err != nil {
		return err
	}

	var bar *mpb.Bar
	var pc *mpb.Progress
	if !jsonOutput {
		pc = mpb.New(mpb.WithWidth(64))
		bar = pc.AddBar(0,
			mpb.PrependDecorators(decor.Name(fmt.Sprintf("job %d", id))),
			mpb.AppendDecorators(
				decor.CountersKibiByte("% .1f / % .1f"),
				decor.AverageSpeed(decor.UnitKB, " %.1f"),
			),
		)
		go func() {
			for ev := range progressCh {
				pe, ok := ev.(events.DownloadProgressed)
				if !ok || pe.JobID != id {
					continue
				}
				if pe.Total > 0 {
					bar.SetTotal(pe.Total, false)
				}
				bar.SetCurrent(pe.Bytes)
			}
		}()
	}

	job, err := a.manager.Wait(cmd.Context(), id)
	if err != nil {
		// Interrupted; stop the transfer before reporting.
		a.manager.Cancel(id)
		job, _ = a.manager.Get(id)
	}

	if bar != nil {
		total := job.Total
		if total <= 0 {
			total = job.Bytes
		}
		bar.SetTotal(total, true)
		pc.Wait()
	}

	if jsonOutput {
		printJSON(job)
	}

	switch job.State {
	case jobs.StateCompleted:
		if !jsonOutput {
			fmt.Printf("Downloaded %s (%d bytes)\n", job.FileName, job.Bytes)
		}
		return nil
	case jobs.StateCancelled:
		return fmt.Errorf("download cancelled")
	default:
		return fmt.Errorf("download failed: %s", job.Error)
	}
}

func parseHeaders(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(flags))
	for _, h := range flags {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q, want \"Name: value\"", h)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}
