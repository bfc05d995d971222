package jobs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// downloadHLS fetches a segmented HLS stream into a single output
// file. Segments are pulled with bounded parallelism into a parts
// directory next to the output, then concatenated in playlist order.
// A master playlist is resolved to its first variant.
func downloadHLS(ctx context.Context, client *http.Client, fs afero.Fs, outPath, playlistURL string, headers map[string]string, workers int, progress progressFunc) error {
	if workers < 1 {
		workers = 4
	}

	segments, err := fetchSegmentList(ctx, client, playlistURL, headers)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("playlist %s: %w", playlistURL, ErrNoSegments)
	}

	partsDir := outPath + ".parts"
	if err := fs.MkdirAll(partsDir, 0o755); err != nil {
		return fmt.Errorf("create parts dir: %w", err)
	}
	defer func() { _ = fs.RemoveAll(partsDir) }()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, segURL := range segments {
		g.Go(func() error {
			partPath := path.Join(partsDir, "seg_"+strconv.Itoa(i))
			if err := downloadFile(gctx, client, fs, partPath, segURL, headers, nil); err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	out, err := fs.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer func() { _ = out.Close() }()

	var written int64
	for i := range segments {
		if err := ctx.Err(); err != nil {
			return err
		}
		partPath := path.Join(partsDir, "seg_"+strconv.Itoa(i))
		part, err := fs.Open(partPath)
		if err != nil {
			return fmt.Errorf("open segment %d: %w", i, err)
		}
		n, err := io.Copy(out, part)
		_ = part.Close()
		if err != nil {
			return fmt.Errorf("append segment %d: %w", i, err)
		}
		written += n
		if progress != nil {
			progress(written, 0)
		}
	}
	return nil
}

// fetchSegmentList downloads and parses a playlist, following one
// level of master playlist indirection to the first variant.
func fetchSegmentList(ctx context.Context, client *http.Client, playlistURL string, headers map[string]string) ([]string, error) {
	master, uris, err := fetchPlaylist(ctx, client, playlistURL, headers)
	if err != nil {
		return nil, err
	}
	if !master {
		return uris, nil
	}
	if len(uris) == 0 {
		return nil, fmt.Errorf("master playlist %s: %w", playlistURL, ErrNoSegments)
	}
	master, uris, err = fetchPlaylist(ctx, client, uris[0], headers)
	if err != nil {
		return nil, err
	}
	if master {
		return nil, fmt.Errorf("playlist %s: nested master playlist", playlistURL)
	}
	return uris, nil
}

// fetchPlaylist retrieves one playlist and returns its entry URIs
// resolved against the playlist URL. master reports whether the
// entries are variant playlists rather than media segments.
func fetchPlaylist(ctx context.Context, client *http.Client, playlistURL string, headers map[string]string) (master bool, uris []string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, playlistURL, nil)
	if err != nil {
		return false, nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, nil, ctx.Err()
		}
		return false, nil, fmt.Errorf("fetch playlist %s: %w", playlistURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, nil, fmt.Errorf("fetch playlist %s: unexpected status %d", playlistURL, resp.StatusCode)
	}

	base, err := url.Parse(playlistURL)
	if err != nil {
		return false, nil, fmt.Errorf("parse playlist url: %w", err)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF"):
			master = true
		case strings.HasPrefix(line, "#"):
			continue
		default:
			ref, err := url.Parse(line)
			if err != nil {
				continue
			}
			uris = append(uris, base.ResolveReference(ref).String())
		}
	}
	if err := scanner.Err(); err != nil {
		return false, nil, fmt.Errorf("read playlist: %w", err)
	}
	return master, uris, nil
}
