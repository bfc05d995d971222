package jobs

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/afero"
)

// progressFunc receives transferred and total byte counts. total is 0
// when the source does not report a length.
type progressFunc func(bytes, total int64)

// copyChunkSize is the transfer granularity; progress is reported at
// most once per chunk.
const copyChunkSize = 64 * 1024

// downloadFile fetches url into path with a plain streaming GET.
// Cancellation surfaces as ctx.Err(); the partial file is left for the
// caller to clean up or keep.
func downloadFile(ctx context.Context, client *http.Client, fs afero.Fs, path, url string, headers map[string]string, progress progressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	out, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = out.Close() }()

	var written int64
	buf := make([]byte, copyChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write %s: %w", path, werr)
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read body: %w", rerr)
		}
	}

	if total > 0 && written != total {
		return fmt.Errorf("short transfer: %d of %d bytes", written, total)
	}
	return nil
}
