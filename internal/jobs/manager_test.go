package jobs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	m := NewManager(fs, nil, nil, Config{Dir: "/downloads", HLSWorkers: 2}, testLogger())
	return m, fs
}

func TestManager_Start_FileCompletes(t *testing.T) {
	body := "0123456789abcdef"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	m, fs := newTestManager(t)

	id, err := m.Start(Request{URL: srv.URL, FileName: "movie1", FileType: "mp4", Kind: KindFile})
	require.NoError(t, err)
	assert.Less(t, id, int64(1000))

	job, err := m.Wait(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, job.State)
	assert.Equal(t, int64(len(body)), job.Bytes)
	assert.Equal(t, int64(len(body)), job.Total)

	got, err := afero.ReadFile(fs, "/downloads/movie1.mp4")
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestManager_Start_PassesHeaders(t *testing.T) {
	var gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	m, _ := newTestManager(t)

	id, err := m.Start(Request{
		URL:      srv.URL,
		FileName: "clip",
		FileType: "mp4",
		Headers:  map[string]string{"Referer": "https://example.com/watch"},
	})
	require.NoError(t, err)

	_, err = m.Wait(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/watch", gotReferer)
}

func TestManager_Start_EmptyURL(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Start(Request{FileName: "x"})
	assert.ErrorIs(t, err, ErrEmptyURL)
}

func TestManager_Cancel_RemovesPartialFile(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000000")
		_, _ = w.Write(make([]byte, 1024))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	m, fs := newTestManager(t)

	id, err := m.Start(Request{URL: srv.URL, FileName: "movie1", FileType: "mp4"})
	require.NoError(t, err)

	// Wait until some bytes landed so a partial file exists.
	require.Eventually(t, func() bool {
		j, err := m.Get(id)
		return err == nil && j.Bytes > 0
	}, 5*time.Second, 10*time.Millisecond)

	m.Cancel(id)

	job, err := m.Wait(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, job.State)

	// No file named movie1.* remains.
	infos, err := afero.ReadDir(fs, "/downloads")
	require.NoError(t, err)
	for _, info := range infos {
		assert.NotContains(t, info.Name(), "movie1")
	}
}

func TestManager_Cancel_TerminalIsNoOp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("done"))
	}))
	defer srv.Close()

	m, fs := newTestManager(t)

	id, err := m.Start(Request{URL: srv.URL, FileName: "movie1", FileType: "mp4"})
	require.NoError(t, err)

	job, err := m.Wait(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, StateCompleted, job.State)

	// Cancelling a completed job neither errors nor deletes the file.
	m.Cancel(id)
	m.Cancel(id)

	job, err = m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, job.State)

	exists, err := afero.Exists(fs, "/downloads/movie1.mp4")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestManager_Cancel_UnknownIsNoOp(t *testing.T) {
	m, _ := newTestManager(t)
	m.Cancel(42)
	m.Cancel(4200)
}

func TestManager_Failed_KeepsPartialFile(t *testing.T) {
	// Declared length exceeds the body, so the client sees a short
	// transfer after some bytes were written.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		_, _ = w.Write(make([]byte, 1024))
	}))
	defer srv.Close()

	m, fs := newTestManager(t)

	id, err := m.Start(Request{URL: srv.URL, FileName: "broken", FileType: "mp4"})
	require.NoError(t, err)

	job, err := m.Wait(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, job.State)
	assert.NotEmpty(t, job.Error)

	// The partial file is left in place for inspection.
	exists, err := afero.Exists(fs, "/downloads/broken.mp4")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestManager_Delete_MissingFile(t *testing.T) {
	m, _ := newTestManager(t)
	assert.NoError(t, m.Delete("never-downloaded"))
}

func TestManager_Delete_StripsExtension(t *testing.T) {
	m, fs := newTestManager(t)
	require.NoError(t, fs.MkdirAll("/downloads", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/downloads/movie1.mp4", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/downloads/other.mp4", []byte("y"), 0o644))

	require.NoError(t, m.Delete("movie1.mkv"))

	exists, _ := afero.Exists(fs, "/downloads/movie1.mp4")
	assert.False(t, exists)
	exists, _ = afero.Exists(fs, "/downloads/other.mp4")
	assert.True(t, exists)
}

func TestManager_HLS_Completes(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	segments := []string{"seg-a", "seg-b", "seg-c"}
	mux.HandleFunc("/stream.m3u8", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "#EXTM3U")
		for i := range segments {
			fmt.Fprintln(w, "#EXTINF:4.0,")
			fmt.Fprintf(w, "/seg%d.ts\n", i)
		}
		fmt.Fprintln(w, "#EXT-X-ENDLIST")
	})
	for i, content := range segments {
		mux.HandleFunc(fmt.Sprintf("/seg%d.ts", i), func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(content))
		})
	}

	m, fs := newTestManager(t)

	id, err := m.Start(Request{URL: srv.URL + "/stream.m3u8", FileName: "show", FileType: "ts", Kind: KindHLS})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, id, int64(1000))

	job, err := m.Wait(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, job.State)

	got, err := afero.ReadFile(fs, "/downloads/show.ts")
	require.NoError(t, err)
	assert.Equal(t, "seg-aseg-bseg-c", string(got))

	// The parts directory is cleaned up after concatenation.
	exists, _ := afero.DirExists(fs, "/downloads/show.ts.parts")
	assert.False(t, exists)
}

func TestManager_HLS_MasterPlaylist(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/master.m3u8", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "#EXTM3U")
		fmt.Fprintln(w, "#EXT-X-STREAM-INF:BANDWIDTH=800000,RESOLUTION=1280x720")
		fmt.Fprintln(w, "/variant.m3u8")
	})
	mux.HandleFunc("/variant.m3u8", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "#EXTM3U")
		fmt.Fprintln(w, "#EXTINF:4.0,")
		fmt.Fprintln(w, "/only.ts")
		fmt.Fprintln(w, "#EXT-X-ENDLIST")
	})
	mux.HandleFunc("/only.ts", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	})

	m, fs := newTestManager(t)

	id, err := m.Start(Request{URL: srv.URL + "/master.m3u8", FileName: "variant", FileType: "ts", Kind: KindHLS})
	require.NoError(t, err)

	job, err := m.Wait(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, job.State)

	got, err := afero.ReadFile(fs, "/downloads/variant.ts")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestManager_HLS_EmptyPlaylistFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "#EXTM3U")
		fmt.Fprintln(w, "#EXT-X-ENDLIST")
	}))
	defer srv.Close()

	m, _ := newTestManager(t)

	id, err := m.Start(Request{URL: srv.URL, FileName: "empty", FileType: "ts", Kind: KindHLS})
	require.NoError(t, err)

	job, err := m.Wait(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, job.State)
	assert.Contains(t, job.Error, "no segments")
}

func TestManager_List_OrderedByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	m, _ := newTestManager(t)

	id1, err := m.Start(Request{URL: srv.URL, FileName: "a", FileType: "mp4"})
	require.NoError(t, err)
	id2, err := m.Start(Request{URL: srv.URL, FileName: "b", FileType: "mp4"})
	require.NoError(t, err)

	jobs := m.List()
	require.Len(t, jobs, 2)
	assert.Equal(t, id1, jobs[0].ID)
	assert.Equal(t, id2, jobs[1].ID)
}

func TestManager_Remove(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	m, _ := newTestManager(t)

	id, err := m.Start(Request{URL: srv.URL, FileName: "a", FileType: "mp4"})
	require.NoError(t, err)

	_, err = m.Wait(context.Background(), id)
	require.NoError(t, err)

	require.NoError(t, m.Remove(id))
	_, err = m.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, m.Remove(id), ErrNotFound)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "movie1", sanitizeFileName("movie1"))
	assert.Equal(t, "passwd", sanitizeFileName("../../etc/passwd"))
	assert.Equal(t, "a movie_ 2024_", sanitizeFileName("a movie: 2024?"))
	assert.Equal(t, "download", sanitizeFileName(""))
}
