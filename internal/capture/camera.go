package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var frameExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp"}

// checkImage makes sure data decodes as one of the supported image formats.
func checkImage(data []byte) error {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	return nil
}

// wait pauses for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// DirCamera replays image files from a directory in name order. It stands in for a
// webcam on kiosks that drop snapshots into a folder, and in tests.
type DirCamera struct {
	Dir      string
	Loop     bool
	Interval time.Duration
}

func (c DirCamera) Open(ctx context.Context) (FrameSource, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(frameExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			files = append(files, filepath.Join(c.Dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no frames in %s", ErrDeviceUnavailable, c.Dir)
	}
	slices.Sort(files)
	return &dirSource{files: files, loop: c.Loop, interval: c.Interval}, nil
}

type dirSource struct {
	files    []string
	loop     bool
	interval time.Duration
	next     int
	seq      int
}

func (d *dirSource) Read(ctx context.Context) (Frame, error) {
	if d.next >= len(d.files) {
		if !d.loop {
			return Frame{}, ErrEndOfStream
		}
		d.next = 0
	}
	if d.seq > 0 {
		if err := wait(ctx, d.interval); err != nil {
			return Frame{}, err
		}
	}
	path := d.files[d.next]
	d.next++

	data, err := os.ReadFile(path)
	if err != nil {
		return Frame{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := checkImage(data); err != nil {
		return Frame{}, fmt.Errorf("%s: %w", path, err)
	}
	d.seq++
	return Frame{Seq: d.seq, Data: data, CapturedAt: time.Now()}, nil
}

func (d *dirSource) Close() error {
	return nil
}

// SnapshotCamera polls the JPEG snapshot URL most IP cameras expose.
type SnapshotCamera struct {
	URL      string
	Interval time.Duration
	Client   *http.Client
}

func (c SnapshotCamera) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c SnapshotCamera) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("camera error (status %d)", resp.StatusCode)
	}
	if err := checkImage(body); err != nil {
		return nil, err
	}
	return body, nil
}

// Open probes the snapshot URL once so an unreachable camera fails before the session starts.
func (c SnapshotCamera) Open(ctx context.Context) (FrameSource, error) {
	c.Client = c.httpClient()
	if _, err := c.fetch(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDeviceUnavailable, c.URL, err)
	}
	return &snapshotSource{cam: c}, nil
}

type snapshotSource struct {
	cam SnapshotCamera
	seq int
}

func (s *snapshotSource) Read(ctx context.Context) (Frame, error) {
	if s.seq > 0 {
		if err := wait(ctx, s.cam.Interval); err != nil {
			return Frame{}, err
		}
	}
	data, err := s.cam.fetch(ctx)
	if err != nil {
		return Frame{}, err
	}
	s.seq++
	return Frame{Seq: s.seq, Data: data, CapturedAt: time.Now()}, nil
}

func (s *snapshotSource) Close() error {
	s.cam.httpClient().CloseIdleConnections()
	return nil
}

// NewCamera picks a camera for source: an http(s) URL polls snapshots, anything else
// is treated as a frame directory.
func NewCamera(source string, loop bool, interval time.Duration) Camera {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return SnapshotCamera{URL: source, Interval: interval}
	}
	return DirCamera{Dir: source, Loop: loop, Interval: interval}
}
