package preview

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeDecoder struct {
	w, h    int
	calls   atomic.Int32
	inside  atomic.Int32
	maxSeen atomic.Int32
	gate    chan struct{} // when set, Decode blocks until it is closed
	err     error
}

func (d *fakeDecoder) Decode(path string) (image.Image, error) {
	d.calls.Add(1)
	n := d.inside.Add(1)
	defer d.inside.Add(-1)
	for {
		m := d.maxSeen.Load()
		if n <= m || d.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if d.gate != nil {
		<-d.gate
	}
	time.Sleep(time.Millisecond)
	if d.err != nil {
		return nil, d.err
	}
	img := image.NewRGBA(image.Rect(0, 0, d.w, d.h))
	img.Set(0, 0, color.White)
	return img, nil
}

func waitResult(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for preview")
	}
	return Result{}
}

func waitIdle(t *testing.T, p *Pipeline) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for p.Active() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("workers still active: %d", p.Active())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSubmitGeneratesPNG(t *testing.T) {
	dir := t.TempDir()
	dec := &fakeDecoder{w: 600, h: 300}
	woke := make(chan struct{}, 1)
	p := New(dec, Options{Policy: Local, Wake: func() { woke <- struct{}{} }})

	src := filepath.Join(dir, "wide.jpg")
	loc, err := p.Locate(src)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	done := make(chan Result, 1)
	if err := p.Submit(Job{Source: src, Target: loc, Done: func(r Result) { done <- r }}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	res := waitResult(t, done)
	if res.Err != nil {
		t.Fatalf("result error: %v", res.Err)
	}
	if res.Size != image.Pt(256, 128) {
		t.Errorf("Size: expected 256x128, got %v", res.Size)
	}
	want := filepath.Join(dir, ".thumbnails", Hash(src)+".png")
	if res.Path != want {
		t.Errorf("Path: expected %s, got %s", want, res.Path)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("preview not written: %v", err)
	}
	<-woke
	waitIdle(t, p)
}

func TestSubmitExistingTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "done.png")
	f, _ := os.Create(target)
	png.Encode(f, image.NewGray(image.Rect(0, 0, 20, 10)))
	f.Close()

	dec := &fakeDecoder{w: 1, h: 1}
	p := New(dec, Options{Policy: Local})
	var got Result
	err := p.Submit(Job{Source: filepath.Join(dir, "a.jpg"), Target: Location{Path: target}, Done: func(r Result) { got = r }})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.Path != target || got.Size != image.Pt(20, 10) {
		t.Errorf("expected immediate result for %s 20x10, got %+v", target, got)
	}
	if dec.calls.Load() != 0 {
		t.Errorf("decoder called %d times for an existing preview", dec.calls.Load())
	}
}

func TestSubmitCoalescesTargets(t *testing.T) {
	dir := t.TempDir()
	dec := &fakeDecoder{w: 10, h: 10, gate: make(chan struct{})}
	p := New(dec, Options{Policy: Local})

	src := filepath.Join(dir, "a.jpg")
	loc, _ := p.Locate(src)
	var wg sync.WaitGroup
	wg.Add(2)
	for range 2 {
		p.Submit(Job{Source: src, Target: loc, Done: func(Result) { wg.Done() }})
	}
	if q := p.Queued(); q != 1 {
		t.Errorf("Queued: expected 1, got %d", q)
	}
	close(dec.gate)
	wg.Wait()
	if n := dec.calls.Load(); n != 1 {
		t.Errorf("decoder calls: expected 1, got %d", n)
	}
	waitIdle(t, p)
}

func TestDecoderIsSerialized(t *testing.T) {
	dir := t.TempDir()
	dec := &fakeDecoder{w: 300, h: 300}
	p := New(dec, Options{Policy: Memory, Workers: 4})

	var wg sync.WaitGroup
	for i := range 12 {
		src := filepath.Join(dir, string(rune('a'+i))+".jpg")
		loc, _ := p.Locate(src)
		wg.Add(1)
		p.Submit(Job{Source: src, Target: loc, Done: func(r Result) {
			if r.Image == nil {
				t.Errorf("memory preview for %s has no image", r.Source)
			}
			wg.Done()
		}})
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Decode(filepath.Join(dir, "direct.jpg")); err != nil {
				t.Errorf("Decode: %v", err)
			}
		}()
	}
	wg.Wait()
	if m := dec.maxSeen.Load(); m != 1 {
		t.Errorf("concurrent decodes: expected 1, got %d", m)
	}
	waitIdle(t, p)
}

func TestSubmitFailure(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")
	p := New(&fakeDecoder{err: boom}, Options{Policy: Memory})
	done := make(chan Result, 1)
	src := filepath.Join(dir, "bad.jpg")
	loc, _ := p.Locate(src)
	p.Submit(Job{Source: src, Target: loc, Done: func(r Result) { done <- r }})
	if res := waitResult(t, done); !errors.Is(res.Err, boom) {
		t.Errorf("expected decode error, got %v", res.Err)
	}
	waitIdle(t, p)
}

func TestRejectThumbnailSource(t *testing.T) {
	p := New(&fakeDecoder{}, Options{Policy: Memory})
	err := p.Submit(Job{Source: "/home/x/.cache/thumbnails/large/abc.png", Target: Location{Memory: true}})
	if !errors.Is(err, ErrThumbnailSource) {
		t.Errorf("expected ErrThumbnailSource, got %v", err)
	}
}

func TestScale(t *testing.T) {
	testCases := []struct {
		w, h int
		want image.Point
	}{
		{100, 50, image.Pt(100, 50)},
		{512, 256, image.Pt(256, 128)},
		{300, 900, image.Pt(85, 256)},
		{4000, 1, image.Pt(256, 1)},
	}
	for _, tc := range testCases {
		got := Scale(image.NewRGBA(image.Rect(0, 0, tc.w, tc.h)), 256).Bounds().Size()
		if got != tc.want {
			t.Errorf("Scale(%dx%d): expected %v, got %v", tc.w, tc.h, tc.want, got)
		}
	}
}
