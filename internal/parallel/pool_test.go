package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewWorkers(t *testing.T) {
	tests := []struct {
		workers int
		want    int
	}{
		{4, 4},
		{1, 1},
		{0, runtime.GOMAXPROCS(0)},
		{-3, runtime.GOMAXPROCS(0)},
	}
	for _, tt := range tests {
		p := New(tt.workers)
		if got := p.Workers(); got != tt.want {
			t.Errorf("New(%d).Workers() = %d, want %d", tt.workers, got, tt.want)
		}
		p.Close()
	}
}

func TestBandsCoverRows(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		height  int
		bands   int
	}{
		{"short target runs inline", 4, 10, 1},
		{"one band per worker", 4, 416, 4},
		{"limited by band height", 8, 40, 3},
		{"uneven split", 3, 100, 3},
		{"single worker", 1, 416, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.workers)
			defer p.Close()

			rows := make([]int32, tt.height)
			var mu sync.Mutex
			seen := map[int]bool{}
			p.Bands(tt.height, func(band, y0, y1 int) {
				mu.Lock()
				seen[band] = true
				mu.Unlock()
				for y := y0; y < y1; y++ {
					atomic.AddInt32(&rows[y], 1)
				}
			})
			for y, n := range rows {
				if n != 1 {
					t.Fatalf("row %d visited %d times", y, n)
				}
			}
			if len(seen) != tt.bands {
				t.Errorf("bands = %d, want %d", len(seen), tt.bands)
			}
		})
	}
}

func TestBandsEmpty(t *testing.T) {
	p := New(2)
	defer p.Close()
	called := false
	p.Bands(0, func(int, int, int) { called = true })
	if called {
		t.Error("Bands(0) called fn")
	}
}

func TestBandsAfterClose(t *testing.T) {
	p := New(4)
	p.Close()
	p.Close()

	var calls int
	p.Bands(400, func(band, y0, y1 int) {
		calls++
		if band != 0 || y0 != 0 || y1 != 400 {
			t.Errorf("band %d = [%d, %d), want 0 = [0, 400)", band, y0, y1)
		}
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBandsConcurrentCallers(t *testing.T) {
	p := New(4)
	defer p.Close()

	var total atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Bands(256, func(_, y0, y1 int) {
				total.Add(int64(y1 - y0))
			})
		}()
	}
	wg.Wait()
	if got := total.Load(); got != 8*256 {
		t.Errorf("rows = %d, want %d", got, 8*256)
	}
}

func BenchmarkBands(b *testing.B) {
	p := New(0)
	defer p.Close()
	buf := make([]float32, 512*416)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Bands(416, func(_, y0, y1 int) {
			for j := y0 * 512; j < y1*512; j++ {
				buf[j] += 1
			}
		})
	}
}
