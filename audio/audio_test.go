package audio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/ppsalign/internal/audiotest"
)

// mockDecoder is a test decoder implementation
type mockDecoder struct {
	name string
	data []int32
}

func (d *mockDecoder) Decode(r io.ReadSeeker) (Source, error) {
	return &closingSource{MemSource: audiotest.NewMemSource(48000, 2, d.data), r: r}, nil
}

// closingSource closes the decoded reader like the real codecs do.
type closingSource struct {
	*audiotest.MemSource
	r io.ReadSeeker
}

func (s *closingSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// failingDecoder always returns an error
type failingDecoder struct{}

func (d *failingDecoder) Decode(r io.ReadSeeker) (Source, error) {
	return nil, errors.New("decode failed")
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "wav"}

	registry.Register("wav", decoder)

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed to retrieve registered decoder")
	}

	if got != decoder {
		t.Error("Registry.Get() returned different decoder instance")
	}
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "wav"}
	registry.Register("WAV", decoder)

	if got, ok := registry.Get("wav"); !ok || got != decoder {
		t.Error("Registry.Get(\"wav\") did not find decoder registered as WAV")
	}
}

func TestRegistry_MultipleFormats(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	wavDecoder := &mockDecoder{name: "wav"}
	aiffDecoder := &mockDecoder{name: "aiff"}

	registry.Register("wav", wavDecoder)
	registry.Register("aiff", aiffDecoder)

	tests := []struct {
		format string
		want   Decoder
		wantOK bool
	}{
		{"wav", wavDecoder, true},
		{"aiff", aiffDecoder, true},
		{"mp3", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, ok := registry.Get(tt.format)
			if ok != tt.wantOK {
				t.Errorf("Registry.Get(%q) ok = %v, want %v", tt.format, ok, tt.wantOK)
			}
			if tt.wantOK && got != tt.want {
				t.Errorf("Registry.Get(%q) returned wrong decoder", tt.format)
			}
		})
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "test"}

	done := make(chan bool)
	for range 10 {
		go func() {
			registry.Register("format", decoder)
			done <- true
		}()
	}
	for range 10 {
		go func() {
			_, _ = registry.Get("format")
			done <- true
		}()
	}
	for range 20 {
		<-done
	}

	got, ok := registry.Get("format")
	if !ok || got != decoder {
		t.Error("Registry returned wrong decoder after concurrent operations")
	}
}

func TestRegistry_Open(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "100.wav")
	if err := os.WriteFile(path, []byte("stub"), 0o600); err != nil {
		t.Fatal(err)
	}

	registry := NewRegistry()
	registry.Register("wav", &mockDecoder{data: []int32{1, 2, 3, 4}})

	src, err := registry.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	if src.Len() != 4 {
		t.Errorf("Len() = %d, want 4", src.Len())
	}
	if got := Frames(src, 0); got != 2 {
		t.Errorf("Frames(src, 0) = %d, want 2", got)
	}
	if got := Frames(src, 4); got != 1 {
		t.Errorf("Frames(src, 4) = %d, want 1", got)
	}
}

func TestRegistry_OpenErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "100.wav")
	if err := os.WriteFile(path, []byte("stub"), 0o600); err != nil {
		t.Fatal(err)
	}

	registry := NewRegistry()
	if _, err := registry.Open(filepath.Join(dir, "100.flac")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Open(flac) error = %v, want ErrUnknownFormat", err)
	}

	registry.Register("wav", &mockDecoder{})
	if _, err := registry.Open(filepath.Join(dir, "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) error = %v, want os.ErrNotExist", err)
	}

	registry.Register("wav", &failingDecoder{})
	if _, err := registry.Open(path); err == nil {
		t.Error("Open() error = nil, want decode failure")
	}
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	if registry == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if registry.codecs == nil {
		t.Error("NewRegistry() did not initialize codecs map")
	}
	if registry.mtx == nil {
		t.Error("NewRegistry() did not initialize mutex")
	}
}

// BenchmarkRegistry_Get benchmarks retrieving decoders
func BenchmarkRegistry_Get(b *testing.B) {
	registry := NewRegistry()
	registry.Register("wav", &mockDecoder{})

	b.ReportAllocs()

	for b.Loop() {
		_, _ = registry.Get("wav")
	}
}
