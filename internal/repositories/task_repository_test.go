package repositories

import (
	"reflect"
	"testing"
)

func TestNormalizePhotosJSONArray(t *testing.T) {
	got := normalizePhotos([]byte(`["/a.jpg","/b.jpg"]`))
	want := []string{"/a.jpg", "/b.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected photos: %#v", got)
	}
}

func TestNormalizePhotosLegacyBraceFormat(t *testing.T) {
	got := normalizePhotos([]byte(`{"/a.jpg", "/b.jpg"}`))
	want := []string{"/a.jpg", "/b.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected photos: %#v", got)
	}
}

func TestNormalizePhotosBareString(t *testing.T) {
	got := normalizePhotos([]byte(`https://cdn.example.com/photo.jpg`))
	if len(got) != 1 || got[0] != "https://cdn.example.com/photo.jpg" {
		t.Fatalf("unexpected photos: %#v", got)
	}
}

func TestNormalizePhotosEmptyAndNull(t *testing.T) {
	if got := normalizePhotos(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %#v", got)
	}
	if got := normalizePhotos([]byte("null")); got != nil {
		t.Fatalf("expected nil for null input, got %#v", got)
	}
}

func TestNormalizePhotosBlankEntriesInArray(t *testing.T) {
	got := normalizePhotos([]byte(`["/a.jpg", ""]`))
	want := []string{"/a.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected photos: %#v", got)
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders(3); got != "?,?,?" {
		t.Fatalf("unexpected placeholders: %q", got)
	}
	if got := placeholders(0); got != "" {
		t.Fatalf("expected empty string for zero args, got %q", got)
	}
}
