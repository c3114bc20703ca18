package homespace

import (
	"bytes"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMediaService(t *testing.T) *MediaService {
	t.Helper()
	dir := t.TempDir()
	pages := NewPageStore(filepath.Join(dir, "personal_pages.json"))
	blobs, err := NewDirBlobStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	return NewMediaService(pages, blobs)
}

// pngBytes renders a small valid PNG for upload tests.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestClassify(t *testing.T) {
	tests := []struct {
		filename string
		want     MediaKind
		wantErr  bool
	}{
		{"photo.png", MediaImage, false},
		{"photo.JPG", MediaImage, false},
		{"anim.gif", MediaImage, false},
		{"pic.webp", MediaImage, false},
		{"song.mp3", MediaAudio, false},
		{"song.FLAC", MediaAudio, false},
		{"clip.mp4", MediaVideo, false},
		{"clip.mkv", MediaVideo, false},
		{"clip.wmv", MediaVideo, false},
		{"script.exe", "", true},
		{"page.html", "", true},
		{"noext", "", true},
		{"trailingdot.", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			kind, err := Classify(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cat.png", "cat.png"},
		{"my photo.png", "my_photo.png"},
		{"../../etc/passwd", "passwd"},
		{"..\\..\\boot.ini", "boot.ini"},
		{"weird<>|:chars.png", "weirdchars.png"},
		{"...dots...", "dots"},
		{"__underscored__", "underscored"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestUploadDerivesStorageKey(t *testing.T) {
	svc := newTestMediaService(t)

	item, err := svc.Upload("alice", "cat.png", bytes.NewReader(pngBytes(t, 8, 8)))
	require.NoError(t, err)
	assert.Equal(t, "alice_0_cat.png", item.Filename)
	assert.Equal(t, VisibilityPrivate, item.Visibility)

	item, err = svc.Upload("alice", "dog.png", bytes.NewReader(pngBytes(t, 8, 8)))
	require.NoError(t, err)
	assert.Equal(t, "alice_1_dog.png", item.Filename)

	// The counter is per collection, not per page.
	item, err = svc.Upload("alice", "song.mp3", strings.NewReader("notes"))
	require.NoError(t, err)
	assert.Equal(t, "alice_0_song.mp3", item.Filename)

	item, err = svc.Upload("alice", "clip.mp4", strings.NewReader("frames"))
	require.NoError(t, err)
	assert.Equal(t, "alice_0_clip.mp4", item.Filename)
}

func TestUploadRejectsInvalidFile(t *testing.T) {
	svc := newTestMediaService(t)

	_, err := svc.Upload("alice", "malware.exe", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidFile)

	_, err = svc.Upload("alice", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidFile)
}

func TestServeAccessControl(t *testing.T) {
	svc := newTestMediaService(t)

	item, err := svc.Upload("alice", "cat.png", bytes.NewReader(pngBytes(t, 8, 8)))
	require.NoError(t, err)

	// Owner reads their own private upload.
	rc, mime, err := svc.Serve("alice", RoleUser, item.Filename)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "image/png", mime)

	// Another user is blocked while the item is private.
	_, _, err = svc.Serve("bob", RoleUser, item.Filename)
	assert.ErrorIs(t, err, ErrForbidden)

	// An admin is never blocked.
	rc, _, err = svc.Serve("root", RoleAdmin, item.Filename)
	require.NoError(t, err)
	rc.Close()

	// Flipping to public opens it up.
	vis, err := svc.ToggleVisibility("alice", item.Filename)
	require.NoError(t, err)
	assert.Equal(t, VisibilityPublic, vis)

	rc, _, err = svc.Serve("bob", RoleUser, item.Filename)
	require.NoError(t, err)
	rc.Close()
}

func TestServeUnknownFile(t *testing.T) {
	svc := newTestMediaService(t)
	_, _, err := svc.Serve("alice", RoleUser, "nothing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServeAudioVideoMIME(t *testing.T) {
	svc := newTestMediaService(t)

	song, err := svc.Upload("alice", "song.flac", strings.NewReader("notes"))
	require.NoError(t, err)
	rc, mime, err := svc.Serve("alice", RoleUser, song.Filename)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "audio/flac", mime)

	clip, err := svc.Upload("alice", "clip.mov", strings.NewReader("frames"))
	require.NoError(t, err)
	rc, mime, err = svc.Serve("alice", RoleUser, clip.Filename)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "video/quicktime", mime)
}

func TestServeReplaysSniffedBytes(t *testing.T) {
	svc := newTestMediaService(t)

	payload := pngBytes(t, 8, 8)
	item, err := svc.Upload("alice", "cat.png", bytes.NewReader(payload))
	require.NoError(t, err)

	rc, _, err := svc.Serve("alice", RoleUser, item.Filename)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestToggleVisibility(t *testing.T) {
	svc := newTestMediaService(t)

	song, err := svc.Upload("alice", "song.mp3", strings.NewReader("notes"))
	require.NoError(t, err)

	vis, err := svc.ToggleVisibility("alice", song.Filename)
	require.NoError(t, err)
	assert.Equal(t, VisibilityPublic, vis)

	vis, err = svc.ToggleVisibility("alice", song.Filename)
	require.NoError(t, err)
	assert.Equal(t, VisibilityPrivate, vis)
}

// Video items have no visibility control and stay private.
func TestToggleVisibilityVideoNotFound(t *testing.T) {
	svc := newTestMediaService(t)

	clip, err := svc.Upload("alice", "clip.mp4", strings.NewReader("frames"))
	require.NoError(t, err)

	_, err = svc.ToggleVisibility("alice", clip.Filename)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleVisibilityOtherUsersFile(t *testing.T) {
	svc := newTestMediaService(t)

	item, err := svc.Upload("alice", "cat.png", bytes.NewReader(pngBytes(t, 8, 8)))
	require.NoError(t, err)

	// The toggle only searches the caller's own page.
	_, err = svc.ToggleVisibility("bob", item.Filename)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc := newTestMediaService(t)

	item, err := svc.Upload("alice", "cat.png", bytes.NewReader(pngBytes(t, 8, 8)))
	require.NoError(t, err)
	require.NoError(t, svc.SetBackground("alice", item.Filename))

	require.NoError(t, svc.Delete("alice", item.Filename))

	_, _, err = svc.Serve("alice", RoleUser, item.Filename)
	assert.ErrorIs(t, err, ErrNotFound)

	page, err := svc.pages.GetOrCreate("alice")
	require.NoError(t, err)
	assert.Empty(t, page.Images)
	assert.Equal(t, "", page.BackgroundImage, "background must clear when its image is deleted")

	assert.ErrorIs(t, svc.Delete("alice", item.Filename), ErrNotFound)
}

func TestDeleteAudio(t *testing.T) {
	svc := newTestMediaService(t)

	song, err := svc.Upload("alice", "song.mp3", strings.NewReader("notes"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete("alice", song.Filename))

	page, err := svc.pages.GetOrCreate("alice")
	require.NoError(t, err)
	assert.Empty(t, page.Audio)
}

func TestSetBackground(t *testing.T) {
	svc := newTestMediaService(t)

	item, err := svc.Upload("alice", "cat.png", bytes.NewReader(pngBytes(t, 8, 8)))
	require.NoError(t, err)
	require.NoError(t, svc.SetBackground("alice", item.Filename))

	page, err := svc.pages.GetOrCreate("alice")
	require.NoError(t, err)
	assert.Equal(t, item.Filename, page.BackgroundImage)

	// Another user's image cannot become my background.
	assert.ErrorIs(t, svc.SetBackground("bob", item.Filename), ErrNotOwned)

	// Audio cannot be a background either.
	song, err := svc.Upload("alice", "song.mp3", strings.NewReader("notes"))
	require.NoError(t, err)
	assert.ErrorIs(t, svc.SetBackground("alice", song.Filename), ErrNotOwned)
}

func TestServeThumb(t *testing.T) {
	svc := newTestMediaService(t)

	item, err := svc.Upload("alice", "wide.png", bytes.NewReader(pngBytes(t, 800, 200)))
	require.NoError(t, err)

	rc, mime, err := svc.ServeThumb("alice", RoleUser, item.Filename)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/jpeg", mime)

	img, _, err := image.Decode(rc)
	require.NoError(t, err)
	assert.Equal(t, thumbMaxWidth, img.Bounds().Dx())

	// The thumbnail honors the same policy as the original.
	_, _, err = svc.ServeThumb("bob", RoleUser, item.Filename)
	assert.ErrorIs(t, err, ErrForbidden)

	// Non-images have no thumbnail rendition.
	song, err := svc.Upload("alice", "song.mp3", strings.NewReader("notes"))
	require.NoError(t, err)
	_, _, err = svc.ServeThumb("alice", RoleUser, song.Filename)
	assert.ErrorIs(t, err, ErrNotFound)
}

// A small image gets no scaling; the thumbnail request falls back to the
// original bytes only when no rendition exists, so here it still serves
// the encoded rendition at original size.
func TestServeThumbSmallImage(t *testing.T) {
	svc := newTestMediaService(t)

	item, err := svc.Upload("alice", "tiny.png", bytes.NewReader(pngBytes(t, 10, 10)))
	require.NoError(t, err)

	rc, mime, err := svc.ServeThumb("alice", RoleUser, item.Filename)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/jpeg", mime)

	img, _, err := image.Decode(rc)
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
}
