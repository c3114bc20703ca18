package homespace

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Extension allow-lists. Anything outside their union is rejected before
// classification; allowed extensions that are neither audio nor video are
// treated as images.
var (
	imageExts = map[string]bool{
		"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true,
	}
	audioExts = map[string]bool{
		"mp3": true, "wav": true, "ogg": true, "m4a": true, "flac": true, "aac": true,
	}
	videoExts = map[string]bool{
		"mp4": true, "webm": true, "avi": true, "mov": true, "mkv": true,
		"flv": true, "m4v": true, "wmv": true,
	}
)

var audioMIMETypes = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
	"flac": "audio/flac",
	"aac":  "audio/aac",
}

var videoMIMETypes = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"mkv":  "video/x-matroska",
	"flv":  "video/x-flv",
	"m4v":  "video/x-m4v",
	"wmv":  "video/x-ms-wmv",
}

// fileExt returns the lowercase extension without the dot, or "" when the
// filename has none.
func fileExt(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// Classify maps a client filename to its gallery collection by extension.
// Filenames without a dot or with an extension outside the allow-list are
// rejected with ErrInvalidFile.
func Classify(filename string) (MediaKind, error) {
	ext := fileExt(filename)
	if ext == "" || (!imageExts[ext] && !audioExts[ext] && !videoExts[ext]) {
		return "", ErrInvalidFile
	}
	switch {
	case videoExts[ext]:
		return MediaVideo, nil
	case audioExts[ext]:
		return MediaAudio, nil
	default:
		return MediaImage, nil
	}
}

// sanitizeFilename reduces a client-supplied filename to a safe flat storage
// key: any path prefix is dropped, whitespace becomes underscores, and
// everything outside [A-Za-z0-9._-] is removed. Leading and trailing dots
// and underscores are trimmed so a key can never be a dotfile or a
// traversal fragment.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

// MediaService orchestrates the media lifecycle: classification, storage key
// derivation, blob I/O, and the page-collection bookkeeping that ties an
// uploaded file to its owner.
type MediaService struct {
	pages *PageStore
	blobs BlobStore
}

// NewMediaService wires the service to its page store and blob store.
func NewMediaService(pages *PageStore, blobs BlobStore) *MediaService {
	return &MediaService{pages: pages, blobs: blobs}
}

// Upload validates and classifies the file, derives its storage key from the
// owner and the current size of the target collection, stores the bytes,
// and registers a private MediaItem on the owner's page. Gallery images
// additionally get a best-effort thumbnail rendition. The per-request byte
// cap is enforced upstream by the HTTP layer.
func (s *MediaService) Upload(owner, originalFilename string, src io.Reader) (MediaItem, error) {
	if originalFilename == "" {
		return MediaItem{}, ErrInvalidFile
	}
	kind, err := Classify(originalFilename)
	if err != nil {
		return MediaItem{}, err
	}

	page, err := s.pages.GetOrCreate(owner)
	if err != nil {
		return MediaItem{}, err
	}

	var count int
	switch kind {
	case MediaAudio:
		count = len(page.Audio)
	case MediaVideo:
		count = len(page.Video)
	default:
		count = len(page.Images)
	}
	key := sanitizeFilename(fmt.Sprintf("%s_%d_%s", owner, count, originalFilename))

	if kind == MediaImage {
		data, err := io.ReadAll(src)
		if err != nil {
			return MediaItem{}, fmt.Errorf("read upload: %w", err)
		}
		if err := s.blobs.Write(key, bytes.NewReader(data)); err != nil {
			return MediaItem{}, err
		}
		if thumb, err := renderThumbnail(bytes.NewReader(data)); err == nil {
			_ = s.blobs.Write(thumbKey(key), bytes.NewReader(thumb))
		}
	} else {
		if err := s.blobs.Write(key, src); err != nil {
			return MediaItem{}, err
		}
	}

	item := MediaItem{Filename: key, Visibility: VisibilityPrivate}
	switch kind {
	case MediaAudio:
		page.Audio = append(page.Audio, item)
	case MediaVideo:
		page.Video = append(page.Video, item)
	default:
		page.Images = append(page.Images, item)
	}
	if err := s.pages.Save(owner, page); err != nil {
		return MediaItem{}, err
	}
	return item, nil
}

// Delete removes the item from whichever of the owner's collections holds
// it, deletes the underlying bytes, and clears the page background if it
// referenced the deleted file. The page persists once no matter how many
// collections changed.
func (s *MediaService) Delete(owner, filename string) error {
	page, err := s.pages.GetOrCreate(owner)
	if err != nil {
		return err
	}

	removed := false
	if items, ok := removeItem(page.Images, filename); ok {
		page.Images = items
		removed = true
		// Image items may carry a thumbnail rendition.
		if err := s.blobs.Delete(thumbKey(filename)); err != nil {
			return err
		}
	}
	if items, ok := removeItem(page.Audio, filename); ok {
		page.Audio = items
		removed = true
	}
	if items, ok := removeItem(page.Video, filename); ok {
		page.Video = items
		removed = true
	}
	if !removed {
		return ErrNotFound
	}

	if err := s.blobs.Delete(filename); err != nil {
		return err
	}
	if page.BackgroundImage == filename {
		page.BackgroundImage = ""
	}
	return s.pages.Save(owner, page)
}

func removeItem(items []MediaItem, filename string) ([]MediaItem, bool) {
	for i, it := range items {
		if it.Filename == filename {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}

// SetBackground assigns one of the owner's own gallery images as their page
// background. A filename outside the owner's images collection, including
// other users' files, yields ErrNotOwned.
func (s *MediaService) SetBackground(owner, filename string) error {
	page, err := s.pages.GetOrCreate(owner)
	if err != nil {
		return err
	}
	for _, it := range page.Images {
		if it.Filename == filename {
			page.BackgroundImage = filename
			return s.pages.Save(owner, page)
		}
	}
	return ErrNotOwned
}

// ToggleVisibility flips the item between private and public and returns
// the new state. Only the images and audio collections are searched; video
// items cannot be toggled.
func (s *MediaService) ToggleVisibility(owner, filename string) (Visibility, error) {
	page, err := s.pages.GetOrCreate(owner)
	if err != nil {
		return "", err
	}
	for i, it := range page.Images {
		if it.Filename == filename {
			page.Images[i].Visibility = it.Visibility.Toggle()
			return page.Images[i].Visibility, s.pages.Save(owner, page)
		}
	}
	for i, it := range page.Audio {
		if it.Filename == filename {
			page.Audio[i].Visibility = it.Visibility.Toggle()
			return page.Audio[i].Visibility, s.pages.Save(owner, page)
		}
	}
	return "", ErrNotFound
}

// Serve resolves a filename to its owner and visibility, applies the access
// policy, and returns the byte stream with its MIME type. Audio and video
// types come from fixed extension tables; images are sniffed from their
// first bytes.
func (s *MediaService) Serve(requester string, role Role, filename string) (io.ReadCloser, string, error) {
	owner, item, kind, ok := s.pages.FindMedia(filename)
	if !ok {
		return nil, "", ErrNotFound
	}
	if !CanAccess(requester, role, owner, item.Visibility) {
		return nil, "", ErrForbidden
	}

	rc, err := s.blobs.Open(filename)
	if err != nil {
		return nil, "", err
	}

	switch kind {
	case MediaAudio:
		mime, ok := audioMIMETypes[fileExt(filename)]
		if !ok {
			mime = "audio/mpeg"
		}
		return rc, mime, nil
	case MediaVideo:
		mime, ok := videoMIMETypes[fileExt(filename)]
		if !ok {
			mime = "video/mp4"
		}
		return rc, mime, nil
	default:
		return sniffContentType(rc)
	}
}

// ServeThumb serves the thumbnail rendition of a gallery image under the
// same access policy as the full file, falling back to the original bytes
// when no rendition was generated at upload time.
func (s *MediaService) ServeThumb(requester string, role Role, filename string) (io.ReadCloser, string, error) {
	owner, item, kind, ok := s.pages.FindMedia(filename)
	if !ok || kind != MediaImage {
		return nil, "", ErrNotFound
	}
	if !CanAccess(requester, role, owner, item.Visibility) {
		return nil, "", ErrForbidden
	}
	rc, err := s.blobs.Open(thumbKey(filename))
	if errors.Is(err, ErrNotFound) {
		full, err := s.blobs.Open(filename)
		if err != nil {
			return nil, "", err
		}
		return sniffContentType(full)
	}
	if err != nil {
		return nil, "", err
	}
	return rc, "image/jpeg", nil
}

// sniffContentType reads up to 512 bytes from rc to detect the content type
// and returns a stream that replays them before the rest of the file.
func sniffContentType(rc io.ReadCloser) (io.ReadCloser, string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(rc, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		rc.Close()
		return nil, "", fmt.Errorf("sniff content type: %w", err)
	}
	mime := http.DetectContentType(buf[:n])
	return &replayReader{
		Reader: io.MultiReader(bytes.NewReader(buf[:n]), rc),
		closer: rc,
	}, mime, nil
}

type replayReader struct {
	io.Reader
	closer io.Closer
}

func (r *replayReader) Close() error { return r.closer.Close() }
