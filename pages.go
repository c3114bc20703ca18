package homespace

import "sync"

// PageStore holds one PersonalPage per username, mirrored to a single JSON
// document keyed by owner. Pages are created lazily and never deleted.
type PageStore struct {
	mu    sync.RWMutex
	path  string
	pages map[string]*PersonalPage
}

// NewPageStore loads the pages file at path. A missing or unreadable file
// degrades to an empty store; records gain their audio and video
// collections on load if an older document lacks them.
func NewPageStore(path string) *PageStore {
	s := &PageStore{path: path, pages: map[string]*PersonalPage{}}
	if found, err := loadJSON(path, &s.pages); !found || err != nil {
		s.pages = map[string]*PersonalPage{}
	}
	for _, p := range s.pages {
		normalizePage(p)
	}
	return s
}

// normalizePage injects any collection missing from an older record. This is
// a forward migration applied on every read, not a one-time script.
func normalizePage(p *PersonalPage) {
	if p.Images == nil {
		p.Images = []MediaItem{}
	}
	if p.Audio == nil {
		p.Audio = []MediaItem{}
	}
	if p.Video == nil {
		p.Video = []MediaItem{}
	}
}

func defaultPage(username string) *PersonalPage {
	return &PersonalPage{
		Title:       "Personal Page - " + username,
		Description: "Welcome to my personal page!",
		BgColor:     "#1a1a2e",
		TextColor:   "#ffffff",
		Images:      []MediaItem{},
		Audio:       []MediaItem{},
		Video:       []MediaItem{},
	}
}

func clonePage(p *PersonalPage) PersonalPage {
	out := *p
	out.Images = append([]MediaItem{}, p.Images...)
	out.Audio = append([]MediaItem{}, p.Audio...)
	out.Video = append([]MediaItem{}, p.Video...)
	return out
}

// GetOrCreate returns the page for username. First access materializes the
// default record and persists it immediately, so the backing file always
// matches what was served. Reading a page for a valid account never fails
// for absence.
func (s *PageStore) GetOrCreate(username string) (PersonalPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pages[username]
	if !ok {
		p = defaultPage(username)
		s.pages[username] = p
		if err := s.persist(); err != nil {
			return PersonalPage{}, err
		}
	}
	normalizePage(p)
	return clonePage(p), nil
}

// Save replaces the page for username in full and persists the store.
func (s *PageStore) Save(username string, page PersonalPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalizePage(&page)
	s.pages[username] = &page
	return s.persist()
}

// FindMedia resolves a storage filename to its owning page, item metadata,
// and collection kind by scanning every page. A filename appears in at most
// one collection process-wide.
func (s *PageStore) FindMedia(filename string) (owner string, item MediaItem, kind MediaKind, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for username, p := range s.pages {
		for _, it := range p.Images {
			if it.Filename == filename {
				return username, it, MediaImage, true
			}
		}
		for _, it := range p.Audio {
			if it.Filename == filename {
				return username, it, MediaAudio, true
			}
		}
		for _, it := range p.Video {
			if it.Filename == filename {
				return username, it, MediaVideo, true
			}
		}
	}
	return "", MediaItem{}, "", false
}

func (s *PageStore) persist() error {
	return saveJSON(s.path, s.pages)
}
