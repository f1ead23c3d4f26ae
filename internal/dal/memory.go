package dal

import (
	"sync"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/models"
)

type draftKey struct {
	contestID int64
	problemID int64
}

// MemoryDAL implements ClientDAL with in-process maps. State does not survive
// a restart; it backs tests and throwaway runs.
type MemoryDAL struct {
	mu        sync.RWMutex
	drafts    map[draftKey]map[string]string
	languages map[draftKey]string
	session   *models.ContestSession
}

// NewMemoryDAL creates an empty in-memory store.
func NewMemoryDAL() *MemoryDAL {
	return &MemoryDAL{
		drafts:    make(map[draftKey]map[string]string),
		languages: make(map[draftKey]string),
	}
}

func (m *MemoryDAL) GetDraft(contestID, problemID int64, language string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	langs, ok := m.drafts[draftKey{contestID, problemID}]
	if !ok {
		return "", false, nil
	}
	text, ok := langs[language]
	return text, ok, nil
}

func (m *MemoryDAL) SetDraft(contestID, problemID int64, language, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := draftKey{contestID, problemID}
	if m.drafts[key] == nil {
		m.drafts[key] = make(map[string]string)
	}
	m.drafts[key][language] = text
	return nil
}

func (m *MemoryDAL) GetDrafts(contestID, problemID int64) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string)
	for lang, text := range m.drafts[draftKey{contestID, problemID}] {
		out[lang] = text
	}
	return out, nil
}

func (m *MemoryDAL) GetLastLanguage(contestID, problemID int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.languages[draftKey{contestID, problemID}], nil
}

func (m *MemoryDAL) SetLastLanguage(contestID, problemID int64, language string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.languages[draftKey{contestID, problemID}] = language
	return nil
}

func (m *MemoryDAL) GetSession() (*models.ContestSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return nil, nil
	}
	s := *m.session
	return &s, nil
}

func (m *MemoryDAL) SaveSession(s *models.ContestSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *s
	m.session = &copied
	return nil
}

func (m *MemoryDAL) ClearSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *MemoryDAL) Close() error {
	return nil
}
