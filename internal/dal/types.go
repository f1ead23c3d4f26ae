package dal

import "github.com/VIVU2003/Shodh-a-code-platform/internal/models"

// ClientDAL is the durable client-side state store: code drafts keyed by
// (contest, problem, language), the last-used language per (contest, problem)
// pair, and the participant's contest session. It is the Go stand-in for the
// browser profile the original client kept in localStorage, so everything
// written here must survive a process restart (except the memory driver,
// which exists for tests and throwaway runs).
type ClientDAL interface {
	// GetDraft returns the stored text for one key. The second result is
	// false when no draft has ever been written for that key.
	GetDraft(contestID, problemID int64, language string) (string, bool, error)
	// SetDraft overwrites the text for one key. Last write wins.
	SetDraft(contestID, problemID int64, language, text string) error
	// GetDrafts returns every stored language draft for one problem.
	GetDrafts(contestID, problemID int64) (map[string]string, error)

	// GetLastLanguage returns the most recently selected editor language for
	// a problem, or "" when none was recorded.
	GetLastLanguage(contestID, problemID int64) (string, error)
	SetLastLanguage(contestID, problemID int64, language string) error

	// GetSession returns the persisted session, or nil when absent.
	GetSession() (*models.ContestSession, error)
	SaveSession(s *models.ContestSession) error
	ClearSession() error

	Close() error
}
