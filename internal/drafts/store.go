package drafts

import (
	"github.com/VIVU2003/Shodh-a-code-platform/internal/dal"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/logger"
	"github.com/VIVU2003/Shodh-a-code-platform/internal/models"
)

// Store owns draft text for every (contest, problem, language) key. Absent
// drafts materialize as templates, never as empty values. Persistence is
// best-effort: storage failures are logged and the caller keeps working with
// the in-memory value, so a broken profile store costs durability, not edits.
type Store struct {
	dal dal.ClientDAL
}

// NewStore creates a draft store over the given durable state backend.
func NewStore(d dal.ClientDAL) *Store {
	return &Store{dal: d}
}

// GetDraft returns the stored text for the key, or the deterministic
// (language, problem) template when nothing has been stored yet.
func (s *Store) GetDraft(contestID, problemID int64, language string) string {
	text, ok, err := s.dal.GetDraft(contestID, problemID, language)
	if err != nil {
		logger.Warn("Draft read failed, serving template", "error", err,
			"contest_id", contestID, "problem_id", problemID, "language", language)
		return Template(language, problemID)
	}
	if !ok {
		return Template(language, problemID)
	}
	return text
}

// SetDraft overwrites the stored text for the key. Write failures degrade to
// a log line: the editor keeps its in-memory value either way.
func (s *Store) SetDraft(contestID, problemID int64, language, text string) {
	if err := s.dal.SetDraft(contestID, problemID, language, text); err != nil {
		logger.Warn("Draft write failed, edits not durable", "error", err,
			"contest_id", contestID, "problem_id", problemID, "language", language)
	}
}

// Drafts returns all four languages' texts for a problem, with templates
// filled in for languages that have no stored draft.
func (s *Store) Drafts(contestID, problemID int64) map[string]string {
	stored, err := s.dal.GetDrafts(contestID, problemID)
	if err != nil {
		logger.Warn("Draft scan failed, serving templates", "error", err,
			"contest_id", contestID, "problem_id", problemID)
		stored = nil
	}

	out := make(map[string]string, len(models.Languages))
	for _, lang := range models.Languages {
		if text, ok := stored[lang]; ok {
			out[lang] = text
		} else {
			out[lang] = Template(lang, problemID)
		}
	}
	return out
}

// LastLanguage returns the language the editor last had selected for this
// problem, falling back to the default.
func (s *Store) LastLanguage(contestID, problemID int64) string {
	lang, err := s.dal.GetLastLanguage(contestID, problemID)
	if err != nil {
		logger.Warn("Language pref read failed", "error", err,
			"contest_id", contestID, "problem_id", problemID)
	}
	if !models.IsSupportedLanguage(lang) {
		return models.DefaultLanguage
	}
	return lang
}

// SelectLanguage records a language switch and returns the text to display.
// A language with no draft yet gets its template materialized; existing
// drafts are untouched.
func (s *Store) SelectLanguage(contestID, problemID int64, language string) string {
	if err := s.dal.SetLastLanguage(contestID, problemID, language); err != nil {
		logger.Warn("Language pref write failed", "error", err,
			"contest_id", contestID, "problem_id", problemID, "language", language)
	}

	text, ok, err := s.dal.GetDraft(contestID, problemID, language)
	if err != nil {
		logger.Warn("Draft read failed on language switch", "error", err,
			"contest_id", contestID, "problem_id", problemID, "language", language)
		return Template(language, problemID)
	}
	if !ok {
		text = Template(language, problemID)
		s.SetDraft(contestID, problemID, language, text)
	}
	return text
}

// ChangeProblem handles the editor moving to another problem within the same
// contest. Only the currently selected language is considered: if its stored
// text still matches the template heuristic it is refreshed to the new
// problem's template, otherwise user edits are preserved. Other languages'
// drafts are never touched by a problem change.
func (s *Store) ChangeProblem(contestID, problemID int64) (language, text string) {
	language = s.LastLanguage(contestID, problemID)

	stored, ok, err := s.dal.GetDraft(contestID, problemID, language)
	if err != nil {
		logger.Warn("Draft read failed on problem change", "error", err,
			"contest_id", contestID, "problem_id", problemID, "language", language)
		return language, Template(language, problemID)
	}

	if !ok || IsDefaultTemplate(stored) {
		text = Template(language, problemID)
		s.SetDraft(contestID, problemID, language, text)
		return language, text
	}
	return language, stored
}
