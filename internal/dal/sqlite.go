package dal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/models"
)

// SQLiteDAL implements ClientDAL on a local SQLite file. This is the default
// driver: one file plays the role of the browser profile, so drafts and the
// session survive reloads of the bridge process.
type SQLiteDAL struct {
	db *sql.DB
}

// NewSQLiteDAL opens (or creates) the store at dbPath.
func NewSQLiteDAL(dbPath string) (*SQLiteDAL, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	dal := &SQLiteDAL{db: db}
	if err := dal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return dal, nil
}

func (s *SQLiteDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS drafts (
		contest_id INTEGER NOT NULL,
		problem_id INTEGER NOT NULL,
		language TEXT NOT NULL,
		text TEXT NOT NULL,
		PRIMARY KEY (contest_id, problem_id, language)
	);

	CREATE TABLE IF NOT EXISTS editor_prefs (
		contest_id INTEGER NOT NULL,
		problem_id INTEGER NOT NULL,
		language TEXT NOT NULL,
		PRIMARY KEY (contest_id, problem_id)
	);

	CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		username TEXT NOT NULL,
		contest_id INTEGER NOT NULL,
		selected_problem_id INTEGER NOT NULL DEFAULT 0
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init client state schema: %w", err)
	}
	return nil
}

func (s *SQLiteDAL) GetDraft(contestID, problemID int64, language string) (string, bool, error) {
	var text string
	err := s.db.QueryRow(`
		SELECT text FROM drafts
		WHERE contest_id = ? AND problem_id = ? AND language = ?
	`, contestID, problemID, language).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (s *SQLiteDAL) SetDraft(contestID, problemID int64, language, text string) error {
	_, err := s.db.Exec(`
		INSERT INTO drafts (contest_id, problem_id, language, text)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (contest_id, problem_id, language) DO UPDATE SET text = excluded.text
	`, contestID, problemID, language, text)
	return err
}

func (s *SQLiteDAL) GetDrafts(contestID, problemID int64) (map[string]string, error) {
	rows, err := s.db.Query(`
		SELECT language, text FROM drafts
		WHERE contest_id = ? AND problem_id = ?
	`, contestID, problemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drafts := make(map[string]string)
	for rows.Next() {
		var language, text string
		if err := rows.Scan(&language, &text); err != nil {
			return nil, err
		}
		drafts[language] = text
	}
	return drafts, rows.Err()
}

func (s *SQLiteDAL) GetLastLanguage(contestID, problemID int64) (string, error) {
	var language string
	err := s.db.QueryRow(`
		SELECT language FROM editor_prefs
		WHERE contest_id = ? AND problem_id = ?
	`, contestID, problemID).Scan(&language)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return language, err
}

func (s *SQLiteDAL) SetLastLanguage(contestID, problemID int64, language string) error {
	_, err := s.db.Exec(`
		INSERT INTO editor_prefs (contest_id, problem_id, language)
		VALUES (?, ?, ?)
		ON CONFLICT (contest_id, problem_id) DO UPDATE SET language = excluded.language
	`, contestID, problemID, language)
	return err
}

func (s *SQLiteDAL) GetSession() (*models.ContestSession, error) {
	var sess models.ContestSession
	err := s.db.QueryRow(`
		SELECT username, contest_id, selected_problem_id FROM session WHERE id = 1
	`).Scan(&sess.Username, &sess.ContestID, &sess.SelectedProblemID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SQLiteDAL) SaveSession(sess *models.ContestSession) error {
	_, err := s.db.Exec(`
		INSERT INTO session (id, username, contest_id, selected_problem_id)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			contest_id = excluded.contest_id,
			selected_problem_id = excluded.selected_problem_id
	`, sess.Username, sess.ContestID, sess.SelectedProblemID)
	return err
}

func (s *SQLiteDAL) ClearSession() error {
	_, err := s.db.Exec(`DELETE FROM session WHERE id = 1`)
	return err
}

func (s *SQLiteDAL) Close() error {
	return s.db.Close()
}
