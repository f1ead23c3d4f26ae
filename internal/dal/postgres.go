package dal

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/VIVU2003/Shodh-a-code-platform/internal/models"
)

// PostgresDAL implements ClientDAL on Postgres, for hosted kiosk deployments
// where several bridge instances share one participant profile. The session
// table keeps one row per username so instances do not clobber each other.
type PostgresDAL struct {
	db *sql.DB
	// profileKey scopes the single-row session for this instance.
	profileKey string
}

// NewPostgresDAL connects to Postgres and ensures the schema exists.
// profileKey identifies this participant profile, normally the hostname or a
// configured kiosk id.
func NewPostgresDAL(connString, profileKey string) (*PostgresDAL, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	dal := &PostgresDAL{db: db, profileKey: profileKey}
	if err := dal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return dal, nil
}

func (p *PostgresDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS drafts (
		contest_id BIGINT NOT NULL,
		problem_id BIGINT NOT NULL,
		language TEXT NOT NULL,
		text TEXT NOT NULL,
		PRIMARY KEY (contest_id, problem_id, language)
	);

	CREATE TABLE IF NOT EXISTS editor_prefs (
		contest_id BIGINT NOT NULL,
		problem_id BIGINT NOT NULL,
		language TEXT NOT NULL,
		PRIMARY KEY (contest_id, problem_id)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		profile_key TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		contest_id BIGINT NOT NULL,
		selected_problem_id BIGINT NOT NULL DEFAULT 0
	);
	`

	if _, err := p.db.Exec(schema); err != nil {
		return fmt.Errorf("init client state schema: %w", err)
	}
	return nil
}

func (p *PostgresDAL) GetDraft(contestID, problemID int64, language string) (string, bool, error) {
	var text string
	err := p.db.QueryRow(`
		SELECT text FROM drafts
		WHERE contest_id = $1 AND problem_id = $2 AND language = $3
	`, contestID, problemID, language).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (p *PostgresDAL) SetDraft(contestID, problemID int64, language, text string) error {
	_, err := p.db.Exec(`
		INSERT INTO drafts (contest_id, problem_id, language, text)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (contest_id, problem_id, language) DO UPDATE SET text = EXCLUDED.text
	`, contestID, problemID, language, text)
	return err
}

func (p *PostgresDAL) GetDrafts(contestID, problemID int64) (map[string]string, error) {
	rows, err := p.db.Query(`
		SELECT language, text FROM drafts
		WHERE contest_id = $1 AND problem_id = $2
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

func (p *PostgresDAL) GetLastLanguage(contestID, problemID int64) (string, error) {
	var language string
	err := p.db.QueryRow(`
		SELECT language FROM editor_prefs
		WHERE contest_id = $1 AND problem_id = $2
	`, contestID, problemID).Scan(&language)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return language, err
}

func (p *PostgresDAL) SetLastLanguage(contestID, problemID int64, language string) error {
	_, err := p.db.Exec(`
		INSERT INTO editor_prefs (contest_id, problem_id, language)
		VALUES ($1, $2, $3)
		ON CONFLICT (contest_id, problem_id) DO UPDATE SET language = EXCLUDED.language
	`, contestID, problemID, language)
	return err
}

func (p *PostgresDAL) GetSession() (*models.ContestSession, error) {
	var sess models.ContestSession
	err := p.db.QueryRow(`
		SELECT username, contest_id, selected_problem_id FROM sessions WHERE profile_key = $1
	`, p.profileKey).Scan(&sess.Username, &sess.ContestID, &sess.SelectedProblemID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (p *PostgresDAL) SaveSession(sess *models.ContestSession) error {
	_, err := p.db.Exec(`
		INSERT INTO sessions (profile_key, username, contest_id, selected_problem_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (profile_key) DO UPDATE SET
			username = EXCLUDED.username,
			contest_id = EXCLUDED.contest_id,
			selected_problem_id = EXCLUDED.selected_problem_id
	`, p.profileKey, sess.Username, sess.ContestID, sess.SelectedProblemID)
	return err
}

func (p *PostgresDAL) ClearSession() error {
	_, err := p.db.Exec(`DELETE FROM sessions WHERE profile_key = $1`, p.profileKey)
	return err
}

func (p *PostgresDAL) Close() error {
	return p.db.Close()
}
