package models

import "time"

// SubmissionStatus is the judging state reported by the backend, plus the
// client-declared TIMED_OUT_CLIENT which the backend never produces.
type SubmissionStatus string

const (
	StatusPending             SubmissionStatus = "PENDING"
	StatusRunning             SubmissionStatus = "RUNNING"
	StatusAccepted            SubmissionStatus = "ACCEPTED"
	StatusWrongAnswer         SubmissionStatus = "WRONG_ANSWER"
	StatusTimeLimitExceeded   SubmissionStatus = "TIME_LIMIT_EXCEEDED"
	StatusMemoryLimitExceeded SubmissionStatus = "MEMORY_LIMIT_EXCEEDED"
	StatusRuntimeError        SubmissionStatus = "RUNTIME_ERROR"
	StatusCompilationError    SubmissionStatus = "COMPILATION_ERROR"
	StatusTimedOutClient      SubmissionStatus = "TIMED_OUT_CLIENT"
)

// IsTerminal reports whether no further status change can occur. Anything the
// backend reports other than PENDING/RUNNING counts as terminal, so verdicts
// added server-side later are handled without a client update.
func (s SubmissionStatus) IsTerminal() bool {
	return s != "" && s != StatusPending && s != StatusRunning
}

// Problem is one task within a contest, as returned by the backend.
type Problem struct {
	ID                  int64  `json:"id"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	Constraints         string `json:"constraints"`
	SampleInput         string `json:"sampleInput"`
	SampleOutput        string `json:"sampleOutput"`
	TimeLimit           int    `json:"timeLimit"`
	MemoryLimit         int    `json:"memoryLimit"`
	Points              int    `json:"points"`
	TotalSubmissions    int    `json:"totalSubmissions"`
	AcceptedSubmissions int    `json:"acceptedSubmissions"`
}

// Contest mirrors the backend contest response.
type Contest struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	StartTime         time.Time `json:"startTime"`
	EndTime           time.Time `json:"endTime"`
	Problems          []Problem `json:"problems"`
	ParticipantsCount int       `json:"participantsCount"`
	IsActive          bool      `json:"isActive"`
}

// Submission tracks one dispatched solution through judging.
type Submission struct {
	ID        int64            `json:"id"`
	ContestID int64            `json:"contestId"`
	ProblemID int64            `json:"problemId"`
	Language  string           `json:"language"`
	Code      string           `json:"code"`
	Status    SubmissionStatus `json:"status"`
}

// ContestSession is the participant's identity for the duration of a visit:
// username plus chosen contest, with the currently selected problem.
type ContestSession struct {
	Username          string `json:"username"`
	ContestID         int64  `json:"contestId"`
	SelectedProblemID int64  `json:"selectedProblemId"`
}

// LeaderboardEntry is one ranked row. Rank order is authoritative from the
// backend and never recomputed here.
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	Username       string `json:"username"`
	ProblemsSolved int    `json:"problemsSolved"`
	TotalPoints    int    `json:"totalPoints"`
	TotalTime      int64  `json:"totalTime"`
}

// LeaderboardSnapshot is an immutable, wholesale-replaced view of standings.
type LeaderboardSnapshot struct {
	ContestID    int64              `json:"contestId"`
	ContestTitle string             `json:"contestTitle"`
	LastUpdated  time.Time          `json:"lastUpdated"`
	Entries      []LeaderboardEntry `json:"entries"`
}

// Draft is the user-authored code text for one problem in one language.
type Draft struct {
	ContestID int64  `json:"contestId"`
	ProblemID int64  `json:"problemId"`
	Language  string `json:"language"`
	Text      string `json:"text"`
}

// Languages supported by the editor, in display order.
var Languages = []string{"java", "python", "cpp", "javascript"}

// DefaultLanguage is the editor's initial language selection.
const DefaultLanguage = "java"

// IsSupportedLanguage reports whether lang is one of the four editor languages.
func IsSupportedLanguage(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}
