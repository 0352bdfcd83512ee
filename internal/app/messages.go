package app

import "github.com/jwulff/fileforge/internal/domain"

// SessionLoadedMsg carries the persisted user and history read at startup.
type SessionLoadedMsg struct {
	User    *domain.User
	History []domain.HistoryEntry
}

// LoginMsg carries the persisted user found at login, nil if none.
type LoginMsg struct {
	User *domain.User
}

// FileLoadedMsg is sent when a file picked by path has been read.
type FileLoadedMsg struct {
	File domain.File
}

// FileLoadErrorMsg is sent when a picked path cannot be read.
type FileLoadErrorMsg struct {
	Path string
	Err  error
}

// ScanCompletedMsg carries the scan verdict for selection Gen.
type ScanCompletedMsg struct {
	Gen    uint64
	Result domain.ScanResult
}

// ScanFailedMsg is sent when the scan for selection Gen fails.
type ScanFailedMsg struct {
	Gen uint64
	Err error
}

// AnalysisCompletedMsg carries the analysis for selection Gen.
type AnalysisCompletedMsg struct {
	Gen    uint64
	Result domain.AnalysisResult
}

// AnalysisFailedMsg is sent when the analysis for selection Gen fails.
type AnalysisFailedMsg struct {
	Gen uint64
	Err error
}

// ConversionCompletedMsg is sent after the converted file was saved.
type ConversionCompletedMsg struct {
	Gen          uint64
	OriginalName string
	FromFormat   string
	Target       domain.ConversionSuggestion
	Scripts      map[string]string
	Path         string
}

// ConversionFailedMsg is sent when any conversion step fails.
type ConversionFailedMsg struct {
	Gen uint64
	Err error
}

// PersistErrorMsg reports a failed write of a persisted record.
type PersistErrorMsg struct {
	Record string
	Err    error
}

// ClearNoticeMsg clears notice Seq after a timeout.
type ClearNoticeMsg struct {
	Seq int
}
