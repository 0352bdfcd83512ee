package app

import (
	"context"

	"github.com/jwulff/fileforge/internal/domain"
	"github.com/jwulff/fileforge/internal/download"
)

// Service is the external analysis and conversion service.
type Service interface {
	Scan(ctx context.Context, file domain.File) (domain.ScanResult, error)
	Analyze(ctx context.Context, file domain.File, status domain.ScanStatus) (domain.AnalysisResult, error)
	GenerateScripts(ctx context.Context, sourceFormat, targetFormat string) (map[string]string, error)
	Convert(ctx context.Context, file domain.File, targetFormat string) (domain.ConversionResult, error)
}

// Store persists the user and the conversion history.
type Store interface {
	LoadUser() *domain.User
	LoadHistory() []domain.HistoryEntry
	SaveUser(u *domain.User) error
	SaveHistory(entries []domain.HistoryEntry) error
}

// Saver hands a converted file to the user.
type Saver interface {
	Save(name string, p download.Payload) (string, error)
}
