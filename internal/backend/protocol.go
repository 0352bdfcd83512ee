// Package backend is the boundary to the external analysis and conversion
// service. The socket backend speaks NDJSON over a Unix socket; the OpenAI
// backend asks a chat model directly.
package backend

import (
	"fmt"
	"time"

	"github.com/jwulff/fileforge/internal/domain"
)

// Command names understood by the conversion service.
const (
	CmdScan    = "scan"
	CmdAnalyze = "analyze"
	CmdScripts = "scripts"
	CmdConvert = "convert"
)

// Command is sent from a client to the service.
type Command struct {
	Cmd          string `json:"cmd"`
	Name         string `json:"name,omitempty"`
	MimeType     string `json:"mimeType,omitempty"`
	Content      []byte `json:"content,omitempty"`
	ScanStatus   string `json:"scanStatus,omitempty"`
	SourceFormat string `json:"sourceFormat,omitempty"`
	TargetFormat string `json:"targetFormat,omitempty"`
}

// Response is returned by the service after processing a command.
type Response struct {
	OK         bool               `json:"ok"`
	Error      string             `json:"error,omitempty"`
	Scan       *ScanPayload       `json:"scan,omitempty"`
	Analysis   *AnalysisPayload   `json:"analysis,omitempty"`
	Scripts    map[string]string  `json:"scripts,omitempty"`
	Conversion *ConversionPayload `json:"conversion,omitempty"`
}

// ScanPayload is the wire form of a scan verdict.
type ScanPayload struct {
	Status        string    `json:"status"`
	ThreatName    string    `json:"threatName,omitempty"`
	ScannedAt     time.Time `json:"scannedAt"`
	EngineVersion string    `json:"engineVersion"`
}

// ToDomain validates the payload.
func (p ScanPayload) ToDomain() (domain.ScanResult, error) {
	status := domain.ScanStatus(p.Status)
	if status != domain.ScanClean && status != domain.ScanThreatFound {
		return domain.ScanResult{}, fmt.Errorf("unknown scan status %q", p.Status)
	}
	return domain.ScanResult{
		Status:        status,
		ThreatName:    p.ThreatName,
		ScannedAt:     p.ScannedAt,
		EngineVersion: p.EngineVersion,
	}, nil
}

// AnalysisPayload is the flattened wire form of an analysis result. Type
// selects which fields are meaningful.
type AnalysisPayload struct {
	Type                  string                        `json:"type"`
	FileType              string                        `json:"fileType,omitempty"`
	Extension             string                        `json:"extension,omitempty"`
	Format                string                        `json:"format,omitempty"`
	Description           string                        `json:"description"`
	CommonUses            []string                      `json:"commonUses,omitempty"`
	PotentialRisks        []string                      `json:"potentialRisks,omitempty"`
	Tags                  []string                      `json:"tags,omitempty"`
	EditSuggestions       []string                      `json:"editSuggestions,omitempty"`
	ConversionSuggestions []domain.ConversionSuggestion `json:"conversionSuggestions"`
}

// ToDomain converts the payload into the tagged union.
func (p AnalysisPayload) ToDomain() (domain.AnalysisResult, error) {
	switch domain.AnalysisKind(p.Type) {
	case domain.AnalysisFile:
		if p.FileType == "" {
			return domain.AnalysisResult{}, fmt.Errorf("file analysis missing fileType")
		}
		return domain.NewFileAnalysis(domain.FileAnalysis{
			FileType:              p.FileType,
			Extension:             p.Extension,
			Description:           p.Description,
			CommonUses:            p.CommonUses,
			PotentialRisks:        p.PotentialRisks,
			ConversionSuggestions: p.ConversionSuggestions,
		}), nil
	case domain.AnalysisImage:
		if p.Format == "" {
			return domain.AnalysisResult{}, fmt.Errorf("image analysis missing format")
		}
		return domain.NewImageAnalysis(domain.ImageAnalysis{
			Format:                p.Format,
			Description:           p.Description,
			Tags:                  p.Tags,
			EditSuggestions:       p.EditSuggestions,
			ConversionSuggestions: p.ConversionSuggestions,
		}), nil
	}
	return domain.AnalysisResult{}, fmt.Errorf("unknown analysis type %q", p.Type)
}

// ConversionPayload is the wire form of a conversion result.
type ConversionPayload struct {
	Content  string `json:"content"`
	IsBinary bool   `json:"isBinary"`
	MimeType string `json:"mimeType"`
}

// ToDomain converts the payload.
func (p ConversionPayload) ToDomain() domain.ConversionResult {
	return domain.ConversionResult{
		Content:  p.Content,
		IsBinary: p.IsBinary,
		MimeType: p.MimeType,
	}
}
