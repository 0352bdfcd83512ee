package domain

// AnalysisKind discriminates the AnalysisResult variants.
type AnalysisKind string

const (
	AnalysisFile  AnalysisKind = "file"
	AnalysisImage AnalysisKind = "image"
)

// FileAnalysis describes a generic document.
type FileAnalysis struct {
	FileType              string
	Extension             string
	Description           string
	CommonUses            []string
	PotentialRisks        []string
	ConversionSuggestions []ConversionSuggestion
}

// ImageAnalysis describes an image.
type ImageAnalysis struct {
	Format                string
	Description           string
	Tags                  []string
	EditSuggestions       []string
	ConversionSuggestions []ConversionSuggestion
}

// AnalysisResult is a tagged union: exactly one of File or Image is set,
// matching Kind. Build it with NewFileAnalysis or NewImageAnalysis.
type AnalysisResult struct {
	Kind  AnalysisKind
	File  *FileAnalysis
	Image *ImageAnalysis
}

func NewFileAnalysis(a FileAnalysis) AnalysisResult {
	return AnalysisResult{Kind: AnalysisFile, File: &a}
}

func NewImageAnalysis(a ImageAnalysis) AnalysisResult {
	return AnalysisResult{Kind: AnalysisImage, Image: &a}
}

// SourceFormat is the format name handed to script generation.
func (r AnalysisResult) SourceFormat() string {
	switch r.Kind {
	case AnalysisFile:
		return r.File.FileType
	case AnalysisImage:
		return r.Image.Format
	}
	return ""
}

// NativeFormat is the tag recorded as a history entry's FromFormat.
func (r AnalysisResult) NativeFormat() string {
	switch r.Kind {
	case AnalysisFile:
		return r.File.Extension
	case AnalysisImage:
		return r.Image.Format
	}
	return ""
}

// Description returns the human-readable summary of either variant.
func (r AnalysisResult) Description() string {
	switch r.Kind {
	case AnalysisFile:
		return r.File.Description
	case AnalysisImage:
		return r.Image.Description
	}
	return ""
}

// Suggestions returns the conversion candidates of either variant.
func (r AnalysisResult) Suggestions() []ConversionSuggestion {
	switch r.Kind {
	case AnalysisFile:
		return r.File.ConversionSuggestions
	case AnalysisImage:
		return r.Image.ConversionSuggestions
	}
	return nil
}

// Valid reports whether the variant pointer matches Kind.
func (r AnalysisResult) Valid() bool {
	switch r.Kind {
	case AnalysisFile:
		return r.File != nil && r.Image == nil
	case AnalysisImage:
		return r.Image != nil && r.File == nil
	}
	return false
}
