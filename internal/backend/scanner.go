package backend

import (
	"bytes"
	"context"
	"time"

	"github.com/jwulff/fileforge/internal/domain"
)

// SignatureEngineVersion identifies the local scanner in scan results.
const SignatureEngineVersion = "fileforge-sig 1.0"

// Signature is a byte pattern that marks a file as a threat.
type Signature struct {
	Name    string
	Pattern []byte
}

// DefaultSignatures holds the industry-standard antivirus test string.
var DefaultSignatures = []Signature{
	{
		Name:    "EICAR-Test-File",
		Pattern: []byte(`X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`),
	},
}

// SignatureScanner scans file bytes locally against a signature list.
type SignatureScanner struct {
	Signatures []Signature
	Now        func() time.Time
}

// NewSignatureScanner returns a scanner using DefaultSignatures.
func NewSignatureScanner() *SignatureScanner {
	return &SignatureScanner{Signatures: DefaultSignatures, Now: time.Now}
}

// Scan reports the first matching signature, or clean.
func (s *SignatureScanner) Scan(ctx context.Context, file domain.File) (domain.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ScanResult{}, err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	result := domain.ScanResult{
		Status:        domain.ScanClean,
		ScannedAt:     now(),
		EngineVersion: SignatureEngineVersion,
	}
	for _, sig := range s.Signatures {
		if bytes.Contains(file.Bytes(), sig.Pattern) {
			result.Status = domain.ScanThreatFound
			result.ThreatName = sig.Name
			break
		}
	}
	return result, nil
}
