package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/jwulff/fileforge/internal/domain"
)

// Scanner checks a file for threats.
type Scanner interface {
	Scan(ctx context.Context, file domain.File) (domain.ScanResult, error)
}

// Service is the full external-service contract.
type Service interface {
	Scanner
	Analyze(ctx context.Context, file domain.File, status domain.ScanStatus) (domain.AnalysisResult, error)
	GenerateScripts(ctx context.Context, sourceFormat, targetFormat string) (map[string]string, error)
	Convert(ctx context.Context, file domain.File, targetFormat string) (domain.ConversionResult, error)
}

// DefaultTimeout bounds a single service call.
const DefaultTimeout = 60 * time.Second

// SocketBackend implements Service against the conversion daemon. Each call
// opens its own connection so independent calls can run concurrently.
type SocketBackend struct {
	path    string
	timeout time.Duration
}

// NewSocketBackend returns a backend dialing socketPath.
func NewSocketBackend(socketPath string, timeout time.Duration) *SocketBackend {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SocketBackend{path: socketPath, timeout: timeout}
}

func (b *SocketBackend) do(ctx context.Context, cmd Command) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	client, err := Connect(ctx, b.path)
	if err != nil {
		return Response{}, err
	}
	defer client.Close()

	resp, err := client.SendCommand(ctx, cmd)
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w", cmd.Cmd, err)
	}
	if !resp.OK {
		if resp.Error == "" {
			resp.Error = "request rejected"
		}
		return Response{}, fmt.Errorf("%s: %s", cmd.Cmd, resp.Error)
	}
	return resp, nil
}

// Scan asks the service to scan the file.
func (b *SocketBackend) Scan(ctx context.Context, file domain.File) (domain.ScanResult, error) {
	resp, err := b.do(ctx, Command{
		Cmd:      CmdScan,
		Name:     file.Name(),
		MimeType: file.MimeType(),
		Content:  file.Bytes(),
	})
	if err != nil {
		return domain.ScanResult{}, err
	}
	if resp.Scan == nil {
		return domain.ScanResult{}, fmt.Errorf("scan: empty response")
	}
	return resp.Scan.ToDomain()
}

// Analyze asks the service to classify the file.
func (b *SocketBackend) Analyze(ctx context.Context, file domain.File, status domain.ScanStatus) (domain.AnalysisResult, error) {
	resp, err := b.do(ctx, Command{
		Cmd:        CmdAnalyze,
		Name:       file.Name(),
		MimeType:   file.MimeType(),
		Content:    file.Bytes(),
		ScanStatus: string(status),
	})
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	if resp.Analysis == nil {
		return domain.AnalysisResult{}, fmt.Errorf("analyze: empty response")
	}
	return resp.Analysis.ToDomain()
}

// GenerateScripts asks for example conversion scripts between two formats.
func (b *SocketBackend) GenerateScripts(ctx context.Context, sourceFormat, targetFormat string) (map[string]string, error) {
	resp, err := b.do(ctx, Command{
		Cmd:          CmdScripts,
		SourceFormat: sourceFormat,
		TargetFormat: targetFormat,
	})
	if err != nil {
		return nil, err
	}
	if resp.Scripts == nil {
		return map[string]string{}, nil
	}
	return resp.Scripts, nil
}

// Convert asks the service to convert the file content.
func (b *SocketBackend) Convert(ctx context.Context, file domain.File, targetFormat string) (domain.ConversionResult, error) {
	resp, err := b.do(ctx, Command{
		Cmd:          CmdConvert,
		Name:         file.Name(),
		MimeType:     file.MimeType(),
		Content:      file.Bytes(),
		TargetFormat: targetFormat,
	})
	if err != nil {
		return domain.ConversionResult{}, err
	}
	if resp.Conversion == nil {
		return domain.ConversionResult{}, fmt.Errorf("convert: empty response")
	}
	return resp.Conversion.ToDomain(), nil
}
