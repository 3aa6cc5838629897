package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// Parser extracts plain UTF-8 text from uploaded documents. It is the concrete
// side of the ingestion seam: everything downstream sees only text.
type Parser struct {
	uploadsDir string
}

// Document is an extracted file: metadata plus the full text in document order.
type Document struct {
	Filename string
	FileType string
	FileSize int64
	Text     string
}

func NewParser(uploadsDir string) *Parser {
	return &Parser{uploadsDir: uploadsDir}
}

// ParseFile saves the upload and extracts its text.
func (p *Parser) ParseFile(filename string, reader io.Reader) (*Document, error) {
	filePath := filepath.Join(p.uploadsDir, filepath.Base(filename))
	if err := os.MkdirAll(p.uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	doc, err := p.ParsePath(filePath)
	if err != nil {
		return nil, err
	}
	doc.Filename = filepath.Base(filename)
	doc.FileSize = size
	return doc, nil
}

// ParsePath extracts text from a file already on disk.
func (p *Parser) ParsePath(path string) (*Document, error) {
	fileType := strings.ToLower(filepath.Ext(path))
	var text string

	switch fileType {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt":
		res, err := docconv.ConvertPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		text = res.Body
	case ".txt":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(content)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text extracted from %s (scanned image?)", filepath.Base(path))
	}

	return &Document{
		Filename: filepath.Base(path),
		FileType: fileType,
		Text:     text,
	}, nil
}
