package document

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vlasenkov/chatscribe/internal/logger"
)

// Artifact is the rendered output of one pipeline call: an opaque payload
// with its format tag and a suggested filename.
type Artifact struct {
	Data     []byte
	Format   Format
	Filename string
}

// Backend renders a Document into one concrete output format.
type Backend interface {
	Format() Format
	Render(doc *Document) ([]byte, error)
}

// Pipeline parses raw model output into the document schema and renders
// it through the backend matching the requested format. It does not retry
// internally; retries and the plain-text fallback belong to the caller.
type Pipeline struct {
	backends map[Format]Backend
	logger   logger.Logger
}

func NewPipeline(log logger.Logger) *Pipeline {
	return &Pipeline{
		backends: make(map[Format]Backend),
		logger:   log,
	}
}

func (p *Pipeline) RegisterBackend(b Backend) {
	p.backends[b.Format()] = b
}

func (p *Pipeline) Formats() []Format {
	formats := make([]Format, 0, len(p.backends))
	for f := range p.backends {
		formats = append(formats, f)
	}
	return formats
}

func (p *Pipeline) Render(raw string, format Format) (*Artifact, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	backend, ok := p.backends[format]
	if !ok {
		return nil, fmt.Errorf("no backend registered for format %q", format)
	}

	p.logger.WithFields(logger.Fields{
		"format": format,
		"blocks": len(doc.Blocks),
		"title":  doc.Meta.Title,
	}).Debug("Rendering document")

	data, err := backend.Render(doc)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Data:     data,
		Format:   format,
		Filename: fmt.Sprintf("document-%s.%s", uuid.NewString()[:8], format),
	}, nil
}
