package command

import (
	"context"
	"strings"
)

type MarkerCommandParser struct {
	Markers []Marker
}

func NewMarkerCommandParser() *MarkerCommandParser {
	return &MarkerCommandParser{Markers: Markers}
}

func (p *MarkerCommandParser) ParseCommand(ctx context.Context, req *Request) (Command, error) {
	for _, m := range p.Markers {
		if strings.Contains(req.Input, m.Glyph) {
			return m.Command, nil
		}
	}
	return None, nil
}

// FailbackCommandParser asks each parser in turn and returns the first
// recognized command. A parser error is remembered and the next one is tried.
type FailbackCommandParser struct {
	parsers []Parser
}

func NewFailbackCommandParser(parsers ...Parser) *FailbackCommandParser {
	return &FailbackCommandParser{parsers: parsers}
}

func (p *FailbackCommandParser) ParseCommand(ctx context.Context, req *Request) (Command, error) {
	var lastErr error
	for _, parser := range p.parsers {
		cmd, err := parser.ParseCommand(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		if cmd != None {
			return cmd, nil
		}
	}
	return None, lastErr
}
