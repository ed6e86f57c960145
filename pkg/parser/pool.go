package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// grammarName names the grammar a pool parses with, for logs.
func (k poolKey) grammarName() string {
	if k.lang == LanguageTypeScript && k.isTSX {
		return "tsx"
	}
	return k.lang.String()
}

// parserPool hands out parsers bound to one grammar.
//
// Design:
// - Idle parsers wait in a buffered channel
// - Parsers are created on first demand, never more than maxSize
// - Once maxSize parsers exist, acquire waits for a release
// - Releasing into a closed pool closes the parser instead
//
// Thread Safety:
// - acquire and release are safe for concurrent use
// - mutex guards the created count and the closed flag
type parserPool struct {
	key     poolKey
	langPtr unsafe.Pointer
	maxSize int
	logger  *slog.Logger

	idle chan *ts.Parser

	mutex   sync.Mutex
	created int
	closed  bool
}

// newParserPool creates an empty pool for the grammar at langPtr.
//
// Parameters:
// - key: grammar family and TSX variant
// - langPtr: tree-sitter language pointer for that grammar
// - maxSize: upper bound on parsers ever created
// - logger: structured logger
func newParserPool(key poolKey, langPtr unsafe.Pointer, maxSize int, logger *slog.Logger) *parserPool {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &parserPool{
		key:     key,
		langPtr: langPtr,
		maxSize: maxSize,
		logger:  logger,
		idle:    make(chan *ts.Parser, maxSize),
	}
}

// acquire returns an idle parser, or a new one while under maxSize.
//
// Thread Safety:
// - Safe for concurrent use
// - Blocks while every parser is checked out
// - Fails once the pool is closed
func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case parser, ok := <-p.idle:
		if !ok {
			return nil, fmt.Errorf("%s parser pool is closed", p.key.grammarName())
		}
		return parser, nil
	default:
	}

	parser, err := p.grow()
	if err != nil || parser != nil {
		return parser, err
	}

	parser, ok := <-p.idle
	if !ok {
		return nil, fmt.Errorf("%s parser pool is closed", p.key.grammarName())
	}
	return parser, nil
}

// grow creates a parser if the pool may still grow. A nil parser with a nil
// error means the pool is at capacity.
func (p *parserPool) grow() (*ts.Parser, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return nil, fmt.Errorf("%s parser pool is closed", p.key.grammarName())
	}
	if p.created >= p.maxSize {
		return nil, nil
	}

	parser := ts.NewParser()
	if parser == nil {
		return nil, fmt.Errorf("failed to create %s parser", p.key.grammarName())
	}
	if err := parser.SetLanguage(ts.NewLanguage(p.langPtr)); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set %s language: %w", p.key.grammarName(), err)
	}

	p.created++
	p.logger.Debug("created parser",
		"grammar", p.key.grammarName(),
		"created", p.created,
		"max", p.maxSize)
	return parser, nil
}

// release puts parser back for reuse.
//
// Thread Safety:
// - Safe for concurrent use, including concurrently with close
func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		parser.Close()
		return
	}
	select {
	case p.idle <- parser:
	default:
		// Only reachable when a parser from another pool is released here.
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser", "grammar", p.key.grammarName())
	}
}

// close shuts the pool and frees its idle parsers. Parsers still checked
// out are freed when released.
func (p *parserPool) close() {
	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		return
	}
	p.closed = true
	close(p.idle)
	p.mutex.Unlock()

	freed := 0
	for parser := range p.idle {
		parser.Close()
		freed++
	}
	p.logger.Debug("closed parser pool",
		"grammar", p.key.grammarName(),
		"freed", freed)
}

// getCreatedCount returns how many parsers the pool has created.
func (p *parserPool) getCreatedCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.created
}
