// Package queries provides tree-sitter query compilation, caching, and execution.
package queries

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/parser"
	"github.com/gnana997/wcspec/pkg/parser/queries/imports"
	"github.com/gnana997/wcspec/pkg/parser/queries/symbols"
)

// QueryType identifies which query to execute.
type QueryType int

const (
	// QueryTypeModules extracts module specifiers (imports, re-exports, require, import()).
	QueryTypeModules QueryType = iota
	// QueryTypeRegistrations locates likely custom element registration sites.
	QueryTypeRegistrations
)

// String returns the string representation of a QueryType.
func (qt QueryType) String() string {
	switch qt {
	case QueryTypeModules:
		return "modules"
	case QueryTypeRegistrations:
		return "registrations"
	default:
		return "unknown"
	}
}

// queryKey uniquely identifies a compiled query. TSX is a distinct grammar,
// so queries compiled for TypeScript cannot run on TSX trees.
type queryKey struct {
	lang  parser.Language
	isTSX bool
	qtype QueryType
}

// QueryManager manages tree-sitter query compilation and caching.
//
// Usage:
//
//	qm := NewQueryManager(parserManager, logger)
//	defer qm.Close()
//
//	specs, err := qm.ModuleSpecifiers(tree, parser.LanguageTypeScript, false, source)
type QueryManager struct {
	parserManager *parser.ParserManager
	cache         map[queryKey]*ts.Query
	mutex         sync.RWMutex
	logger        *slog.Logger
}

// NewQueryManager creates a new query manager. Logger can be nil.
func NewQueryManager(pm *parser.ParserManager, logger *slog.Logger) *QueryManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &QueryManager{
		parserManager: pm,
		cache:         make(map[queryKey]*ts.Query),
		logger:        logger,
	}
}

// GetQuery returns a compiled query for the grammar and type, compiling it on
// first access. Safe for concurrent use.
func (qm *QueryManager) GetQuery(lang parser.Language, isTSX bool, qtype QueryType) (*ts.Query, error) {
	if lang != parser.LanguageTypeScript {
		isTSX = false
	}
	key := queryKey{lang: lang, isTSX: isTSX, qtype: qtype}

	qm.mutex.RLock()
	query, exists := qm.cache[key]
	qm.mutex.RUnlock()

	if exists {
		return query, nil
	}

	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	if query, exists = qm.cache[key]; exists {
		return query, nil
	}

	queryString, err := getQueryString(lang, qtype)
	if err != nil {
		return nil, err
	}

	langPtr, err := qm.parserManager.GetLanguagePointer(lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to get language pointer for %s: %w", lang, err)
	}

	query, qerr := ts.NewQuery(ts.NewLanguage(langPtr), queryString)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile %s query for %s: %s", qtype, lang, qerr.Message)
	}

	qm.cache[key] = query

	qm.logger.Debug("compiled query",
		"language", lang.String(),
		"tsx", isTSX,
		"type", qtype.String())

	return query, nil
}

func getQueryString(lang parser.Language, qtype QueryType) (string, error) {
	switch qtype {
	case QueryTypeModules:
		if lang == parser.LanguageUnknown {
			break
		}
		return imports.ModuleQueries, nil
	case QueryTypeRegistrations:
		switch lang {
		case parser.LanguageTypeScript:
			return symbols.TSQueries, nil
		case parser.LanguageJavaScript:
			return symbols.JSQueries, nil
		}
	default:
		return "", fmt.Errorf("unknown query type: %d", qtype)
	}
	return "", fmt.Errorf("unsupported language for %s queries: %s", qtype, lang)
}

// ExecuteQuery runs a compiled query on a parse tree and returns structured matches.
func (qm *QueryManager) ExecuteQuery(tree *ts.Tree, query *ts.Query, source []byte) ([]QueryMatch, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if query == nil {
		return nil, fmt.Errorf("query is nil")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	iter := cursor.Matches(query, tree.RootNode(), source)
	captureNames := query.CaptureNames()

	var matches []QueryMatch
	for {
		match := iter.Next()
		if match == nil {
			break
		}

		var captures []QueryCapture
		for _, capture := range match.Captures {
			var captureName string
			if int(capture.Index) < len(captureNames) {
				captureName = captureNames[capture.Index]
			}

			// "module.source" → category="module", field="source"
			category, field := parseCaptureName(captureName)
			node := capture.Node

			captures = append(captures, QueryCapture{
				Name:     captureName,
				Category: category,
				Field:    field,
				Node:     &node,
				Text:     node.Utf8Text(source),
				Location: nodeLocation(&node),
			})
		}

		matches = append(matches, QueryMatch{
			PatternIndex: uint32(match.PatternIndex),
			Captures:     captures,
		})
	}

	return matches, nil
}

// ModuleSpecifiers returns the distinct module specifiers referenced by a
// file, in source order.
func (qm *QueryManager) ModuleSpecifiers(tree *ts.Tree, lang parser.Language, isTSX bool, source []byte) ([]string, error) {
	query, err := qm.GetQuery(lang, isTSX, QueryTypeModules)
	if err != nil {
		return nil, err
	}
	matches, err := qm.ExecuteQuery(tree, query, source)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var specs []string
	for _, m := range matches {
		callee := ""
		for _, c := range m.Captures {
			if c.Field == "callee" {
				callee = c.Text
			}
		}
		for _, c := range m.Captures {
			switch c.Field {
			case "source", "dynamic":
			case "required":
				if callee != "require" {
					continue
				}
			default:
				continue
			}
			if c.Text != "" && !seen[c.Text] {
				seen[c.Text] = true
				specs = append(specs, c.Text)
			}
		}
	}
	return specs, nil
}

// RegistrationKind classifies a registration site found by FindRegistrations.
type RegistrationKind string

const (
	RegistrationDefine    RegistrationKind = "define"
	RegistrationDecorator RegistrationKind = "decorator"
	RegistrationTagMap    RegistrationKind = "tag-map"
	RegistrationJSDoc     RegistrationKind = "jsdoc"
)

// RegistrationSite is a location that probably registers a custom element.
type RegistrationSite struct {
	Kind     RegistrationKind
	Location Location
}

var registrationDecorators = map[string]bool{"customElement": true, "Component": true}

// FindRegistrations returns the likely registration sites of a file. It is a
// syntactic filter only; tag names are not resolved.
func (qm *QueryManager) FindRegistrations(tree *ts.Tree, lang parser.Language, isTSX bool, source []byte) ([]RegistrationSite, error) {
	query, err := qm.GetQuery(lang, isTSX, QueryTypeRegistrations)
	if err != nil {
		return nil, err
	}
	matches, err := qm.ExecuteQuery(tree, query, source)
	if err != nil {
		return nil, err
	}

	var sites []RegistrationSite
	for _, m := range matches {
		byName := make(map[string]QueryCapture, len(m.Captures))
		for _, c := range m.Captures {
			byName[c.Name] = c
		}

		switch {
		case has(byName, "registration.call"):
			obj := byName["registration.object"].Text
			if byName["registration.method"].Text == "define" && strings.HasSuffix(obj, "customElements") {
				sites = append(sites, RegistrationSite{RegistrationDefine, byName["registration.call"].Location})
			}
		case has(byName, "decorator.site"):
			if registrationDecorators[byName["decorator.name"].Text] {
				sites = append(sites, RegistrationSite{RegistrationDecorator, byName["decorator.site"].Location})
			}
		case has(byName, "tagmap.site"):
			if byName["tagmap.name"].Text == "HTMLElementTagNameMap" {
				sites = append(sites, RegistrationSite{RegistrationTagMap, byName["tagmap.site"].Location})
			}
		case has(byName, "doc.comment"):
			c := byName["doc.comment"]
			if strings.HasPrefix(c.Text, "/**") && containsAny(c.Text, "@customElement", "@element", "@tagname") {
				sites = append(sites, RegistrationSite{RegistrationJSDoc, c.Location})
			}
		}
	}
	return sites, nil
}

func has(m map[string]QueryCapture, name string) bool {
	_, ok := m[name]
	return ok
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Close releases all compiled queries.
func (qm *QueryManager) Close() error {
	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	qm.logger.Debug("closing QueryManager", "queries_compiled", len(qm.cache))

	for key, query := range qm.cache {
		if query != nil {
			query.Close()
		}
		delete(qm.cache, key)
	}

	return nil
}

// QueryMatch represents a single pattern match from query execution.
type QueryMatch struct {
	PatternIndex uint32
	Captures     []QueryCapture
}

// QueryCapture represents a single captured node from a query match.
type QueryCapture struct {
	// Name is the full capture name (e.g., "module.source")
	Name string

	// Category is the part before the first dot (e.g., "module")
	Category string

	// Field is the rest (e.g., "source"); empty if the name has no dot
	Field string

	Node     *ts.Node
	Text     string
	Location Location
}

// Location represents a position in source code.
type Location struct {
	StartLine   uint32 // 1-based line number
	StartColumn uint32 // 1-based column number
	EndLine     uint32
	EndColumn   uint32
	StartByte   uint32 // 0-based byte offset
	EndByte     uint32
}

func parseCaptureName(name string) (category, field string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return name, ""
}

// nodeLocation converts tree-sitter's 0-based coordinates to 1-based
// line/column numbers.
func nodeLocation(node *ts.Node) Location {
	start := node.StartPosition()
	end := node.EndPosition()

	return Location{
		StartLine:   uint32(start.Row + 1),
		StartColumn: uint32(start.Column + 1),
		EndLine:     uint32(end.Row + 1),
		EndColumn:   uint32(end.Column + 1),
		StartByte:   uint32(node.StartByte()),
		EndByte:     uint32(node.EndByte()),
	}
}
