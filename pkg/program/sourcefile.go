package program

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/parser"
	"github.com/gnana997/wcspec/pkg/tsnode"
)

// SourceFile is one parsed file.
type SourceFile struct {
	Path   string
	Source []byte
	Lang   parser.Language
	IsTSX  bool

	// IsDeclaration is set for .d.ts files.
	IsDeclaration bool

	// IsLibrary is set for files under node_modules.
	IsLibrary bool

	// IsDefaultLib is set for the embedded DOM declarations.
	IsDefaultLib bool

	// Specifiers lists the module specifiers the file imports or re-exports.
	Specifiers []string

	tree     *ts.Tree
	isModule bool
}

// Root returns the root node of the file's syntax tree.
func (f *SourceFile) Root() *ts.Node {
	return f.tree.RootNode()
}

// Tree returns the file's syntax tree.
func (f *SourceFile) Tree() *ts.Tree {
	return f.tree
}

// Text returns the source text of n.
func (f *SourceFile) Text(n *ts.Node) string {
	return tsnode.Text(n, f.Source)
}

// Key returns the identity key of a node in this file.
func (f *SourceFile) Key(n *ts.Node) tsnode.Key {
	return tsnode.KeyOf(f.Path, n)
}

// IsModule reports whether the file is an ES module. Declarations in
// script files are global.
func (f *SourceFile) IsModule() bool {
	return f.isModule
}

func (f *SourceFile) close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}
