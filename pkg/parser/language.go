package parser

import (
	"path/filepath"
	"strings"
)

// Language represents a grammar family supported by the parser.
type Language int

const (
	// LanguageTypeScript covers .ts/.mts/.cts/.tsx and declaration files.
	LanguageTypeScript Language = iota
	// LanguageJavaScript covers .js/.jsx/.mjs/.cjs.
	LanguageJavaScript
	// LanguageUnknown represents an unsupported file.
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// SourceExtensions lists the extensions probed when resolving an
// extensionless module specifier, in probe order.
var SourceExtensions = []string{".ts", ".tsx", ".d.ts", ".mts", ".js", ".jsx", ".mjs", ".cjs"}

// DetectLanguage detects the grammar family from a file path.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts", ".tsx":
		return LanguageTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// IsTSXFile reports whether the TSX grammar should be used for filePath.
func IsTSXFile(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".tsx"
}

// IsDeclarationFile reports whether filePath is a TypeScript declaration file
// (.d.ts, .d.mts, .d.cts).
func IsDeclarationFile(filePath string) bool {
	base := strings.ToLower(filepath.Base(filePath))
	for _, suffix := range []string{".d.ts", ".d.mts", ".d.cts"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// IsSupportedFile reports whether filePath can be parsed.
func IsSupportedFile(filePath string) bool {
	return DetectLanguage(filePath) != LanguageUnknown
}
