// Package category maps file extensions to the folder names used to
// organize a downloads directory.
package category

import (
	"path/filepath"
	"sort"
	"strings"
)

// Default is the category for extensions absent from the table
const Default = "others"

// Table is an immutable extension to category index. Build one with
// NewTable or BuiltinTable and share it freely; lookups are safe for
// concurrent use.
type Table struct {
	byExt      map[string]string
	categories []string
}

// NewTable builds a Table from a category to extension-list mapping.
// Extensions are normalized to a lowercase ".ext" form. When two
// categories claim the same extension the alphabetically first category
// wins, keeping construction deterministic regardless of map order.
func NewTable(categories map[string][]string) *Table {
	names := make([]string, 0, len(categories)+1)
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	byExt := make(map[string]string)
	for _, name := range names {
		for _, ext := range categories[name] {
			ext = NormalizeExt(ext)
			if ext == "" {
				continue
			}
			if _, taken := byExt[ext]; !taken {
				byExt[ext] = name
			}
		}
	}

	if _, ok := categories[Default]; !ok {
		names = append(names, Default)
		sort.Strings(names)
	}

	return &Table{byExt: byExt, categories: names}
}

// BuiltinTable returns the stock extension table
func BuiltinTable() *Table {
	return NewTable(BuiltinCategories())
}

// BuiltinCategories returns a fresh copy of the stock category mapping,
// suitable as a configuration default.
func BuiltinCategories() map[string][]string {
	return map[string][]string{
		"images":     {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp", ".svg", ".ico", ".eps", ".raw", ".cr2", ".nef"},
		"videos":     {".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".3gp", ".mxf", ".mts", ".vob"},
		"documents":  {".pdf", ".doc", ".docx", ".txt", ".xlsx", ".ppt", ".pptx", ".csv", ".odt", ".rtf", ".epub", ".odf"},
		"music":      {".mp3", ".wav", ".flac", ".m4a", ".ogg", ".midi", ".aac", ".wma", ".alac", ".amr"},
		"programs":   {".exe", ".msi", ".app", ".bat", ".cmd", ".py", ".jar", ".dll", ".sh"},
		"compressed": {".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz", ".iso"},
		"databases":  {".mdf", ".ndf", ".ldf", ".frm", ".ibd", ".myd", ".myi", ".sql", ".dump", ".conf", ".sqlite", ".sqlite3", ".db", ".db3", ".dbf", ".ctl", ".log", ".mdb", ".accdb", ".bkp", ".fdb", ".dbs", ".idx", ".hdb", ".bak"},
		Default:      {},
	}
}

// Resolve returns the category owning ext, or Default when the extension
// is unknown or empty. Lookups are case-insensitive.
func (t *Table) Resolve(ext string) string {
	ext = NormalizeExt(ext)
	if ext == "" {
		return Default
	}
	if name, ok := t.byExt[ext]; ok {
		return name
	}
	return Default
}

// ResolvePath resolves the category for a file path by its extension
func (t *Table) ResolvePath(path string) string {
	return t.Resolve(filepath.Ext(path))
}

// Categories returns the category names in sorted order
func (t *Table) Categories() []string {
	out := make([]string, len(t.categories))
	copy(out, t.categories)
	return out
}

// Len returns the number of extensions in the table
func (t *Table) Len() int {
	return len(t.byExt)
}

// NormalizeExt lowercases ext and guarantees a leading dot. An empty or
// dot-only extension normalizes to the empty string.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
