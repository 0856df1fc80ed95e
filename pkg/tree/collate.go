package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benedict2310/siteindex/pkg/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collation selects how names are ordered within one folder.
type Collation string

const (
	// CollationLocale orders with the root-locale collator, so "a.html"
	// sorts before "B.html". Names the collator ranks equal fall back to
	// byte order.
	CollationLocale Collation = "locale"
	// CollationBytewise orders by raw bytes, so "B.html" sorts before
	// "a.html".
	CollationBytewise Collation = "bytewise"
)

// ParseCollation accepts "", "locale" and "bytewise".
func ParseCollation(v string) (Collation, error) {
	switch Collation(strings.ToLower(strings.TrimSpace(v))) {
	case "", CollationLocale:
		return CollationLocale, nil
	case CollationBytewise:
		return CollationBytewise, nil
	default:
		return "", fmt.Errorf("invalid collation %q (expected locale or bytewise)", v)
	}
}

func (c Collation) comparer() (func(a, b string) bool, error) {
	switch c {
	case "", CollationLocale:
		col := collate.New(language.Und)
		return func(a, b string) bool {
			if r := col.CompareString(a, b); r != 0 {
				return r < 0
			}
			return a < b
		}, nil
	case CollationBytewise:
		return func(a, b string) bool { return a < b }, nil
	default:
		return nil, fmt.Errorf("invalid collation %q (expected locale or bytewise)", string(c))
	}
}

func sortFolders(folders []*model.FolderNode, less func(a, b string) bool) {
	sort.SliceStable(folders, func(i, j int) bool {
		return less(folders[i].Name, folders[j].Name)
	})
}

func sortPages(pages []model.PageEntry, less func(a, b string) bool) {
	sort.SliceStable(pages, func(i, j int) bool {
		return less(pages[i].Name, pages[j].Name)
	})
}
