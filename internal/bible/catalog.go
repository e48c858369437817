// Package bible holds the static catalog of the 66 canonical books: name,
// canonical order, and chapter count. It is reference data, independent of
// whatever plans exist in the database — a reader can finish the whole Bible
// across several plans.
package bible

import "sort"

type Book struct {
	Name     string
	Order    int
	Chapters int
}

var books = []Book{
	// Old Testament
	{"Genesis", 1, 50},
	{"Exodus", 2, 40},
	{"Leviticus", 3, 27},
	{"Numbers", 4, 36},
	{"Deuteronomy", 5, 34},
	{"Joshua", 6, 24},
	{"Judges", 7, 21},
	{"Ruth", 8, 4},
	{"1 Samuel", 9, 31},
	{"2 Samuel", 10, 24},
	{"1 Kings", 11, 22},
	{"2 Kings", 12, 25},
	{"1 Chronicles", 13, 29},
	{"2 Chronicles", 14, 36},
	{"Ezra", 15, 10},
	{"Nehemiah", 16, 13},
	{"Esther", 17, 10},
	{"Job", 18, 42},
	{"Psalms", 19, 150},
	{"Proverbs", 20, 31},
	{"Ecclesiastes", 21, 12},
	{"Song of Solomon", 22, 8},
	{"Isaiah", 23, 66},
	{"Jeremiah", 24, 52},
	{"Lamentations", 25, 5},
	{"Ezekiel", 26, 48},
	{"Daniel", 27, 12},
	{"Hosea", 28, 14},
	{"Joel", 29, 3},
	{"Amos", 30, 9},
	{"Obadiah", 31, 1},
	{"Jonah", 32, 4},
	{"Micah", 33, 7},
	{"Nahum", 34, 3},
	{"Habakkuk", 35, 3},
	{"Zephaniah", 36, 3},
	{"Haggai", 37, 2},
	{"Zechariah", 38, 14},
	{"Malachi", 39, 4},
	// New Testament
	{"Matthew", 40, 28},
	{"Mark", 41, 16},
	{"Luke", 42, 24},
	{"John", 43, 21},
	{"Acts", 44, 28},
	{"Romans", 45, 16},
	{"1 Corinthians", 46, 16},
	{"2 Corinthians", 47, 13},
	{"Galatians", 48, 6},
	{"Ephesians", 49, 6},
	{"Philippians", 50, 4},
	{"Colossians", 51, 4},
	{"1 Thessalonians", 52, 5},
	{"2 Thessalonians", 53, 3},
	{"1 Timothy", 54, 6},
	{"2 Timothy", 55, 4},
	{"Titus", 56, 3},
	{"Philemon", 57, 1},
	{"Hebrews", 58, 13},
	{"James", 59, 5},
	{"1 Peter", 60, 5},
	{"2 Peter", 61, 3},
	{"1 John", 62, 5},
	{"2 John", 63, 1},
	{"3 John", 64, 1},
	{"Jude", 65, 1},
	{"Revelation", 66, 22},
}

var (
	byName        map[string]Book
	totalChapters int
)

func init() {
	byName = make(map[string]Book, len(books))
	for _, b := range books {
		byName[b.Name] = b
		totalChapters += b.Chapters
	}
}

// Books returns all 66 books in canonical order.
func Books() []Book {
	out := make([]Book, len(books))
	copy(out, books)
	return out
}

// Lookup returns the catalog entry for a book name.
func Lookup(name string) (Book, bool) {
	b, ok := byName[name]
	return b, ok
}

// TotalChapters returns the chapter count of the whole Bible (1189).
func TotalChapters() int {
	return totalChapters
}

// CanonicalOrder returns the 1-based canonical position of a book.
// Unknown names sort after every known book.
func CanonicalOrder(name string) int {
	if b, ok := byName[name]; ok {
		return b.Order
	}
	return len(books) + 1
}

// SortCanonical sorts book names in place into canonical order.
func SortCanonical(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return CanonicalOrder(names[i]) < CanonicalOrder(names[j])
	})
}
