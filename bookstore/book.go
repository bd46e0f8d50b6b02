package bookstore

// BookID is the primary key assigned by storage. The zero value means "not assigned yet".
type BookID = int64

// Book represents a single book as stored in the books table.
type Book struct {
	ID     BookID
	Title  string
	Author string
}

// Books is a collection of Book.
type Books = []Book

// NewBook creates a transient Book that has not been persisted yet.
func NewBook(title, author string) Book {
	return Book{
		Title:  title,
		Author: author,
	}
}

// BuildBook creates a Book with a storage-assigned ID, typically from a database row.
func BuildBook(id BookID, title, author string) Book {
	return Book{
		ID:     id,
		Title:  title,
		Author: author,
	}
}

// IsTransient reports whether the Book still waits for its first save.
func (b Book) IsTransient() bool {
	return b.ID == 0
}

// WithID returns a copy of the Book carrying the given ID.
func (b Book) WithID(id BookID) Book {
	b.ID = id
	return b
}
