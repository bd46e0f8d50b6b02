// Package api serves books as HAL resources over HTTP.
//
// Routes:
//
//	GET    /books        list all books (cached for 60 seconds)
//	POST   /books        create a book from the title and author fields
//	GET    /books/:book  show one book
//	PUT    /books/:book  overwrite title and author of a book
//	DELETE /books/:book  delete a book
//
// Every /books/:book route resolves the book exactly once before its handler runs.
// A book that cannot be resolved yields a bare 404. Every response carries
// the HAL content type and a public Cache-Control directive, errors included.
package api
