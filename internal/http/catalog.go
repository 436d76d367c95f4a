package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/masonr9/CSC400Project-sub000/internal/audit"
	"github.com/masonr9/CSC400Project-sub000/internal/auth"
	"github.com/masonr9/CSC400Project-sub000/internal/database/books"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// CatalogStore is the catalog controller's view of the book repository.
type CatalogStore interface {
	ListBooks(search string, limit, offset int) ([]entities.Book, int64, error)
	GetBookByID(id uint) (*entities.Book, error)
	CreateBook(book *entities.Book) error
	UpdateBook(book *entities.Book) error
	DeleteBook(id uint) error
	CountBooks() (total, available int64, err error)
}

type CatalogController struct {
	store    CatalogStore
	auditor  *audit.Service
	sessions *auth.SessionManager
}

func NewCatalogController(store CatalogStore, auditor *audit.Service, sessions *auth.SessionManager) *CatalogController {
	return &CatalogController{
		store:    store,
		auditor:  auditor,
		sessions: sessions,
	}
}

// BooksPage renders the catalog with optional search.
// GET /
func (cc *CatalogController) BooksPage(c *gin.Context) {
	search := strings.TrimSpace(c.Query("q"))
	limit, offset, page := parsePagination(c, 25)

	books, total, err := cc.store.ListBooks(search, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	totalBooks, availableBooks, err := cc.store.CountBooks()
	if err != nil {
		respondInternalError(c, err, "count books")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, PaginatedResponse{
			Data:    books,
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+len(books)) < total,
		})
		return
	}

	renderPage(c, cc.sessions, http.StatusOK, "books", gin.H{
		"Books":          books,
		"Search":         search,
		"Page":           page,
		"Total":          total,
		"TotalBooks":     totalBooks,
		"AvailableBooks": availableBooks,
	})
}

// BookPage renders a single book.
// GET /books/:id
func (cc *CatalogController) BookPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.store.GetBookByID(id)
	if err != nil {
		respondNotFound(c, "book")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, book)
		return
	}

	renderPage(c, cc.sessions, http.StatusOK, "book", gin.H{
		"Book": book,
	})
}

// CreateBook adds a book to the catalog.
// POST /manage/books (librarian)
func (cc *CatalogController) CreateBook(c *gin.Context) {
	book, ok := cc.bookFromForm(c, &entities.Book{Available: true})
	if !ok {
		return
	}

	if err := cc.store.CreateBook(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	cc.auditor.LogCatalog(GetUserID(c), "book_created", book.Title, book.ID)
	flashSuccess(c, cc.sessions, "Book \""+book.Title+"\" added to the catalog.")
	c.Redirect(http.StatusSeeOther, "/books/"+strconv.FormatUint(uint64(book.ID), 10))
}

// UpdateBook edits a book's details. Availability is owned by the loan
// workflow and is never changed here.
// POST /manage/books/:id (librarian)
func (cc *CatalogController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	existing, err := cc.store.GetBookByID(id)
	if err != nil {
		respondNotFound(c, "book")
		return
	}

	book, ok := cc.bookFromForm(c, existing)
	if !ok {
		return
	}

	if err := cc.store.UpdateBook(book); err != nil {
		respondInternalError(c, err, "update book")
		return
	}

	cc.auditor.LogCatalog(GetUserID(c), "book_updated", book.Title, book.ID)
	flashSuccess(c, cc.sessions, "Book updated.")
	c.Redirect(http.StatusSeeOther, "/books/"+strconv.FormatUint(uint64(id), 10))
}

// DeleteBook removes a book from the catalog. Refused while the book has an
// active loan.
// POST /manage/books/:id/delete (librarian)
func (cc *CatalogController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.store.GetBookByID(id)
	if err != nil {
		respondNotFound(c, "book")
		return
	}

	if err := cc.store.DeleteBook(id); err != nil {
		if errors.Is(err, books.ErrBookOnLoan) {
			flashError(c, cc.sessions, "Cannot delete \""+book.Title+"\": it is currently on loan.")
			c.Redirect(http.StatusSeeOther, "/books/"+strconv.FormatUint(uint64(id), 10))
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	cc.auditor.LogCatalog(GetUserID(c), "book_deleted", book.Title, id)
	flashSuccess(c, cc.sessions, "Book \""+book.Title+"\" deleted.")
	c.Redirect(http.StatusSeeOther, "/")
}

// bookFromForm fills a book from POST form fields, validating the required
// ones. Responds with a 400 and returns false on invalid input.
func (cc *CatalogController) bookFromForm(c *gin.Context, book *entities.Book) (*entities.Book, bool) {
	title := strings.TrimSpace(c.PostForm("title"))
	author := strings.TrimSpace(c.PostForm("author"))
	if title == "" || author == "" {
		respondBadRequest(c, "title and author are required")
		return nil, false
	}

	book.Title = title
	book.Author = author
	book.Genre = strings.TrimSpace(c.PostForm("genre"))
	book.Language = strings.TrimSpace(c.PostForm("language"))
	book.ISBN = strings.TrimSpace(c.PostForm("isbn"))
	book.Summary = strings.TrimSpace(c.PostForm("summary"))

	if year := c.PostForm("publication_year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			respondBadRequest(c, "invalid publication year")
			return nil, false
		}
		book.PublicationYear = y
	}

	return book, true
}
