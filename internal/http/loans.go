package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/masonr9/CSC400Project-sub000/internal/audit"
	"github.com/masonr9/CSC400Project-sub000/internal/auth"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
	"github.com/masonr9/CSC400Project-sub000/internal/loans"
)

// LoanStore is the loan controller's read-only view of the loan repository.
// Mutations go through the loan service.
type LoanStore interface {
	ListLoansForUser(userID uint) ([]entities.Loan, error)
	ListAllLoans(limit, offset int) ([]entities.Loan, int64, error)
}

type LoansController struct {
	service  *loans.Service
	store    LoanStore
	auditor  *audit.Service
	sessions *auth.SessionManager
}

func NewLoansController(service *loans.Service, store LoanStore, auditor *audit.Service, sessions *auth.SessionManager) *LoansController {
	return &LoansController{
		service:  service,
		store:    store,
		auditor:  auditor,
		sessions: sessions,
	}
}

// MyLoansPage renders the member's loans, active first.
// GET /loans
func (lc *LoansController) MyLoansPage(c *gin.Context) {
	userID := GetUserID(c)

	memberLoans, err := lc.store.ListLoansForUser(userID)
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"loans": memberLoans, "count": len(memberLoans)})
		return
	}

	now := time.Now()
	overdue := 0
	for _, l := range memberLoans {
		if l.IsOverdue(now) {
			overdue++
		}
	}

	renderPage(c, lc.sessions, http.StatusOK, "loans", gin.H{
		"Loans":   memberLoans,
		"Overdue": overdue,
	})
}

// Return returns the member's own loan.
// POST /loans/:id/return
func (lc *LoansController) Return(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	msg, err := lc.service.Return(id, userID)
	lc.auditor.LogLoan(userID, "loan_returned", msg, id, err)
	lc.redirectWithResult(c, "/loans", msg, err)
}

// AllLoansPage renders every loan in the system for staff.
// GET /manage/loans (librarian)
func (lc *LoansController) AllLoansPage(c *gin.Context) {
	limit, offset, page := parsePagination(c, 50)

	allLoans, total, err := lc.store.ListAllLoans(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list all loans")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, PaginatedResponse{
			Data:    allLoans,
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+len(allLoans)) < total,
		})
		return
	}

	renderPage(c, lc.sessions, http.StatusOK, "manage-loans", gin.H{
		"Loans": allLoans,
		"Page":  page,
		"Total": total,
	})
}

// Borrow creates a loan directly at the desk, bypassing the reservation
// queue. The member and book come from form fields.
// POST /manage/loans (librarian)
func (lc *LoansController) Borrow(c *gin.Context) {
	memberID, err := strconv.ParseUint(c.PostForm("member_id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid member_id")
		return
	}
	bookID, err := strconv.ParseUint(c.PostForm("book_id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid book_id")
		return
	}

	msg, err := lc.service.Borrow(uint(memberID), uint(bookID))
	lc.auditor.LogLoan(GetUserID(c), "loan_created", msg, uint(bookID), err)
	lc.redirectWithResult(c, "/manage/loans", msg, err)
}

// MarkLost records a loan as lost and books an unpaid replacement fee
// against the member. The fee amount is a form field.
// POST /manage/loans/:id/lost (librarian)
func (lc *LoansController) MarkLost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	amountStr := strings.TrimSpace(c.PostForm("amount"))
	amount, err := decimal.NewFromString(amountStr)
	if amountStr == "" || err != nil {
		flashError(c, lc.sessions, "A replacement fee amount is required.")
		c.Redirect(http.StatusSeeOther, "/manage/loans")
		return
	}

	msg, err := lc.service.MarkLost(id, amount)
	lc.auditor.LogFine(GetUserID(c), "loan_lost", msg, amount.StringFixed(2), err)
	lc.redirectWithResult(c, "/manage/loans", msg, err)
}

// redirectWithResult flashes the workflow outcome and redirects. Known
// workflow refusals become red flashes on the target page; anything else is
// a 500.
func (lc *LoansController) redirectWithResult(c *gin.Context, target, msg string, err error) {
	switch {
	case err == nil:
		flashSuccess(c, lc.sessions, msg)
	case errors.Is(err, loans.ErrLoanNotFound),
		errors.Is(err, loans.ErrBookNotFound),
		errors.Is(err, loans.ErrBookUnavailable),
		errors.Is(err, loans.ErrFineAmountEmpty):
		flashError(c, lc.sessions, err.Error())
	default:
		respondInternalError(c, err, "loan workflow")
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}
