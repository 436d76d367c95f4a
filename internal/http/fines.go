package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/masonr9/CSC400Project-sub000/internal/audit"
	"github.com/masonr9/CSC400Project-sub000/internal/auth"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
	"github.com/masonr9/CSC400Project-sub000/internal/fines"
)

// FineStore is the fine controller's view of recorded fines for the staff
// pages. Member-facing reads and all mutations go through the fine service.
type FineStore interface {
	ListAllFines(limit, offset int) ([]entities.Fine, int64, error)
}

type FinesController struct {
	service  *fines.Service
	store    FineStore
	auditor  *audit.Service
	sessions *auth.SessionManager
}

func NewFinesController(service *fines.Service, store FineStore, auditor *audit.Service, sessions *auth.SessionManager) *FinesController {
	return &FinesController{
		service:  service,
		store:    store,
		auditor:  auditor,
		sessions: sessions,
	}
}

// MyFinesPage renders the member's payable fines (derived from late
// returns) alongside the recorded payment history.
// GET /fines
func (fc *FinesController) MyFinesPage(c *gin.Context) {
	userID := GetUserID(c)

	payable, err := fc.service.PayableForUser(userID)
	if err != nil {
		respondInternalError(c, err, "derive fines")
		return
	}
	history, err := fc.service.HistoryForUser(userID)
	if err != nil {
		respondInternalError(c, err, "fine history")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{
			"payable":       payable,
			"payable_total": fines.TotalAmount(payable).StringFixed(2),
			"history":       history.Fines,
			"unpaid_total":  history.UnpaidTotal.StringFixed(2),
		})
		return
	}

	renderPage(c, fc.sessions, http.StatusOK, "fines", gin.H{
		"Payable":      payable,
		"PayableTotal": fines.TotalAmount(payable),
		"History":      history.Fines,
		"UnpaidTotal":  history.UnpaidTotal,
	})
}

// Pay settles the derived fine for one late-returned loan.
// POST /fines/loans/:id/pay
func (fc *FinesController) Pay(c *gin.Context) {
	loanID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	msg, err := fc.service.Pay(userID, loanID)
	fc.auditor.LogFine(userID, "fine_paid", msg, "", err)
	fc.redirectWithResult(c, "/fines", msg, err)
}

// PayAll settles every derived fine for the member at once.
// POST /fines/pay-all
func (fc *FinesController) PayAll(c *gin.Context) {
	userID := GetUserID(c)

	msg, err := fc.service.PayAll(userID)
	fc.auditor.LogFine(userID, "fines_paid_all", msg, "", err)
	fc.redirectWithResult(c, "/fines", msg, err)
}

// Settle pays one of the member's own recorded unpaid fines (a lost-book
// replacement fee).
// POST /fines/:id/settle
func (fc *FinesController) Settle(c *gin.Context) {
	fineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	msg, err := fc.service.Settle(fineID, userID)
	fc.auditor.LogFine(userID, "fine_settled", msg, "", err)
	fc.redirectWithResult(c, "/fines", msg, err)
}

// AllFinesPage renders every recorded fine for staff.
// GET /manage/fines (librarian)
func (fc *FinesController) AllFinesPage(c *gin.Context) {
	limit, offset, page := parsePagination(c, 50)

	recorded, total, err := fc.store.ListAllFines(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list all fines")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, PaginatedResponse{
			Data:    recorded,
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+len(recorded)) < total,
		})
		return
	}

	renderPage(c, fc.sessions, http.StatusOK, "manage-fines", gin.H{
		"Fines": recorded,
		"Page":  page,
		"Total": total,
	})
}

// SettleRecorded settles any member's recorded unpaid fine from the desk.
// POST /manage/fines/:id/settle (librarian)
func (fc *FinesController) SettleRecorded(c *gin.Context) {
	fineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	msg, err := fc.service.SettleRecorded(fineID)
	fc.auditor.LogFine(GetUserID(c), "fine_settled_by_staff", msg, "", err)
	fc.redirectWithResult(c, "/manage/fines", msg, err)
}

func (fc *FinesController) redirectWithResult(c *gin.Context, target, msg string, err error) {
	switch {
	case err == nil:
		flashSuccess(c, fc.sessions, msg)
	case errors.Is(err, fines.ErrNotPayable),
		errors.Is(err, fines.ErrNothingToPay),
		errors.Is(err, fines.ErrFineNotFound):
		flashError(c, fc.sessions, err.Error())
	default:
		respondInternalError(c, err, "fine workflow")
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}
