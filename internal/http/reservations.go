package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/masonr9/CSC400Project-sub000/internal/audit"
	"github.com/masonr9/CSC400Project-sub000/internal/auth"
	"github.com/masonr9/CSC400Project-sub000/internal/entities"
	"github.com/masonr9/CSC400Project-sub000/internal/reservations"
)

// ReservationStore is the reservation controller's read-only view of the
// reservation repository. Mutations go through the service.
type ReservationStore interface {
	ListReservationsForUser(userID uint) ([]entities.Reservation, error)
	ListOpenReservations() ([]entities.Reservation, error)
}

type ReservationsController struct {
	service  *reservations.Service
	store    ReservationStore
	auditor  *audit.Service
	sessions *auth.SessionManager
}

func NewReservationsController(service *reservations.Service, store ReservationStore, auditor *audit.Service, sessions *auth.SessionManager) *ReservationsController {
	return &ReservationsController{
		service:  service,
		store:    store,
		auditor:  auditor,
		sessions: sessions,
	}
}

// MyReservationsPage renders the member's reservations.
// GET /reservations
func (rc *ReservationsController) MyReservationsPage(c *gin.Context) {
	userID := GetUserID(c)

	mine, err := rc.store.ListReservationsForUser(userID)
	if err != nil {
		respondInternalError(c, err, "list reservations")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"reservations": mine, "count": len(mine)})
		return
	}

	renderPage(c, rc.sessions, http.StatusOK, "reservations", gin.H{
		"Reservations": mine,
	})
}

// Reserve places a reservation for the signed-in member.
// POST /reservations
func (rc *ReservationsController) Reserve(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.PostForm("book_id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid book_id")
		return
	}
	userID := GetUserID(c)

	msg, err := rc.service.Reserve(userID, uint(bookID))
	rc.auditor.LogReservation(userID, "reservation_created", msg, uint(bookID), err)
	rc.redirectWithResult(c, "/reservations", msg, err)
}

// Cancel deletes the member's own pending reservation.
// POST /reservations/:id/cancel
func (rc *ReservationsController) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	msg, err := rc.service.Cancel(id, userID)
	rc.auditor.LogReservation(userID, "reservation_cancelled", msg, id, err)
	rc.redirectWithResult(c, "/reservations", msg, err)
}

// PendingPage renders the staff queue of open reservations.
// GET /manage/reservations (librarian)
func (rc *ReservationsController) PendingPage(c *gin.Context) {
	open, err := rc.store.ListOpenReservations()
	if err != nil {
		respondInternalError(c, err, "list open reservations")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"reservations": open, "count": len(open)})
		return
	}

	renderPage(c, rc.sessions, http.StatusOK, "manage-reservations", gin.H{
		"Reservations": open,
	})
}

// Approve moves a pending reservation to approved.
// POST /manage/reservations/:id/approve (librarian)
func (rc *ReservationsController) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	msg, err := rc.service.Approve(id)
	rc.auditor.LogReservation(GetUserID(c), "reservation_approved", msg, id, err)
	rc.redirectWithResult(c, "/manage/reservations", msg, err)
}

// Fulfill hands the book over: creates the loan and closes the reservation.
// POST /manage/reservations/:id/fulfill (librarian)
func (rc *ReservationsController) Fulfill(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	msg, err := rc.service.Fulfill(id)
	rc.auditor.LogReservation(GetUserID(c), "reservation_fulfilled", msg, id, err)
	rc.redirectWithResult(c, "/manage/reservations", msg, err)
}

func (rc *ReservationsController) redirectWithResult(c *gin.Context, target, msg string, err error) {
	switch {
	case err == nil:
		flashSuccess(c, rc.sessions, msg)
	case errors.Is(err, reservations.ErrNotFound),
		errors.Is(err, reservations.ErrNotPending),
		errors.Is(err, reservations.ErrNotApproved),
		errors.Is(err, reservations.ErrBookOnLoan),
		errors.Is(err, reservations.ErrAlreadyReserved),
		errors.Is(err, reservations.ErrCannotCancel),
		errors.Is(err, reservations.ErrBookNotFound),
		errors.Is(err, reservations.ErrConflict):
		flashError(c, rc.sessions, err.Error())
	default:
		respondInternalError(c, err, "reservation workflow")
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}
