package entities

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "active"
	LoanStatusReturned LoanStatus = "returned"
	LoanStatusLost     LoanStatus = "lost"
)

type ReservationStatus string

// Reservations only ever move forward: pending -> approved -> fulfilled.
// Cancellation is a hard delete and is only possible while pending.
const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusApproved  ReservationStatus = "approved"
	ReservationStatusFulfilled ReservationStatus = "fulfilled"
)

type Book struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Title           string `gorm:"index;size:512" json:"title"`
	Author          string `gorm:"index;size:256" json:"author"`
	Genre           string `gorm:"size:100" json:"genre,omitempty"`
	Language        string `gorm:"size:50" json:"language,omitempty"`
	ISBN            string `gorm:"index;size:20" json:"isbn,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	Summary         string `gorm:"type:text" json:"summary,omitempty"`

	// Available is false iff exactly one active loan references this book.
	// Only the loan and reservation workflows mutate it.
	Available bool `gorm:"default:true" json:"available"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index" json:"user_id"`
	BookID     uint       `gorm:"index" json:"book_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Status     LoanStatus `gorm:"index;size:20;default:'active'" json:"status"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOverdue reports whether an active loan is past its due date.
func (l Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanStatusActive && now.After(l.DueAt)
}

type Reservation struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	UserID     uint              `gorm:"index" json:"user_id"`
	BookID     uint              `gorm:"index" json:"book_id"`
	ReservedAt time.Time         `json:"reserved_at"`
	Status     ReservationStatus `gorm:"index;size:20;default:'pending'" json:"status"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Fine is a recorded payment event, not a standing balance. Payable fines
// for late returns are derived from loan dates on demand and only inserted
// here once paid. Lost-book fines are the exception: they are recorded
// immediately with Paid=false and settled later from the fines history.
type Fine struct {
	ID     uint            `gorm:"primaryKey" json:"id"`
	UserID uint            `gorm:"index" json:"user_id"`
	LoanID *uint           `gorm:"index" json:"loan_id,omitempty"`
	Amount decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	Paid   bool            `gorm:"default:false" json:"paid"`
	PaidAt *time.Time      `json:"paid_at,omitempty"`
	Note   string          `gorm:"size:256" json:"note,omitempty"`

	User User  `gorm:"foreignKey:UserID" json:"-"`
	Loan *Loan `gorm:"foreignKey:LoanID" json:"loan,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Announcement struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	AuthorID  uint   `gorm:"index" json:"author_id"`
	Title     string `gorm:"size:256" json:"title"`
	Body      string `gorm:"type:text" json:"body"`
	Published bool   `gorm:"default:false" json:"published"`

	Author User `gorm:"foreignKey:AuthorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (Loan) TableName() string {
	return "loans"
}

func (Reservation) TableName() string {
	return "reservations"
}

func (Fine) TableName() string {
	return "fines"
}

func (Announcement) TableName() string {
	return "announcements"
}
