package models

import (
	"time"
)

// LoanKind discriminates between book and equipment loans.
type LoanKind string

const (
	LoanKindBook      LoanKind = "book"
	LoanKindEquipment LoanKind = "equipment"
)

// Book is a library catalog entry.
type Book struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Title    string `json:"title" gorm:"not null;size:300"`
	Author   string `json:"author" gorm:"size:200"`
	Code     string `json:"code" gorm:"uniqueIndex;size:50"`
	Quantity int    `json:"quantity" gorm:"default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// Loan tracks a book or equipment checkout. Equipment loans leave BookID nil
// and describe the item in ItemDescription.
type Loan struct {
	ID   uint     `json:"id" gorm:"primaryKey"`
	Kind LoanKind `json:"kind" gorm:"not null;size:20;default:book"`

	BookID *uint `json:"book_id" gorm:"index"`
	Book   *Book `json:"book,omitempty" gorm:"foreignKey:BookID"`

	ItemDescription string `json:"item_description" gorm:"size:300"`
	BorrowerName    string `json:"borrower_name" gorm:"not null;size:200"`

	StudentID *uint    `json:"student_id" gorm:"index"`
	Student   *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`

	LoanDate   time.Time  `json:"loan_date" gorm:"type:date"`
	DueDate    *time.Time `json:"due_date" gorm:"type:date"`
	Returned   bool       `json:"returned" gorm:"default:false;index"`
	ReturnedAt *time.Time `json:"returned_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Loan) TableName() string {
	return "loans"
}
