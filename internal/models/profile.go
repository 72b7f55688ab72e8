package models

import (
	"time"
)

// Guardian is the domain profile of a student's legal guardian
// ("responsável"). A profile may exist without a login account; the identity
// linking service provisions one lazily.
type Guardian struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	AccountID *uint    `json:"account_id" gorm:"uniqueIndex"`
	Account   *Account `json:"-" gorm:"foreignKey:AccountID"`

	Name        string     `json:"name" gorm:"not null;size:200"`
	CPF         string     `json:"cpf" gorm:"size:14"`
	Email       string     `json:"email" gorm:"index;size:255"`
	PhoneNumber string     `json:"phone_number" gorm:"size:30"`
	Birthday    *time.Time `json:"birthday" gorm:"type:date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Guardian) TableName() string {
	return "guardians"
}

// Student is the pupil profile. ClassGroup ("turma") drives teacher row
// scoping; Absences/Attendances and DescriptiveComment are the only fields
// open to restricted updates by assistants and teachers respectively.
type Student struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	AccountID *uint    `json:"account_id" gorm:"uniqueIndex"`
	Account   *Account `json:"-" gorm:"foreignKey:AccountID"`

	GuardianID uint      `json:"guardian_id" gorm:"index;not null"`
	Guardian   *Guardian `json:"guardian,omitempty" gorm:"foreignKey:GuardianID"`

	Name        string     `json:"name" gorm:"not null;size:200"`
	CPF         string     `json:"cpf" gorm:"size:14"`
	Email       string     `json:"email" gorm:"index;size:255"`
	PhoneNumber string     `json:"phone_number" gorm:"size:30"`
	Birthday    *time.Time `json:"birthday" gorm:"type:date"`

	ClassGroup         string `json:"class_choice" gorm:"index;size:10"`
	EnrollmentMonth    string `json:"month_choice" gorm:"size:20"`
	SchoolYear         string `json:"school_year" gorm:"size:10"`
	Absences           *int   `json:"absences"`
	Attendances        *int   `json:"attendances"`
	DescriptiveComment string `json:"descriptive_comment" gorm:"type:text"`
	Active             bool   `json:"active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Student) TableName() string {
	return "students"
}

// Teacher is the instructor profile. Subject restricts which grades a teacher
// may author; class-group visibility derives from lesson plans, not from a
// field here.
type Teacher struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	AccountID *uint    `json:"account_id" gorm:"uniqueIndex"`
	Account   *Account `json:"-" gorm:"foreignKey:AccountID"`

	Name        string     `json:"name" gorm:"not null;size:200"`
	CPF         string     `json:"cpf" gorm:"size:14"`
	Email       string     `json:"email" gorm:"index;size:255"`
	PhoneNumber string     `json:"phone_number" gorm:"size:30"`
	Birthday    *time.Time `json:"birthday" gorm:"type:date"`

	Subject string `json:"subject" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Teacher) TableName() string {
	return "teachers"
}
