package models

import (
	"time"
)

// Term is a grading period ("bimestre") within a school year.
type Term struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"not null;size:50"`
	SchoolYear string `json:"school_year" gorm:"index;size:10"`
	Order      int    `json:"order" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Term) TableName() string {
	return "terms"
}

// Grade records a student's score for a subject in a term. Teachers may only
// author grades in their own subject; guardians and students see them
// read-only within their scope.
type Grade struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	StudentID uint     `json:"student_id" gorm:"index;not null"`
	Student   *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	TermID    uint     `json:"term_id" gorm:"index;not null"`
	Term      *Term    `json:"term,omitempty" gorm:"foreignKey:TermID"`

	Subject string  `json:"subject" gorm:"not null;size:100"`
	Value   float64 `json:"value" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Grade) TableName() string {
	return "grades"
}

// PendingTask is an outstanding assignment for a student.
type PendingTask struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	StudentID uint     `json:"student_id" gorm:"index;not null"`
	Student   *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`

	Subject     string     `json:"subject" gorm:"size:100"`
	Description string     `json:"description" gorm:"type:text"`
	DueDate     *time.Time `json:"due_date" gorm:"type:date"`
	Done        bool       `json:"done" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PendingTask) TableName() string {
	return "pending_tasks"
}

// LessonPlan is a teacher's weekly plan for one class group. The set of
// distinct class groups across a teacher's plans defines which students that
// teacher can see.
type LessonPlan struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	TeacherID uint     `json:"teacher_id" gorm:"index;not null"`
	Teacher   *Teacher `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`

	ClassGroup string    `json:"class_choice" gorm:"index;not null;size:10"`
	Shift      string    `json:"shift" gorm:"size:20"`
	Subject    string    `json:"subject" gorm:"size:100"`
	WeekStart  time.Time `json:"week_start" gorm:"type:date"`
	Content    string    `json:"content" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LessonPlan) TableName() string {
	return "lesson_plans"
}

// Warning is a disciplinary notice ("advertência") issued to a student.
type Warning struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	StudentID uint     `json:"student_id" gorm:"index;not null"`
	Student   *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`

	Reason   string    `json:"reason" gorm:"type:text;not null"`
	IssuedAt time.Time `json:"issued_at" gorm:"type:date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Warning) TableName() string {
	return "warnings"
}

// Suspension is a disciplinary suspension with a date range.
type Suspension struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	StudentID uint     `json:"student_id" gorm:"index;not null"`
	Student   *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`

	Reason    string    `json:"reason" gorm:"type:text;not null"`
	StartDate time.Time `json:"start_date" gorm:"type:date"`
	EndDate   time.Time `json:"end_date" gorm:"type:date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Suspension) TableName() string {
	return "suspensions"
}

// CalendarEvent is a school-wide event visible to every authenticated user.
type CalendarEvent struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:200"`
	Description string    `json:"description" gorm:"type:text"`
	Date        time.Time `json:"date" gorm:"type:date;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}
