package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
)

// fakeRepo is an in-memory repositories.Repository for service tests. All
// methods ignore the tx handle; WithTransaction runs the callback against the
// same store without rollback semantics.
type fakeRepo struct {
	mu     sync.Mutex
	nextID uint

	accounts    map[uint]*models.Account
	roles       map[models.RoleName]*models.Role
	tokens      map[uint]*models.ResetToken
	guardians   map[uint]*models.Guardian
	students    map[uint]*models.Student
	teachers    map[uint]*models.Teacher
	terms       map[uint]*models.Term
	grades      map[uint]*models.Grade
	tasks       map[uint]*models.PendingTask
	plans       map[uint]*models.LessonPlan
	warnings    map[uint]*models.Warning
	suspensions map[uint]*models.Suspension
	events      map[uint]*models.CalendarEvent
	books       map[uint]*models.Book
	loans       map[uint]*models.Loan
	rooms       map[uint]*models.Room
	reserves    map[uint]*models.Reservation
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		accounts:    make(map[uint]*models.Account),
		roles:       make(map[models.RoleName]*models.Role),
		tokens:      make(map[uint]*models.ResetToken),
		guardians:   make(map[uint]*models.Guardian),
		students:    make(map[uint]*models.Student),
		teachers:    make(map[uint]*models.Teacher),
		terms:       make(map[uint]*models.Term),
		grades:      make(map[uint]*models.Grade),
		tasks:       make(map[uint]*models.PendingTask),
		plans:       make(map[uint]*models.LessonPlan),
		warnings:    make(map[uint]*models.Warning),
		suspensions: make(map[uint]*models.Suspension),
		events:      make(map[uint]*models.CalendarEvent),
		books:       make(map[uint]*models.Book),
		loans:       make(map[uint]*models.Loan),
		rooms:       make(map[uint]*models.Room),
		reserves:    make(map[uint]*models.Reservation),
	}
}

func (f *fakeRepo) id() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return f.nextID
}

func sortedIDs[T any](m map[uint]T) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (f *fakeRepo) Account() repositories.AccountRepository         { return &fakeAccounts{f} }
func (f *fakeRepo) ResetToken() repositories.ResetTokenRepository   { return &fakeTokens{f} }
func (f *fakeRepo) Guardian() repositories.GuardianRepository       { return &fakeGuardians{f} }
func (f *fakeRepo) Student() repositories.StudentRepository         { return &fakeStudents{f} }
func (f *fakeRepo) Teacher() repositories.TeacherRepository         { return &fakeTeachers{f} }
func (f *fakeRepo) Term() repositories.TermRepository               { return &fakeTerms{f} }
func (f *fakeRepo) Grade() repositories.GradeRepository             { return &fakeGrades{f} }
func (f *fakeRepo) PendingTask() repositories.PendingTaskRepository { return &fakeTasks{f} }
func (f *fakeRepo) LessonPlan() repositories.LessonPlanRepository   { return &fakePlans{f} }
func (f *fakeRepo) Warning() repositories.WarningRepository         { return &fakeWarnings{f} }
func (f *fakeRepo) Suspension() repositories.SuspensionRepository   { return &fakeSuspensions{f} }
func (f *fakeRepo) CalendarEvent() repositories.CalendarEventRepository {
	return &fakeEvents{f}
}
func (f *fakeRepo) Book() repositories.BookRepository               { return &fakeBooks{f} }
func (f *fakeRepo) Loan() repositories.LoanRepository               { return &fakeLoans{f} }
func (f *fakeRepo) Room() repositories.RoomRepository               { return &fakeRooms{f} }
func (f *fakeRepo) Reservation() repositories.ReservationRepository { return &fakeReserves{f} }

func (f *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                   { return nil }

// ===== ACCOUNTS =====

type fakeAccounts struct{ f *fakeRepo }

func (r *fakeAccounts) Create(ctx context.Context, tx *gorm.DB, account *models.Account) error {
	account.ID = r.f.id()
	r.f.accounts[account.ID] = account
	return nil
}

func (r *fakeAccounts) Update(ctx context.Context, tx *gorm.DB, account *models.Account) error {
	if _, ok := r.f.accounts[account.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.accounts[account.ID] = account
	return nil
}

func (r *fakeAccounts) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.accounts, id)
	return nil
}

func (r *fakeAccounts) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Account, error) {
	if a, ok := r.f.accounts[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAccounts) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.Account, error) {
	for _, id := range sortedIDs(r.f.accounts) {
		if r.f.accounts[id].Username == username {
			return r.f.accounts[id], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAccounts) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Account, error) {
	for _, id := range sortedIDs(r.f.accounts) {
		a := r.f.accounts[id]
		if a.Email != nil && strings.EqualFold(*a.Email, email) {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAccounts) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Account, int64, error) {
	var out []*models.Account
	for _, id := range sortedIDs(r.f.accounts) {
		out = append(out, r.f.accounts[id])
	}
	total := int64(len(out))
	return paginate(out, limit, offset), total, nil
}

func (r *fakeAccounts) UsernameExists(ctx context.Context, tx *gorm.DB, username string, excludeID uint) (bool, error) {
	for id, a := range r.f.accounts {
		if a.Username == username && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAccounts) GetRoleByName(ctx context.Context, tx *gorm.DB, name models.RoleName) (*models.Role, error) {
	if role, ok := r.f.roles[name]; ok {
		return role, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAccounts) EnsureRole(ctx context.Context, tx *gorm.DB, name models.RoleName) (*models.Role, error) {
	if role, ok := r.f.roles[name]; ok {
		return role, nil
	}
	role := &models.Role{ID: r.f.id(), Name: name}
	r.f.roles[name] = role
	return role, nil
}

func (r *fakeAccounts) AddRole(ctx context.Context, tx *gorm.DB, account *models.Account, role *models.Role) error {
	if account.HasRole(role.Name) {
		return nil
	}
	account.Roles = append(account.Roles, *role)
	return nil
}

// ===== RESET TOKENS =====

type fakeTokens struct{ f *fakeRepo }

func (r *fakeTokens) Create(ctx context.Context, tx *gorm.DB, token *models.ResetToken) error {
	token.ID = r.f.id()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	r.f.tokens[token.ID] = token
	return nil
}

func (r *fakeTokens) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.ResetToken, error) {
	for _, id := range sortedIDs(r.f.tokens) {
		t := r.f.tokens[id]
		if t.Token == token {
			if account, ok := r.f.accounts[t.AccountID]; ok {
				t.Account = account
			}
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTokens) DeleteByAccount(ctx context.Context, tx *gorm.DB, accountID uint) error {
	for id, t := range r.f.tokens {
		if t.AccountID == accountID {
			delete(r.f.tokens, id)
		}
	}
	return nil
}

func (r *fakeTokens) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.tokens, id)
	return nil
}

// ===== GUARDIANS =====

type fakeGuardians struct{ f *fakeRepo }

func (r *fakeGuardians) Create(ctx context.Context, tx *gorm.DB, guardian *models.Guardian) error {
	guardian.ID = r.f.id()
	r.f.guardians[guardian.ID] = guardian
	return nil
}

func (r *fakeGuardians) Update(ctx context.Context, tx *gorm.DB, guardian *models.Guardian) error {
	if _, ok := r.f.guardians[guardian.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.guardians[guardian.ID] = guardian
	return nil
}

func (r *fakeGuardians) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.guardians, id)
	return nil
}

func (r *fakeGuardians) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Guardian, error) {
	if g, ok := r.f.guardians[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGuardians) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Guardian, error) {
	for _, id := range sortedIDs(r.f.guardians) {
		if strings.EqualFold(r.f.guardians[id].Email, email) {
			return r.f.guardians[id], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGuardians) GetByAccount(ctx context.Context, tx *gorm.DB, accountID uint) (*models.Guardian, error) {
	for _, id := range sortedIDs(r.f.guardians) {
		g := r.f.guardians[id]
		if g.AccountID != nil && *g.AccountID == accountID {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGuardians) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Guardian, int64, error) {
	var out []*models.Guardian
	for _, id := range sortedIDs(r.f.guardians) {
		out = append(out, r.f.guardians[id])
	}
	total := int64(len(out))
	return paginate(out, limit, offset), total, nil
}

// ===== STUDENTS =====

type fakeStudents struct{ f *fakeRepo }

func (r *fakeStudents) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	student.ID = r.f.id()
	r.f.students[student.ID] = student
	return nil
}

func (r *fakeStudents) Update(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	if _, ok := r.f.students[student.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.students[student.ID] = student
	return nil
}

func (r *fakeStudents) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	st, ok := r.f.students[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, val := range fields {
		switch col {
		case "name":
			st.Name = val.(string)
		case "cpf":
			st.CPF = val.(string)
		case "email":
			st.Email = val.(string)
		case "phone_number":
			st.PhoneNumber = val.(string)
		case "guardian_id":
			st.GuardianID = val.(uint)
		case "class_group":
			st.ClassGroup = val.(string)
		case "enrollment_month":
			st.EnrollmentMonth = val.(string)
		case "school_year":
			st.SchoolYear = val.(string)
		case "absences":
			n := val.(int)
			st.Absences = &n
		case "attendances":
			n := val.(int)
			st.Attendances = &n
		case "descriptive_comment":
			st.DescriptiveComment = val.(string)
		case "active":
			st.Active = val.(bool)
		}
	}
	return nil
}

func (r *fakeStudents) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.students, id)
	return nil
}

func (r *fakeStudents) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	if st, ok := r.f.students[id]; ok {
		return st, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudents) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Student, error) {
	for _, id := range sortedIDs(r.f.students) {
		if strings.EqualFold(r.f.students[id].Email, email) {
			return r.f.students[id], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudents) GetByAccount(ctx context.Context, tx *gorm.DB, accountID uint) (*models.Student, error) {
	for _, id := range sortedIDs(r.f.students) {
		st := r.f.students[id]
		if st.AccountID != nil && *st.AccountID == accountID {
			return st, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudents) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	var out []*models.Student
	for _, id := range sortedIDs(r.f.students) {
		st := r.f.students[id]
		if len(filters.ClassGroups) > 0 && !containsString(filters.ClassGroups, st.ClassGroup) {
			continue
		}
		if len(filters.StudentIDs) > 0 && !containsUint(filters.StudentIDs, st.ID) {
			continue
		}
		if filters.GuardianID != nil && st.GuardianID != *filters.GuardianID {
			continue
		}
		if filters.SchoolYear != nil && st.SchoolYear != *filters.SchoolYear {
			continue
		}
		if filters.Active != nil && st.Active != *filters.Active {
			continue
		}
		if filters.Search != nil && !strings.Contains(strings.ToLower(st.Name), strings.ToLower(*filters.Search)) {
			continue
		}
		out = append(out, st)
	}
	total := int64(len(out))
	return paginate(out, filters.Limit, filters.Offset), total, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsUint(list []uint, v uint) bool {
	for _, u := range list {
		if u == v {
			return true
		}
	}
	return false
}

// ===== TEACHERS =====

type fakeTeachers struct{ f *fakeRepo }

func (r *fakeTeachers) Create(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	teacher.ID = r.f.id()
	r.f.teachers[teacher.ID] = teacher
	return nil
}

func (r *fakeTeachers) Update(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	if _, ok := r.f.teachers[teacher.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.teachers[teacher.ID] = teacher
	return nil
}

func (r *fakeTeachers) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.teachers, id)
	return nil
}

func (r *fakeTeachers) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error) {
	if t, ok := r.f.teachers[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTeachers) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Teacher, error) {
	for _, id := range sortedIDs(r.f.teachers) {
		if strings.EqualFold(r.f.teachers[id].Email, email) {
			return r.f.teachers[id], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTeachers) GetByAccount(ctx context.Context, tx *gorm.DB, accountID uint) (*models.Teacher, error) {
	for _, id := range sortedIDs(r.f.teachers) {
		t := r.f.teachers[id]
		if t.AccountID != nil && *t.AccountID == accountID {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTeachers) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Teacher, int64, error) {
	var out []*models.Teacher
	for _, id := range sortedIDs(r.f.teachers) {
		out = append(out, r.f.teachers[id])
	}
	total := int64(len(out))
	return paginate(out, limit, offset), total, nil
}

// ===== TERMS =====

type fakeTerms struct{ f *fakeRepo }

func (r *fakeTerms) Create(ctx context.Context, tx *gorm.DB, term *models.Term) error {
	term.ID = r.f.id()
	r.f.terms[term.ID] = term
	return nil
}

func (r *fakeTerms) Update(ctx context.Context, tx *gorm.DB, term *models.Term) error {
	if _, ok := r.f.terms[term.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.terms[term.ID] = term
	return nil
}

func (r *fakeTerms) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.terms, id)
	return nil
}

func (r *fakeTerms) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Term, error) {
	if t, ok := r.f.terms[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTerms) List(ctx context.Context, tx *gorm.DB, schoolYear string) ([]*models.Term, error) {
	var out []*models.Term
	for _, id := range sortedIDs(r.f.terms) {
		t := r.f.terms[id]
		if schoolYear != "" && t.SchoolYear != schoolYear {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// ===== GRADES =====

type fakeGrades struct{ f *fakeRepo }

func (r *fakeGrades) Create(ctx context.Context, tx *gorm.DB, grade *models.Grade) error {
	grade.ID = r.f.id()
	r.f.grades[grade.ID] = grade
	return nil
}

func (r *fakeGrades) Update(ctx context.Context, tx *gorm.DB, grade *models.Grade) error {
	if _, ok := r.f.grades[grade.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.grades[grade.ID] = grade
	return nil
}

func (r *fakeGrades) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.grades, id)
	return nil
}

func (r *fakeGrades) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Grade, error) {
	if g, ok := r.f.grades[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGrades) List(ctx context.Context, tx *gorm.DB, filters repositories.GradeFilters) ([]*models.Grade, int64, error) {
	var out []*models.Grade
	for _, id := range sortedIDs(r.f.grades) {
		g := r.f.grades[id]
		if len(filters.StudentIDs) > 0 && !containsUint(filters.StudentIDs, g.StudentID) {
			continue
		}
		if filters.TermID != nil && g.TermID != *filters.TermID {
			continue
		}
		if filters.Subject != nil && g.Subject != *filters.Subject {
			continue
		}
		out = append(out, g)
	}
	total := int64(len(out))
	return paginate(out, filters.Limit, filters.Offset), total, nil
}

// ===== PENDING TASKS =====

type fakeTasks struct{ f *fakeRepo }

func (r *fakeTasks) Create(ctx context.Context, tx *gorm.DB, task *models.PendingTask) error {
	task.ID = r.f.id()
	r.f.tasks[task.ID] = task
	return nil
}

func (r *fakeTasks) Update(ctx context.Context, tx *gorm.DB, task *models.PendingTask) error {
	if _, ok := r.f.tasks[task.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.tasks[task.ID] = task
	return nil
}

func (r *fakeTasks) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.tasks, id)
	return nil
}

func (r *fakeTasks) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PendingTask, error) {
	if t, ok := r.f.tasks[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTasks) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentScopedFilters) ([]*models.PendingTask, int64, error) {
	var out []*models.PendingTask
	for _, id := range sortedIDs(r.f.tasks) {
		t := r.f.tasks[id]
		if len(filters.StudentIDs) > 0 && !containsUint(filters.StudentIDs, t.StudentID) {
			continue
		}
		out = append(out, t)
	}
	total := int64(len(out))
	return paginate(out, filters.Limit, filters.Offset), total, nil
}

// ===== LESSON PLANS =====

type fakePlans struct{ f *fakeRepo }

func (r *fakePlans) Create(ctx context.Context, tx *gorm.DB, plan *models.LessonPlan) error {
	plan.ID = r.f.id()
	r.f.plans[plan.ID] = plan
	return nil
}

func (r *fakePlans) Update(ctx context.Context, tx *gorm.DB, plan *models.LessonPlan) error {
	if _, ok := r.f.plans[plan.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.plans[plan.ID] = plan
	return nil
}

func (r *fakePlans) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.plans, id)
	return nil
}

func (r *fakePlans) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.LessonPlan, error) {
	if p, ok := r.f.plans[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePlans) List(ctx context.Context, tx *gorm.DB, filters repositories.LessonPlanFilters) ([]*models.LessonPlan, int64, error) {
	var out []*models.LessonPlan
	for _, id := range sortedIDs(r.f.plans) {
		p := r.f.plans[id]
		if filters.TeacherID != nil && p.TeacherID != *filters.TeacherID {
			continue
		}
		if filters.ClassGroup != nil && p.ClassGroup != *filters.ClassGroup {
			continue
		}
		if filters.Shift != nil && p.Shift != *filters.Shift {
			continue
		}
		out = append(out, p)
	}
	total := int64(len(out))
	return paginate(out, filters.Limit, filters.Offset), total, nil
}

func (r *fakePlans) ClassGroupsForTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, id := range sortedIDs(r.f.plans) {
		p := r.f.plans[id]
		if p.TeacherID == teacherID && !seen[p.ClassGroup] {
			seen[p.ClassGroup] = true
			out = append(out, p.ClassGroup)
		}
	}
	return out, nil
}

func (r *fakePlans) Options(ctx context.Context, tx *gorm.DB) ([]string, []string, error) {
	groupSeen := make(map[string]bool)
	shiftSeen := make(map[string]bool)
	var groups, shifts []string
	for _, id := range sortedIDs(r.f.plans) {
		p := r.f.plans[id]
		if !groupSeen[p.ClassGroup] {
			groupSeen[p.ClassGroup] = true
			groups = append(groups, p.ClassGroup)
		}
		if p.Shift != "" && !shiftSeen[p.Shift] {
			shiftSeen[p.Shift] = true
			shifts = append(shifts, p.Shift)
		}
	}
	return groups, shifts, nil
}

// ===== WARNINGS =====

type fakeWarnings struct{ f *fakeRepo }

func (r *fakeWarnings) Create(ctx context.Context, tx *gorm.DB, warning *models.Warning) error {
	warning.ID = r.f.id()
	r.f.warnings[warning.ID] = warning
	return nil
}

func (r *fakeWarnings) Update(ctx context.Context, tx *gorm.DB, warning *models.Warning) error {
	if _, ok := r.f.warnings[warning.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.warnings[warning.ID] = warning
	return nil
}

func (r *fakeWarnings) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.warnings, id)
	return nil
}

func (r *fakeWarnings) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Warning, error) {
	if w, ok := r.f.warnings[id]; ok {
		return w, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeWarnings) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentScopedFilters) ([]*models.Warning, int64, error) {
	var out []*models.Warning
	for _, id := range sortedIDs(r.f.warnings) {
		w := r.f.warnings[id]
		if len(filters.StudentIDs) > 0 && !containsUint(filters.StudentIDs, w.StudentID) {
			continue
		}
		out = append(out, w)
	}
	total := int64(len(out))
	return paginate(out, filters.Limit, filters.Offset), total, nil
}

// ===== SUSPENSIONS =====

type fakeSuspensions struct{ f *fakeRepo }

func (r *fakeSuspensions) Create(ctx context.Context, tx *gorm.DB, suspension *models.Suspension) error {
	suspension.ID = r.f.id()
	r.f.suspensions[suspension.ID] = suspension
	return nil
}

func (r *fakeSuspensions) Update(ctx context.Context, tx *gorm.DB, suspension *models.Suspension) error {
	if _, ok := r.f.suspensions[suspension.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.suspensions[suspension.ID] = suspension
	return nil
}

func (r *fakeSuspensions) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.suspensions, id)
	return nil
}

func (r *fakeSuspensions) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Suspension, error) {
	if s, ok := r.f.suspensions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSuspensions) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentScopedFilters) ([]*models.Suspension, int64, error) {
	var out []*models.Suspension
	for _, id := range sortedIDs(r.f.suspensions) {
		s := r.f.suspensions[id]
		if len(filters.StudentIDs) > 0 && !containsUint(filters.StudentIDs, s.StudentID) {
			continue
		}
		out = append(out, s)
	}
	total := int64(len(out))
	return paginate(out, filters.Limit, filters.Offset), total, nil
}

// ===== CALENDAR =====

type fakeEvents struct{ f *fakeRepo }

func (r *fakeEvents) Create(ctx context.Context, tx *gorm.DB, event *models.CalendarEvent) error {
	event.ID = r.f.id()
	r.f.events[event.ID] = event
	return nil
}

func (r *fakeEvents) Update(ctx context.Context, tx *gorm.DB, event *models.CalendarEvent) error {
	if _, ok := r.f.events[event.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.events[event.ID] = event
	return nil
}

func (r *fakeEvents) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.events, id)
	return nil
}

func (r *fakeEvents) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CalendarEvent, error) {
	if e, ok := r.f.events[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEvents) List(ctx context.Context, tx *gorm.DB, filters repositories.CalendarEventFilters) ([]*models.CalendarEvent, int64, error) {
	var out []*models.CalendarEvent
	for _, id := range sortedIDs(r.f.events) {
		e := r.f.events[id]
		if filters.DateFrom != nil && e.Date.Before(*filters.DateFrom) {
			continue
		}
		if filters.DateTo != nil && e.Date.After(*filters.DateTo) {
			continue
		}
		out = append(out, e)
	}
	total := int64(len(out))
	return paginate(out, filters.Limit, filters.Offset), total, nil
}

// ===== BOOKS =====

type fakeBooks struct{ f *fakeRepo }

func (r *fakeBooks) Create(ctx context.Context, tx *gorm.DB, book *models.Book) error {
	book.ID = r.f.id()
	r.f.books[book.ID] = book
	return nil
}

func (r *fakeBooks) Update(ctx context.Context, tx *gorm.DB, book *models.Book) error {
	if _, ok := r.f.books[book.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.books[book.ID] = book
	return nil
}

func (r *fakeBooks) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.books, id)
	return nil
}

func (r *fakeBooks) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Book, error) {
	if b, ok := r.f.books[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeBooks) List(ctx context.Context, tx *gorm.DB, search string, limit, offset int) ([]*models.Book, int64, error) {
	var out []*models.Book
	for _, id := range sortedIDs(r.f.books) {
		b := r.f.books[id]
		if search != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(search)) {
			continue
		}
		out = append(out, b)
	}
	total := int64(len(out))
	return paginate(out, limit, offset), total, nil
}

// ===== LOANS =====

type fakeLoans struct{ f *fakeRepo }

func (r *fakeLoans) Create(ctx context.Context, tx *gorm.DB, loan *models.Loan) error {
	loan.ID = r.f.id()
	r.f.loans[loan.ID] = loan
	return nil
}

func (r *fakeLoans) Update(ctx context.Context, tx *gorm.DB, loan *models.Loan) error {
	if _, ok := r.f.loans[loan.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.loans[loan.ID] = loan
	return nil
}

func (r *fakeLoans) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.loans, id)
	return nil
}

func (r *fakeLoans) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Loan, error) {
	if l, ok := r.f.loans[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLoans) List(ctx context.Context, tx *gorm.DB, filters repositories.LoanFilters) ([]*models.Loan, int64, error) {
	var out []*models.Loan
	for _, id := range sortedIDs(r.f.loans) {
		l := r.f.loans[id]
		if filters.Returned != nil && l.Returned != *filters.Returned {
			continue
		}
		if filters.Kind != nil && l.Kind != *filters.Kind {
			continue
		}
		if filters.StudentID != nil && (l.StudentID == nil || *l.StudentID != *filters.StudentID) {
			continue
		}
		if len(filters.StudentIDs) > 0 && (l.StudentID == nil || !containsUint(filters.StudentIDs, *l.StudentID)) {
			continue
		}
		if filters.Search != nil && !strings.Contains(strings.ToLower(l.BorrowerName), strings.ToLower(*filters.Search)) {
			continue
		}
		out = append(out, l)
	}
	total := int64(len(out))
	return paginate(out, filters.Limit, filters.Offset), total, nil
}

func (r *fakeLoans) CountActiveByBook(ctx context.Context, tx *gorm.DB, bookID uint) (int64, error) {
	var count int64
	for _, l := range r.f.loans {
		if l.BookID != nil && *l.BookID == bookID && !l.Returned {
			count++
		}
	}
	return count, nil
}

// ===== ROOMS =====

type fakeRooms struct{ f *fakeRepo }

func (r *fakeRooms) Create(ctx context.Context, tx *gorm.DB, room *models.Room) error {
	room.ID = r.f.id()
	r.f.rooms[room.ID] = room
	return nil
}

func (r *fakeRooms) Update(ctx context.Context, tx *gorm.DB, room *models.Room) error {
	if _, ok := r.f.rooms[room.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.rooms[room.ID] = room
	return nil
}

func (r *fakeRooms) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.rooms, id)
	return nil
}

func (r *fakeRooms) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Room, error) {
	if room, ok := r.f.rooms[id]; ok {
		return room, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRooms) List(ctx context.Context, tx *gorm.DB) ([]*models.Room, error) {
	var out []*models.Room
	for _, id := range sortedIDs(r.f.rooms) {
		out = append(out, r.f.rooms[id])
	}
	return out, nil
}

// ===== RESERVATIONS =====

type fakeReserves struct{ f *fakeRepo }

func (r *fakeReserves) Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	reservation.ID = r.f.id()
	r.f.reserves[reservation.ID] = reservation
	return nil
}

func (r *fakeReserves) Update(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	if _, ok := r.f.reserves[reservation.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.reserves[reservation.ID] = reservation
	return nil
}

func (r *fakeReserves) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.f.reserves, id)
	return nil
}

func (r *fakeReserves) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	if res, ok := r.f.reserves[id]; ok {
		return res, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeReserves) List(ctx context.Context, tx *gorm.DB, filters repositories.ReservationFilters) ([]*models.Reservation, int64, error) {
	var out []*models.Reservation
	for _, id := range sortedIDs(r.f.reserves) {
		res := r.f.reserves[id]
		if filters.RoomID != nil && res.RoomID != *filters.RoomID {
			continue
		}
		if filters.AccountID != nil && res.AccountID != *filters.AccountID {
			continue
		}
		if filters.DateFrom != nil && res.Date.Before(*filters.DateFrom) {
			continue
		}
		if filters.DateTo != nil && res.Date.After(*filters.DateTo) {
			continue
		}
		out = append(out, res)
	}
	total := int64(len(out))
	return paginate(out, filters.Limit, filters.Offset), total, nil
}

func (r *fakeReserves) FindConflicts(ctx context.Context, tx *gorm.DB, roomID uint, date time.Time, start, end string, excludeID uint) ([]*models.Reservation, error) {
	var out []*models.Reservation
	for _, id := range sortedIDs(r.f.reserves) {
		res := r.f.reserves[id]
		if res.RoomID != roomID || !res.Date.Equal(date) || res.ID == excludeID {
			continue
		}
		if res.Overlaps(start, end) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeReserves) CountFutureByAccount(ctx context.Context, tx *gorm.DB, accountID uint, from time.Time) (int64, error) {
	var count int64
	for _, res := range r.f.reserves {
		if res.AccountID == accountID && !res.Date.Before(from) {
			count++
		}
	}
	return count, nil
}
