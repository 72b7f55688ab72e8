package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/escola-viva/secretaria-service/internal/authz"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	scope  *scopeResolver
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		scope:  newScopeResolver(repo),
		logger: logger,
	}
}

// writeSheet creates a workbook with a single named sheet, writes the header
// and rows, and returns the serialized bytes.
func writeSheet(sheet string, header []interface{}, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), sheet)

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write report row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *reportService) StudentsReport(ctx context.Context, caller *authz.Caller, filters repositories.StudentFilters) ([]byte, error) {
	if !authz.IsStaff(caller) && !authz.IsProfessor(caller) {
		return nil, NewPermissionError(callerID(caller), "report", "students", "requires staff or Professor role")
	}

	scoped, ok, err := s.scope.studentFilters(ctx, caller, filters)
	if err != nil {
		return nil, err
	}

	var students []*models.Student
	if ok {
		students, _, err = s.repo.Student().List(ctx, nil, scoped)
		if err != nil {
			return nil, err
		}
	}

	header := []interface{}{"Matrícula", "Nome", "Turma", "Ano letivo", "Faltas", "Presenças", "Ativo"}
	rows := make([][]interface{}, 0, len(students))
	for _, st := range students {
		var absences, attendances interface{}
		if st.Absences != nil {
			absences = *st.Absences
		}
		if st.Attendances != nil {
			attendances = *st.Attendances
		}
		active := "Não"
		if st.Active {
			active = "Sim"
		}
		rows = append(rows, []interface{}{
			st.ID, st.Name, st.ClassGroup, st.SchoolYear, absences, attendances, active,
		})
	}

	s.logger.Info("generated students report", "caller", callerID(caller), "rows", len(rows))
	return writeSheet("Alunos", header, rows)
}

func (s *reportService) GradesReport(ctx context.Context, caller *authz.Caller, filters repositories.GradeFilters) ([]byte, error) {
	if !authz.IsStaff(caller) && !authz.IsProfessor(caller) {
		return nil, NewPermissionError(callerID(caller), "report", "grades", "requires staff or Professor role")
	}

	ids, unrestricted, err := s.scope.visibleStudentIDs(ctx, caller)
	if err != nil {
		return nil, err
	}

	var grades []*models.Grade
	if unrestricted || len(ids) > 0 {
		if !unrestricted {
			filters.StudentIDs = restrictStudentIDs(filters.StudentIDs, ids)
		}
		if unrestricted || len(filters.StudentIDs) > 0 {
			grades, _, err = s.repo.Grade().List(ctx, nil, filters)
			if err != nil {
				return nil, err
			}
		}
	}

	// Student names are resolved in one pass to keep the report a two-query
	// operation regardless of size.
	names := make(map[uint]string)
	if len(grades) > 0 {
		idSet := make(map[uint]struct{})
		for _, g := range grades {
			idSet[g.StudentID] = struct{}{}
		}
		studentIDs := make([]uint, 0, len(idSet))
		for id := range idSet {
			studentIDs = append(studentIDs, id)
		}
		students, _, err := s.repo.Student().List(ctx, nil, repositories.StudentFilters{StudentIDs: studentIDs})
		if err != nil {
			return nil, err
		}
		for _, st := range students {
			names[st.ID] = st.Name
		}
	}

	header := []interface{}{"Aluno", "Disciplina", "Bimestre", "Nota"}
	rows := make([][]interface{}, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, []interface{}{
			names[g.StudentID], g.Subject, g.TermID, g.Value,
		})
	}

	s.logger.Info("generated grades report", "caller", callerID(caller), "rows", len(rows))
	return writeSheet("Notas", header, rows)
}
