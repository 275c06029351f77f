package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	"github.com/yourusername/quizbank-api/internal/domain/repository"
	"github.com/yourusername/quizbank-api/internal/logger"
	"github.com/yourusername/quizbank-api/internal/service/csvbundle"
	"github.com/yourusername/quizbank-api/internal/service/idgen"
)

// ImportSummary reports the outcome of a CSV import.
type ImportSummary struct {
	TotalRows    int      `json:"total_rows"`
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors"`
}

// DeleteSummary reports the outcome of a CSV delete.
type DeleteSummary struct {
	TotalRows     int      `json:"total_rows"`
	SuccessCount  int      `json:"success_count"`
	ErrorCount    int      `json:"error_count"`
	NotFoundCount int      `json:"not_found_count"`
	Errors        []string `json:"errors"`
}

// TransferService moves questions in and out of the spreadsheet layout.
type TransferService struct {
	questionRepo repository.QuestionRepository
	genreRepo    repository.GenreRepository
	cacheRepo    repository.CacheRepository
	loc          *time.Location
}

// NewTransferService creates a TransferService. Exported timestamps are
// rendered in loc; cacheRepo may be nil.
func NewTransferService(
	questionRepo repository.QuestionRepository,
	genreRepo repository.GenreRepository,
	cacheRepo repository.CacheRepository,
	loc *time.Location,
) *TransferService {
	if loc == nil {
		loc = time.UTC
	}
	return &TransferService{
		questionRepo: questionRepo,
		genreRepo:    genreRepo,
		cacheRepo:    cacheRepo,
		loc:          loc,
	}
}

// ExportCSV writes every question ordered by id.
func (s *TransferService) ExportCSV(ctx context.Context, w io.Writer) error {
	questions, err := s.questionRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	cw, err := csvbundle.NewWriter(w, s.loc)
	if err != nil {
		return err
	}
	for i := range questions {
		if err := cw.Write(&questions[i]); err != nil {
			return err
		}
	}
	return cw.Flush()
}

const exportSheet = "Questions"

// ExportXLSX writes the same columns as ExportCSV into an Excel workbook.
func (s *TransferService) ExportXLSX(ctx context.Context, w io.Writer) error {
	questions, err := s.questionRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	if err := sw.SetRow("A1", toCells(csvbundle.Header)); err != nil {
		return err
	}
	for i := range questions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		rec := csvbundle.Record(&questions[i], s.loc)
		for j := range rec {
			rec[j] = sanitizeForExcel(rec[j])
		}
		if err := sw.SetRow(cell, toCells(rec)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

func toCells(rec []string) []interface{} {
	cells := make([]interface{}, len(rec))
	for i, v := range rec {
		cells[i] = v
	}
	return cells
}

// sanitizeForExcel prefixes values that a spreadsheet would evaluate as a formula.
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// Import creates or overwrites one question per data row. Row failures are
// collected in the summary; only an unreadable file returns an error.
func (s *TransferService) Import(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	reader, err := csvbundle.NewReader(r)
	if err != nil {
		return nil, err
	}

	genreIDs, err := s.genreRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	genres := make(map[string]struct{}, len(genreIDs))
	for _, id := range genreIDs {
		genres[id] = struct{}{}
	}
	questionIDs, err := s.questionRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list question ids: %w", err)
	}
	choiceIDs, err := s.questionRepo.ListChoiceIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list choice ids: %w", err)
	}
	imp := &rowImporter{
		questionRepo: s.questionRepo,
		genres:       genres,
		questions:    idgen.NewAllocator(idgen.Question, questionIDs),
		choices:      idgen.NewAllocator(idgen.Choice, choiceIDs),
	}

	summary := &ImportSummary{Errors: []string{}}
	log := logger.Get()
	for {
		rowNum, rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		summary.TotalRows++

		if err := imp.importRow(ctx, rec); err != nil {
			summary.ErrorCount++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			log.Debug("csv import row failed", zap.Int("row", rowNum), zap.Error(err))
			continue
		}
		summary.SuccessCount++
	}

	log.Info("csv import finished",
		zap.Int("total_rows", summary.TotalRows),
		zap.Int("success_count", summary.SuccessCount),
		zap.Int("error_count", summary.ErrorCount),
	)
	if summary.SuccessCount > 0 {
		dropStatsCache(s.cacheRepo)
	}
	return summary, nil
}

// rowImporter carries the id state of one import run.
type rowImporter struct {
	questionRepo repository.QuestionRepository
	genres       map[string]struct{}
	questions    *idgen.Allocator
	choices      *idgen.Allocator
}

func (imp *rowImporter) importRow(ctx context.Context, rec []string) error {
	row, err := csvbundle.DecodeRow(rec)
	if err != nil {
		return err
	}
	id := row.QuestionID
	if id == "" {
		id = imp.questions.Peek()
	}
	if _, ok := imp.genres[row.GenreID]; !ok {
		return fmt.Errorf("genre %q not found", row.GenreID)
	}

	var replaced []string
	if imp.questions.Has(id) {
		existing, err := imp.questionRepo.GetByID(ctx, id)
		if err != nil && !isNotFound(err) {
			return err
		}
		if existing != nil {
			for _, c := range existing.Choices {
				replaced = append(replaced, c.ID)
				imp.choices.Release(c.ID)
			}
		}
	}

	q := &entity.Question{
		ID:            id,
		GenreID:       row.GenreID,
		Difficulty:    row.Difficulty,
		Title:         row.Title,
		Body:          row.Body,
		Clarification: row.Clarification,
		IsActive:      row.IsActive,
		Choices:       make([]entity.Choice, 0, len(row.Choices)),
	}
	for i, c := range row.Choices {
		q.Choices = append(q.Choices, entity.Choice{
			ID:         imp.choices.Next(),
			Content:    c.Content,
			IsCorrect:  c.IsCorrect,
			OrderIndex: i,
		})
	}

	if _, err := imp.questionRepo.Upsert(ctx, q); err != nil {
		for _, c := range q.Choices {
			imp.choices.Release(c.ID)
		}
		for _, cid := range replaced {
			imp.choices.Claim(cid)
		}
		return err
	}
	imp.questions.Claim(id)
	return nil
}

// DeleteFromCSV deletes the question named in the first column of each row.
func (s *TransferService) DeleteFromCSV(ctx context.Context, r io.Reader) (*DeleteSummary, error) {
	reader, err := csvbundle.NewReader(r)
	if err != nil {
		return nil, err
	}

	summary := &DeleteSummary{Errors: []string{}}
	log := logger.Get()
	for {
		rowNum, rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		summary.TotalRows++

		var id string
		if len(rec) > 0 {
			id = strings.TrimSpace(rec[0])
		}
		if id == "" {
			summary.ErrorCount++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: Question ID is empty", rowNum))
			continue
		}

		err = s.questionRepo.Delete(ctx, id)
		switch {
		case err == nil:
			summary.SuccessCount++
		case isNotFound(err):
			summary.NotFoundCount++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: question %q not found", rowNum, id))
		default:
			summary.ErrorCount++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			log.Error("csv delete row failed", zap.Int("row", rowNum), zap.String("question_id", id), zap.Error(err))
		}
	}

	log.Info("csv delete finished",
		zap.Int("total_rows", summary.TotalRows),
		zap.Int("success_count", summary.SuccessCount),
		zap.Int("not_found_count", summary.NotFoundCount),
		zap.Int("error_count", summary.ErrorCount),
	)
	if summary.SuccessCount > 0 {
		dropStatsCache(s.cacheRepo)
	}
	return summary, nil
}
