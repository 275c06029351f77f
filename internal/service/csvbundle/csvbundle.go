// Package csvbundle converts questions with their choices to and from the
// 23-column interchange layout used for bulk editing in spreadsheets.
package csvbundle

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
)

const (
	// MaxChoices is the number of choice slots a row carries.
	MaxChoices = 5
	// MinColumns is the shortest row accepted on import.
	MinColumns = 17
	// TimeLayout is used for every timestamp column.
	TimeLayout = "2006-01-02 15:04:05"

	colQuestionID    = 0
	colGenreID       = 1
	colDifficulty    = 3
	colTitle         = 5
	colBody          = 6
	colClarification = 7
	colFirstChoice   = 8
	colShortIsActive = 16
	colIsActive      = 22
)

// Header is the exported header row.
var Header = []string{
	"Question ID",
	"Genre ID",
	"Genre Name",
	"Difficulty",
	"Difficulty Display",
	"Title",
	"Body",
	"Clarification",
	"Choice 1 Content", "Choice 1 Correct",
	"Choice 2 Content", "Choice 2 Correct",
	"Choice 3 Content", "Choice 3 Correct",
	"Choice 4 Content", "Choice 4 Correct",
	"Choice 5 Content", "Choice 5 Correct",
	"Author",
	"Created At",
	"Updated At",
	"Reviewed At",
	"Is Active",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// File-level decoding errors.
var (
	ErrEmptyFile = errors.New("file is empty")
	ErrNotUTF8   = errors.New("file is not valid UTF-8")
)

// ChoiceCell is one decoded choice slot.
type ChoiceCell struct {
	Content   string
	IsCorrect bool
}

// Row is a validated import row. QuestionID is empty when the row asks for
// a new question.
type Row struct {
	QuestionID    string
	GenreID       string
	Difficulty    int
	Title         string
	Body          string
	Clarification string
	IsActive      bool
	Choices       []ChoiceCell
}

// Record flattens a question into the exported column order. Choices are
// written by ascending order index and the slots past the fifth are dropped.
func Record(q *entity.Question, loc *time.Location) []string {
	rec := make([]string, 0, len(Header))
	rec = append(rec,
		q.ID,
		q.GenreID,
		q.GenreName(),
		strconv.Itoa(q.Difficulty),
		q.DifficultyDisplay(),
		q.Title,
		q.Body,
		q.Clarification,
	)
	choices := q.OrderedChoices()
	for i := 0; i < MaxChoices; i++ {
		if i < len(choices) {
			rec = append(rec, choices[i].Content, strconv.FormatBool(choices[i].IsCorrect))
		} else {
			rec = append(rec, "", "")
		}
	}
	rec = append(rec,
		q.AuthorName(),
		formatTime(&q.CreatedAt, loc),
		formatTime(&q.UpdatedAt, loc),
		formatTime(q.ReviewedAt, loc),
		strconv.FormatBool(q.IsActive),
	)
	return rec
}

func formatTime(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return ""
	}
	if loc != nil {
		return t.In(loc).Format(TimeLayout)
	}
	return t.Format(TimeLayout)
}

// DecodeRow validates a data row. The returned error reads as a sentence
// fragment the caller prefixes with the row number.
func DecodeRow(rec []string) (Row, error) {
	if len(rec) < MinColumns {
		return Row{}, fmt.Errorf("insufficient columns (at least %d required)", MinColumns)
	}

	row := Row{
		QuestionID: strings.TrimSpace(rec[colQuestionID]),
		GenreID:    strings.TrimSpace(rec[colGenreID]),
		Difficulty: entity.DifficultyElementary,
		Title:      strings.TrimSpace(rec[colTitle]),
	}

	if raw := strings.TrimSpace(rec[colDifficulty]); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			return Row{}, fmt.Errorf("invalid difficulty %q", raw)
		}
		row.Difficulty = d
	}
	if row.GenreID == "" {
		return Row{}, errors.New("genre ID is required")
	}
	if row.Title == "" {
		return Row{}, errors.New("title is required")
	}

	row.Body = strings.TrimSpace(rec[colBody])
	row.Clarification = strings.TrimSpace(rec[colClarification])

	activeCol := colShortIsActive
	if len(rec) > colIsActive {
		activeCol = colIsActive
	}
	row.IsActive = true
	if raw := strings.TrimSpace(rec[activeCol]); raw != "" {
		row.IsActive = IsTruthy(raw)
	}

	for i := 0; i < MaxChoices; i++ {
		contentIdx := colFirstChoice + 2*i
		correctIdx := contentIdx + 1
		if contentIdx >= len(rec) {
			break
		}
		content := strings.TrimSpace(rec[contentIdx])
		if content == "" {
			continue
		}
		cell := ChoiceCell{Content: content}
		if correctIdx < len(rec) {
			cell.IsCorrect = IsTruthy(rec[correctIdx])
		}
		row.Choices = append(row.Choices, cell)
	}
	return row, nil
}

// IsTruthy accepts true, 1 and yes in any case.
func IsTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// Writer streams questions as CSV with a leading byte order mark.
type Writer struct {
	csv *csv.Writer
	loc *time.Location
}

// NewWriter writes the BOM and header row to w.
func NewWriter(w io.Writer, loc *time.Location) (*Writer, error) {
	if _, err := w.Write(utf8BOM); err != nil {
		return nil, err
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(Header); err != nil {
		return nil, err
	}
	return &Writer{csv: cw, loc: loc}, nil
}

// Write appends one question.
func (w *Writer) Write(q *entity.Question) error {
	return w.csv.Write(Record(q, w.loc))
}

// Flush writes buffered rows and reports any earlier write error.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

// Reader yields data rows numbered the way a spreadsheet shows them, the
// header being row 1. A blank line is reported as an empty record so it
// still takes up a row number.
type Reader struct {
	csv      *csv.Reader
	data     []byte
	row      int
	offset   int64 // bytes of data already attributed to a line
	nextLine int   // physical line the next record would start on
	lastLine int
	queue    [][]string
}

// NewReader strips an optional BOM and consumes the header row.
func NewReader(r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, ErrNotUTF8
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, err
	}
	rd := &Reader{
		csv:      cr,
		data:     data,
		row:      1,
		nextLine: 1,
		lastLine: bytes.Count(data, []byte{'\n'}),
	}
	rd.advance()
	return rd, nil
}

// Next returns the next record and its row number, or io.EOF.
func (r *Reader) Next() (int, []string, error) {
	if len(r.queue) == 0 {
		if err := r.fill(); err != nil {
			return 0, nil, err
		}
	}
	rec := r.queue[0]
	r.queue = r.queue[1:]
	r.row++
	return r.row, rec, nil
}

// fill queues the next record, preceded by one empty record per blank line
// encoding/csv skipped before it.
func (r *Reader) fill() error {
	rec, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		r.blanksBefore(r.lastLine + 1)
		if len(r.queue) > 0 {
			return nil
		}
		return io.EOF
	}
	if err != nil {
		return err
	}
	line, _ := r.csv.FieldPos(0)
	r.blanksBefore(line)
	r.queue = append(r.queue, rec)
	r.advance()
	return nil
}

func (r *Reader) blanksBefore(line int) {
	for ; r.nextLine < line; r.nextLine++ {
		r.queue = append(r.queue, []string{})
	}
}

// advance moves nextLine past the record just read.
func (r *Reader) advance() {
	end := r.csv.InputOffset()
	r.nextLine += bytes.Count(r.data[r.offset:end], []byte{'\n'})
	r.offset = end
}
