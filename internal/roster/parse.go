package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

var ErrMalformedInput = errors.New("malformed roster")
var ErrMissingColumn = errors.New("roster is missing a required column")
var ErrIngestionInProgress = errors.New("roster ingestion already in progress")

const (
	ColName       = "Name"
	ColDepartment = "Department"
	ColSkills     = "Skills"
	ColCaptain    = "Is captain?"
	ColEmail      = "Email Address"

	captainYes = "Yes"
)

// Result is a parsed roster plus what was skipped along the way.
type Result struct {
	Participants []engine.Participant
	Dropped      int // rows without a name or department
	Duplicates   int // rows repeating an earlier name
}

// Parse reads a CSV roster with a header row.
func Parse(r io.Reader) ([]engine.Participant, error) {
	res, err := ParseContext(context.Background(), r)
	if err != nil {
		return nil, err
	}
	return res.Participants, nil
}

// ParseContext is Parse with cancellation between rows. On any error no
// participants are returned.
func ParseContext(ctx context.Context, r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true // stray quotes in free-text skills are kept as text

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, fmt.Errorf("%w: empty input", ErrMalformedInput)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	cols := indexColumns(header)
	for _, required := range []string{ColName, ColDepartment} {
		if _, ok := cols[required]; !ok {
			return Result{}, fmt.Errorf("%w: %q", ErrMissingColumn, required)
		}
	}

	res := Result{Participants: []engine.Participant{}}
	seen := map[string]bool{}
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}

		field := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		name, dept := field(ColName), field(ColDepartment)
		if name == "" || dept == "" {
			res.Dropped++
			continue
		}
		if seen[name] {
			res.Duplicates++
			continue
		}
		seen[name] = true

		skills := field(ColSkills)
		res.Participants = append(res.Participants, engine.Participant{
			Name:          name,
			Department:    dept,
			RawSkills:     skills,
			SkillCategory: Classify(skills),
			IsCaptain:     field(ColCaptain) == captainYes,
			Email:         field(ColEmail),
		})
	}
	return res, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}
