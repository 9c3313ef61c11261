package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/yuyongju/music-emotion-classification/internal/video"
)

// Video workbook sheet names.
const (
	LabelSheet    = "Label Detection"
	ExplicitSheet = "Explicit Content Detection"
	ShotSheet     = "Shot Detection"
)

const (
	colVideo      = "Video"
	colLabel      = "Label Description"
	colCategory   = "Category Description"
	colStart      = "Start Time"
	colEnd        = "End Time"
	colConfidence = "Confidence"
)

var annotationHeader = []string{colVideo, colLabel, colCategory, colStart, colEnd, colConfidence}

// WriteAnalysis writes a three-sheet workbook: labels, explicit content and
// shots. Missing times and confidences are left blank.
func WriteAnalysis(path string, a video.Analysis) error {
	return writeWorkbook(path, []sheet{
		{name: LabelSheet, header: annotationHeader, rows: annotationRows(a.Labels)},
		{name: ExplicitSheet, header: annotationHeader, rows: annotationRows(a.Explicit)},
		{name: ShotSheet, header: annotationHeader, rows: annotationRows(a.Shots)},
	})
}

func annotationRows(annotations []video.Annotation) [][]any {
	rows := make([][]any, len(annotations))
	for i, a := range annotations {
		rows[i] = []any{a.VideoID, a.Label, a.Category, optional(a.Start), optional(a.End), optional(a.Confidence)}
	}
	return rows
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// ReadAnalysis reads a workbook written by WriteAnalysis. The label sheet is
// required; the other two are read when present.
func ReadAnalysis(path string) (video.Analysis, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return video.Analysis{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var a video.Analysis
	if a.Labels, err = readAnnotations(f, LabelSheet, video.KindLabel); err != nil {
		return video.Analysis{}, err
	}

	present := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		present[name] = true
	}
	if present[ExplicitSheet] {
		if a.Explicit, err = readAnnotations(f, ExplicitSheet, video.KindExplicit); err != nil {
			return video.Analysis{}, err
		}
	}
	if present[ShotSheet] {
		if a.Shots, err = readAnnotations(f, ShotSheet, video.KindShot); err != nil {
			return video.Analysis{}, err
		}
	}
	return a, nil
}

// ReadLabelAnnotations reads only the label sheet.
func ReadLabelAnnotations(path string) ([]video.Annotation, error) {
	a, err := ReadAnalysis(path)
	if err != nil {
		return nil, err
	}
	return a.Labels, nil
}

func readAnnotations(f *excelize.File, name string, kind video.Kind) ([]video.Annotation, error) {
	t, err := readSheet(f, name, colLabel, colCategory)
	if err != nil {
		return nil, err
	}

	out := make([]video.Annotation, 0, len(t.rows))
	for i, row := range t.rows {
		a := video.Annotation{
			VideoID:  t.get(row, colVideo),
			Label:    t.get(row, colLabel),
			Category: t.get(row, colCategory),
			Kind:     kind,
		}
		for _, field := range []struct {
			column string
			dst    **float64
		}{
			{colStart, &a.Start},
			{colEnd, &a.End},
			{colConfidence, &a.Confidence},
		} {
			v, err := parseOptional(t.get(row, field.column))
			if err != nil {
				return nil, fmt.Errorf("%w: sheet %q row %d %s: %v", ErrMalformed, name, i+2, field.column, err)
			}
			*field.dst = v
		}
		out = append(out, a)
	}
	return out, nil
}

func parseOptional(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return video.Float(v), nil
}
