package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/noah-isme/college-catalog/internal/dto"
	"github.com/noah-isme/college-catalog/internal/models"
	appErrors "github.com/noah-isme/college-catalog/pkg/errors"
	"github.com/noah-isme/college-catalog/pkg/export"
	"github.com/noah-isme/college-catalog/pkg/storage"
)

// printTable writes a dataset as aligned columns.
func printTable(w io.Writer, data export.Dataset) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(data.Headers, "\t"))
	for _, row := range data.Rows {
		cells := make([]string, len(data.Headers))
		for i, h := range data.Headers {
			cells[i] = row[h]
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// writeExport renders data into the format named by path's extension.
func writeExport(dir, path string, data export.Dataset) (string, error) {
	format, err := export.FormatFromPath(path)
	if err != nil {
		return "", err
	}
	renderer, err := export.RendererFor(format)
	if err != nil {
		return "", err
	}
	raw, err := renderer.Render(data)
	if err != nil {
		return "", fmt.Errorf("render %s export: %w", format, err)
	}
	files, err := storage.NewLocalStorage(dir)
	if err != nil {
		return "", err
	}
	return files.Save(path, raw)
}

// parseCourses reads repeated name=fee flags into form rows. Rows are passed through
// untrimmed; the store drops incomplete ones.
func parseCourses(values []string) ([]dto.CourseInput, error) {
	courses := make([]dto.CourseInput, 0, len(values))
	for _, v := range values {
		name, fee, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("course %q must look like name=fee", v)
		}
		courses = append(courses, dto.CourseInput{CourseName: name, Fee: models.Fee(fee)})
	}
	return courses, nil
}

// commandError turns a failed write into the command's exit error.
func commandError(err error) error {
	msg := appErrors.Message(err)
	if appErrors.IsAuth(err) {
		return fmt.Errorf("%s: please log in by setting CATALOG_API_TOKEN", msg)
	}
	return errors.New(msg)
}
