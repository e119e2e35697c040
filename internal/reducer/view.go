package reducer

import (
	"strings"

	"github.com/idilsaglam/todoreducer/internal/model"
)

// Visible projects todos for display: the filter applies first, then a
// case-insensitive substring search over the text. An unknown filter shows
// everything. The input order is preserved.
func Visible(todos []model.Todo, filter model.Filter, search string) []model.Todo {
	needle := strings.ToLower(search)
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		switch filter {
		case model.FilterActive:
			if t.Completed {
				continue
			}
		case model.FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Text), needle) {
			continue
		}
		out = append(out, t)
	}
	return out
}
