package reducer

import "github.com/idilsaglam/todoreducer/internal/model"

// Calculate derives the counters shown above the list in one pass.
func Calculate(todos []model.Todo) model.Stats {
	var st model.Stats
	for _, t := range todos {
		if t.Completed {
			st.Completed++
		}
	}
	st.Total = len(todos)
	st.Pending = st.Total - st.Completed
	return st
}
