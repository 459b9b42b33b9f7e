package facts

// FilterTablesByFiles returns a new Tables object containing only rows whose file
// or path is present in the provided file set.
func FilterTablesByFiles(tables Tables, files map[string]bool) Tables {
	if len(files) == 0 {
		return emptyTables()
	}
	return selectTables(tables, func(file string) bool { return files[file] })
}

// FilterDeltaByFiles returns a new Delta containing only rows for the specified files.
func FilterDeltaByFiles(delta Delta, files map[string]bool) Delta {
	return Delta{
		Added:   FilterTablesByFiles(delta.Added, files),
		Removed: FilterTablesByFiles(delta.Removed, files),
	}
}

// ReplaceFiles returns base with the rows of the given files taken from next
// instead. A file absent from next disappears from the result.
func ReplaceFiles(base, next Tables, files map[string]bool) Tables {
	kept := selectTables(base, func(file string) bool { return !files[file] })
	fresh := FilterTablesByFiles(next, files)
	return Tables{
		Files:             append(kept.Files, fresh.Files...),
		Modules:           append(kept.Modules, fresh.Modules...),
		Ports:             append(kept.Ports, fresh.Ports...),
		Nets:              append(kept.Nets, fresh.Nets...),
		ContinuousAssigns: append(kept.ContinuousAssigns, fresh.ContinuousAssigns...),
		SequentialAssigns: append(kept.SequentialAssigns, fresh.SequentialAssigns...),
		Diagnostics:       append(kept.Diagnostics, fresh.Diagnostics...),
	}
}

func selectTables(tables Tables, keep func(file string) bool) Tables {
	return Tables{
		Files:             filterRows(tables.Files, keep, func(r FileRow) string { return r.Path }),
		Modules:           filterRows(tables.Modules, keep, func(r ModuleRow) string { return r.File }),
		Ports:             filterRows(tables.Ports, keep, func(r PortRow) string { return r.File }),
		Nets:              filterRows(tables.Nets, keep, func(r NetRow) string { return r.File }),
		ContinuousAssigns: filterRows(tables.ContinuousAssigns, keep, func(r ContinuousAssignRow) string { return r.File }),
		SequentialAssigns: filterRows(tables.SequentialAssigns, keep, func(r SequentialAssignRow) string { return r.File }),
		Diagnostics:       filterRows(tables.Diagnostics, keep, func(r DiagnosticRow) string { return r.File }),
	}
}

func filterRows[T any](rows []T, keep func(string) bool, file func(T) string) []T {
	out := []T{}
	for _, row := range rows {
		if keep(file(row)) {
			out = append(out, row)
		}
	}
	return out
}
