package facts

import "strconv"

// Delta captures added and removed fact rows between two snapshots.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta computes row-level additions and removals between two snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

// IsEmpty reports whether the snapshots were identical.
func (d Delta) IsEmpty() bool {
	return d.Added.RowCount() == 0 && d.Removed.RowCount() == 0
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Files = diffRows(from.Files, to.Files, func(r FileRow) string {
		return r.Path + "|" + boolKey(r.IsEmpty)
	})
	out.Modules = diffRows(from.Modules, to.Modules, func(r ModuleRow) string {
		return r.Name + "|" + r.File + "|" + strconv.Itoa(r.Position)
	})
	out.Ports = diffRows(from.Ports, to.Ports, func(r PortRow) string {
		return r.Name + "|" + r.Direction + "|" + strconv.Itoa(r.Width) + "|" + r.File
	})
	out.Nets = diffRows(from.Nets, to.Nets, func(r NetRow) string {
		return r.Name + "|" + r.Kind + "|" + strconv.Itoa(r.Width) + "|" + r.File
	})
	out.ContinuousAssigns = diffRows(from.ContinuousAssigns, to.ContinuousAssigns, func(r ContinuousAssignRow) string {
		return r.Expr + "|" + strconv.Itoa(r.Op) + "|" + r.File
	})
	out.SequentialAssigns = diffRows(from.SequentialAssigns, to.SequentialAssigns, func(r SequentialAssignRow) string {
		return r.Edge + "|" + r.Expr + "|" + r.File
	})
	out.Diagnostics = diffRows(from.Diagnostics, to.Diagnostics, func(r DiagnosticRow) string {
		return r.File + "|" + strconv.Itoa(r.Line) + "|" + r.Kind + "|" + r.Text
	})

	return out
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]struct{}, len(from))
	for _, row := range from {
		fromSet[key(row)] = struct{}{}
	}
	diff := []T{}
	for _, row := range to {
		if _, ok := fromSet[key(row)]; !ok {
			diff = append(diff, row)
		}
	}
	return diff
}

func boolKey(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
