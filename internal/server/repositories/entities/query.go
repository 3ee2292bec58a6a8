package entities

import (
	"fmt"
	"strings"
)

// listQuery selects every column of the kind plus the external ids of the
// parents, newest row first. $1 is the owner.
func listQuery(s *Schema) string {
	return selectClause(s) + "\n\t\tWHERE t.user_id = $1\n\t\tORDER BY t.id DESC"
}

// findQuery selects one row by external id. $1 is the owner, $2 the id.
func findQuery(s *Schema) string {
	return selectClause(s) + "\n\t\tWHERE t.user_id = $1 AND t.external_id = $2"
}

func selectClause(s *Schema) string {
	cols := make([]string, 0, 1+len(s.Fields)+len(s.Parents))
	cols = append(cols, "t.external_id")
	for _, f := range s.Fields {
		cols = append(cols, "t."+f.Name)
	}
	for _, p := range s.Parents {
		cols = append(cols, fmt.Sprintf("(SELECT p.external_id FROM %s p WHERE p.id = t.%s) AS %s", p.Table, p.Column, p.Field))
	}
	return fmt.Sprintf("SELECT %s\n\t\tFROM %s t", strings.Join(cols, ", "), s.Table)
}

// upsertQuery inserts or replaces a row keyed on external_id in a single
// statement. Parent ids are resolved by subselects scoped to the owner, so
// an unknown or foreign parent becomes NULL.
//
// Placeholders: $1 external_id, then writable fields in schema order, then
// parent external ids, then the owner.
func upsertQuery(s *Schema, ownerGuard bool) string {
	writable := s.writable()
	owner := 2 + len(writable) + len(s.Parents)

	cols := []string{"external_id"}
	vals := []string{"$1"}
	sets := make([]string, 0, len(writable)+len(s.Parents))

	for i, f := range writable {
		cols = append(cols, f.Name)
		vals = append(vals, fmt.Sprintf("$%d", 2+i))
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", f.Name, f.Name))
	}
	for i, p := range s.Parents {
		cols = append(cols, p.Column)
		vals = append(vals, fmt.Sprintf("(SELECT id FROM %s WHERE external_id = $%d AND user_id = $%d)", p.Table, 2+len(writable)+i, owner))
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", p.Column, p.Column))
	}
	cols = append(cols, "user_id")
	vals = append(vals, fmt.Sprintf("$%d", owner))

	q := fmt.Sprintf("INSERT INTO %s (%s)\n\t\tVALUES (%s)\n\t\tON CONFLICT (external_id) DO UPDATE SET %s",
		s.Table, strings.Join(cols, ", "), strings.Join(vals, ", "), strings.Join(sets, ", "))

	if ownerGuard {
		q += fmt.Sprintf("\n\t\tWHERE %s.user_id = EXCLUDED.user_id", s.Table)
	}
	return q
}

func deleteQuery(s *Schema) string {
	return fmt.Sprintf("DELETE FROM %s WHERE external_id = $1 AND user_id = $2", s.Table)
}
