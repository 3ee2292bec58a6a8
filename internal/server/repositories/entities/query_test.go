package entities

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestQueries_Golden(t *testing.T) {
	g := goldie.New(t)

	for _, s := range All() {
		t.Run(s.Table, func(t *testing.T) {
			g.Assert(t, s.Table+"_list", []byte(listQuery(s)))
			g.Assert(t, s.Table+"_upsert", []byte(upsertQuery(s, false)))
		})
	}
}

func TestUpsertQuery_ParentsScopedToOwner(t *testing.T) {
	q := upsertQuery(Tasks, false)

	for _, want := range []string{
		"(SELECT id FROM projects WHERE external_id = $7 AND user_id = $9)",
		"(SELECT id FROM events WHERE external_id = $8 AND user_id = $9)",
		"ON CONFLICT (external_id) DO UPDATE SET",
	} {
		if !strings.Contains(q, want) {
			t.Fatalf("query lacks %q:\n%s", want, q)
		}
	}
	if strings.Contains(q, "user_id = EXCLUDED.user_id") {
		t.Fatalf("owner column must not be rewritten on conflict:\n%s", q)
	}
}

func TestUpsertQuery_OwnerGuard(t *testing.T) {
	q := upsertQuery(Notes, true)
	if !strings.HasSuffix(q, "WHERE notes.user_id = EXCLUDED.user_id") {
		t.Fatalf("guard clause missing:\n%s", q)
	}
}

func TestUpsertQuery_SkipsReadOnly(t *testing.T) {
	q := upsertQuery(Documents, false)
	if strings.Contains(q, "upload_date") {
		t.Fatalf("read-only column written:\n%s", q)
	}
	if !strings.Contains(listQuery(Documents), "t.upload_date") {
		t.Fatal("read-only column must still be listed")
	}
}

func TestDeleteQuery(t *testing.T) {
	want := "DELETE FROM uploaded_documents WHERE external_id = $1 AND user_id = $2"
	if got := deleteQuery(Documents); got != want {
		t.Fatalf("deleteQuery = %q, want %q", got, want)
	}
}
