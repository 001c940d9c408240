package bibgraph

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestSnapshotShape(t *testing.T) {
	g := New()
	g.AddNode(&Article{
		ID:       "smith2020",
		Title:    "Graph Methods",
		Authors:  []string{"Smith, J."},
		Year:     2020,
		Journal:  "J. Bibliometrics",
		Abstract: "private text that must not be exported",
		Keywords: "graphs",
		DOI:      "10.1000/xyz",
	})
	g.AddNode(&Article{ID: "jones2018", Year: 2018})
	mustAddEdge(t, g, "smith2020", "jones2018", 0.83)

	exp := g.Snapshot()

	node, ok := exp.Nodes["smith2020"]
	if !ok {
		t.Fatal("snapshot missing node smith2020")
	}
	if node.Title != "Graph Methods" || node.Year != 2020 || node.DOI != "10.1000/xyz" {
		t.Errorf("unexpected node export: %+v", node)
	}
	if w := exp.Edges["smith2020"]["jones2018"]; w != 0.83 {
		t.Errorf("edge weight = %g, want 0.83", w)
	}
	if _, ok := exp.Edges["jones2018"]; ok {
		t.Error("nodes without out-edges must not appear in the edges collection")
	}
}

func TestSnapshotOmitsRawFields(t *testing.T) {
	g := New()
	g.AddNode(&Article{ID: "x", Abstract: "secret", Keywords: "hidden"})

	var buf bytes.Buffer
	if err := g.Snapshot().WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	out := buf.String()
	for _, leaked := range []string{"secret", "hidden", "abstract", "keywords"} {
		if bytes.Contains(buf.Bytes(), []byte(leaked)) {
			t.Errorf("export leaked %q: %s", leaked, out)
		}
	}

	// Round-trip through JSON to confirm the two top-level collections.
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	for _, key := range []string{"nodes", "edges"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("export missing top-level %q collection", key)
		}
	}
}
