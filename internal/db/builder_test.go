package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_FeedbackIndex(t *testing.T) {
	idx := NewIndex("feedex:fb:idx").
		Prefix("feedex:fb:").
		NumericSortable("id").
		Tag("source").
		Tag("sentiment").
		TagList("themes", ",").
		Numeric("processed").
		MustBuild()

	if idx.StorageType != StorageHash {
		t.Errorf("storage = %q, want HASH", idx.StorageType)
	}
	if len(idx.Fields) != 5 {
		t.Fatalf("fields count = %d, want 5", len(idx.Fields))
	}
	if !idx.Fields[0].Sortable || idx.Fields[0].Type != IndexFieldNumeric {
		t.Errorf("field[0] = %+v, want sortable NUMERIC", idx.Fields[0])
	}
	if idx.Fields[3].TagSeparator != "," {
		t.Errorf("themes separator = %q, want ,", idx.Fields[3].TagSeparator)
	}
	if idx.Fields[4].Sortable {
		t.Error("processed should not be sortable")
	}
}

func TestIndexBuilder_VectorHNSW(t *testing.T) {
	idx := NewIndex("feedex:vec:idx").
		Prefix("feedex:vec:").
		VectorHNSW("__vector", 768, DistanceCosine, 32, 400).
		MustBuild()

	f := idx.Fields[0]
	if f.Alias != "vector" {
		t.Errorf("alias = %q, want vector", f.Alias)
	}
	if f.VectorAlgo != VectorHNSW || f.VectorDim != 768 || f.VectorDistance != DistanceCosine {
		t.Errorf("unexpected vector field: %+v", f)
	}
	if f.VectorM != 32 || f.VectorEFConstruct != 400 {
		t.Errorf("M/EF = %d/%d, want 32/400", f.VectorM, f.VectorEFConstruct)
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{"empty name", func() (*IndexDefinition, error) { return NewIndex("").Tag("x").Build() }, "index name is required"},
		{"no fields", func() (*IndexDefinition, error) { return NewIndex("idx").Build() }, "at least one field"},
		{"vector without dim", func() (*IndexDefinition, error) {
			return NewIndex("idx").VectorHNSW("v", 0, DistanceCosine, 0, 0).Build()
		}, "positive DIM"},
		{"invalid characters", func() (*IndexDefinition, error) { return NewIndex("idx with spaces").Tag("x").Build() }, "invalid characters"},
		{"duplicate field", func() (*IndexDefinition, error) { return NewIndex("idx").Tag("a").Numeric("a").Build() }, "duplicate field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	s := NewIndex("my-idx").
		Prefix("fb:").
		NumericSortable("id").
		MustBuild().
		String()

	want := "FT.CREATE my-idx ON HASH PREFIX 1 fb: SCHEMA id NUMERIC SORTABLE"
	if s != want {
		t.Errorf("String() = %q, want %q", s, want)
	}
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"empty", Query{}, "*"},
		{"tag", Query{}.Tag("source", "app store"), `@source:{app\ store}`},
		{"skips empty tag", Query{}.Tag("source", "").Tag("urgency", "high"), "@urgency:{high}"},
		{"numeric eq", Query{}.NumericEq("processed", 0), "@processed:[0 0]"},
		{"numeric above", Query{}.NumericAbove("id", 42), "@id:[(42 +inf]"},
		{"combined", Query{}.NumericEq("processed", 0).NumericAbove("created_at", 10), "@processed:[0 0] @created_at:[(10 +inf]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVectorEncoding_RoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3e-7}
	out, err := DecodeVector(EncodeVector(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
	if _, err := DecodeVector("abc"); err == nil {
		t.Error("expected error for truncated blob")
	}
}
