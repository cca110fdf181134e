package table

import (
	"reflect"
	"testing"
)

//
// SyntheticHeader / ColumnIndex
//

func TestSyntheticHeader(t *testing.T) {
	t.Parallel()

	want := []string{"column_0", "column_1", "column_2"}
	if got := SyntheticHeader(3); !reflect.DeepEqual(got, want) {
		t.Fatalf("SyntheticHeader(3) = %v, want %v", got, want)
	}
	if got := SyntheticHeader(0); len(got) != 0 {
		t.Fatalf("SyntheticHeader(0) = %v, want empty", got)
	}
}

// TestColumnIndex verifies name resolution, including the bare-index
// form that only headerless tables accept.
func TestColumnIndex(t *testing.T) {
	t.Parallel()

	named := Table{Header: []string{"id", "email"}, HasHeader: true}
	headerless := Table{Header: SyntheticHeader(2), HasHeader: false}

	tests := []struct {
		name   string
		t      Table
		lookup string
		wantIx int
		wantOk bool
	}{
		{"named exact", named, "email", 1, true},
		{"named trims spaces", named, " id ", 0, true},
		{"named unknown", named, "age", -1, false},
		{"named rejects bare index", named, "0", -1, false},
		{"headerless synthetic name", headerless, "column_1", 1, true},
		{"headerless bare index", headerless, "1", 1, true},
		{"headerless index out of range", headerless, "2", -1, false},
		{"headerless negative index", headerless, "-1", -1, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ix, ok := tt.t.ColumnIndex(tt.lookup)
			if ix != tt.wantIx || ok != tt.wantOk {
				t.Fatalf("ColumnIndex(%q) = (%d, %v), want (%d, %v)",
					tt.lookup, ix, ok, tt.wantIx, tt.wantOk)
			}
		})
	}
}

//
// invariant checks
//

func TestCheckRectangular(t *testing.T) {
	t.Parallel()

	ok := Table{Header: []string{"a", "b"}, Rows: [][]string{{"1", "2"}, {"3", "4"}}}
	if err := ok.CheckRectangular(); err != nil {
		t.Fatalf("CheckRectangular() = %v, want nil", err)
	}

	ragged := Table{Header: []string{"a", "b"}, Rows: [][]string{{"1", "2"}, {"3"}}}
	if err := ragged.CheckRectangular(); err == nil {
		t.Fatal("ragged table passed CheckRectangular")
	}
}

func TestCheckHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  []string
		wantErr bool
	}{
		{"valid", []string{"id", "email"}, false},
		{"duplicate", []string{"id", "id"}, true},
		{"blank", []string{"id", " "}, true},
		{"empty header ok", nil, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Table{Header: tt.header}.CheckHeader()
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckHeader() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

//
// Clone / Column
//

// TestClone verifies the copy is deep: writing through the clone must
// not reach the original.
func TestClone(t *testing.T) {
	t.Parallel()

	orig := Table{
		Header:    []string{"a"},
		Rows:      [][]string{{"x"}, {"y"}},
		HasHeader: true,
	}
	cp := orig.Clone()
	cp.Rows[0][0] = "mutated"
	cp.Header[0] = "mutated"

	if orig.Rows[0][0] != "x" || orig.Header[0] != "a" {
		t.Fatalf("Clone shares storage with the original: %v", orig)
	}
}

func TestColumn(t *testing.T) {
	t.Parallel()

	tab := Table{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"1", "x"}, {"2", "y"}},
	}
	if got, want := tab.Column(1), []string{"x", "y"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Column(1) = %v, want %v", got, want)
	}
}
