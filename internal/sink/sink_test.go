package sink

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"csvanon/internal/table"
)

//
// factory
//

// TestNewDefaultsToFile verifies empty kind selects the file sink and
// that an unknown kind reports what is registered.
func TestNewDefaultsToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	s, err := New(context.Background(), Config{Path: path})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*fileSink); !ok {
		t.Fatalf("New() = %T, want *fileSink", s)
	}

	_, err = New(context.Background(), Config{Kind: "carrier-pigeon"})
	if err == nil {
		t.Fatal("unknown kind did not error")
	}
	if !strings.Contains(err.Error(), "file") {
		t.Fatalf("error %q does not list registered kinds", err)
	}
}

// TestFileSinkWrite verifies the end-to-end file path: a table goes in,
// a parseable delimited file comes out.
func TestFileSinkWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	s, err := New(context.Background(), Config{Kind: "file", Path: path})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer s.Close()

	tab := table.Table{
		Header:    []string{"id", "email"},
		Rows:      [][]string{{"1", "a@x"}},
		HasHeader: true,
	}
	if err := s.Write(context.Background(), tab); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if want := "id,email\n1,a@x\n"; string(content) != want {
		t.Fatalf("output = %q, want %q", content, want)
	}
}

func TestFileSinkRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), Config{Kind: "file"}); err == nil {
		t.Fatal("file sink without path did not error")
	}
}

//
// identifier normalization
//

// TestNormalizeColumn verifies header-to-identifier mapping for the
// database sinks.
func TestNormalizeColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Email", "email"},
		{"First Name", "first_name"},
		{"order-id", "order_id"},
		{"a.b/c:d", "a_b_c_d"},
		{"  spaced  ", "spaced"},
		{"__lead_trail__", "lead_trail"},
		{"weird!!chars", "weirdchars"},
		{"123", "123"},
		{"", "col"},
		{"!!!", "col"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeColumn(tt.in); got != tt.want {
				t.Fatalf("NormalizeColumn(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestNormalizeColumns verifies collision handling: names that collide
// after normalization get numeric suffixes, in input order.
func TestNormalizeColumns(t *testing.T) {
	t.Parallel()

	got := NormalizeColumns([]string{"Email", "email", "E-Mail", "id"})
	want := []string{"email", "email_2", "e_mail", "id"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeColumns = %v, want %v", got, want)
	}

	got = NormalizeColumns([]string{"", "!", "?"})
	want = []string{"col", "col_2", "col_3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeColumns(empties) = %v, want %v", got, want)
	}
}
