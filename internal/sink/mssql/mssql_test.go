package mssql

import "testing"

//
// identifier quoting
//

func TestMsIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"email", "[email]"},
		{"with]bracket", "[with]]bracket]"},
	}
	for _, tt := range tests {
		if got := msIdent(tt.in); got != tt.want {
			t.Errorf("msIdent(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMsFQN(t *testing.T) {
	t.Parallel()

	if got, want := msFQN("fixtures"), "[fixtures]"; got != want {
		t.Fatalf("msFQN = %s, want %s", got, want)
	}
	if got, want := msFQN("dbo.fixtures"), "[dbo].[fixtures]"; got != want {
		t.Fatalf("msFQN = %s, want %s", got, want)
	}
}
