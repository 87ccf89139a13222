package process

import (
	"errors"
	"math"
	"testing"

	goerrors "github.com/kbukum/hostproc/errors"
)

func TestCheckText(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
		offset  int
	}{
		{"plain", "hello", false, 0},
		{"empty", "", false, 0},
		{"utf8", "héllo wörld", false, 0},
		{"leading NUL", "\x00abc", true, 0},
		{"trailing NUL", "abc\x00", true, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := checkText("argument", tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("checkText(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidEncoding) {
				t.Error("expected ErrInvalidEncoding as cause")
			}
			if err.Details["offset"] != tc.offset {
				t.Errorf("expected offset %d, got %v", tc.offset, err.Details["offset"])
			}
		})
	}
}

func TestCheckLength(t *testing.T) {
	if err := checkLength("stdin", 1024); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if math.MaxInt > math.MaxUint32 {
		tooLong := uint64(math.MaxUint32) + 1
		err := checkLength("stdin", int(tooLong))
		appErr, ok := goerrors.AsAppError(err)
		if !ok || appErr.Code != goerrors.ErrCodeInvalidInput {
			t.Errorf("expected INVALID_INPUT, got %v", err)
		}
	}
}

func TestSplitEnviron(t *testing.T) {
	var got [][2]string
	splitEnviron([]string{"", "A=1", "B", "=D:=D:\\x", "C=x=y"}, func(k, v string) {
		got = append(got, [2]string{k, v})
	})

	want := [][2]string{{"A", "1"}, {"=D:", "D:\\x"}, {"C", "x=y"}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
