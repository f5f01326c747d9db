package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCodePersonNotFound, "person %q not in store", "I42"),
			want: `PERSON_NOT_FOUND: person "I42" not in store`,
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeInternal, stderrors.New("boom"), "layout failed"),
			want: "INTERNAL_ERROR: layout failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeUnsupportedConfiguration, "fan layout needs descendant depth 0")

	if !Is(err, ErrCodeUnsupportedConfiguration) {
		t.Error("Is() = false for matching code")
	}
	if Is(err, ErrCodePersonNotFound) {
		t.Error("Is() = true for non-matching code")
	}
	if Is(stderrors.New("plain"), ErrCodePersonNotFound) {
		t.Error("Is() = true for plain error")
	}
}

func TestIsWrapped(t *testing.T) {
	inner := New(ErrCodePersonNotFound, "missing root")
	outer := fmt.Errorf("build graph: %w", inner)

	if !Is(outer, ErrCodePersonNotFound) {
		t.Error("Is() should unwrap fmt.Errorf chains")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{
			name: "structured error",
			err:  New(ErrCodeInvalidChart, "unknown chart"),
			want: ErrCodeInvalidChart,
		},
		{
			name: "plain error",
			err:  stderrors.New("plain"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidPage, "unknown page size %q", "b9")
	if got, want := UserMessage(err), `unknown page size "b9"`; got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}

	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(ErrCodeInternal, cause, "wrapped")

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestWarning(t *testing.T) {
	w := Warnf(WarnCodeDepthClamped, "ancestor depth reduced from %d to %d", 50, 20)
	want := "DEPTH_CLAMPED: ancestor depth reduced from 50 to 20"
	if got := w.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
