package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationErrorMessage(t *testing.T) {
	err := Invalid("edge", "3-99", "references unknown node %q", "99")
	want := `validation: edge "3-99": references unknown node "99"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	noValue := Invalid("network", "", "no nodes")
	if noValue.Error() != "validation: network: no nodes" {
		t.Errorf("Error() = %q", noValue.Error())
	}
}

func TestMissingCoordinateErrorMessage(t *testing.T) {
	t.Run("edge endpoint", func(t *testing.T) {
		err := &MissingCoordinateError{EdgeID: "1-2", Layout: "kk", Endpoint: "to", Node: "2"}
		msg := err.Error()
		for _, part := range []string{`"1-2"`, "to", `"2"`, `"kk"`} {
			if !strings.Contains(msg, part) {
				t.Errorf("Error() = %q, missing %s", msg, part)
			}
		}
	})

	t.Run("node row", func(t *testing.T) {
		err := &MissingCoordinateError{Layout: "circle", Endpoint: "node", Node: "7"}
		want := `missing coordinate: node "7" has no position in layout "circle"`
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})
}

func TestUnsupportedLayoutError(t *testing.T) {
	err := &UnsupportedLayoutError{Name: "spiral", Supported: []string{"circle", "kk"}}
	if !strings.Contains(err.Error(), "circle, kk") {
		t.Errorf("Error() = %q, want supported list", err.Error())
	}

	var target *UnsupportedLayoutError
	if !errors.As(error(err), &target) || target.Name != "spiral" {
		t.Error("errors.As should recover *UnsupportedLayoutError")
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "out/network", false},
		{"relative", "./comparison", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"control char", "out\x00file", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateOutputPath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}
