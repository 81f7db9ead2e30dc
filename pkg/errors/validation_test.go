package errors

import (
	"testing"
)

func TestValidateImageRef(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		allowAbsolute bool
		wantErr       bool
	}{
		{"relative path", "frames/0001.png", false, false},
		{"absolute path allowed", "/tmp/frame.png", true, false},
		{"https url", "https://example.com/frame.png", false, false},
		{"data uri", "data:image/png;base64,iVBORw0KGgo=", false, false},

		{"empty", "", false, true},
		{"absolute path rejected", "/etc/passwd", false, true},
		{"path traversal", "frames/../../secret.png", false, true},
		{"path traversal absolute", "/tmp/../etc/passwd", true, true},
		{"backslash", "frames\\0001.png", false, true},
		{"null byte", "frame\x00.png", false, true},
		{"newline", "frame\n.png", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageRef(tt.input, tt.allowAbsolute)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImageRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidPanel {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidPanel)
			}
		})
	}
}

func TestValidateOutputFormat(t *testing.T) {
	if err := ValidateOutputFormat("svg", "svg", "png"); err != nil {
		t.Errorf("svg should be valid: %v", err)
	}
	err := ValidateOutputFormat("gif", "svg", "png")
	if err == nil {
		t.Fatal("gif should be rejected")
	}
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidFormat)
	}
}
