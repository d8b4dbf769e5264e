package myst2pdf

import (
	"errors"
	"testing"
	"time"
)

func TestPageSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		page    *PageSettings
		wantErr error
	}{
		{
			name: "nil means defaults",
			page: nil,
		},
		{
			name: "defaults valid",
			page: DefaultPageSettings(),
		},
		{
			name: "case insensitive",
			page: &PageSettings{Size: "A4", Orientation: "Landscape", Margin: 1.0},
		},
		{
			name:    "bad size",
			page:    &PageSettings{Size: "tabloid", Orientation: "portrait", Margin: 0.5},
			wantErr: ErrInvalidPageSize,
		},
		{
			name:    "bad orientation",
			page:    &PageSettings{Size: "letter", Orientation: "sideways", Margin: 0.5},
			wantErr: ErrInvalidOrientation,
		},
		{
			name:    "margin too small",
			page:    &PageSettings{Size: "letter", Orientation: "portrait", Margin: 0.1},
			wantErr: ErrInvalidMargin,
		},
		{
			name:    "margin too large",
			page:    &PageSettings{Size: "letter", Orientation: "portrait", Margin: 3.5},
			wantErr: ErrInvalidMargin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.page.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFooterValidate(t *testing.T) {
	tests := []struct {
		name    string
		footer  *Footer
		wantErr error
	}{
		{"nil means no footer", nil, nil},
		{"empty position defaults", &Footer{}, nil},
		{"left", &Footer{Position: "left"}, nil},
		{"mixed case", &Footer{Position: "Center"}, nil},
		{"invalid", &Footer{Position: "bottom"}, ErrInvalidFooterPosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.footer.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithTimeoutPanicsOnNonPositive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) should panic")
		}
	}()
	WithTimeout(0)
}

func TestWithTimeout(t *testing.T) {
	e := &Exporter{}
	WithTimeout(5 * time.Second)(e)
	if e.cfg.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", e.cfg.timeout)
	}
}
