package tour_test

import (
	"testing"

	"github.com/vanderheijden86/spotlight/pkg/tour"
)

func TestWithTourParam(t *testing.T) {
	tests := []struct {
		route, id, want string
	}{
		{"/coaches", "book", "/coaches?tour=book"},
		{"/coaches?sort=rating", "book", "/coaches?sort=rating&tour=book"},
		{"/coaches", "", "/coaches"},
	}
	for _, tt := range tests {
		if got := tour.WithTourParam(tt.route, tt.id); got != tt.want {
			t.Errorf("WithTourParam(%q, %q) = %q, want %q", tt.route, tt.id, got, tt.want)
		}
	}
}

func TestSplitTourParam(t *testing.T) {
	id, cleaned := tour.SplitTourParam("/coaches?sort=rating&tour=book")
	if id != "book" {
		t.Errorf("Expected tour id book, got %q", id)
	}
	if cleaned != "/coaches?sort=rating" {
		t.Errorf("Expected cleaned route, got %q", cleaned)
	}

	// The cleaned route carries no parameter, so a second pass starts nothing.
	if again, _ := tour.SplitTourParam(cleaned); again != "" {
		t.Errorf("Expected no tour on second pass, got %q", again)
	}
}

func TestSplitTourParamWithoutParam(t *testing.T) {
	id, cleaned := tour.SplitTourParam("/dashboard")
	if id != "" || cleaned != "/dashboard" {
		t.Errorf("Expected untouched route, got %q %q", id, cleaned)
	}
}

func TestRoutePath(t *testing.T) {
	if got := tour.RoutePath("/coaches?tour=book#top"); got != "/coaches" {
		t.Errorf("Expected /coaches, got %q", got)
	}
}
