package biz

import "testing"

func TestParseRating(t *testing.T) {
	tests := []struct {
		input   string
		want    Rating
		wantErr bool
	}{
		{"g", RatingGeneral, false},
		{"general", RatingGeneral, false},
		{"s", RatingSensitive, false},
		{"safe", RatingSensitive, false},
		{"Sensitive", RatingSensitive, false},
		{"q", RatingQuestionable, false},
		{" e ", RatingExplicit, false},
		{"explicit", RatingExplicit, false},
		{"x", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRating(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRating(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRating(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRatingOrder(t *testing.T) {
	if !(RatingGeneral < RatingSensitive && RatingSensitive < RatingQuestionable && RatingQuestionable < RatingExplicit) {
		t.Error("ratings are not ordered general < sensitive < questionable < explicit")
	}
	if RatingExplicit.String() != "e" || RatingSensitive.String() != "s" {
		t.Error("unexpected rating letters")
	}
}
