package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/gitcustomcode/nexevent-api-mvp-sub000/internal/repository"
)

func TestValidCPF(t *testing.T) {
	cases := []struct {
		doc  string
		want bool
	}{
		{"529.982.247-25", true},
		{"52998224725", true},
		{"111.444.777-35", true},
		{"529.982.247-24", false}, // wrong second verifier digit
		{"529.982.247-15", false}, // wrong first verifier digit
		{"111.111.111-11", false}, // repeated digit sequence
		{"000.000.000-00", false},
		{"5299822472", false},   // ten digits
		{"529982247255", false}, // twelve digits
		{"52998224a25", false},  // stray letter
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidCPF(tc.doc); got != tc.want {
			t.Errorf("ValidCPF(%q) = %v, want %v", tc.doc, got, tc.want)
		}
	}
}

type profileInput struct {
	Name     string `validate:"required,fullname"`
	Document string `validate:"required,cpf"`
	Email    string `validate:"omitempty,email"`
}

func TestStructMapsFirstFailure(t *testing.T) {
	ctx := context.Background()

	ok := profileInput{Name: "Ana Souza", Document: "529.982.247-25", Email: "ana@example.com"}
	if err := Struct(ctx, ok); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	cases := []struct {
		name  string
		input profileInput
	}{
		{"missing name", profileInput{Document: "529.982.247-25"}},
		{"single-part name", profileInput{Name: "Ana", Document: "529.982.247-25"}},
		{"bad checksum", profileInput{Name: "Ana Souza", Document: "529.982.247-24"}},
		{"bad email", profileInput{Name: "Ana Souza", Document: "529.982.247-25", Email: "nope"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(ctx, tc.input)
			if !errors.Is(err, repository.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}
