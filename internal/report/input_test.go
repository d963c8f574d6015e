package report

import (
	"context"
	"errors"
	"testing"

	"github.com/sithum-sy/hireme-sub001/internal/domain"
)

func inputCatalog() map[string]domain.DataSource {
	return map[string]domain.DataSource{
		"services": {
			Key:         "services",
			DisplayName: "Services",
			Fields: map[string]domain.Field{
				"status":        {Label: "Status", Type: domain.TypeEnum, Options: []string{"in_progress", "completed"}},
				"provider_name": {Label: "Provider", Type: domain.TypeString},
				"is_active":     {Label: "Active", Type: domain.TypeBoolean},
				"booking_date":  {Label: "Booking Date", Type: domain.TypeDate},
				"created_at":    {Label: "Created At", Type: domain.TypeDatetime},
				"base_price":    {Label: "Price", Type: domain.TypeDecimal},
				"title":         {Label: "Title", Type: domain.TypeString},
			},
		},
	}
}

func TestInputForEnumUsesDeclaredOptions(t *testing.T) {
	sess := NewSession(inputCatalog(), nil)
	sess.SelectDataSource("services")

	in := sess.InputFor(context.Background(), "status")
	if in.Kind != InputSelect {
		t.Fatalf("kind = %q", in.Kind)
	}
	want := []domain.Option{
		{Value: "in_progress", Label: "In progress"},
		{Value: "completed", Label: "Completed"},
	}
	if len(in.Options) != len(want) {
		t.Fatalf("options = %v", in.Options)
	}
	for i := range want {
		if in.Options[i] != want[i] {
			t.Errorf("option %d = %v, want %v", i, in.Options[i], want[i])
		}
	}
}

func TestInputForNameHeuristicLoadsDistinctValues(t *testing.T) {
	fetched := 0
	fetcher := OptionFetcherFunc(func(ctx context.Context, source, field string) ([]domain.Option, error) {
		fetched++
		if source != "services" || field != "provider_name" {
			t.Errorf("fetch for %s.%s", source, field)
		}
		return []domain.Option{{Value: "Acme", Label: "Acme"}}, nil
	})
	sess := NewSession(inputCatalog(), fetcher)
	sess.SelectDataSource("services")

	in := sess.InputFor(context.Background(), "provider_name")
	if in.Kind != InputSelect || len(in.Options) != 1 || in.Options[0].Value != "Acme" {
		t.Fatalf("input = %+v", in)
	}
	sess.InputFor(context.Background(), "provider_name")
	if fetched != 1 {
		t.Errorf("options fetched %d times, want 1", fetched)
	}
}

func TestInputForHeuristicFetchFailure(t *testing.T) {
	fetcher := OptionFetcherFunc(func(ctx context.Context, source, field string) ([]domain.Option, error) {
		return nil, errors.New("backend down")
	})
	sess := NewSession(inputCatalog(), fetcher)
	sess.SelectDataSource("services")

	in := sess.InputFor(context.Background(), "provider_name")
	if in.Kind != InputSelect || !in.Loading || len(in.Options) != 0 {
		t.Fatalf("input on fetch failure = %+v", in)
	}
}

func TestInputForScalarKinds(t *testing.T) {
	sess := NewSession(inputCatalog(), nil)
	sess.SelectDataSource("services")

	cases := []struct {
		field string
		kind  InputKind
	}{
		{"is_active", InputSelect},
		{"booking_date", InputDate},
		{"created_at", InputDatetime},
		{"base_price", InputText},
		{"title", InputText},
		{"no_such_field", InputText},
	}
	for _, tc := range cases {
		in := sess.InputFor(context.Background(), tc.field)
		if in.Kind != tc.kind {
			t.Errorf("InputFor(%q).Kind = %q, want %q", tc.field, in.Kind, tc.kind)
		}
	}

	in := sess.InputFor(context.Background(), "is_active")
	if len(in.Options) != 2 || in.Options[0].Label != "Yes" || in.Options[1].Label != "No" ||
		in.Options[0].Value != "1" || in.Options[1].Value != "0" {
		t.Errorf("boolean options = %v", in.Options)
	}
}
