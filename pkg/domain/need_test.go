package domain_test

import (
	"testing"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/cmp"
)

func TestRowFilter(t *testing.T) {
	type When struct {
		need      domain.WelfareNeed
		fullNames []string
	}
	type Then struct {
		filter string
	}
	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			got := when.need.RowFilter(when.fullNames)
			if got != then.filter {
				t.Errorf("expected %q, got %q", then.filter, got)
			}
		}
	}

	t.Run("welfare need layer scopes on membership and referral flag", theory(
		When{
			need:      domain.MissingPerson,
			fullNames: []string{"Wellington Region Emergency Management Office"},
		},
		Then{
			filter: "missingpersonreferral = 'Yes' AND cdemgroup IN ('Wellington Region Emergency Management Office')",
		},
	))

	t.Run("registration layer scopes on membership only", theory(
		When{
			need:      domain.Registration,
			fullNames: []string{"Auckland Emergency Management"},
		},
		Then{
			filter: "cdemgroup IN ('Auckland Emergency Management')",
		},
	))

	t.Run("main layer scopes on membership only", theory(
		When{
			need:      domain.Main,
			fullNames: []string{"Auckland Emergency Management"},
		},
		Then{
			filter: "cdemgroup IN ('Auckland Emergency Management')",
		},
	))

	t.Run("merged units list every member", theory(
		When{
			need: domain.AnimalWelfare,
			fullNames: []string{
				"Wellington Region Emergency Management Office",
				"Auckland Emergency Management",
			},
		},
		Then{
			filter: "animalwelfarereferral = 'Yes' AND cdemgroup IN ('Wellington Region Emergency Management Office','Auckland Emergency Management')",
		},
	))
}

func TestLayerOrder(t *testing.T) {
	type When struct {
		selected []domain.WelfareNeed
	}
	type Then struct {
		layers []domain.WelfareNeed
	}
	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			got := domain.LayerOrder(when.selected)
			if !cmp.SliceEq(got, then.layers) {
				t.Errorf("expected %v, got %v", then.layers, got)
			}
		}
	}

	t.Run("keeps selection order and appends registration", theory(
		When{
			selected: []domain.WelfareNeed{
				domain.ShelterAccommodation, domain.MissingPerson,
			},
		},
		Then{
			layers: []domain.WelfareNeed{
				domain.ShelterAccommodation, domain.MissingPerson, domain.Registration,
			},
		},
	))

	t.Run("drops duplicates and the survey reference", theory(
		When{
			selected: []domain.WelfareNeed{
				domain.AnimalWelfare, domain.Survey123, domain.AnimalWelfare,
			},
		},
		Then{
			layers: []domain.WelfareNeed{
				domain.AnimalWelfare, domain.Registration,
			},
		},
	))

	t.Run("does not double registration when selected", theory(
		When{
			selected: []domain.WelfareNeed{
				domain.Registration, domain.HouseholdGoods,
			},
		},
		Then{
			layers: []domain.WelfareNeed{
				domain.Registration, domain.HouseholdGoods,
			},
		},
	))

	t.Run("empty selection still gets the registration layer", theory(
		When{selected: nil},
		Then{layers: []domain.WelfareNeed{domain.Registration}},
	))
}

func TestAccessRoles(t *testing.T) {
	type When struct {
		selected []domain.WelfareNeed
	}
	type Then struct {
		roles []domain.WelfareNeed
	}
	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			got := domain.AccessRoles(when.selected)
			if !cmp.SliceEq(got, then.roles) {
				t.Errorf("expected %v, got %v", then.roles, got)
			}
		}
	}

	t.Run("one role per need plus the full-access role", theory(
		When{
			selected: []domain.WelfareNeed{
				domain.MissingPerson, domain.ShelterAccommodation, domain.HouseholdGoods,
			},
		},
		Then{
			roles: []domain.WelfareNeed{
				domain.MissingPerson, domain.ShelterAccommodation, domain.HouseholdGoods, domain.Main,
			},
		},
	))

	t.Run("registration and survey entries yield no extra role", theory(
		When{
			selected: []domain.WelfareNeed{
				domain.Registration, domain.Survey123, domain.FinancialAssistance,
			},
		},
		Then{
			roles: []domain.WelfareNeed{domain.FinancialAssistance, domain.Main},
		},
	))
}

func TestAsWelfareNeed(t *testing.T) {
	for _, n := range domain.SelectableNeeds() {
		got, err := domain.AsWelfareNeed(n.String())
		if err != nil {
			t.Errorf("unexpected error for %q: %v", n, err)
		}
		if got != n {
			t.Errorf("expected %v, got %v", n, got)
		}
	}

	if _, err := domain.AsWelfareNeed("Catering"); err == nil {
		t.Error("expected error for unknown need, got nil")
	}
}
