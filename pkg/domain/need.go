package domain

import (
	"fmt"
	"strings"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

// WelfareNeed is a category of assistance request.
//
// Each selectable need maps 1:1 to a provisioned feature view ("layer").
// Registration and MAIN are pseudo-needs: Registration is the intake layer
// every deployment gets, MAIN is the unrestricted full-access layer type.
// Survey123 is a reference to the source form and is never provisioned
// as a layer.
type WelfareNeed string

const (
	MissingPerson        WelfareNeed = "Missing Person"
	ShelterAccommodation WelfareNeed = "Shelter and Accommodation"
	HouseholdGoods       WelfareNeed = "Household Goods and Services"
	AnimalWelfare        WelfareNeed = "Animal Welfare"
	HealthDisability     WelfareNeed = "Health or Disability"
	FinancialAssistance  WelfareNeed = "Financial Assistance"
	PsychosocialSupport  WelfareNeed = "Psychosocial Support"

	Registration WelfareNeed = "Registration"
	Main         WelfareNeed = "MAIN"
	Survey123    WelfareNeed = "Survey123"
)

func (n WelfareNeed) String() string {
	return string(n)
}

// SelectableNeeds are the needs a deployment can be created with.
func SelectableNeeds() []WelfareNeed {
	return []WelfareNeed{
		MissingPerson,
		ShelterAccommodation,
		HouseholdGoods,
		AnimalWelfare,
		HealthDisability,
		FinancialAssistance,
		PsychosocialSupport,
	}
}

func AsWelfareNeed(s string) (WelfareNeed, error) {
	switch s {
	case string(MissingPerson):
		return MissingPerson, nil
	case string(ShelterAccommodation):
		return ShelterAccommodation, nil
	case string(HouseholdGoods):
		return HouseholdGoods, nil
	case string(AnimalWelfare):
		return AnimalWelfare, nil
	case string(HealthDisability):
		return HealthDisability, nil
	case string(FinancialAssistance):
		return FinancialAssistance, nil
	case string(PsychosocialSupport):
		return PsychosocialSupport, nil
	case string(Registration):
		return Registration, nil
	case string(Main):
		return Main, nil
	case string(Survey123):
		return Survey123, nil
	default:
		return "", fmt.Errorf("'%s' is not WelfareNeed", s)
	}
}

// Key is the internal (column-safe) key of the need.
//
// It keys field subsets in the field configuration and layer URLs in the
// portal config artifact.
func (n WelfareNeed) Key() string {
	switch n {
	case MissingPerson:
		return "missingperson"
	case ShelterAccommodation:
		return "shelteraccommodation"
	case HouseholdGoods:
		return "householdgoods"
	case AnimalWelfare:
		return "animalwelfare"
	case HealthDisability:
		return "healthdisability"
	case FinancialAssistance:
		return "financialassistance"
	case PsychosocialSupport:
		return "psychosocialsupport"
	case Registration:
		return "registration"
	case Main:
		return "all"
	case Survey123:
		return "survey123"
	default:
		return ""
	}
}

// referralFlag is the column in the source dataset marking a record as
// referred to this need.
func (n WelfareNeed) referralFlag() string {
	switch n {
	case MissingPerson:
		return "missingpersonreferral"
	case ShelterAccommodation:
		return "shelteraccomreferral"
	case HouseholdGoods:
		return "householdgoodsreferral"
	case AnimalWelfare:
		return "animalwelfarereferral"
	case HealthDisability:
		return "healthdisabilityreferral"
	case FinancialAssistance:
		return "financialassistreferral"
	case PsychosocialSupport:
		return "psychosocialreferral"
	default:
		return ""
	}
}

// RowFilter builds the view definition query restricting a feature view
// to records of the owning CDEM group(s), and, for welfare-need layers,
// to records referred to that need.
func (n WelfareNeed) RowFilter(fullNames []string) string {
	membership := fmt.Sprintf("cdemgroup IN ('%s')", strings.Join(fullNames, "','"))
	switch n {
	case Registration, Main:
		return membership
	default:
		return fmt.Sprintf("%s = 'Yes' AND %s", n.referralFlag(), membership)
	}
}

// LayerOrder is the layer-type processing order for one group unit:
// the deployment's welfare-need list as selected at creation time,
// duplicates removed (first occurrence wins), Survey123 excluded, and
// Registration appended when absent.
func LayerOrder(selected []WelfareNeed) []WelfareNeed {
	layers := slices.Filter(
		slices.Uniq(selected),
		func(n WelfareNeed) bool { return n != Survey123 },
	)
	if !slices.Contains(layers, Registration) {
		layers = append(layers, Registration)
	}
	return layers
}

// AccessRoles is the set of access-control roles provisioned per group
// unit: one per selected welfare need, plus MAIN.
//
// The MAIN role grants full access; it receives every layer view of the
// unit (the Registration view included), the source dataset and form, and
// the unit's dashboard.
func AccessRoles(selected []WelfareNeed) []WelfareNeed {
	roles := slices.Filter(
		slices.Uniq(selected),
		func(n WelfareNeed) bool {
			return n != Survey123 && n != Registration && n != Main
		},
	)
	return append(roles, Main)
}
