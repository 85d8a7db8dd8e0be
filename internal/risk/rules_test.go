package risk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "safereturn/pkg/domain-errors"
)

func TestClassificationMatrix(t *testing.T) {
	grid := AllAssessments()
	require.Len(t, grid, 320)

	var b strings.Builder
	for _, a := range grid {
		tier, rule := Explain(a)
		fmt.Fprintf(&b, "%s %s %s %s -> %s (%s)\n", a.Housing, a.Job, a.Mental, a.Family, tier, rule)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "classification_matrix", []byte(b.String()))
}

func TestClassify(t *testing.T) {
	for _, a := range AllAssessments() {
		tier := Classify(a)
		require.True(t, tier.IsValid())

		switch {
		case a.Mental == MentalBad || a.Housing == HousingHomeless:
			assert.Equal(t, TierRed, tier, "%+v", a)
		case a.Job == JobUnemployed || a.Family == FamilyProblematic:
			assert.Equal(t, TierYellow, tier, "%+v", a)
		default:
			assert.Equal(t, TierGreen, tier, "%+v", a)
		}
	}
}

func TestClassifyRedDominates(t *testing.T) {
	// Every YELLOW trigger combined with a RED trigger stays RED.
	for _, j := range JobStatuses {
		for _, f := range FamilyStatuses {
			a := Assessment{Housing: HousingStable, Job: j, Mental: MentalBad, Family: f}
			assert.Equal(t, TierRed, Classify(a))
			a = Assessment{Housing: HousingHomeless, Job: j, Mental: MentalGood, Family: f}
			assert.Equal(t, TierRed, Classify(a))
		}
	}
}

func TestClassifyMonotonic(t *testing.T) {
	// Replacing any status with a worse-or-equal trigger never lowers the tier.
	base := Assessment{Housing: HousingStable, Job: JobEmployed, Mental: MentalGood, Family: FamilySupportive}
	worse := []func(Assessment) Assessment{
		func(a Assessment) Assessment { a.Job = JobUnemployed; return a },
		func(a Assessment) Assessment { a.Family = FamilyProblematic; return a },
		func(a Assessment) Assessment { a.Mental = MentalBad; return a },
		func(a Assessment) Assessment { a.Housing = HousingHomeless; return a },
	}
	for _, a := range AllAssessments() {
		for _, w := range worse {
			assert.GreaterOrEqual(t, Classify(w(a)).Severity(), Classify(a).Severity(), "%+v", a)
		}
	}
	assert.Equal(t, TierGreen, Classify(base))
}

func TestClassifyIsDeterministic(t *testing.T) {
	for _, a := range AllAssessments() {
		assert.Equal(t, Classify(a), Classify(a))
	}
}

func TestParseAssessment(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		a, err := ParseAssessment("homeless", "training", "stressed", "no_contact")
		require.NoError(t, err)
		assert.Equal(t, Assessment{HousingHomeless, JobTraining, MentalStressed, FamilyNoContact}, a)
	})

	cases := map[string][4]string{
		"housing": {"castle", "employed", "good", "supportive"},
		"job":     {"stable", "retired", "good", "supportive"},
		"mental":  {"stable", "employed", "great", "supportive"},
		"family":  {"stable", "employed", "good", "estranged"},
		"case":    {"STABLE", "employed", "good", "supportive"},
		"empty":   {"stable", "", "good", "supportive"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAssessment(in[0], in[1], in[2], in[3])
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidEnum))
		})
	}
}

func TestFactors(t *testing.T) {
	t.Run("none for a stable month", func(t *testing.T) {
		assert.Empty(t, Factors(Assessment{HousingStable, JobEmployed, MentalGood, FamilySupportive}))
	})

	t.Run("all conditions", func(t *testing.T) {
		fs := Factors(Assessment{HousingHomeless, JobUnemployed, MentalBad, FamilyProblematic})
		codes := make([]string, 0, len(fs))
		for _, f := range fs {
			codes = append(codes, f.Code)
		}
		assert.Equal(t, []string{"mental_bad", "homeless", "unemployed", "family_problematic"}, codes)
		assert.Len(t, Recommendations(fs), 4)
	})

	t.Run("no contact is reported without raising tier", func(t *testing.T) {
		a := Assessment{HousingStable, JobEmployed, MentalGood, FamilyNoContact}
		require.Len(t, Factors(a), 1)
		assert.Equal(t, TierGreen, Classify(a))
	})
}

func TestParseTier(t *testing.T) {
	for _, tier := range Tiers {
		got, err := ParseTier(string(tier))
		require.NoError(t, err)
		assert.Equal(t, tier, got)
	}
	_, err := ParseTier("ORANGE")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidEnum))
}
