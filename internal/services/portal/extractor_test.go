package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oagarcia/proyecto-skandia/internal/models"
)

func TestRiskFromIcon(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"conservative icon", "/images/pRiesgo1.png", models.RiskConservative},
		{"moderate icon", "/images/pRiesgo2.png", models.RiskModerate},
		{"aggressive icon", "/images/pRiesgo3.png", models.RiskAggressive},
		{"unknown icon", "/images/other.png", models.RiskUnknown},
		{"empty src", "", models.RiskUnknown},
		{"substring anywhere", "https://cdn.example.com/assets/pRiesgo2_v2.png", models.RiskModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, riskFromIcon(tt.src))
		})
	}
}

func TestReturnsFromDays(t *testing.T) {
	t.Run("all four cells present", func(t *testing.T) {
		r := returnsFromDays([]string{"0.12%", "1.5%", "4.2%", "10.1%"})
		assert.Equal(t, "0.12%", r.Daily)
		assert.Equal(t, "1.5%", r.Monthly)
		assert.Equal(t, "4.2%", r.SixMonths)
		assert.Equal(t, "10.1%", r.Yearly)
	})

	t.Run("missing cells get placeholders", func(t *testing.T) {
		r := returnsFromDays([]string{"0.12%"})
		assert.Equal(t, "0.12%", r.Daily)
		assert.Equal(t, models.ReturnPlaceholder, r.Monthly)
		assert.Equal(t, models.ReturnPlaceholder, r.SixMonths)
		assert.Equal(t, models.ReturnPlaceholder, r.Yearly)
	})

	t.Run("empty cells get placeholders", func(t *testing.T) {
		r := returnsFromDays([]string{"", "1.5%", "", ""})
		assert.Equal(t, models.ReturnPlaceholder, r.Daily)
		assert.Equal(t, "1.5%", r.Monthly)
		assert.Equal(t, models.ReturnPlaceholder, r.SixMonths)
		assert.Equal(t, models.ReturnPlaceholder, r.Yearly)
	})

	t.Run("nil slice", func(t *testing.T) {
		r := returnsFromDays(nil)
		assert.Equal(t, models.ReturnPlaceholder, r.Daily)
		assert.Equal(t, models.ReturnPlaceholder, r.Yearly)
	})
}

func TestMapRow(t *testing.T) {
	t.Run("complete row", func(t *testing.T) {
		p := mapRow(rawRow{
			ID:            "numberOfRow3",
			CategoryIndex: 0,
			Name:          "Skandia Acciones Globales",
			Type:          "Rv. Internacional",
			Value:         "1,234,567",
			RiskIcon:      "/img/pRiesgo3.png",
			Days:          []string{"0.1%", "1.2%", "5.5%", "12.3%"},
		})

		assert.Equal(t, "numberOfRow3", p.ID)
		assert.Equal(t, "Portafolios Abiertos", p.Category)
		assert.Equal(t, "Skandia Acciones Globales", p.Name)
		assert.Equal(t, "Rv. Internacional", p.Type)
		assert.Equal(t, "1,234,567", p.Value)
		assert.Equal(t, models.RiskAggressive, p.Risk)
		assert.Equal(t, "12.3%", p.Returns.Yearly)
	})

	t.Run("absent value defaults to zero", func(t *testing.T) {
		p := mapRow(rawRow{ID: "numberOfRow1", CategoryIndex: 1})
		assert.Equal(t, "0", p.Value)
		assert.Equal(t, "Portafolios a la Medida", p.Category)
		assert.Equal(t, models.RiskUnknown, p.Risk)
	})

	t.Run("category index out of range", func(t *testing.T) {
		p := mapRow(rawRow{ID: "numberOfRow1", CategoryIndex: 7})
		assert.Equal(t, "", p.Category)
	})
}

func TestMapRows(t *testing.T) {
	raws := []rawRow{
		{ID: "numberOfRow0", CategoryIndex: 0, Name: "Fondo A"},
		{ID: "numberOfRow1", CategoryIndex: 0, Name: "Fondo B"},
		{ID: "numberOfRow2", CategoryIndex: 1, Name: "Fondo C"},
		{ID: "numberOfRow3", CategoryIndex: 2, Name: "Fondo D"},
	}

	portfolios := mapRows(raws)
	require.Len(t, portfolios, len(raws))

	// Every record has all fields populated, placeholder or real
	for _, p := range portfolios {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Value)
		assert.NotEmpty(t, p.Risk)
		assert.NotEmpty(t, p.Returns.Daily)
		assert.NotEmpty(t, p.Returns.Monthly)
		assert.NotEmpty(t, p.Returns.SixMonths)
		assert.NotEmpty(t, p.Returns.Yearly)
	}

	assert.Equal(t, "Portafolios Abiertos", portfolios[0].Category)
	assert.Equal(t, "Portafolios a la Medida", portfolios[2].Category)
	assert.Equal(t, "Portafolios Especiales", portfolios[3].Category)
}

func TestMapRowsEmpty(t *testing.T) {
	portfolios := mapRows(nil)
	assert.NotNil(t, portfolios)
	assert.Empty(t, portfolios)
}
