package analysis

import (
	"fmt"
	"strings"

	"github.com/oagarcia/proyecto-skandia/internal/models"
)

// buildPrompt assembles the Spanish analyst prompt. The report structure is
// fixed; the model fills it from the record, the extracted holdings, the
// market context, and the attached fact sheet when one was retrieved.
func buildPrompt(p models.Portfolio, holdings []string, marketContext string, hasDocument bool) string {
	var sb strings.Builder

	sb.WriteString("Eres un analista financiero senior especializado en fondos de inversión colombianos. ")
	sb.WriteString("Analiza el siguiente portafolio de Skandia y genera un informe profesional en español.\n\n")

	sb.WriteString("## Datos del portafolio\n")
	sb.WriteString(fmt.Sprintf("- Nombre: %s\n", p.Name))
	sb.WriteString(fmt.Sprintf("- Categoría: %s\n", p.Category))
	sb.WriteString(fmt.Sprintf("- Tipo de inversión: %s\n", p.Type))
	sb.WriteString(fmt.Sprintf("- Valor del fondo: %s\n", p.Value))
	sb.WriteString(fmt.Sprintf("- Perfil de riesgo: %s\n", p.Risk))
	sb.WriteString(fmt.Sprintf("- Rentabilidad diaria: %s, mensual: %s, semestral: %s, anual: %s\n",
		p.Returns.Daily, p.Returns.Monthly, p.Returns.SixMonths, p.Returns.Yearly))

	if len(holdings) > 0 {
		sb.WriteString("\n## Principales inversiones\n")
		for _, h := range holdings {
			sb.WriteString("- " + h + "\n")
		}
	}

	if marketContext != "" {
		sb.WriteString("\n## Contexto de mercado reciente\n")
		sb.WriteString(marketContext)
		sb.WriteString("\n")
	}

	if hasDocument {
		sb.WriteString("\nSe adjunta la ficha técnica oficial del fondo en PDF. ")
		sb.WriteString("Usa su contenido como fuente principal de composición y estrategia.\n")
	}

	sb.WriteString("\nEstructura el informe exactamente en estas secciones:\n")
	sb.WriteString("1. **Resumen Ejecutivo**: visión general del fondo y su desempeño reciente.\n")
	sb.WriteString("2. **Análisis de Riesgos**: riesgos de mercado, crédito y liquidez relevantes para este portafolio.\n")
	sb.WriteString("3. **Ventajas Competitivas**: qué diferencia a este fondo frente a alternativas comparables.\n")
	sb.WriteString("4. **Veredicto Final**: recomendación clara (favorable, neutral o desfavorable) con su justificación.\n")
	sb.WriteString("\nSé concreto y fundamenta cada afirmación en los datos disponibles.")

	return sb.String()
}
