package claude

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/linnemanlabs/sentinelle/internal/justify"
)

const systemPrompt = `Tu es un assistant médical expert en triage aux urgences.
Ta mission est d'aider les infirmiers à comprendre les décisions de classification des patients.

Règles importantes :
- Tu es un OUTIL D'AIDE À LA DÉCISION, pas un système de diagnostic
- Tu dois justifier les décisions de manière claire et concise
- Tu dois toujours t'appuyer sur les constantes vitales fournies
- Tu ne dois pas inventer de symptômes non fournis
- Tu dois rester factuel et professionnel`

// buildPrompt renders the patient context for one justification request.
// Absent vitals print as "?" rather than being omitted, so the model knows
// they were not measured.
func buildPrompt(in *justify.Input) string {
	p := in.Patient
	v := p.Vitals

	var b strings.Builder
	fmt.Fprintf(&b, "Génère une justification COURTE (2-3 phrases maximum) pour la classification de ce patient en niveau %s.\n\n", in.Gravity)

	fmt.Fprintf(&b, "CONTEXTE DU PATIENT :\n")
	fmt.Fprintf(&b, "- Âge : %d ans\n", p.Age)
	fmt.Fprintf(&b, "- Sexe : %s\n", p.Sex)
	fmt.Fprintf(&b, "- Motif : %s\n\n", p.ChiefComplaint)

	fmt.Fprintf(&b, "CONSTANTES VITALES :\n")
	fmt.Fprintf(&b, "- Fréquence cardiaque : %s bpm\n", intVal(v.HeartRate))
	fmt.Fprintf(&b, "- Pression artérielle : %s/%s mmHg\n", intVal(v.SystolicBP), intVal(v.DiastolicBP))
	fmt.Fprintf(&b, "- Fréquence respiratoire : %s /min\n", intVal(v.RespiratoryRate))
	fmt.Fprintf(&b, "- Température : %s°C\n", floatVal(v.Temperature))
	fmt.Fprintf(&b, "- SpO2 : %s%%\n", floatVal(v.SpO2))
	fmt.Fprintf(&b, "- Échelle de douleur : %s/10\n\n", intVal(v.PainScore))

	if len(in.RedFlags) > 0 {
		fmt.Fprintf(&b, "ALERTES : %s\n", strings.Join(in.RedFlags, ", "))
	}
	fmt.Fprintf(&b, "NIVEAU FRENCH : %s (%s)\n", in.French, in.Category)
	if in.MLAvailable {
		fmt.Fprintf(&b, "CONFIANCE DU MODÈLE : %.0f%%\n", in.Confidence*100)
	}

	b.WriteString("\nLa justification doit mentionner les constantes anormales si présentes, faire référence au motif de consultation et rester factuelle.\n\nJUSTIFICATION :")
	return b.String()
}

func intVal(p *int) string {
	if p == nil {
		return "?"
	}
	return strconv.Itoa(*p)
}

func floatVal(p *float64) string {
	if p == nil {
		return "?"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
