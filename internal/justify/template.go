package justify

import (
	"fmt"
	"strings"

	"github.com/linnemanlabs/sentinelle/internal/patient"
)

// Template builds the deterministic justification. The wording only restates
// facts already present in the input: the grader's red flags, the chief
// complaint and the two classifiers' agreement.
func Template(in *Input) string {
	motif := in.Patient.ChiefComplaint
	if motif == "" {
		motif = "symptômes présentés"
	}

	var b strings.Builder
	b.WriteString(lead(in, motif))

	b.WriteString(fmt.Sprintf(" Classification %s (%s, %s).",
		in.Gravity.String(), in.French.String(), in.French.CareDelay()))

	if in.MLAvailable {
		if in.MLGravity == in.Gravity {
			b.WriteString(fmt.Sprintf(" Confirmé par le modèle ML (confiance %.0f%%).",
				in.Confidence*100))
		} else {
			b.WriteString(fmt.Sprintf(" Note: le modèle ML suggère le niveau %s.",
				in.MLGravity.String()))
		}
	}
	return b.String()
}

// lead is the opening sentence, one per gravity level. At most two red
// flags are cited so the text stays readable on the triage screen.
func lead(in *Input, motif string) string {
	flags := in.RedFlags
	if len(flags) > 2 {
		flags = flags[:2]
	}
	cited := strings.Join(flags, ", ")

	switch in.Gravity {
	case patient.Rouge:
		if cited != "" {
			return fmt.Sprintf("Patient en urgence vitale présentant %s, nécessitant une prise en charge immédiate.", cited)
		}
		return fmt.Sprintf("Patient présentant %s avec signes de détresse vitale nécessitant une intervention médicale immédiate.", motif)
	case patient.Jaune:
		if cited != "" {
			return fmt.Sprintf("Patient nécessitant une prise en charge rapide en raison de %s (motif: %s).", cited, motif)
		}
		return fmt.Sprintf("Patient présentant %s nécessitant une évaluation médicale rapide.", motif)
	case patient.Vert:
		return fmt.Sprintf("Patient stable présentant %s pouvant attendre une consultation dans un délai standard.", motif)
	default: // GRIS
		return fmt.Sprintf("Patient stable sans signe de détresse présentant %s, prise en charge différée possible.", motif)
	}
}
