package rules

import "strings"

// complaintRule matches a family of chief-complaint keywords to a FRENCH
// level, a clinical category and the intake recommendations for it.
type complaintRule struct {
	name            string
	level           FrenchLevel
	category        string
	keywords        []string
	recommendations []string
}

// complaintRules is evaluated in order; the first match within the most
// severe tier wins, and a ROUGE-band keyword is a red flag on its own even
// with normal vitals.
var complaintRules = []complaintRule{
	{
		name:            "arret_cardiaque",
		level:           Tri1,
		category:        "CARDIO-CIRCULATOIRE",
		keywords:        []string{"arrêt cardiaque", "arret cardiaque", "acr", "pas de pouls", "réanimation"},
		recommendations: []string{"Réanimation immédiate", "Appel réanimateur"},
	},
	{
		name:            "amputation",
		level:           Tri1,
		category:        "TRAUMATOLOGIE",
		keywords:        []string{"amputation", "membre sectionné", "doigt coupé"},
		recommendations: []string{"Conservation du membre", "Hémostase"},
	},
	{
		name:            "hemorragie",
		level:           Tri2,
		category:        "TRAUMATOLOGIE",
		keywords:        []string{"hémorragie", "hemorragie", "saignement massif", "hématémèse", "vomissement sang"},
		recommendations: []string{"2 VVP gros calibre", "Groupe sanguin RAI"},
	},
	{
		name:            "coma",
		level:           Tri2,
		category:        "NEUROLOGIE",
		keywords:        []string{"coma", "inconscient", "non réactif", "altération conscience"},
		recommendations: []string{"Protection voies aériennes", "Glycémie capillaire"},
	},
	{
		name:            "avc",
		level:           Tri2,
		category:        "NEUROLOGIE",
		keywords:        []string{"avc", "paralysie", "hémiplégie", "aphasie", "déficit moteur"},
		recommendations: []string{"Alerte thrombolyse", "Heure début symptômes", "Glycémie"},
	},
	{
		name:            "detresse_respiratoire",
		level:           Tri2,
		category:        "RESPIRATOIRE",
		keywords:        []string{"détresse respiratoire", "asphyxie", "tirage"},
		recommendations: []string{"Oxygénothérapie", "Position demi-assise"},
	},
	{
		name:            "suicidaire",
		level:           Tri2,
		category:        "PSYCHIATRIE",
		keywords:        []string{"suicidaire", "tentative suicide", "idées noires"},
		recommendations: []string{"Surveillance rapprochée", "Retrait objets dangereux"},
	},
	{
		name:            "douleur_thoracique",
		level:           Tri3B,
		category:        "CARDIO-CIRCULATOIRE",
		keywords:        []string{"douleur thoracique", "douleur poitrine", "oppression", "infarctus", "syndrome coronaire"},
		recommendations: []string{"ECG immédiat", "Monitoring", "Voie veineuse"},
	},
	{
		name:            "convulsions",
		level:           Tri3B,
		category:        "NEUROLOGIE",
		keywords:        []string{"convulsion", "crise épilepsie", "crise comitiale"},
		recommendations: []string{"Position latérale sécurité", "Protection"},
	},
	{
		name:            "asthme",
		level:           Tri3B,
		category:        "RESPIRATOIRE",
		keywords:        []string{"asthme", "bronchospasme", "sifflement"},
		recommendations: []string{"Mesure DEP", "Nébulisation", "SpO2"},
	},
	{
		name:            "douleur_abdominale",
		level:           Tri3B,
		category:        "ABDOMINAL",
		keywords:        []string{"douleur abdominale", "mal ventre", "douleur ventre"},
		recommendations: []string{"Évaluation chirurgicale si défense"},
	},
	{
		name:            "intoxication",
		level:           Tri3B,
		category:        "INTOXICATION",
		keywords:        []string{"intoxication", "overdose", "empoisonnement", "surdosage"},
		recommendations: []string{"Identification toxique", "Appel centre antipoison"},
	},
	{
		name:            "fracture",
		level:           Tri4,
		category:        "TRAUMATOLOGIE",
		keywords:        []string{"fracture", "os cassé", "déformation"},
		recommendations: []string{"Immobilisation", "Antalgie", "Radio"},
	},
	{
		name:            "plaie",
		level:           Tri4,
		category:        "TRAUMATOLOGIE",
		keywords:        []string{"plaie", "coupure", "lacération"},
		recommendations: []string{"Hémostase", "Désinfection", "VAT"},
	},
	{
		name:            "anxiete",
		level:           Tri4,
		category:        "PSYCHIATRIE",
		keywords:        []string{"anxiété", "angoisse", "attaque panique"},
		recommendations: []string{"Environnement calme", "Réassurance"},
	},
	{
		name:            "fievre",
		level:           Tri5,
		category:        "INFECTIOLOGIE",
		keywords:        []string{"fièvre", "fievre", "hyperthermie"},
		recommendations: []string{"Paracétamol si besoin"},
	},
	{
		name:            "cephalee",
		level:           Tri5,
		category:        "NEUROLOGIE",
		keywords:        []string{"céphalée", "mal de tête", "migraine"},
		recommendations: []string{"Antalgie simple"},
	},
}

// matchComplaint scans the chief complaint and history tags for keyword
// matches and returns the most severe matching rule. A text that matches no
// rule contributes no signal (nil).
func matchComplaint(complaint string, history []string) *complaintRule {
	text := strings.ToLower(complaint)
	if len(history) > 0 {
		text += " " + strings.ToLower(strings.Join(history, " "))
	}

	var best *complaintRule
	for i := range complaintRules {
		r := &complaintRules[i]
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				if best == nil || r.level < best.level {
					best = r
				}
				break
			}
		}
	}
	return best
}
