package patient

import "time"

// ConstantesPayload is the vital-sign block of a prediction request. The
// field names follow the SFMU vocabulary used by the intake clients.
type ConstantesPayload struct {
	FrequenceCardiaque    *int     `json:"frequence_cardiaque"`
	PressionSystolique    *int     `json:"pression_systolique"`
	PressionDiastolique   *int     `json:"pression_diastolique"`
	FrequenceRespiratoire *int     `json:"frequence_respiratoire"`
	Temperature           *float64 `json:"temperature"`
	SaturationOxygene     *float64 `json:"saturation_oxygene"`
	EchelleDouleur        *int     `json:"echelle_douleur,omitempty"`
	Glycemie              *float64 `json:"glycemie,omitempty"`
	Glasgow               *int     `json:"glasgow,omitempty"`
}

// Request is the JSON payload accepted for a triage prediction.
type Request struct {
	Age               int               `json:"age"`
	Sexe              string            `json:"sexe"`
	MotifConsultation string            `json:"motif_consultation"`
	Constantes        ConstantesPayload `json:"constantes"`
	Antecedents       []string          `json:"antecedents,omitempty"`
	Allergies         []string          `json:"allergies,omitempty"`
}

// ToPatient maps the wire payload onto a domain Patient. The result still
// needs Validate before it may enter the pipeline.
func (r *Request) ToPatient(id string, arrivedAt time.Time) *Patient {
	return &Patient{
		ID:             id,
		Age:            r.Age,
		Sex:            Sex(r.Sexe),
		ChiefComplaint: r.MotifConsultation,
		Vitals: VitalSigns{
			HeartRate:       r.Constantes.FrequenceCardiaque,
			SystolicBP:      r.Constantes.PressionSystolique,
			DiastolicBP:     r.Constantes.PressionDiastolique,
			RespiratoryRate: r.Constantes.FrequenceRespiratoire,
			Temperature:     r.Constantes.Temperature,
			SpO2:            r.Constantes.SaturationOxygene,
			PainScore:       r.Constantes.EchelleDouleur,
			Glycemia:        r.Constantes.Glycemie,
			Glasgow:         r.Constantes.Glasgow,
		},
		History:   r.Antecedents,
		Allergies: r.Allergies,
		ArrivedAt: arrivedAt,
	}
}
