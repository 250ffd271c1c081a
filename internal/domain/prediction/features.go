package prediction

// FieldSpec describes one input accepted by the prediction service.
type FieldSpec struct {
	Type        string   `json:"type"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Values      []string `json:"values,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Description string   `json:"description,omitempty"`
}

// FeatureInfo is the service's description of the model inputs.
type FeatureInfo struct {
	FeatureOrder   []string             `json:"feature_order"`
	RequiredFields map[string]FieldSpec `json:"required_fields"`
}

// Fields lists the described fields, model features first in model order,
// followed by the remaining fields in wire order.
func (f FeatureInfo) Fields() []string {
	seen := make(map[string]bool, len(f.RequiredFields))
	out := make([]string, 0, len(f.RequiredFields))
	for _, name := range f.FeatureOrder {
		if _, ok := f.RequiredFields[name]; ok && !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	for _, name := range wireOrder {
		if _, ok := f.RequiredFields[name]; ok && !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	return out
}

var wireOrder = []string{
	FieldAge, FieldGender, FieldHeight, FieldWeight, FieldFAF, FieldSmoke,
	FieldFAVC, FieldFamilyHistory, FieldCAEC, FieldCALC, FieldMTRANS,
}
