package prediction

// Category is one of the seven ordered weight-status labels.
type Category = string

// Categories returned by the prediction service.
const (
	InsufficientWeight Category = "Insufficient_Weight"
	NormalWeight       Category = "Normal_Weight"
	OverweightLevelI   Category = "Overweight_Level_I"
	OverweightLevelII  Category = "Overweight_Level_II"
	ObesityTypeI       Category = "Obesity_Type_I"
	ObesityTypeII      Category = "Obesity_Type_II"
	ObesityTypeIII     Category = "Obesity_Type_III"
)

var categoryOrder = []Category{
	InsufficientWeight,
	NormalWeight,
	OverweightLevelI,
	OverweightLevelII,
	ObesityTypeI,
	ObesityTypeII,
	ObesityTypeIII,
}

var categoryLabels = map[Category]string{
	InsufficientWeight: "Peso Insuficiente",
	NormalWeight:       "Peso Normal",
	OverweightLevelI:   "Sobrepeso Nível I",
	OverweightLevelII:  "Sobrepeso Nível II",
	ObesityTypeI:       "Obesidade Tipo I",
	ObesityTypeII:      "Obesidade Tipo II",
	ObesityTypeIII:     "Obesidade Tipo III",
}

// Categories returns the known categories in severity order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Label translates a category for display. Unknown categories are
// returned verbatim so new server-side labels still render.
func Label(c Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return c
}
