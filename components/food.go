package components

// FoodKind identifies a class of edible, non-creature entity.
type FoodKind uint8

const (
	FoodPlant   FoodKind = iota // Regrowing vegetation
	FoodCarrion                 // Left behind by dead creatures, rots away
	NumFoodKinds
)

var foodKindNames = [NumFoodKinds]string{"plant", "carrion"}

// String returns the config name of the food kind.
func (k FoodKind) String() string {
	if k < NumFoodKinds {
		return foodKindNames[k]
	}
	return "unknown"
}

// ParseFoodKind maps a config name back to a FoodKind.
func ParseFoodKind(name string) (FoodKind, bool) {
	for i, n := range foodKindNames {
		if n == name {
			return FoodKind(i), true
		}
	}
	return 0, false
}

// Food holds an edible resource.
type Food struct {
	Kind   FoodKind
	Amount float32 // Hunger points left
	Max    float32
	Regrow float32 // Amount regained per tick; negative rots, 0 never changes
}

// Depleted reports whether nothing edible is left.
func (f *Food) Depleted() bool {
	return f.Amount <= 0
}
