package model

// Tier is the rarity tier of a card reference.
type Tier int32

const (
	TierChampion Tier = iota
	TierExalted
	TierCelestial
	TierDivine
	TierAscendant
	TierGenesis
	TierVoidborn
	TierOmega
)

var tierNames = map[Tier]string{
	TierChampion:  "champion",
	TierExalted:   "exalted",
	TierCelestial: "celestial",
	TierDivine:    "divine",
	TierAscendant: "ascendant",
	TierGenesis:   "genesis",
	TierVoidborn:  "voidborn",
	TierOmega:     "omega",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	_, ok := tierNames[t]
	return ok
}
