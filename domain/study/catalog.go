package study

// Category identifies a treatment category column in the extracts.
type Category string

// CategoryKind separates medication columns from procedure columns.
type CategoryKind string

const (
	KindMedication CategoryKind = "medication"
	KindProcedure  CategoryKind = "procedure"
)

// Medication categories, in clinical priority order.
const (
	CarbamazepineOxcarbazepine Category = "carbamazepine_oxcarbazepine"
	Gabapentin                 Category = "gabapentin"
	Pregabalin                 Category = "pregabalin"
	Baclofen                   Category = "baclofen"
	Lamotrigine                Category = "lamotrigine"
	OnabotulinumtoxinA         Category = "onabotulinumtoxina"
	NoMedication               Category = "none_of_above"
)

// Procedure categories, in clinical order.
const (
	MVD               Category = "mvd"
	SRS               Category = "srs"
	Rhizotomy         Category = "rhizotomy"
	GlycerolRhizotomy Category = "glycerol_rhizotomy"
	BotoxInjection    Category = "botox"
	NoProcedure       Category = "no_procedure"
)

// CategoryInfo carries the display metadata for a category.
type CategoryInfo struct {
	Key         Category     `json:"key"`
	Kind        CategoryKind `json:"kind"`
	DisplayName string       `json:"display_name"`
	CPTCode     string       `json:"cpt_code,omitempty"`
}

// Medications lists the medication categories in display order.
// Carbamazepine/oxcarbazepine is first-line therapy.
var Medications = []CategoryInfo{
	{Key: CarbamazepineOxcarbazepine, Kind: KindMedication, DisplayName: "Carbamazepine/Oxcarbazepine"},
	{Key: Gabapentin, Kind: KindMedication, DisplayName: "Gabapentin"},
	{Key: Pregabalin, Kind: KindMedication, DisplayName: "Pregabalin"},
	{Key: Baclofen, Kind: KindMedication, DisplayName: "Baclofen"},
	{Key: Lamotrigine, Kind: KindMedication, DisplayName: "Lamotrigine"},
	{Key: OnabotulinumtoxinA, Kind: KindMedication, DisplayName: "OnabotulinumtoxinA"},
}

// Procedures lists the procedure categories in display order with CPT codes.
var Procedures = []CategoryInfo{
	{Key: MVD, Kind: KindProcedure, DisplayName: "Microvascular Decompression (MVD)", CPTCode: "61458"},
	{Key: SRS, Kind: KindProcedure, DisplayName: "Stereotactic Radiosurgery (SRS)", CPTCode: "61796"},
	{Key: Rhizotomy, Kind: KindProcedure, DisplayName: "Percutaneous Rhizotomy", CPTCode: "61790"},
	{Key: GlycerolRhizotomy, Kind: KindProcedure, DisplayName: "Glycerol Rhizotomy"},
	{Key: BotoxInjection, Kind: KindProcedure, DisplayName: "Botox Injection", CPTCode: "64612"},
}

var categoryIndex = func() map[Category]CategoryInfo {
	m := make(map[Category]CategoryInfo)
	for _, info := range Medications {
		m[info.Key] = info
	}
	for _, info := range Procedures {
		m[info.Key] = info
	}
	return m
}()

// Lookup returns the catalog entry for a category key.
func Lookup(key Category) (CategoryInfo, bool) {
	info, ok := categoryIndex[key]
	return info, ok
}

// DisplayName returns the publication name for a category, falling back to
// the raw key for columns outside the catalog.
func (c Category) DisplayName() string {
	if info, ok := categoryIndex[c]; ok {
		return info.DisplayName
	}
	return string(c)
}

// CategoryKeys projects a catalog slice onto its keys.
func CategoryKeys(infos []CategoryInfo) []Category {
	keys := make([]Category, len(infos))
	for i, info := range infos {
		keys[i] = info.Key
	}
	return keys
}
