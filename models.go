package dice

// GenericSpec covers units whose router extension follows the reference
// evaluation design: both instruction block banks fully populated, four
// AES pairs and two optical interfaces. Used when no model-specific catalog
// matches the detected unit.
var GenericSpec = &ModelSpec{
	Name: "Generic TCD22xx",
	Inputs: []Input{
		{ID: SrcBlkIns0, Offset: 0, Count: 16},
		{ID: SrcBlkIns1, Offset: 0, Count: 16},
		{ID: SrcBlkAes, Offset: 0, Count: 2},
		{ID: SrcBlkAes, Offset: 2, Count: 2},
		{ID: SrcBlkAes, Offset: 4, Count: 2},
		{ID: SrcBlkAes, Offset: 6, Count: 2},
		{ID: SrcBlkAdat, Offset: 0, Count: 8},
		{ID: SrcBlkAdat, Offset: 8, Count: 8},
	},
	Outputs: []Output{
		{ID: DstBlkIns0, Offset: 0, Count: 16},
		{ID: DstBlkIns1, Offset: 0, Count: 16},
		{ID: DstBlkAes, Offset: 0, Count: 2},
		{ID: DstBlkAes, Offset: 2, Count: 2},
		{ID: DstBlkAes, Offset: 4, Count: 2},
		{ID: DstBlkAes, Offset: 6, Count: 2},
		{ID: DstBlkAdat, Offset: 0, Count: 8},
		{ID: DstBlkAdat, Offset: 8, Count: 8},
	},
	Fixed: []SrcBlk{
		{ID: SrcBlkIns0, Ch: 0},
		{ID: SrcBlkIns0, Ch: 1},
		{ID: SrcBlkIns0, Ch: 2},
		{ID: SrcBlkIns0, Ch: 3},
		{ID: SrcBlkIns1, Ch: 0},
		{ID: SrcBlkIns1, Ch: 1},
		{ID: SrcBlkIns1, Ch: 2},
		{ID: SrcBlkIns1, Ch: 3},
	},
}

// Models indexes every catalog by display name.
var Models = map[string]*ModelSpec{
	GenericSpec.Name:    GenericSpec,
	SPro14Spec.Name:     SPro14Spec,
	SPro24Spec.Name:     SPro24Spec,
	SPro24DspSpec.Name:  SPro24DspSpec,
	SPro26Spec.Name:     SPro26Spec,
	LiquidS56Spec.Name:  LiquidS56Spec,
	Pfire2626Spec.Name:  Pfire2626Spec,
	Pfire610Spec.Name:   Pfire610Spec,
	Mbox3Spec.Name:      Mbox3Spec,
}

// ModelByName returns the catalog for the display name, falling back to the
// generic catalog.
func ModelByName(name string) *ModelSpec {
	if spec, ok := Models[name]; ok {
		return spec
	}

	return GenericSpec
}
