package dice

// Catalogs for the M-Audio ProFire series.

// Pfire2626Spec is the catalog for ProFire 2626.
var Pfire2626Spec = &ModelSpec{
	Name: "ProFire 2626",
	Inputs: []Input{
		{ID: SrcBlkIns1, Offset: 0, Count: 8},
		{ID: SrcBlkAdat, Offset: 0, Count: 8},
		{ID: SrcBlkAdat, Offset: 8, Count: 8},
		{ID: SrcBlkAes, Offset: 0, Count: 2},
	},
	Outputs: []Output{
		{ID: DstBlkIns1, Offset: 0, Count: 8},
		{ID: DstBlkAdat, Offset: 0, Count: 8},
		{ID: DstBlkAdat, Offset: 8, Count: 8},
		{ID: DstBlkAes, Offset: 0, Count: 2},
	},
	Fixed: []SrcBlk{
		{ID: SrcBlkIns1, Ch: 0},
		{ID: SrcBlkIns1, Ch: 1},
		{ID: SrcBlkIns1, Ch: 2},
		{ID: SrcBlkIns1, Ch: 3},
		{ID: SrcBlkIns1, Ch: 4},
		{ID: SrcBlkIns1, Ch: 5},
		{ID: SrcBlkIns1, Ch: 6},
		{ID: SrcBlkIns1, Ch: 7},
	},
}

// Pfire610Spec is the catalog for ProFire 610.
var Pfire610Spec = &ModelSpec{
	Name: "ProFire 610",
	Inputs: []Input{
		{ID: SrcBlkIns0, Offset: 0, Count: 4},
		{ID: SrcBlkAes, Offset: 0, Count: 2},
	},
	Outputs: []Output{
		{ID: DstBlkIns0, Offset: 0, Count: 8},
		{ID: DstBlkAes, Offset: 0, Count: 2},
	},
	Fixed: []SrcBlk{
		{ID: SrcBlkIns0, Ch: 0},
		{ID: SrcBlkIns0, Ch: 1},
	},
}
