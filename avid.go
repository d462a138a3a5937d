package dice

// Mbox3Spec is the catalog for the Avid Mbox 3 Pro. The control room pair
// routes to a destination id outside the defined set; the firmware accepts
// it and the label carries the intent.
var Mbox3Spec = &ModelSpec{
	Name: "Mbox 3 Pro",
	Inputs: []Input{
		{ID: SrcBlkIns0, Offset: 0, Count: 6},
		{ID: SrcBlkIns1, Offset: 0, Count: 2, Label: "Reverb"},
		{ID: SrcBlkAes, Offset: 0, Count: 2},
	},
	Outputs: []Output{
		{ID: DstBlkIns0, Offset: 0, Count: 6},
		{ID: DstBlkIns1, Offset: 0, Count: 4, Label: "Headphone"},
		{ID: DstBlkIns1, Offset: 4, Count: 2, Label: "Reverb"},
		{ID: DstBlkAes, Offset: 0, Count: 2},
		{ID: DstBlkID(0x08), Offset: 0, Count: 2, Label: "ControlRoom"},
	},
	Fixed: []SrcBlk{
		{ID: SrcBlkIns0, Ch: 0},
		{ID: SrcBlkIns0, Ch: 1},
		{ID: SrcBlkIns0, Ch: 2},
		{ID: SrcBlkIns0, Ch: 3},
	},
}
