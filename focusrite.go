package dice

// Catalogs for the Focusrite Saffire Pro series. The series multiplexes its
// analog, S/PDIF and optical interfaces through the first instruction block
// bank in model-specific channel layouts.

// SPro14Spec is the catalog for Saffire Pro 14.
var SPro14Spec = &ModelSpec{
	Name: "Saffire Pro 14",
	Inputs: []Input{
		{ID: SrcBlkIns0, Offset: 0, Count: 4},
		{ID: SrcBlkAes, Offset: 6, Count: 2, Label: "S/PDIF"},
	},
	Outputs: []Output{
		{ID: DstBlkIns0, Offset: 0, Count: 4},
		{ID: DstBlkAes, Offset: 6, Count: 2, Label: "S/PDIF"},
	},
	Fixed: []SrcBlk{
		{ID: SrcBlkIns0, Ch: 0},
		{ID: SrcBlkIns0, Ch: 1},
	},
}

// SPro24Spec is the catalog for Saffire Pro 24. The microphone pair sits
// above the line pair in the instruction block yet leads the fixed metering
// order.
var SPro24Spec = &ModelSpec{
	Name: "Saffire Pro 24",
	Inputs: []Input{
		{ID: SrcBlkIns0, Offset: 2, Count: 2, Label: "Mic"},
		{ID: SrcBlkIns0, Offset: 0, Count: 2, Label: "Line"},
		{ID: SrcBlkAes, Offset: 6, Count: 2, Label: "S/PDIF-coax"},
		{ID: SrcBlkAdat, Offset: 0, Count: 8},
		{ID: SrcBlkAes, Offset: 4, Count: 2, Label: "S/PDIF-opt"},
	},
	Outputs: []Output{
		{ID: DstBlkIns0, Offset: 0, Count: 6},
		{ID: DstBlkAes, Offset: 6, Count: 2, Label: "S/PDIF-coax"},
	},
	Fixed: []SrcBlk{
		{ID: SrcBlkIns0, Ch: 2},
		{ID: SrcBlkIns0, Ch: 3},
		{ID: SrcBlkIns0, Ch: 0},
		{ID: SrcBlkIns0, Ch: 1},
	},
}

// SPro24DspSpec is the catalog for Saffire Pro 24 DSP. On top of the Pro 24
// layout the DSP loops its channel strip and reverb back through the
// instruction block. The effect parameters live in the application section.
var SPro24DspSpec = &ModelSpec{
	Name: "Saffire Pro 24 DSP",
	Inputs: []Input{
		{ID: SrcBlkIns0, Offset: 2, Count: 2, Label: "Mic"},
		{ID: SrcBlkIns0, Offset: 0, Count: 2, Label: "Line"},
		{ID: SrcBlkIns0, Offset: 8, Count: 2, Label: "Ch-strip"},
		{ID: SrcBlkIns0, Offset: 4, Count: 2, Label: "Ch-strip"},
		{ID: SrcBlkIns0, Offset: 14, Count: 2, Label: "Reverb"},
		{ID: SrcBlkIns0, Offset: 6, Count: 2, Label: "Reverb"},
		{ID: SrcBlkAes, Offset: 6, Count: 2, Label: "S/PDIF-coax"},
		{ID: SrcBlkAdat, Offset: 0, Count: 8},
		{ID: SrcBlkAes, Offset: 4, Count: 2, Label: "S/PDIF-opt"},
	},
	Outputs: []Output{
		{ID: DstBlkIns0, Offset: 0, Count: 6},
		{ID: DstBlkAes, Offset: 6, Count: 2, Label: "S/PDIF-coax"},
		{ID: DstBlkIns0, Offset: 8, Count: 2, Label: "Ch-strip"},
		{ID: DstBlkIns0, Offset: 4, Count: 2, Label: "Ch-strip"},
		{ID: DstBlkIns0, Offset: 14, Count: 2, Label: "Reverb"},
		{ID: DstBlkIns0, Offset: 6, Count: 2, Label: "Reverb"},
	},
	Fixed: []SrcBlk{
		{ID: SrcBlkIns0, Ch: 2},
		{ID: SrcBlkIns0, Ch: 3},
		{ID: SrcBlkIns0, Ch: 0},
		{ID: SrcBlkIns0, Ch: 1},
	},
}

// SPro26Spec is the catalog for Saffire Pro 26.
var SPro26Spec = &ModelSpec{
	Name: "Saffire Pro 26",
	Inputs: []Input{
		{ID: SrcBlkIns0, Offset: 0, Count: 6},
		{ID: SrcBlkAes, Offset: 4, Count: 2, Label: "S/PDIF-coax"},
		{ID: SrcBlkAdat, Offset: 0, Count: 8},
		{ID: SrcBlkAes, Offset: 6, Count: 2, Label: "S/PDIF-opt"},
	},
	Outputs: []Output{
		{ID: DstBlkIns0, Offset: 0, Count: 6},
		{ID: DstBlkAes, Offset: 4, Count: 2, Label: "S/PDIF-coax"},
		{ID: DstBlkAdat, Offset: 0, Count: 8},
	},
	Fixed: []SrcBlk{
		{ID: SrcBlkIns0, Ch: 0},
		{ID: SrcBlkIns0, Ch: 1},
		{ID: SrcBlkIns0, Ch: 2},
		{ID: SrcBlkIns0, Ch: 3},
		{ID: SrcBlkIns0, Ch: 4},
		{ID: SrcBlkIns0, Ch: 5},
	},
}

// LiquidS56Spec is the catalog for Liquid Saffire 56. Every physical input
// feeds the metering head, so most of the router table is pinned.
var LiquidS56Spec = &ModelSpec{
	Name: "Liquid Saffire 56",
	Inputs: []Input{
		{ID: SrcBlkIns0, Offset: 0, Count: 2},
		{ID: SrcBlkIns1, Offset: 2, Count: 6},
		{ID: SrcBlkAdat, Offset: 0, Count: 8},
		{ID: SrcBlkAes, Offset: 0, Count: 2, Label: "S/PDIF-coax"},
		{ID: SrcBlkAdat, Offset: 8, Count: 8},
		{ID: SrcBlkAes, Offset: 6, Count: 2, Label: "S/PDIF-opt"},
	},
	Outputs: []Output{
		{ID: DstBlkIns0, Offset: 0, Count: 2},
		{ID: DstBlkIns1, Offset: 0, Count: 8},
		{ID: DstBlkAdat, Offset: 0, Count: 8},
		{ID: DstBlkAes, Offset: 0, Count: 2, Label: "S/PDIF-coax"},
		{ID: DstBlkAdat, Offset: 8, Count: 8},
		{ID: DstBlkAes, Offset: 6, Count: 2, Label: "S/PDIF-opt"},
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
		{ID: SrcBlkAes, Ch: 0},
		{ID: SrcBlkAes, Ch: 1},
		{ID: SrcBlkAdat, Ch: 0},
		{ID: SrcBlkAdat, Ch: 1},
		{ID: SrcBlkAdat, Ch: 2},
		{ID: SrcBlkAdat, Ch: 3},
		{ID: SrcBlkAdat, Ch: 4},
		{ID: SrcBlkAdat, Ch: 5},
		{ID: SrcBlkAdat, Ch: 6},
		{ID: SrcBlkAdat, Ch: 7},
		{ID: SrcBlkAdat, Ch: 8},
		{ID: SrcBlkAdat, Ch: 9},
		{ID: SrcBlkAdat, Ch: 10},
		{ID: SrcBlkAdat, Ch: 11},
		{ID: SrcBlkAdat, Ch: 12},
		{ID: SrcBlkAdat, Ch: 13},
		{ID: SrcBlkAdat, Ch: 14},
		{ID: SrcBlkAdat, Ch: 15},
	},
}
