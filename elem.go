package dice

// ElemID identifies one control element exposed through a registry. Elements
// sharing a name are distinguished by index.
type ElemID struct {
	Name  string
	Index int
}

// ElemValue carries the payload of one element transfer. Only the slice
// matching the element's type is populated.
type ElemValue struct {
	Bools []bool
	Ints  []int32
	Enums []uint32
	Bytes []byte
}

// ElemRegistry is implemented by the control framework the surface adapter
// registers its elements with. Each Add call creates count elements under one
// name, each carrying valueCount values, and returns their identifiers.
type ElemRegistry interface {
	AddEnumElems(name string, count, valueCount int, labels []string) ([]ElemID, error)
	AddIntElems(name string, count, valueCount int, min, max, step int32) ([]ElemID, error)
	AddBoolElems(name string, count, valueCount int) ([]ElemID, error)
	AddBytesElems(name string, count, valueCount int) ([]ElemID, error)
}

// Locker brackets configuration writes that must not interleave with
// streaming. Implementations typically stop packet streaming for the
// duration of the bracket.
type Locker interface {
	Lock() error
	Unlock() error
}
