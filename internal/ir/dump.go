package ir

import "github.com/davecgh/go-spew/spew"

var dumpConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump renders m as a structural tree, used by the driver's
// -v/--verbose output.
func (m *Module) Dump() string {
	return dumpConfig.Sdump(m)
}

// Dump renders a single function, the more commonly useful granularity
// once a module has more than a handful of functions.
func (f *Function) Dump() string {
	return dumpConfig.Sdump(f)
}
