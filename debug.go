package simdcsv

import "strconv"

// debugBytes renders a byte slice the way a human inspecting a failing
// test or a %v-formatted record wants to see it: quoted, with control
// bytes escaped, rather than Go's default "[104 101 108 108 111]".
type debugBytes []byte

func (b debugBytes) String() string {
	return strconv.Quote(string(b))
}

func (b debugBytes) GoString() string {
	return "debugBytes(" + strconv.Quote(string(b)) + ")"
}
