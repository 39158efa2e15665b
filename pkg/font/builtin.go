package font

import (
	"strings"
	"sync"
)

// default4x6 is a 3x5 stroke font with one column and one row of spacing.
// 'P' is the '1' with the decimal point at its lower left.
const default4x6 = `4x6
` + "`0`" + `
XXX.
X.X.
X.X.
X.X.
XXX.
....
` + "`1`" + `
.X..
XX..
.X..
.X..
.X..
....
` + "`2`" + `
XXX.
..X.
XXX.
X...
XXX.
....
` + "`3`" + `
XXX.
..X.
XXX.
..X.
XXX.
....
` + "`4`" + `
X.X.
X.X.
XXX.
..X.
..X.
....
` + "`5`" + `
XXX.
X...
XXX.
..X.
XXX.
....
` + "`6`" + `
XXX.
X...
XXX.
X.X.
XXX.
....
` + "`7`" + `
XXX.
..X.
..X.
..X.
..X.
....
` + "`8`" + `
XXX.
X.X.
XXX.
X.X.
XXX.
....
` + "`9`" + `
XXX.
X.X.
XXX.
..X.
XXX.
....
` + "`P`" + `
..X.
..X.
..X.
..X.
X.X.
....
`

var defaultTable = sync.OnceValue(func() *Table {
	t, err := Parse(strings.NewReader(default4x6))
	if err != nil {
		panic("font: built-in font: " + err.Error())
	}
	return t
})

// Default returns the built-in 4x6 font covering '0'..'9' and 'P'. The
// table is shared and must not be modified.
func Default() *Table {
	return defaultTable()
}
