package renderer

import (
	"strconv"
	"strings"
)

// compareProductVersions compares two dotted-numeric product version
// strings (e.g. "2.30.1" vs "2.30.10"), treating each component numerically
// rather than lexicographically. It returns -1, 0, or 1 as a < b, a == b,
// a > b. A non-numeric component falls back to a string compare of that
// component only.
func compareProductVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	for i := 0; i < len(as) || i < len(bs); i++ {
		var ac, bc string
		if i < len(as) {
			ac = as[i]
		}
		if i < len(bs) {
			bc = bs[i]
		}
		if ac == bc {
			continue
		}

		an, aerr := strconv.Atoi(ac)
		bn, berr := strconv.Atoi(bc)
		if aerr == nil && berr == nil {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				continue
			}
		}
		if ac < bc {
			return -1
		}
		return 1
	}
	return 0
}
