package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Rect is an element rectangle in screen pixels.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// ParseRect parses a uiautomator bounds string "[l,t][r,b]".
// Malformed input yields the zero Rect; it never fails.
func ParseRect(s string) Rect {
	r, _ := ParseRectOK(s)
	return r
}

// ParseRectOK is ParseRect that also reports whether s was well formed.
func ParseRectOK(s string) (Rect, bool) {
	s = strings.ReplaceAll(s, "[", "")
	s = strings.ReplaceAll(s, "]", ",")

	var vals []int
	for _, p := range strings.Split(s, ",") {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Rect{}, false
		}
		vals = append(vals, n)
	}
	if len(vals) != 4 {
		return Rect{}, false
	}

	return Rect{Left: vals[0], Top: vals[1], Right: vals[2], Bottom: vals[3]}, true
}

// Center returns the midpoint of each axis, rounded toward negative infinity.
// Elements partly off-screen report negative bounds.
func (r Rect) Center() (int, int) {
	return halfFloor(r.Left + r.Right), halfFloor(r.Top + r.Bottom)
}

func halfFloor(a int) int {
	q := a / 2
	if a%2 != 0 && a < 0 {
		q--
	}
	return q
}

// String formats r back into bounds notation.
func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", r.Left, r.Top, r.Right, r.Bottom)
}
