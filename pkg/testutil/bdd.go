package testutil

import "testing"

// Given, When, Then and And label nested subtests so a scenario reads as a
// sequence of steps in `go test -v` output.
var (
	Given = step("Given")
	When  = step("When")
	Then  = step("Then")
	And   = step("And")
)

func step(keyword string) func(t *testing.T, desc string, fn func(t *testing.T)) bool {
	return func(t *testing.T, desc string, fn func(t *testing.T)) bool {
		t.Helper()
		return t.Run(keyword+" "+desc, fn)
	}
}
