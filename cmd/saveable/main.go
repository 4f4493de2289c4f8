// Command saveable loads, finds, saves and deletes the roles, templates
// and fields of a site.
//
//	saveable schema roles --apply
//	saveable save roles '{"name": "editor", "data": {"color": "blue"}}'
//	saveable load roles "name%=edit, sort=-name, limit=10"
//	saveable get roles editor
//	saveable delete roles editor
package main

import (
	"fmt"
	"os"
)

func main() {
	a := &app{}
	if err := a.execute(newRootCmd(a)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
