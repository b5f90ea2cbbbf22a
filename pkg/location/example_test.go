package location_test

import (
	"fmt"

	"github.com/matzehuels/cpanmeta/pkg/location"
	"github.com/matzehuels/cpanmeta/pkg/search"
)

func ExampleDecode() {
	for _, raw := range []string{
		"#=Moose",
		"#PERLANCAR~Module::Name",
		"/perms?author=ETHER&module=Moose&match_mode=exact",
	} {
		d, _ := location.Decode(raw)
		fmt.Println(d.Version, d.Fields.Author, d.Fields.Query, d.Fields.Mode)
	}
	// Output:
	// v1  Moose exact
	// v2 PERLANCAR Module::Name prefix
	// v3 ETHER Moose exact
}

func ExampleRedirectTarget() {
	target, ok := location.RedirectTarget("#PERLANCAR+~Foo", search.Packages)
	fmt.Println(target, ok)
	// Output:
	// /packages?author=PERLANCAR&module=Foo&match_mode=prefix&other_authors=1 true
}
