package cpanmetatest

import "github.com/matzehuels/cpanmeta/pkg/search"

func epoch(n int64) *int64 { return &n }

// DefaultPackages returns the package index served by [NewServer].
func DefaultPackages() []search.Record {
	return []search.Record{
		{Module: "Moo", Version: "2.005005", Owner: "MSTROUT", Uploader: "HAARG", Path: "H/HA/HAARG/Moo-2.005005.tar.gz"},
		{Module: "Moose", Version: "2.2207", Owner: "STEVAN", Uploader: "ETHER", Path: "E/ET/ETHER/Moose-2.2207.tar.gz"},
		{Module: "Moose::Role", Version: "2.2207", Owner: "STEVAN", Uploader: "ETHER", Path: "E/ET/ETHER/Moose-2.2207.tar.gz"},
		{Module: "MooseX::Types", Version: "0.50", Owner: "RKITOVER", Uploader: "ETHER", Path: "E/ET/ETHER/MooseX-Types-0.50.tar.gz"},
		{Module: "Module::Runtime", Version: "0.016", Owner: "ZEFRAM", Uploader: "ZEFRAM", Path: "Z/ZE/ZEFRAM/Module-Runtime-0.016.tar.gz"},
	}
}

// DefaultPerms returns the permission index served by [NewServer].
func DefaultPerms() []search.Record {
	return []search.Record{
		{Module: "Moo", Author: "MSTROUT", BestPermission: "f", Owner: "MSTROUT"},
		{Module: "Moo", Author: "HAARG", BestPermission: "c", Owner: "MSTROUT"},
		{Module: "Moose", Author: "STEVAN", BestPermission: "f", Owner: "STEVAN"},
		{Module: "Moose", Author: "ETHER", BestPermission: "c", Owner: "STEVAN"},
		{Module: "Moose::Role", Author: "ETHER", BestPermission: "c", Owner: "STEVAN"},
		{Module: "Module::Runtime", Author: "ZEFRAM", BestPermission: "f", Owner: "ZEFRAM"},
	}
}

// DefaultAuthors returns the author index served by [NewServer].
func DefaultAuthors() []search.Record {
	return []search.Record{
		{Author: "ETHER", Fullname: "Karen Etheridge", ASCIIName: "Karen Etheridge", Email: "ether@cpan.org", Homepage: "https://metacpan.org/author/ETHER", Introduced: epoch(1230768000), HasCPANDir: true},
		{Author: "ETJ", Fullname: "Ed J", Email: "CENSORED", HasCPANDir: true},
		{Author: "HAARG", Fullname: "Graham Knop", Email: "haarg@cpan.org", Introduced: epoch(1262304000), HasCPANDir: true},
		{Author: "PERLANCAR", Fullname: "perlancar", Email: "perlancar@cpan.org", HasCPANDir: true},
	}
}
