package engine_test

import (
	"fmt"

	"github.com/matzehuels/storeweaver/pkg/core/catalog/catalogtest"
	"github.com/matzehuels/storeweaver/pkg/core/score"
	"github.com/matzehuels/storeweaver/pkg/engine"
)

func ExampleGenerate() {
	cat := catalogtest.Store()
	seed := uint64(42)

	seq, err := engine.Generate(cat, score.ViewportWide, &seed)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(seq.Entries[0].Module.Type, seq.Entries[1].Module.Type, seq.Entries[2].Role)
	fmt.Println("content matches target:", seq.ContentCount() == seq.ContentTarget)
	fmt.Println("zones:", seq.Zones)
	// Output:
	// mast navigation hero
	// content matches target: true
	// zones: [{3 3} {7 3}]
}

func ExampleGroupForNarrowViewport() {
	cat := catalogtest.Store()
	seed := uint64(42)
	seq, _ := engine.Generate(cat, score.ViewportNarrow, &seed)

	groups := engine.GroupForNarrowViewport(seq)
	total := 0
	for _, g := range groups {
		total += len(g.Members)
	}
	fmt.Println(total == seq.Len())
	fmt.Println(groups[0].Kind, groups[1].Kind, groups[2].Kind)
	// Output:
	// true
	// single single single
}
