// Command posdump opens a user POS table file and dumps its contents for
// inspection: the POS list, or the tokens matching a key/value/pos/locale
// query.
package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"

	"github.com/nozomi-ime/ime-core/pos"
)

func main() {
	var opts struct {
		File    string `short:"f" long:"file" description:"Path to the mapped POS table file" value-name:"path" required:"true"`
		Key     string `short:"k" long:"key" description:"Key prefix to query" value-name:"key"`
		Value   string `short:"v" long:"value" description:"Value prefix to query" value-name:"value"`
		Pos     string `short:"p" long:"pos" description:"POS name to query" value-name:"pos"`
		Locale  string `short:"l" long:"locale" description:"Locale to evaluate the NON_JA_LOCALE rule against" value-name:"locale"`
		ListPos    bool `long:"list-pos" description:"List the table's known POS names and exit"`
		ListPosIDs bool `long:"list-pos-ids" description:"List the table's pos_index values in name order and exit"`
		Plain      bool `long:"plain" description:"Print query results as plain key/value lines instead of a pretty-printed struct dump"`
	}

	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[option...]"
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	table, err := pos.Open(opts.File)
	if err != nil {
		log.Fatalf("posdump: open %s: %v", opts.File, err)
	}
	defer table.Close()

	if opts.ListPos {
		dumpPosList(table)
		return
	}
	if opts.ListPosIDs {
		dumpPosIDs(table)
		return
	}

	if opts.Pos == "" {
		fmt.Fprintln(os.Stderr, "posdump: --pos is required unless --list-pos or --list-pos-ids is given")
		os.Exit(1)
	}

	tokens, err := table.GetTokens(opts.Key, opts.Value, opts.Pos, opts.Locale)
	if err != nil {
		log.Fatalf("posdump: get-tokens: %v", err)
	}

	if opts.Plain {
		for _, tok := range tokens {
			fmt.Printf("key=%q value=%q id=%d attributes=%#x\n", tok.Key, tok.Value, tok.ID, tok.Attributes)
		}
		return
	}
	pp.Println(tokens)
}

// dumpPosIDs prints the table's name -> pos_index mapping in sorted-name
// order, so the output is stable across runs regardless of Go's randomized
// map iteration.
func dumpPosIDs(table *pos.MappedTable) {
	byName := table.PosIndexOf()
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%d\t%s\n", byName[name], name)
	}
}

func dumpPosList(table *pos.MappedTable) {
	list := table.PosList()
	def := table.DefaultPosIndex()
	for i, name := range list {
		marker := " "
		if i == def {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
}
