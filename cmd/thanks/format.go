package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gertd/go-pluralize"
)

var plurals = pluralize.NewClient()

func formatCount(count int, word string) string {
	return fmt.Sprintf("%v %v", humanize.Comma(int64(count)), plurals.Pluralize(word, count, false))
}
