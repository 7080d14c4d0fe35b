package main

import (
	"log"

	"github.com/bobuhiro11/dyntables/flag"
)

func main() {
	if err := flag.Parse(); err != nil {
		log.Fatal(err)
	}
}
