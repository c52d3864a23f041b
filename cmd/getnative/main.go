package main

import (
	"github.com/dixieflatline76/getnative/util/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
