package main

import "os"

func main() {
	os.Exit(1) // want "forbidden function call"
}
