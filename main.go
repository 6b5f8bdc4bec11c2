package main

import "github.com/boostify/storefront/cmd"

func main() {
	cmd.Execute()
}
